package rhyme

// SongScore folds per-stanza tiers into a song-level divergence.
// The zero value is ready to use.
type SongScore struct {
	sum     float64
	counted int
	tiers   map[Tier]int
}

// Add grades one stanza pair. Stanzas whose reference has no repeated label
// are not counted and report counted=false. Length mismatches are always
// reported, counted or not.
func (s *SongScore) Add(ref, hyp Scheme) (tier Tier, counted bool, err error) {
	tier, err = Compare(ref, hyp)
	if err != nil {
		return TierNone, false, err
	}
	if !ref.HasRepeat() {
		return tier, false, nil
	}

	if s.tiers == nil {
		s.tiers = make(map[Tier]int)
	}
	s.sum += tier.Weight()
	s.counted++
	s.tiers[tier]++
	return tier, true, nil
}

// Counted returns the number of stanzas that contributed to the score.
func (s *SongScore) Counted() int {
	return s.counted
}

// TierCounts returns how many counted stanzas landed in each tier.
func (s *SongScore) TierCounts() map[Tier]int {
	out := make(map[Tier]int, len(s.tiers))
	for t, n := range s.tiers {
		out[t] = n
	}
	return out
}

// Divergence is 1 - mean tier weight over counted stanzas: 0 means the rhyme
// structure was kept everywhere, 1 that it was lost everywhere. A song with
// no counted stanza diverges by 0.
func (s *SongScore) Divergence() float64 {
	if s.counted == 0 {
		return 0
	}
	return 1 - s.sum/float64(s.counted)
}
