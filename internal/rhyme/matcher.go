package rhyme

import (
	"errors"
	"fmt"
	"slices"
)

// ErrLengthMismatch is returned when the reference and hypothesis stanzas do
// not have the same number of lines.
var ErrLengthMismatch = errors.New("reference and hypothesis line counts differ")

// Tier grades how much of the reference rhyme structure a hypothesis keeps.
type Tier int

const (
	TierNone Tier = iota
	TierPartial
	TierGood
	TierPerfect
	TierExact
)

var tierWeights = map[Tier]float64{
	TierExact:   1.0,
	TierPerfect: 0.8,
	TierGood:    0.6,
	TierPartial: 0.4,
	TierNone:    0.0,
}

// Weight is the tier's contribution to a song's structural score.
func (t Tier) Weight() float64 {
	return tierWeights[t]
}

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "EXACT"
	case TierPerfect:
		return "PERFECT"
	case TierGood:
		return "GOOD"
	case TierPartial:
		return "PARTIAL"
	default:
		return "NONE"
	}
}

// Tiers lists every tier from strongest to weakest.
var Tiers = []Tier{TierExact, TierPerfect, TierGood, TierPartial, TierNone}

// Compare grades hyp against ref. The first satisfied tier, strongest first,
// is returned.
func Compare(ref, hyp Scheme) (Tier, error) {
	if len(ref) != len(hyp) {
		return TierNone, fmt.Errorf("%w: reference has %d lines, hypothesis has %d", ErrLengthMismatch, len(ref), len(hyp))
	}

	switch {
	case isExact(ref, hyp):
		return TierExact, nil
	case isPerfect(ref, hyp):
		return TierPerfect, nil
	case isGood(ref, hyp):
		return TierGood, nil
	case isPartial(ref, hyp):
		return TierPartial, nil
	default:
		return TierNone, nil
	}
}

func isExact(ref, hyp Scheme) bool {
	return ref.Equal(hyp)
}

// isPerfect: every repeated reference group is reproduced, and every
// repeated exact group is reproduced by an exact hypothesis class.
func isPerfect(ref, hyp Scheme) bool {
	if !isGood(ref, hyp) {
		return false
	}
	for _, g := range repeatedGroups(ref) {
		if g.Label.Kind == Exact && hyp[g.Indices[0]].Kind != Exact {
			return false
		}
	}
	return true
}

// isGood: every repeated reference group is reproduced, whatever its kind.
func isGood(ref, hyp Scheme) bool {
	lists := indexLists(hyp)
	for _, g := range repeatedGroups(ref) {
		if !containsList(lists, g.Indices) {
			return false
		}
	}
	return true
}

// isPartial: at least one repeated reference group is reproduced. A reference
// without repeated groups has nothing to lose and passes trivially.
func isPartial(ref, hyp Scheme) bool {
	groups := repeatedGroups(ref)
	if len(groups) == 0 {
		return true
	}
	lists := indexLists(hyp)
	for _, g := range groups {
		if containsList(lists, g.Indices) {
			return true
		}
	}
	return false
}

func repeatedGroups(s Scheme) []Group {
	var out []Group
	for _, g := range s.Groups() {
		if len(g.Indices) > 1 {
			out = append(out, g)
		}
	}
	return out
}

func indexLists(s Scheme) [][]int {
	groups := s.Groups()
	lists := make([][]int, len(groups))
	for i, g := range groups {
		lists[i] = g.Indices
	}
	return lists
}

func containsList(lists [][]int, want []int) bool {
	for _, l := range lists {
		if slices.Equal(l, want) {
			return true
		}
	}
	return false
}
