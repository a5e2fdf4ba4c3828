package rhyme

import (
	"errors"
	"math"
	"testing"
)

func mustScheme(t *testing.T, s string) Scheme {
	t.Helper()
	scheme, err := ParseScheme(s)
	if err != nil {
		t.Fatalf("ParseScheme(%q): %v", s, err)
	}
	return scheme
}

func TestCompare(t *testing.T) {
	tests := []struct {
		ref, hyp string
		want     Tier
	}{
		{"AABB", "AABB", TierExact},
		{"ABAB", "ABBA", TierNone},
		{"AABB", "BBAA", TierPerfect},
		{"AABB", "aabb", TierGood},
		{"aabb", "AABB", TierPerfect},
		{"AABB", "AACD", TierPartial},
		{"AAbb", "AABC", TierPartial},
		{"ABCD", "AABB", TierPerfect},
		{"AAAA", "ABAB", TierNone},
		// A lost slant group rules out PERFECT even with no repeated exact group.
		{"Baa", "BbB", TierNone},
		{"Baa", "Caa", TierPerfect},
	}

	for _, tt := range tests {
		t.Run(tt.ref+"_"+tt.hyp, func(t *testing.T) {
			got, err := Compare(mustScheme(t, tt.ref), mustScheme(t, tt.hyp))
			if err != nil {
				t.Fatalf("Compare() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Compare(%s, %s) = %s, want %s", tt.ref, tt.hyp, got, tt.want)
			}
		})
	}
}

func TestCompareLengthMismatch(t *testing.T) {
	_, err := Compare(mustScheme(t, "AABB"), mustScheme(t, "AAB"))
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Compare() error = %v, want ErrLengthMismatch", err)
	}
}

func TestTierWeights(t *testing.T) {
	want := map[Tier]float64{
		TierExact:   1.0,
		TierPerfect: 0.8,
		TierGood:    0.6,
		TierPartial: 0.4,
		TierNone:    0.0,
	}
	for tier, w := range want {
		if tier.Weight() != w {
			t.Errorf("%s.Weight() = %.1f, want %.1f", tier, tier.Weight(), w)
		}
	}
}

// allSchemes enumerates every scheme of length n over the given labels.
func allSchemes(t *testing.T, alphabet string, n int) []Scheme {
	t.Helper()
	if n == 0 {
		return []Scheme{{}}
	}
	var out []Scheme
	for _, prefix := range allSchemes(t, alphabet, n-1) {
		for i := 0; i < len(alphabet); i++ {
			s := append(append(Scheme{}, prefix...), mustScheme(t, alphabet[i:i+1])...)
			out = append(out, s)
		}
	}
	return out
}

func TestTierImplications(t *testing.T) {
	schemes := allSchemes(t, "ABab", 4)

	for _, ref := range schemes {
		for _, hyp := range schemes {
			exact := isExact(ref, hyp)
			perfect := isPerfect(ref, hyp)
			good := isGood(ref, hyp)
			partial := isPartial(ref, hyp)

			if exact && !perfect {
				t.Fatalf("%s/%s: EXACT without PERFECT", ref, hyp)
			}
			if perfect && !good {
				t.Fatalf("%s/%s: PERFECT without GOOD", ref, hyp)
			}
			if good && !partial {
				t.Fatalf("%s/%s: GOOD without PARTIAL", ref, hyp)
			}

			tier, err := Compare(ref, hyp)
			if err != nil {
				t.Fatalf("Compare(%s, %s): %v", ref, hyp, err)
			}
			var want Tier
			switch {
			case exact:
				want = TierExact
			case perfect:
				want = TierPerfect
			case good:
				want = TierGood
			case partial:
				want = TierPartial
			default:
				want = TierNone
			}
			if tier != want {
				t.Fatalf("Compare(%s, %s) = %s, want %s", ref, hyp, tier, want)
			}
		}
	}
}

func TestSongScore(t *testing.T) {
	var s SongScore

	tier, counted, err := s.Add(mustScheme(t, "AABB"), mustScheme(t, "AABB"))
	if err != nil || !counted || tier != TierExact {
		t.Fatalf("Add(AABB, AABB) = %s, %v, %v", tier, counted, err)
	}
	if _, counted, _ := s.Add(mustScheme(t, "ABAB"), mustScheme(t, "ABBA")); !counted {
		t.Fatal("ABAB stanza should be counted")
	}
	if _, counted, _ := s.Add(mustScheme(t, "ABCD"), mustScheme(t, "AABB")); counted {
		t.Fatal("reference without rhyme should not be counted")
	}

	if s.Counted() != 2 {
		t.Errorf("Counted() = %d, want 2", s.Counted())
	}
	if got := s.Divergence(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Divergence() = %.3f, want 0.5", got)
	}
	counts := s.TierCounts()
	if counts[TierExact] != 1 || counts[TierNone] != 1 {
		t.Errorf("TierCounts() = %v", counts)
	}

	if _, _, err := s.Add(mustScheme(t, "AB"), mustScheme(t, "A")); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Add() error = %v, want ErrLengthMismatch", err)
	}
}

func TestSongScoreEmpty(t *testing.T) {
	var s SongScore
	if s.Divergence() != 0 {
		t.Errorf("Divergence() = %.3f, want 0", s.Divergence())
	}
}
