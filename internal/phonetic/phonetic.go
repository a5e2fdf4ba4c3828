// Package phonetic models the rhyme-relevant tail of a word's pronunciation
// and the similarity measure used to detect slant rhymes.
package phonetic

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// SlantThreshold is the similarity a pair of tails must exceed to count as a
// slant rhyme.
const SlantThreshold = 0.7

// Tail is the sequence of phoneme symbols running from the last stressed
// vowel of a word to its end.
type Tail []string

// Parse splits a whitespace-separated phoneme string into a Tail.
func Parse(s string) Tail {
	return Tail(strings.Fields(s))
}

// Key returns the canonical string form of the tail, symbols separated by a
// single space. Two tails rhyme exactly iff their keys are equal.
func (t Tail) Key() string {
	return strings.Join(t, " ")
}

func (t Tail) String() string {
	return t.Key()
}

// Equal reports whether t and o are an exact rhyme.
func (t Tail) Equal(o Tail) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if t[i] != o[i] {
			return false
		}
	}
	return true
}

// Similarity returns the Ratcliff/Obershelp ratio 2*M/T between the
// character forms of two tails. An empty tail carries no rhyme evidence and
// scores 0 against anything.
func Similarity(a, b Tail) float64 {
	ka, kb := a.Key(), b.Key()
	if ka == "" || kb == "" {
		return 0
	}
	if ka == kb {
		return 1
	}
	return difflib.NewMatcher(runes(ka), runes(kb)).Ratio()
}

// IsSlant reports whether two non-identical tails are similar enough to be
// treated as a slant rhyme.
func IsSlant(a, b Tail) bool {
	return !a.Equal(b) && Similarity(a, b) > SlantThreshold
}

// MaxSimilarity returns the best similarity over every candidate pair drawn
// from the two sets. Either set being empty yields 0.
func MaxSimilarity(as, bs []Tail) float64 {
	best := 0.0
	for _, a := range as {
		for _, b := range bs {
			if s := Similarity(a, b); s > best {
				best = s
			}
		}
	}
	return best
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
