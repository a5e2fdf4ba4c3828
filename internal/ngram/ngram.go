// Package ngram implements the sentence-level n-gram overlap scores
// reported next to METEOR: BLEU with effective order and character
// n-gram F-score (chrF). Both are on a 0-100 scale.
package ngram

import "strings"

// counts returns the multiset of n-grams of length n in tokens.
func counts(tokens []string, n int) map[string]int {
	grams := make(map[string]int)
	for i := 0; i+n <= len(tokens); i++ {
		grams[strings.Join(tokens[i:i+n], "\x00")]++
	}
	return grams
}

// stats returns the n-gram totals of hyp and ref and their clipped
// overlap.
func stats(ref, hyp []string, n int) (hypTotal, refTotal, matches int) {
	refGrams := counts(ref, n)
	for g, c := range counts(hyp, n) {
		hypTotal += c
		matches += min(c, refGrams[g])
	}
	for _, c := range refGrams {
		refTotal += c
	}
	return hypTotal, refTotal, matches
}
