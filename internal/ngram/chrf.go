package ngram

import "strings"

const (
	// CharOrder is the longest character n-gram chrF considers.
	CharOrder = 6
	// ChrFBeta weights recall over precision.
	ChrFBeta = 2
)

// ChrF scores hyp against ref on character n-grams of orders 1 to
// CharOrder, whitespace removed. Precision and recall are averaged over the
// orders both strings are long enough for, then combined as an F-beta
// score.
func ChrF(ref, hyp string) float64 {
	refChars := chars(ref)
	hypChars := chars(hyp)

	var avgPrec, avgRec float64
	effective := 0
	for n := 1; n <= CharOrder; n++ {
		hypTotal, refTotal, matches := stats(refChars, hypChars, n)
		if hypTotal == 0 || refTotal == 0 {
			continue
		}
		avgPrec += float64(matches) / float64(hypTotal)
		avgRec += float64(matches) / float64(refTotal)
		effective++
	}
	if effective == 0 {
		return 0
	}
	avgPrec /= float64(effective)
	avgRec /= float64(effective)
	if avgPrec+avgRec == 0 {
		return 0
	}

	factor := float64(ChrFBeta * ChrFBeta)
	return 100 * (1 + factor) * avgPrec * avgRec / (factor*avgPrec + avgRec)
}

// chars splits s into single-rune tokens, dropping whitespace.
func chars(s string) []string {
	s = strings.Join(strings.Fields(s), "")
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
