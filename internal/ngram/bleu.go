package ngram

import "math"

// MaxOrder is the longest n-gram BLEU considers.
const MaxOrder = 4

// BLEU scores hyp against a single reference token sequence. Orders for
// which hyp has no n-grams are dropped from the geometric mean, and a
// zero-match order contributes 100/(2^k * total) for the k-th such order.
// A hypothesis with no unigram matches scores 0.
func BLEU(ref, hyp []string) float64 {
	var precisions [MaxOrder]float64
	smooth := 1.0
	order := 0

	for n := 1; n <= MaxOrder; n++ {
		total, _, correct := stats(ref, hyp, n)
		if total == 0 {
			break
		}
		if n == 1 && correct == 0 {
			return 0
		}
		order = n
		if correct == 0 {
			smooth *= 2
			precisions[n-1] = 100 / (smooth * float64(total))
		} else {
			precisions[n-1] = 100 * float64(correct) / float64(total)
		}
	}
	if order == 0 {
		return 0
	}

	var logSum float64
	for _, p := range precisions[:order] {
		logSum += math.Log(p)
	}
	return brevityPenalty(len(hyp), len(ref)) * math.Exp(logSum/float64(order))
}

func brevityPenalty(hypLen, refLen int) float64 {
	if hypLen >= refLen {
		return 1
	}
	if hypLen == 0 {
		return 0
	}
	return math.Exp(1 - float64(refLen)/float64(hypLen))
}
