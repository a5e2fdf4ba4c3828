// Package meteor scores a hypothesis lemma sequence against a reference with
// a METEOR-style F-measure, optionally widening matches through synonyms.
package meteor

// Chunks counts the maximal runs of hypothesis lemmas that occur anywhere in
// the reference. Membership is positional-free: a run breaks only at a
// hypothesis lemma absent from the reference altogether. Either sequence
// being empty yields 0.
func Chunks(ref, hyp []string) int {
	if len(ref) == 0 || len(hyp) == 0 {
		return 0
	}

	inRef := make(map[string]struct{}, len(ref))
	for _, r := range ref {
		inRef[r] = struct{}{}
	}

	chunks := 0
	inChunk := false
	for _, h := range hyp {
		if _, ok := inRef[h]; ok {
			if !inChunk {
				chunks++
				inChunk = true
			}
		} else {
			inChunk = false
		}
	}
	return chunks
}
