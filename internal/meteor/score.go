package meteor

import (
	"fmt"
	"math"
)

// SynonymFunc returns the lemmas interchangeable with lemma. It must be a
// pure lookup.
type SynonymFunc func(lemma string) []string

// Params tunes the score.
type Params struct {
	Alpha float64 `json:"alpha" yaml:"alpha"` // precision/recall balance
	Beta  float64 `json:"beta" yaml:"beta"`   // fragmentation exponent
	Gamma float64 `json:"gamma" yaml:"gamma"` // fragmentation weight
}

// DefaultParams returns alpha=0.9, beta=3, gamma=0.5.
func DefaultParams() Params {
	return Params{Alpha: 0.9, Beta: 3, Gamma: 0.5}
}

// Validate checks that the parameters keep the score within [0, 1].
func (p Params) Validate() error {
	if p.Alpha < 0 || p.Alpha > 1 {
		return fmt.Errorf("alpha must be in [0, 1], got %g", p.Alpha)
	}
	if p.Beta < 0 {
		return fmt.Errorf("beta must be non-negative, got %g", p.Beta)
	}
	if p.Gamma < 0 || p.Gamma > 1 {
		return fmt.Errorf("gamma must be in [0, 1], got %g", p.Gamma)
	}
	return nil
}

// Result carries the score and the quantities it was built from.
type Result struct {
	Matches   int     `json:"matches"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	FScore    float64 `json:"f_score"`
	Chunks    int     `json:"chunks"`
	Penalty   float64 `json:"frag_penalty"`
	Score     float64 `json:"score"`
}

// MatchSet returns the distinct hypothesis lemmas that match the reference,
// either literally or through a synonym of some reference lemma, in the
// order they first appear in hyp.
func MatchSet(ref, hyp []string, syn SynonymFunc) []string {
	accept := make(map[string]struct{}, len(ref))
	for _, r := range ref {
		accept[r] = struct{}{}
	}
	if syn != nil {
		for _, r := range ref {
			for _, s := range syn(r) {
				accept[s] = struct{}{}
			}
		}
	}

	seen := make(map[string]struct{})
	var matched []string
	for _, h := range hyp {
		if _, ok := accept[h]; !ok {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		matched = append(matched, h)
	}
	return matched
}

// Score computes the fragmentation-penalised F-score of hyp against ref.
// Empty sequences are legitimate and score 0 rather than failing. Synonym
// matches can push recall above 1, so the final score is clamped to [0, 1].
func Score(ref, hyp []string, syn SynonymFunc, p Params) Result {
	var r Result
	r.Matches = len(MatchSet(ref, hyp, syn))

	if len(hyp) > 0 {
		r.Precision = float64(r.Matches) / float64(len(hyp))
	}
	if len(ref) > 0 {
		r.Recall = float64(r.Matches) / float64(len(ref))
	}
	if r.Precision+r.Recall > 0 {
		r.FScore = r.Precision * r.Recall / (p.Alpha*r.Precision + (1-p.Alpha)*r.Recall)
	}

	// Matches gathered in a single contiguous run are not fragmented.
	r.Chunks = Chunks(ref, hyp)
	if r.Matches > 1 && r.Chunks > 1 {
		r.Penalty = p.Gamma * math.Pow(float64(r.Chunks)/float64(r.Matches), p.Beta)
	}

	r.Score = math.Min(math.Max(r.FScore*(1-r.Penalty), 0), 1)
	return r
}

// StaticSynonyms adapts a fixed lemma -> synonyms table to a SynonymFunc.
func StaticSynonyms(table map[string][]string) SynonymFunc {
	return func(lemma string) []string {
		return table[lemma]
	}
}
