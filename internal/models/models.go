package models

import (
	"time"

	"github.com/lehigh-university-libraries/lyriceval/internal/eval/dataset"
	"github.com/lehigh-university-libraries/lyriceval/internal/eval/metrics"
	"github.com/lehigh-university-libraries/lyriceval/internal/evaluation"
	"github.com/lehigh-university-libraries/lyriceval/internal/meteor"
)

// EvaluationRun is one batch evaluation submitted through the API
type EvaluationRun struct {
	ID        string                    `json:"id"`
	CreatedAt time.Time                 `json:"created_at"`
	Songs     int                       `json:"songs"`
	Results   []evaluation.SongResult   `json:"results"`
	Summary   *metrics.AggregateResults `json:"summary,omitempty"`
}

// RunRequest submits songs for evaluation
type RunRequest struct {
	Songs []dataset.SongRecord `json:"songs"`
}

// RhymeRequest compares either two literal schemes or two stanzas
type RhymeRequest struct {
	ReferenceScheme  string   `json:"reference_scheme,omitempty"`
	HypothesisScheme string   `json:"hypothesis_scheme,omitempty"`
	Reference        []string `json:"reference,omitempty"`
	Hypothesis       []string `json:"hypothesis,omitempty"`
}

// RhymeResponse reports the schemes and their match tier
type RhymeResponse struct {
	ReferenceScheme  string  `json:"reference_scheme"`
	HypothesisScheme string  `json:"hypothesis_scheme"`
	Tier             string  `json:"tier"`
	Weight           float64 `json:"weight"`
	RhymePresent     bool    `json:"rhyme_present"`
}

// MeteorRequest scores a lemma sequence pair
type MeteorRequest struct {
	Reference  []string            `json:"reference"`
	Hypothesis []string            `json:"hypothesis"`
	Synonyms   map[string][]string `json:"synonyms,omitempty"`
	Params     *meteor.Params      `json:"params,omitempty"`
}
