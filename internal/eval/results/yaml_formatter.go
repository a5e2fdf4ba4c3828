package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/lyriceval/internal/evaluation"
	"github.com/lehigh-university-libraries/lyriceval/internal/meteor"
)

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	RunID       string        `yaml:"runid"`
	DatasetPath string        `yaml:"datasetpath"`
	SampleSize  int           `yaml:"samplesize"`
	Synonyms    bool          `yaml:"synonyms"`
	Params      meteor.Params `yaml:"params"`
	Timestamp   string        `yaml:"timestamp"`
}

// EvalResult represents a single song's row
type EvalResult struct {
	Index          int      `yaml:"index"`
	Title          string   `yaml:"title,omitempty"`
	RhymeDiff      float64  `yaml:"rhymediff"`
	Meteor         float64  `yaml:"meteor"`
	MeteorSynonym  float64  `yaml:"meteorsynonym"`
	BLEU           float64  `yaml:"sacrebleu"`
	ChrF           float64  `yaml:"chrf"`
	CountedStanzas int      `yaml:"countedstanzas"`
	Schemes        []string `yaml:"schemes,omitempty"`
}

// EvalSpec represents the complete evaluation specification
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Results []EvalResult `yaml:"results"`
}

// SaveToYAML writes the run configuration and per-song rows to
// dir/<run id>-<timestamp>.yaml and returns the file path. Failed songs are
// left out.
func SaveToYAML(dir string, cfg EvalConfig, results []evaluation.SongResult) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create evals directory: %w", err)
	}

	if cfg.Timestamp == "" {
		cfg.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}

	spec := EvalSpec{
		Config:  cfg,
		Results: make([]EvalResult, 0, len(results)),
	}

	for _, r := range results {
		if r.Error != "" {
			continue
		}

		row := EvalResult{
			Index:          r.Index,
			Title:          r.Title,
			RhymeDiff:      r.RhymeDiff,
			Meteor:         r.Meteor,
			MeteorSynonym:  r.MeteorSynonym,
			BLEU:           r.BLEU,
			ChrF:           r.ChrF,
			CountedStanzas: r.CountedStanzas,
		}
		for _, st := range r.Stanzas {
			row.Schemes = append(row.Schemes, fmt.Sprintf("%s -> %s (%s)", st.Reference, st.Hypothesis, st.Tier))
		}

		spec.Results = append(spec.Results, row)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", cfg.RunID, cfg.Timestamp))

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return filename, nil
}
