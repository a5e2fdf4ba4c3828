package results

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/lehigh-university-libraries/lyriceval/internal/evaluation"
)

// SongRow is the flat per-song row written to Parquet.
type SongRow struct {
	Index          int64   `parquet:"index"`
	Title          string  `parquet:"title"`
	RhymeDiff      float64 `parquet:"rhyme_diff"`
	Meteor         float64 `parquet:"meteor"`
	MeteorSynonym  float64 `parquet:"meteor_synonym"`
	BLEU           float64 `parquet:"sacrebleu"`
	ChrF           float64 `parquet:"chrf"`
	SemanticPairs  int64   `parquet:"semantic_pairs"`
	CountedStanzas int64   `parquet:"counted_stanzas"`
	Error          string  `parquet:"error"`
}

// SaveToParquet writes one row per song to path.
func SaveToParquet(path string, results []evaluation.SongResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rows := make([]SongRow, len(results))
	for i, r := range results {
		rows[i] = SongRow{
			Index:          int64(r.Index),
			Title:          r.Title,
			RhymeDiff:      r.RhymeDiff,
			Meteor:         r.Meteor,
			MeteorSynonym:  r.MeteorSynonym,
			BLEU:           r.BLEU,
			ChrF:           r.ChrF,
			SemanticPairs:  int64(r.SemanticPairs),
			CountedStanzas: int64(r.CountedStanzas),
			Error:          r.Error,
		}
	}

	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("failed to write parquet file: %w", err)
	}
	return nil
}
