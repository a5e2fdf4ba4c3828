package evalcmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/lehigh-university-libraries/lyriceval/internal/eval/metrics"
	"github.com/lehigh-university-libraries/lyriceval/internal/evaluation"
)

func executeReport(w io.Writer, resultsPath, format string) error {
	results, err := evaluation.LoadSongResults(resultsPath)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	switch format {
	case "text":
		return printTextReport(w, results)
	case "json":
		return printJSONReport(w, results)
	case "csv":
		return printCSVReport(w, results)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTextReport(w io.Writer, results []evaluation.SongResult) error {
	aggregated := metrics.AggregateSongResults(results, "")
	aggregated.PrintSummary()

	fmt.Fprintln(w, "\nDetailed Results:")
	fmt.Fprintln(w, "========================================")

	for _, result := range results {
		fmt.Fprintf(w, "\n[%d] %s\n", result.Index, result.Title)

		if result.Error != "" {
			fmt.Fprintf(w, "  ❌ Error: %s\n", result.Error)
			continue
		}

		fmt.Fprintf(w, "  Rhyme divergence: %.3f (%d counted stanzas)\n", result.RhymeDiff, result.CountedStanzas)
		if result.SemanticPairs > 0 {
			fmt.Fprintf(w, "  METEOR:           %.3f\n", result.Meteor)
			fmt.Fprintf(w, "  METEOR+synonyms:  %.3f\n", result.MeteorSynonym)
			fmt.Fprintf(w, "  BLEU:             %.2f\n", result.BLEU)
			fmt.Fprintf(w, "  chrF:             %.2f\n", result.ChrF)
		}
		for _, s := range result.Stanzas {
			if !s.Counted {
				continue
			}
			fmt.Fprintf(w, "    stanza %d: %s -> %s %s\n", s.Index+1, s.Reference, s.Hypothesis, s.Tier)
		}
	}

	return nil
}

func printJSONReport(w io.Writer, results []evaluation.SongResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metrics.AggregateSongResults(results, ""))
}

func printCSVReport(w io.Writer, results []evaluation.SongResult) error {
	writer := csv.NewWriter(w)

	header := []string{"Index", "Title", "Rhyme Diff", "Counted Stanzas", "METEOR", "METEOR Synonym", "BLEU", "chrF", "Semantic Pairs", "Error"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, result := range results {
		row := []string{
			strconv.Itoa(result.Index),
			result.Title,
			fmt.Sprintf("%.4f", result.RhymeDiff),
			strconv.Itoa(result.CountedStanzas),
			fmt.Sprintf("%.4f", result.Meteor),
			fmt.Sprintf("%.4f", result.MeteorSynonym),
			fmt.Sprintf("%.2f", result.BLEU),
			fmt.Sprintf("%.2f", result.ChrF),
			strconv.Itoa(result.SemanticPairs),
			result.Error,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
