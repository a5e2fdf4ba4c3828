package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/lyriceval/internal/evaluation"
	"github.com/lehigh-university-libraries/lyriceval/internal/rhyme"
)

// AggregateResults represents aggregated evaluation metrics for a run
type AggregateResults struct {
	RunID          string    `json:"run_id"`
	EvaluationDate time.Time `json:"evaluation_date"`

	TotalSongs    int `json:"total_songs"`
	SuccessCount  int `json:"success_count"`
	FailureCount  int `json:"failure_count"`
	SemanticSongs int `json:"semantic_songs"`

	RhymeDiff     ScoreStats `json:"rhyme_diff"`
	Meteor        ScoreStats `json:"meteor"`
	MeteorSynonym ScoreStats `json:"meteor_synonym"`
	BLEU          ScoreStats `json:"sacrebleu"`
	ChrF          ScoreStats `json:"chrf"`

	// Tier histogram over counted stanzas
	CountedStanzas int            `json:"counted_stanzas"`
	TierCounts     map[string]int `json:"tier_counts"`

	Results []evaluation.SongResult `json:"results"`
}

// ScoreStats summarises one per-song score
type ScoreStats struct {
	Mean   float64   `json:"mean"`
	Median float64   `json:"median"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
	Scores []float64 `json:"-"`
}

// AggregateSongResults aggregates per-song results. Failed songs are
// counted but excluded from the score statistics; meteor statistics only
// cover songs that had a reference translation.
func AggregateSongResults(results []evaluation.SongResult, runID string) *AggregateResults {
	agg := &AggregateResults{
		RunID:          runID,
		EvaluationDate: time.Now(),
		TotalSongs:     len(results),
		TierCounts:     make(map[string]int),
		Results:        results,
	}

	for _, result := range results {
		if result.Error != "" {
			agg.FailureCount++
			continue
		}

		agg.SuccessCount++
		agg.RhymeDiff.Scores = append(agg.RhymeDiff.Scores, result.RhymeDiff)

		if result.SemanticPairs > 0 {
			agg.SemanticSongs++
			agg.Meteor.Scores = append(agg.Meteor.Scores, result.Meteor)
			agg.MeteorSynonym.Scores = append(agg.MeteorSynonym.Scores, result.MeteorSynonym)
			agg.BLEU.Scores = append(agg.BLEU.Scores, result.BLEU)
			agg.ChrF.Scores = append(agg.ChrF.Scores, result.ChrF)
		}

		for _, st := range result.Stanzas {
			if st.Counted {
				agg.CountedStanzas++
				agg.TierCounts[st.Tier]++
			}
		}
	}

	agg.RhymeDiff.calculate()
	agg.Meteor.calculate()
	agg.MeteorSynonym.calculate()
	agg.BLEU.calculate()
	agg.ChrF.calculate()

	return agg
}

func (s *ScoreStats) calculate() {
	if len(s.Scores) == 0 {
		return
	}

	sorted := append([]float64(nil), s.Scores...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	s.Mean = sum / float64(len(sorted))

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		s.Median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		s.Median = sorted[mid]
	}

	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
}

// PrintSummary prints a human-readable summary of the evaluation
func (a *AggregateResults) PrintSummary() {
	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("LYRIC TRANSLATION EVALUATION SUMMARY")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Run ID: %s\n", a.RunID)
	fmt.Printf("Evaluation Date: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Println()

	fmt.Println("PROCESSING STATISTICS")
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("Total Songs: %d\n", a.TotalSongs)
	fmt.Printf("Successful: %d (%.1f%%)\n", a.SuccessCount, percent(a.SuccessCount, a.TotalSongs))
	fmt.Printf("Failed: %d (%.1f%%)\n", a.FailureCount, percent(a.FailureCount, a.TotalSongs))
	fmt.Printf("With Reference Translation: %d\n", a.SemanticSongs)
	fmt.Println()

	fmt.Println("RHYME")
	fmt.Println(strings.Repeat("-", 70))
	printScoreStats("Rhyme Divergence (lower is better)", a.RhymeDiff)
	fmt.Printf("\nCounted Stanzas: %d\n", a.CountedStanzas)
	for _, tier := range rhyme.Tiers {
		n := a.TierCounts[tier.String()]
		fmt.Printf("  %-8s %d (%.1f%%)\n", tier.String()+":", n, percent(n, a.CountedStanzas))
	}
	fmt.Println()

	fmt.Println("MEANING")
	fmt.Println(strings.Repeat("-", 70))
	printScoreStats("METEOR", a.Meteor)
	printScoreStats("METEOR + Synonyms", a.MeteorSynonym)
	printScoreStats("BLEU (0-100)", a.BLEU)
	printScoreStats("chrF (0-100)", a.ChrF)
	fmt.Println(strings.Repeat("=", 70))
}

func printScoreStats(name string, stats ScoreStats) {
	fmt.Printf("\n%s:\n", name)
	fmt.Printf("  Mean:   %.3f\n", stats.Mean)
	fmt.Printf("  Median: %.3f\n", stats.Median)
	fmt.Printf("  Min:    %.3f\n", stats.Min)
	fmt.Printf("  Max:    %.3f\n", stats.Max)
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// SaveToJSON saves the aggregate results to a JSON file
func (a *AggregateResults) SaveToJSON(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(a); err != nil {
		return fmt.Errorf("failed to encode results to JSON: %w", err)
	}

	return nil
}

// SaveDetailedReport saves a detailed report with individual results
func (a *AggregateResults) SaveDetailedReport(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "LYRIC TRANSLATION EVALUATION DETAILED REPORT\n")
	fmt.Fprintf(file, "Generated: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(file, "Run ID: %s\n", a.RunID)
	separator := strings.Repeat("=", 80)
	fmt.Fprintf(file, "%s\n\n", separator)

	dash := strings.Repeat("-", 80)
	for _, result := range a.Results {
		fmt.Fprintf(file, "SONG %d: %s\n", result.Index, result.Title)
		fmt.Fprintf(file, "%s\n", dash)

		if result.Error != "" {
			fmt.Fprintf(file, "ERROR: %s\n", result.Error)
			fmt.Fprintf(file, "\n%s\n\n", separator)
			continue
		}

		fmt.Fprintf(file, "Rhyme Divergence: %.3f (%d counted stanzas)\n", result.RhymeDiff, result.CountedStanzas)
		if result.SemanticPairs > 0 {
			fmt.Fprintf(file, "METEOR: %.3f, METEOR + Synonyms: %.3f (%d line pairs)\n",
				result.Meteor, result.MeteorSynonym, result.SemanticPairs)
			fmt.Fprintf(file, "BLEU: %.2f, chrF: %.2f\n", result.BLEU, result.ChrF)
		}

		if len(result.Stanzas) > 0 {
			fmt.Fprintf(file, "\nStanzas:\n")
			for _, st := range result.Stanzas {
				marker := ""
				if !st.Counted {
					marker = " (no rhyme in original, skipped)"
				}
				fmt.Fprintf(file, "  %2d  %-12s %-12s %s%s\n",
					st.Index+1, st.Reference, st.Hypothesis, st.Tier, marker)
			}
		}

		fmt.Fprintf(file, "\n%s\n\n", separator)
	}

	return nil
}
