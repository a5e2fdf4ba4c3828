package evalcmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/lyriceval/internal/config"
	"github.com/lehigh-university-libraries/lyriceval/internal/eval/dataset"
	"github.com/lehigh-university-libraries/lyriceval/internal/eval/metrics"
	resultsutil "github.com/lehigh-university-libraries/lyriceval/internal/eval/results"
	"github.com/lehigh-university-libraries/lyriceval/internal/evaluation"
	"github.com/lehigh-university-libraries/lyriceval/internal/service"
)

type runOptions struct {
	corpus      corpusFlags
	output      string
	summary     string
	report      string
	evalsDir    string
	parquet     string
	metricsFile string
	workers     int
	sample      int
	noSynonyms  bool
}

func loadSongs(f corpusFlags, sample int) ([]dataset.SongRecord, error) {
	var loader *dataset.Loader
	if f.dataset != "" {
		loader = dataset.NewLoader(f.dataset)
	} else {
		loader = dataset.NewTextLoader(f.original, f.translation, f.reference)
	}

	records, err := loader.LoadSample(sample)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	slog.Info("Dataset loaded", "source", f.source(), "songs", len(records))
	return records, nil
}

func executeRun(ctx context.Context, cfg config.Config, opts runOptions) (err error) {
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	runID := uuid.NewString()

	slog.Info("Starting evaluation run",
		"run_id", runID,
		"source", opts.corpus.source(),
		"sample_size", opts.sample,
		"workers", cfg.Workers,
		"synonyms", !opts.noSynonyms)

	records, err := loadSongs(opts.corpus, opts.sample)
	if err != nil {
		return err
	}

	svc, err := service.New(cfg, service.Options{NoSynonyms: opts.noSynonyms})
	if err != nil {
		return fmt.Errorf("failed to initialise evaluator: %w", err)
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			slog.Error("Unable to flush caches", "err", cerr)
			if err == nil {
				err = cerr
			}
		}
	}()

	results, err := svc.Evaluator.Run(ctx, dataset.Songs(records), cfg.Workers)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	slog.Info("Saving results", "output", opts.output)
	if err := evaluation.SaveSongResults(opts.output, results); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	aggregated := metrics.AggregateSongResults(results, runID)
	aggregated.PrintSummary()

	if opts.summary != "" {
		if err := aggregated.SaveToJSON(opts.summary); err != nil {
			slog.Warn("Failed to save summary", "path", opts.summary, "error", err)
		}
	}
	if opts.report != "" {
		if err := aggregated.SaveDetailedReport(opts.report); err != nil {
			slog.Warn("Failed to save detailed report", "path", opts.report, "error", err)
		}
	}
	if opts.evalsDir != "" {
		path, err := resultsutil.SaveToYAML(opts.evalsDir, resultsutil.EvalConfig{
			RunID:       runID,
			DatasetPath: opts.corpus.source(),
			SampleSize:  opts.sample,
			Synonyms:    !opts.noSynonyms,
			Params:      cfg.Scorer,
		}, results)
		if err != nil {
			slog.Warn("Failed to save YAML results", "error", err)
		} else {
			slog.Info("YAML results saved", "path", path)
		}
	}
	if opts.parquet != "" {
		if err := resultsutil.SaveToParquet(opts.parquet, results); err != nil {
			slog.Warn("Failed to save parquet results", "path", opts.parquet, "error", err)
		}
	}
	if opts.metricsFile != "" {
		if err := svc.Metrics.WriteTextfile(opts.metricsFile); err != nil {
			slog.Warn("Failed to write metrics", "path", opts.metricsFile, "error", err)
		}
	}

	fmt.Printf("\nResults saved to: %s\n", opts.output)
	fmt.Printf("\nGenerate a report with:\n")
	fmt.Printf("  lyriceval eval report --results %s\n", opts.output)

	slog.Info("Evaluation complete", "run_id", runID)
	return nil
}
