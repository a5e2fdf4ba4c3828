package evalcmd

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lehigh-university-libraries/lyriceval/internal/config"
	"github.com/lehigh-university-libraries/lyriceval/internal/corpus"
	"github.com/lehigh-university-libraries/lyriceval/internal/service"
)

func executePrefetch(ctx context.Context, cfg config.Config, src corpusFlags) (err error) {
	records, err := loadSongs(src, 0)
	if err != nil {
		return err
	}

	svc, err := service.New(cfg, service.Options{})
	if err != nil {
		return fmt.Errorf("failed to initialise evaluator: %w", err)
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	seen := make(map[string]bool)
	for _, record := range records {
		for _, line := range corpus.Lines(record.Reference) {
			if line == "" {
				continue
			}
			lemmas, err := svc.Lemmatizer.Lemmas(ctx, line)
			if err != nil {
				return fmt.Errorf("failed to lemmatise %q: %w", record.Title, err)
			}
			for _, l := range lemmas {
				seen[corpus.Normalize(l)] = true
			}
		}
	}
	delete(seen, "")

	if len(seen) == 0 {
		slog.Warn("No reference translations to prefetch synonyms for")
		return nil
	}

	lemmas := make([]string, 0, len(seen))
	for l := range seen {
		lemmas = append(lemmas, l)
	}
	sort.Strings(lemmas)

	slog.Info("Prefetching synonyms", "lemmas", len(lemmas), "workers", cfg.PrefetchWorkers)
	if err := svc.Thesaurus.Prefetch(ctx, lemmas); err != nil {
		slog.Warn("Some synonym lookups failed; rerun to retry them", "error", err)
	}

	fmt.Printf("Synonym cache warmed for %d lemmas\n", len(lemmas))
	return nil
}
