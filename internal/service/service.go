// Package service wires the lookup collaborators, caches and telemetry into
// a ready-to-use Evaluator from a Config.
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/lyriceval/internal/abair"
	"github.com/lehigh-university-libraries/lyriceval/internal/cache"
	"github.com/lehigh-university-libraries/lyriceval/internal/cmudict"
	"github.com/lehigh-university-libraries/lyriceval/internal/config"
	"github.com/lehigh-university-libraries/lyriceval/internal/evaluation"
	"github.com/lehigh-university-libraries/lyriceval/internal/telemetry"
	"github.com/lehigh-university-libraries/lyriceval/internal/thesaurus"
	"github.com/lehigh-university-libraries/lyriceval/internal/udpipe"
)

// Options adjust how the service is assembled.
type Options struct {
	// NoSynonyms disables synonym matching and prefetching.
	NoSynonyms bool
}

// Service owns the collaborators of one process.
type Service struct {
	Config     config.Config
	Metrics    *telemetry.Metrics
	Evaluator  *evaluation.Evaluator
	Dictionary *cmudict.Dict
	Phonetiser *abair.Client
	Lemmatizer *udpipe.Client
	Thesaurus  *thesaurus.Client

	phonetics *cache.Cache[json.RawMessage]
	synonyms  *cache.Cache[[]string]
}

// New loads the pronouncing dictionary, opens both caches and builds the
// evaluator.
func New(cfg config.Config, opts Options) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	m := telemetry.New()

	dict, err := cmudict.LoadFile(cfg.CMUDictPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load pronouncing dictionary: %w", err)
	}
	slog.Debug("Pronouncing dictionary loaded", "path", cfg.CMUDictPath, "words", dict.Len())

	phonetics, err := cache.Open[json.RawMessage](cfg.Cache.Phonetics,
		cache.WithName("phonetics"), cache.WithObserver(m))
	if err != nil {
		return nil, err
	}
	synonyms, err := cache.Open[[]string](cfg.Cache.Synonyms,
		cache.WithName("synonyms"), cache.WithObserver(m))
	if err != nil {
		return nil, err
	}

	phonetiser := abair.NewClient(cfg.Services.AbairURL, phonetics, cfg.HTTPTimeout)
	phonetiser.SetObserver(m)

	lemmatizer := udpipe.NewClient(cfg.Services.UDPipeURL, cfg.Services.UDPipeModel, cfg.HTTPTimeout)

	thes := thesaurus.NewClient(cfg.Services.ThesaurusURL, synonyms, lemmatizer, cfg.HTTPTimeout)
	thes.Workers = cfg.PrefetchWorkers
	thes.SetObserver(m)

	ev := &evaluation.Evaluator{
		Source:     dict,
		Target:     phonetiser,
		Lemmatizer: lemmatizer,
		Params:     cfg.Scorer,
		Retry: evaluation.RetryPolicy{
			Attempts:        cfg.RetryAttempts,
			InitialInterval: 500 * time.Millisecond,
		},
		Recorder: m,
	}
	if !opts.NoSynonyms {
		ev.Synonyms = thes.Synonyms
		ev.Prefetcher = thes
	}

	return &Service{
		Config:     cfg,
		Metrics:    m,
		Evaluator:  ev,
		Dictionary: dict,
		Phonetiser: phonetiser,
		Lemmatizer: lemmatizer,
		Thesaurus:  thes,
		phonetics:  phonetics,
		synonyms:   synonyms,
	}, nil
}

// Close flushes both caches.
func (s *Service) Close() error {
	return errors.Join(s.phonetics.Close(), s.synonyms.Close())
}
