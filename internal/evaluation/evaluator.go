// Package evaluation drives rhyme and semantic scoring over whole songs. It
// owns lookups against the phoneme, lemma and synonym collaborators,
// retrying transient failures, while the scoring packages stay pure.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/lehigh-university-libraries/lyriceval/internal/abair"
	"github.com/lehigh-university-libraries/lyriceval/internal/cmudict"
	"github.com/lehigh-university-libraries/lyriceval/internal/corpus"
	"github.com/lehigh-university-libraries/lyriceval/internal/meteor"
	"github.com/lehigh-university-libraries/lyriceval/internal/ngram"
	"github.com/lehigh-university-libraries/lyriceval/internal/phonetic"
	"github.com/lehigh-university-libraries/lyriceval/internal/rhyme"
)

// ErrLookupMiss marks a word the phoneme source cannot transcribe. Misses
// are never retried; the line simply has no rhyme candidates.
var ErrLookupMiss = errors.New("lookup miss")

// PhonemeSource returns the candidate rhyme tails of a word.
type PhonemeSource interface {
	RhymeTails(ctx context.Context, word string) ([]phonetic.Tail, error)
}

// Lemmatizer reduces a line of text to its lemmas.
type Lemmatizer interface {
	Lemmas(ctx context.Context, text string) ([]string, error)
}

// SynonymPrefetcher warms the synonym lookup for a batch of lemmas.
type SynonymPrefetcher interface {
	Prefetch(ctx context.Context, lemmas []string) error
}

// Recorder receives scoring events.
type Recorder interface {
	StanzaScored(tier string)
	SongEvaluated()
}

// RetryPolicy bounds retries of network-backed lookups.
type RetryPolicy struct {
	Attempts        int
	InitialInterval time.Duration
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		eb.InitialInterval = p.InitialInterval
	}
	attempts := p.Attempts
	if attempts < 0 {
		attempts = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(attempts)), ctx)
}

// Evaluator scores songs. Source transcribes original-language words and
// Target transcribes translation words. A nil Lemmatizer falls back to
// lower-cased word tokens; nil Synonyms disables synonym matching.
type Evaluator struct {
	Source     PhonemeSource
	Target     PhonemeSource
	Lemmatizer Lemmatizer
	Synonyms   meteor.SynonymFunc
	Prefetcher SynonymPrefetcher
	Params     meteor.Params
	Retry      RetryPolicy
	Recorder   Recorder
}

// Song is one aligned song. Original and Translation are compared for
// rhyme; Translation is scored against Reference for meaning when a
// reference translation is available.
type Song struct {
	Index       int
	Title       string
	Original    string
	Translation string
	Reference   string
}

// StanzaScheme labels the rhyme scheme of one stanza. Lines whose last word
// cannot be transcribed get no candidates.
func (e *Evaluator) StanzaScheme(ctx context.Context, lines []string, lang rhyme.Language) (rhyme.Scheme, error) {
	src := e.Source
	if lang == rhyme.Target {
		src = e.Target
	}
	if src == nil {
		return nil, fmt.Errorf("no phoneme source for %s language", lang)
	}

	candidates := make([]rhyme.Line, len(lines))
	for i, line := range lines {
		word := corpus.LastWord(line)
		if word == "" {
			continue
		}

		tails, err := e.rhymeTails(ctx, src, word)
		if err != nil {
			if errors.Is(err, ErrLookupMiss) {
				slog.Debug("No phonemes for word", "word", word, "language", lang.String())
				continue
			}
			return nil, fmt.Errorf("failed to look up %q: %w", word, err)
		}
		candidates[i] = tails
	}

	return rhyme.NewLabeler(lang).Label(candidates)
}

func (e *Evaluator) rhymeTails(ctx context.Context, src PhonemeSource, word string) ([]phonetic.Tail, error) {
	var tails []phonetic.Tail
	err := e.retry(ctx, "phonemes", func() error {
		var err error
		tails, err = src.RhymeTails(ctx, word)
		return classify(err)
	})
	return tails, err
}

// RhymeDivergence pairs the stanzas of two songs, labels both sides and
// folds the per-stanza tiers into the song divergence.
func (e *Evaluator) RhymeDivergence(ctx context.Context, original, translation string) (*RhymeResult, error) {
	refStanzas := corpus.SplitStanzas(original)
	hypStanzas := corpus.SplitStanzas(translation)
	if len(refStanzas) != len(hypStanzas) {
		return nil, fmt.Errorf("%w: %d original stanzas, %d translated stanzas",
			rhyme.ErrLengthMismatch, len(refStanzas), len(hypStanzas))
	}

	var score rhyme.SongScore
	result := &RhymeResult{Stanzas: make([]StanzaResult, 0, len(refStanzas))}

	for i := range refStanzas {
		if len(refStanzas[i]) != len(hypStanzas[i]) {
			return nil, fmt.Errorf("stanza %d: %w: %d original lines, %d translated lines",
				i, rhyme.ErrLengthMismatch, len(refStanzas[i]), len(hypStanzas[i]))
		}

		ref, err := e.StanzaScheme(ctx, refStanzas[i], rhyme.Source)
		if err != nil {
			return nil, fmt.Errorf("stanza %d: %w", i, err)
		}
		hyp, err := e.StanzaScheme(ctx, hypStanzas[i], rhyme.Target)
		if err != nil {
			return nil, fmt.Errorf("stanza %d: %w", i, err)
		}

		tier, counted, err := score.Add(ref, hyp)
		if err != nil {
			return nil, fmt.Errorf("stanza %d: %w", i, err)
		}
		if counted && e.Recorder != nil {
			e.Recorder.StanzaScored(tier.String())
		}

		result.Stanzas = append(result.Stanzas, StanzaResult{
			Index:      i,
			Reference:  ref.String(),
			Hypothesis: hyp.String(),
			Tier:       tier.String(),
			Counted:    counted,
		})
	}

	result.Counted = score.Counted()
	result.Divergence = score.Divergence()
	return result, nil
}

// SemanticFidelity scores aligned line pairs with METEOR, with and without
// synonyms, and with BLEU and chrF, and averages each over the song. Pairs where both lines are blank separate
// stanzas and are not scored.
func (e *Evaluator) SemanticFidelity(ctx context.Context, refLines, hypLines []string) (*SemanticResult, error) {
	if len(refLines) != len(hypLines) {
		return nil, fmt.Errorf("%w: %d reference lines, %d translated lines",
			rhyme.ErrLengthMismatch, len(refLines), len(hypLines))
	}

	type pair struct {
		index    int
		ref, hyp []string
	}
	var pairs []pair
	var refLemmas []string

	for i := range refLines {
		if strings.TrimSpace(refLines[i]) == "" && strings.TrimSpace(hypLines[i]) == "" {
			continue
		}
		ref, err := e.lemmas(ctx, refLines[i])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		hyp, err := e.lemmas(ctx, hypLines[i])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		pairs = append(pairs, pair{index: i, ref: ref, hyp: hyp})
		refLemmas = append(refLemmas, ref...)
	}

	if e.Prefetcher != nil && e.Synonyms != nil && len(refLemmas) > 0 {
		err := e.retry(ctx, "synonyms", func() error {
			return e.Prefetcher.Prefetch(ctx, refLemmas)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to prefetch synonyms: %w", err)
		}
	}

	result := &SemanticResult{Lines: make([]LineScore, 0, len(pairs))}
	var sum LineScore
	for _, p := range pairs {
		line := LineScore{
			Index:         p.index,
			Meteor:        meteor.Score(p.ref, p.hyp, nil, e.Params).Score,
			MeteorSynonym: meteor.Score(p.ref, p.hyp, e.Synonyms, e.Params).Score,
			BLEU:          ngram.BLEU(p.ref, p.hyp),
			ChrF:          ngram.ChrF(strings.Join(p.ref, " "), strings.Join(p.hyp, " ")),
		}
		sum.Meteor += line.Meteor
		sum.MeteorSynonym += line.MeteorSynonym
		sum.BLEU += line.BLEU
		sum.ChrF += line.ChrF
		result.Lines = append(result.Lines, line)
	}

	result.Pairs = len(pairs)
	if result.Pairs > 0 {
		n := float64(result.Pairs)
		result.Meteor = sum.Meteor / n
		result.MeteorSynonym = sum.MeteorSynonym / n
		result.BLEU = sum.BLEU / n
		result.ChrF = sum.ChrF / n
	}
	return result, nil
}

func (e *Evaluator) lemmas(ctx context.Context, line string) ([]string, error) {
	if e.Lemmatizer == nil {
		return tokenize(line), nil
	}
	var lemmas []string
	err := e.retry(ctx, "lemmas", func() error {
		var err error
		lemmas, err = e.Lemmatizer.Lemmas(ctx, line)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to lemmatize: %w", err)
	}
	for i, l := range lemmas {
		lemmas[i] = corpus.Normalize(l)
	}
	return lemmas, nil
}

// EvaluateSong runs both analyses for one song.
func (e *Evaluator) EvaluateSong(ctx context.Context, song Song) (*SongResult, error) {
	result := &SongResult{Index: song.Index, Title: song.Title}

	rr, err := e.RhymeDivergence(ctx, song.Original, song.Translation)
	if err != nil {
		return nil, fmt.Errorf("rhyme: %w", err)
	}
	result.RhymeDiff = rr.Divergence
	result.CountedStanzas = rr.Counted
	result.Stanzas = rr.Stanzas

	if strings.TrimSpace(song.Reference) != "" {
		sr, err := e.SemanticFidelity(ctx, corpus.Lines(song.Reference), corpus.Lines(song.Translation))
		if err != nil {
			return nil, fmt.Errorf("semantic: %w", err)
		}
		result.Meteor = sr.Meteor
		result.MeteorSynonym = sr.MeteorSynonym
		result.BLEU = sr.BLEU
		result.ChrF = sr.ChrF
		result.SemanticPairs = sr.Pairs
	}

	if e.Recorder != nil {
		e.Recorder.SongEvaluated()
	}
	return result, nil
}

// Run evaluates songs with at most workers in flight and returns results in
// input order. Songs whose stanzas or lines do not align are recorded with
// an error; any other failure aborts the batch.
func (e *Evaluator) Run(ctx context.Context, songs []Song, workers int) ([]SongResult, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]SongResult, len(songs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, song := range songs {
		g.Go(func() error {
			slog.Info("Processing song", "index", song.Index, "title", song.Title,
				"progress", fmt.Sprintf("%d/%d", i+1, len(songs)))

			res, err := e.EvaluateSong(gctx, song)
			if err != nil {
				if errors.Is(err, rhyme.ErrLengthMismatch) {
					slog.Warn("Song is misaligned", "index", song.Index, "error", err)
					results[i] = SongResult{Index: song.Index, Title: song.Title, Error: err.Error()}
					return nil
				}
				return fmt.Errorf("song %d: %w", song.Index, err)
			}
			results[i] = *res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Evaluator) retry(ctx context.Context, what string, op func() error) error {
	return backoff.RetryNotify(func() error {
		err := op()
		if errors.Is(err, ErrLookupMiss) {
			return backoff.Permanent(err)
		}
		return err
	}, e.Retry.backOff(ctx), func(err error, wait time.Duration) {
		slog.Warn("Lookup failed, retrying", "lookup", what, "error", err, "wait", wait)
	})
}

// classify tags collaborator errors that mean "no transcription" as
// lookup misses.
func classify(err error) error {
	if err == nil || errors.Is(err, ErrLookupMiss) {
		return err
	}
	if errors.Is(err, cmudict.ErrNotFound) || errors.Is(err, abair.ErrNoPhonemes) {
		return fmt.Errorf("%w: %w", ErrLookupMiss, err)
	}
	return err
}

func tokenize(line string) []string {
	var tokens []string
	for _, f := range strings.Fields(corpus.Normalize(line)) {
		f = strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
