package evaluation

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/lyriceval/internal/abair"
	"github.com/lehigh-university-libraries/lyriceval/internal/cmudict"
	"github.com/lehigh-university-libraries/lyriceval/internal/meteor"
	"github.com/lehigh-university-libraries/lyriceval/internal/phonetic"
	"github.com/lehigh-university-libraries/lyriceval/internal/rhyme"
)

// fakeSource serves tails from a table; unknown words are misses.
type fakeSource struct {
	tails map[string][]string
	miss  error

	mu    sync.Mutex
	calls map[string]int
}

func newFakeSource(miss error, tails map[string][]string) *fakeSource {
	return &fakeSource{tails: tails, miss: miss, calls: make(map[string]int)}
}

func (f *fakeSource) RhymeTails(_ context.Context, word string) ([]phonetic.Tail, error) {
	f.mu.Lock()
	f.calls[word]++
	f.mu.Unlock()

	keys, ok := f.tails[word]
	if !ok {
		return nil, f.miss
	}
	out := make([]phonetic.Tail, len(keys))
	for i, k := range keys {
		out[i] = phonetic.Parse(k)
	}
	return out, nil
}

func (f *fakeSource) count(word string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[word]
}

// flakySource fails a fixed number of times before answering.
type flakySource struct {
	failures int
	calls    int
}

func (f *flakySource) RhymeTails(_ context.Context, word string) ([]phonetic.Tail, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, abair.ErrService
	}
	return []phonetic.Tail{phonetic.Parse("a:")}, nil
}

type recordingPrefetcher struct {
	lemmas []string
}

func (r *recordingPrefetcher) Prefetch(_ context.Context, lemmas []string) error {
	r.lemmas = append(r.lemmas, lemmas...)
	return nil
}

type countingRecorder struct {
	mu    sync.Mutex
	tiers map[string]int
	songs int
}

func (c *countingRecorder) StanzaScored(tier string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tiers == nil {
		c.tiers = make(map[string]int)
	}
	c.tiers[tier]++
}

func (c *countingRecorder) SongEvaluated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.songs++
}

func newEvaluator() *Evaluator {
	return &Evaluator{
		Source: newFakeSource(cmudict.ErrNotFound, map[string][]string{
			"day":   {"EY1"},
			"way":   {"EY1"},
			"night": {"AY1 T"},
			"light": {"AY1 T"},
		}),
		Target: newFakeSource(abair.ErrNoPhonemes, map[string][]string{
			"lá":    {"a:"},
			"ghrá":  {"a:"},
			"mór":   {"o: n"},
			"oíche": {"i: x' @"},
			"líche": {"i: x' @"},
		}),
		Params: meteor.DefaultParams(),
		Retry:  RetryPolicy{Attempts: 2, InitialInterval: time.Millisecond},
	}
}

func TestStanzaScheme(t *testing.T) {
	e := newEvaluator()
	ctx := context.Background()

	tests := []struct {
		name  string
		lines []string
		lang  rhyme.Language
		want  string
	}{
		{"source couplets", []string{"a bright day", "on the way", "in the night,", "see the light"}, rhyme.Source, "AABB"},
		{"target couplets", []string{"ar an lá", "mo ghrá", "san oíche", "an líche"}, rhyme.Target, "AABB"},
		{"unknown word", []string{"a day", "xyzzy", "the way"}, rhyme.Source, "ABA"},
		{"blank line", []string{"a day", "", "the way"}, rhyme.Source, "ABA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.StanzaScheme(ctx, tt.lines, tt.lang)
			if err != nil {
				t.Fatalf("StanzaScheme() error = %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("StanzaScheme() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMissesAreNotRetried(t *testing.T) {
	e := newEvaluator()
	src := e.Source.(*fakeSource)

	if _, err := e.StanzaScheme(context.Background(), []string{"xyzzy"}, rhyme.Source); err != nil {
		t.Fatalf("StanzaScheme() error = %v", err)
	}
	if got := src.count("xyzzy"); got != 1 {
		t.Errorf("lookup calls = %d, want 1", got)
	}
}

func TestServiceFailuresAreRetried(t *testing.T) {
	ctx := context.Background()

	src := &flakySource{failures: 2}
	e := &Evaluator{Target: src, Retry: RetryPolicy{Attempts: 3, InitialInterval: time.Millisecond}}
	if _, err := e.StanzaScheme(ctx, []string{"lá"}, rhyme.Target); err != nil {
		t.Fatalf("StanzaScheme() error = %v", err)
	}
	if src.calls != 3 {
		t.Errorf("calls = %d, want 3", src.calls)
	}

	src = &flakySource{failures: 5}
	e = &Evaluator{Target: src, Retry: RetryPolicy{Attempts: 1, InitialInterval: time.Millisecond}}
	_, err := e.StanzaScheme(ctx, []string{"lá"}, rhyme.Target)
	if !errors.Is(err, abair.ErrService) {
		t.Errorf("StanzaScheme() error = %v, want ErrService", err)
	}
	if src.calls != 2 {
		t.Errorf("calls = %d, want 2", src.calls)
	}
}

func TestRhymeDivergence(t *testing.T) {
	e := newEvaluator()
	rec := &countingRecorder{}
	e.Recorder = rec

	original := "a day\nthe way\nat night\nthe light\n\na day\nat night"
	translation := "ar an lá\ncnoc mór\nsan oíche\nan líche\n\nlá\noíche"

	res, err := e.RhymeDivergence(context.Background(), original, translation)
	if err != nil {
		t.Fatalf("RhymeDivergence() error = %v", err)
	}

	if len(res.Stanzas) != 2 {
		t.Fatalf("stanzas = %d, want 2", len(res.Stanzas))
	}
	first := res.Stanzas[0]
	if first.Reference != "AABB" || first.Hypothesis != "ABCC" || first.Tier != "PARTIAL" || !first.Counted {
		t.Errorf("stanza 0 = %+v", first)
	}
	if res.Stanzas[1].Counted {
		t.Error("stanza without a repeated reference label should not be counted")
	}
	if res.Counted != 1 {
		t.Errorf("Counted = %d, want 1", res.Counted)
	}
	if math.Abs(res.Divergence-0.6) > 1e-9 {
		t.Errorf("Divergence = %v, want 0.6", res.Divergence)
	}
	if rec.tiers["PARTIAL"] != 1 || len(rec.tiers) != 1 {
		t.Errorf("recorded tiers = %v", rec.tiers)
	}
}

func TestRhymeDivergenceMismatch(t *testing.T) {
	e := newEvaluator()
	ctx := context.Background()

	tests := []struct {
		name        string
		original    string
		translation string
	}{
		{"stanza count", "a day\nthe way\n\nat night", "ar an lá\nmo ghrá"},
		{"line count", "a day\nthe way", "ar an lá"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.RhymeDivergence(ctx, tt.original, tt.translation)
			if !errors.Is(err, rhyme.ErrLengthMismatch) {
				t.Errorf("RhymeDivergence() error = %v, want ErrLengthMismatch", err)
			}
		})
	}
}

func TestSemanticFidelity(t *testing.T) {
	e := newEvaluator()
	e.Synonyms = meteor.StaticSynonyms(map[string][]string{"joy": {"happiness"}})
	pf := &recordingPrefetcher{}
	e.Prefetcher = pf

	ref := []string{"The cat sat.", "", "love joy"}
	hyp := []string{"the cat sat", "", "happiness"}

	res, err := e.SemanticFidelity(context.Background(), ref, hyp)
	if err != nil {
		t.Fatalf("SemanticFidelity() error = %v", err)
	}

	if res.Pairs != 2 {
		t.Errorf("Pairs = %d, want 2", res.Pairs)
	}
	if math.Abs(res.Meteor-0.5) > 1e-9 {
		t.Errorf("Meteor = %v, want 0.5", res.Meteor)
	}

	synLine := 0.5 / (0.9*1 + 0.1*0.5)
	if want := (1 + synLine) / 2; math.Abs(res.MeteorSynonym-want) > 1e-9 {
		t.Errorf("MeteorSynonym = %v, want %v", res.MeteorSynonym, want)
	}
	if res.MeteorSynonym <= res.Meteor {
		t.Error("synonyms should raise the score")
	}
	if strings.Join(pf.lemmas, " ") != "the cat sat love joy" {
		t.Errorf("prefetched lemmas = %q", pf.lemmas)
	}
	if res.Lines[1].Index != 2 {
		t.Errorf("second scored line index = %d, want 2", res.Lines[1].Index)
	}
	if math.Abs(res.Lines[0].BLEU-100) > 1e-9 || math.Abs(res.Lines[0].ChrF-100) > 1e-9 {
		t.Errorf("identical line BLEU = %v, chrF = %v, want 100", res.Lines[0].BLEU, res.Lines[0].ChrF)
	}
	if res.Lines[1].BLEU != 0 {
		t.Errorf("disjoint line BLEU = %v, want 0", res.Lines[1].BLEU)
	}
	if math.Abs(res.BLEU-50) > 1e-9 {
		t.Errorf("BLEU = %v, want 50", res.BLEU)
	}
	if want := (100 + res.Lines[1].ChrF) / 2; math.Abs(res.ChrF-want) > 1e-9 {
		t.Errorf("ChrF = %v, want %v", res.ChrF, want)
	}
}

func TestSemanticFidelityEdgeCases(t *testing.T) {
	e := newEvaluator()
	ctx := context.Background()

	res, err := e.SemanticFidelity(ctx, []string{"", ""}, []string{"", ""})
	if err != nil || res.Pairs != 0 || res.Meteor != 0 {
		t.Errorf("SemanticFidelity(blank) = %+v, %v", res, err)
	}

	if _, err := e.SemanticFidelity(ctx, []string{"a"}, []string{"a", "b"}); !errors.Is(err, rhyme.ErrLengthMismatch) {
		t.Errorf("SemanticFidelity() error = %v, want ErrLengthMismatch", err)
	}
}

func TestRun(t *testing.T) {
	e := newEvaluator()
	rec := &countingRecorder{}
	e.Recorder = rec

	songs := []Song{
		{Index: 0, Title: "one", Original: "a day\nthe way", Translation: "ar an lá\nmo ghrá", Reference: "ar an lá\nmo ghrá"},
		{Index: 1, Title: "misaligned", Original: "a day\nthe way", Translation: "ar an lá"},
		{Index: 2, Title: "three", Original: "at night\nthe light", Translation: "cnoc mór\nan lá"},
	}

	results, err := e.Run(context.Background(), songs, 2)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}

	for i, r := range results {
		if r.Index != songs[i].Index {
			t.Errorf("results[%d].Index = %d, want input order", i, r.Index)
		}
	}
	if results[0].RhymeDiff != 0 || results[0].Meteor != 1 || results[0].SemanticPairs != 2 {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Error == "" {
		t.Error("misaligned song should carry an error")
	}
	if results[2].RhymeDiff != 1 {
		t.Errorf("results[2].RhymeDiff = %v, want 1", results[2].RhymeDiff)
	}
	if rec.songs != 2 {
		t.Errorf("songs recorded = %d, want 2", rec.songs)
	}
}

func TestRunAbortsOnServiceFailure(t *testing.T) {
	e := &Evaluator{
		Source: newFakeSource(cmudict.ErrNotFound, map[string][]string{"day": {"EY1"}}),
		Target: &flakySource{failures: 100},
		Retry:  RetryPolicy{Attempts: 0},
	}
	songs := []Song{{Original: "a day", Translation: "lá"}}

	if _, err := e.Run(context.Background(), songs, 1); !errors.Is(err, abair.ErrService) {
		t.Errorf("Run() error = %v, want ErrService", err)
	}
}

func TestSaveSongResultsMerges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "songs.json")
	existing := `[{"index": 1, "rhyme_diff": 0.9, "bleu": 0.3}]`
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(existing), 0644); err != nil {
		t.Fatal(err)
	}

	results := []SongResult{
		{Index: 1, RhymeDiff: 0.2, Meteor: 0.5, BLEU: 41.5, ChrF: 62.25},
		{Index: 0, Title: "grá", RhymeDiff: 0.4},
	}
	if err := SaveSongResults(path, results); err != nil {
		t.Fatalf("SaveSongResults() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"bleu": 0.3`) {
		t.Errorf("unrelated key was dropped:\n%s", data)
	}
	if !strings.Contains(string(data), "grá") {
		t.Errorf("title not written verbatim:\n%s", data)
	}
	for _, key := range []string{`"sacrebleu": 41.5`, `"chrf": 62.25`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("missing %s:\n%s", key, data)
		}
	}

	loaded, err := LoadSongResults(path)
	if err != nil {
		t.Fatalf("LoadSongResults() error = %v", err)
	}
	if len(loaded) != 2 || loaded[0].Index != 0 || loaded[1].RhymeDiff != 0.2 || loaded[1].BLEU != 41.5 {
		t.Errorf("loaded = %+v", loaded)
	}
}
