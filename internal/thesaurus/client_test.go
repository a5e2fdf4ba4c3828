package thesaurus

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/lehigh-university-libraries/lyriceval/internal/cache"
)

const page = `<html><body>
<div class="entry">
  <div class="sense main"><a href="/thes/?s=grá">Grá</a>, <a href="/thes/?s=cion"> cion </a></div>
  <div class="sense"><a href="/thes/?s=searc">searc</a><a>no href</a></div>
</div>
<a href="/other">ignored</a>
</body></html>`

// suffixLemmatizer strips a trailing "anna" so lemmatization is observable.
type suffixLemmatizer struct{}

func (suffixLemmatizer) Lemmas(_ context.Context, text string) ([]string, error) {
	var out []string
	for _, f := range strings.Fields(text) {
		out = append(out, strings.TrimSuffix(f, "anna"))
	}
	return out, nil
}

func openCache(t *testing.T) *cache.Cache[[]string] {
	t.Helper()
	c, err := cache.Open[[]string](filepath.Join(t.TempDir(), "synonyms.json"))
	if err != nil {
		t.Fatalf("cache.Open() error = %v", err)
	}
	return c
}

func TestExtractSynonyms(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}

	got := ExtractSynonyms(doc)
	want := []string{"cion", "grá", "searc"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractSynonyms() = %q, want %q", got, want)
	}
}

func TestLookup(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		switch r.URL.Query().Get("s") {
		case "gean":
			fmt.Fprint(w, `<div class="sense"><a href="#">cairdeanna</a><a href="#">grá</a></div>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, openCache(t), suffixLemmatizer{}, time.Second)
	ctx := context.Background()

	got, err := client.Lookup(ctx, "gean")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if want := []string{"caird", "grá"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Lookup() = %q, want %q", got, want)
	}

	// A missing page is cached as an empty set.
	got, err = client.Lookup(ctx, "xyz")
	if err != nil || len(got) != 0 {
		t.Errorf("Lookup(missing) = %q, %v", got, err)
	}

	_, _ = client.Lookup(ctx, "gean")
	_, _ = client.Lookup(ctx, "xyz")
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("server calls = %d, want 2", n)
	}

	if syns := client.Synonyms("gean"); len(syns) != 2 {
		t.Errorf("Synonyms(gean) = %q", syns)
	}
	if syns := client.Synonyms("uncached"); syns != nil {
		t.Errorf("Synonyms(uncached) = %q, want nil", syns)
	}
}

// tableLemmatizer answers from a fixed table, echoing unknown text.
type tableLemmatizer map[string][]string

func (l tableLemmatizer) Lemmas(_ context.Context, text string) ([]string, error) {
	if lemmas, ok := l[text]; ok {
		return lemmas, nil
	}
	return []string{text}, nil
}

func TestLookupNormalisesLemmas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<div class=\"sense\"><a href=\"#\">Éirinn</a><a href=\"#\">Cre\u0301</a></div>")
	}))
	defer srv.Close()

	// UDPipe can hand back capitalised or decomposed lemmas.
	lem := tableLemmatizer{
		"\u00e9irinn": {"\u00c9ire"},
		"cr\u00e9":    {"Cre\u0301"},
	}
	client := NewClient(srv.URL, openCache(t), lem, time.Second)

	got, err := client.Lookup(context.Background(), "tír")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if want := []string{"cr\u00e9", "\u00e9ire"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Lookup() = %q, want %q", got, want)
	}
	if syns := client.Synonyms("tír"); !reflect.DeepEqual(syns, got) {
		t.Errorf("cached Synonyms() = %q, want %q", syns, got)
	}
}

func TestPrefetch(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		word := r.URL.Query().Get("s")
		fmt.Fprintf(w, `<div class="sense"><a href="#">%s-syn</a></div>`, word)
	}))
	defer srv.Close()

	c := openCache(t)
	if err := c.Put("cached", []string{"x"}); err != nil {
		t.Fatal(err)
	}

	client := NewClient(srv.URL, c, nil, time.Second)
	client.Workers = 3

	words := []string{"a", "b", "c", "a", "cached", "d", "e"}
	if err := client.Prefetch(context.Background(), words); err != nil {
		t.Fatalf("Prefetch() error = %v", err)
	}

	if n := atomic.LoadInt32(&calls); n != 5 {
		t.Errorf("server calls = %d, want 5", n)
	}
	if c.Len() != 6 {
		t.Errorf("cache Len() = %d, want 6", c.Len())
	}
	if got := client.Synonyms("d"); len(got) != 1 || got[0] != "d-syn" {
		t.Errorf("Synonyms(d) = %q", got)
	}

	// Everything is cached now; a second prefetch is a no-op.
	if err := client.Prefetch(context.Background(), words); err != nil {
		t.Fatalf("second Prefetch() error = %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 5 {
		t.Errorf("server calls after second prefetch = %d, want 5", n)
	}
}

func TestPrefetchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := openCache(t)
	client := NewClient(srv.URL, c, nil, time.Second)

	err := client.Prefetch(context.Background(), []string{"a", "b"})
	if !errors.Is(err, ErrService) {
		t.Errorf("Prefetch() error = %v, want ErrService", err)
	}
	if c.Len() != 0 {
		t.Errorf("failed words should not be cached, Len() = %d", c.Len())
	}
}
