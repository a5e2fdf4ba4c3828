// Package thesaurus fetches Irish synonyms from the Potafocal thesaurus and
// keeps them in a persistent cache that the scorer reads without touching
// the network.
package thesaurus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/net/html"

	"github.com/lehigh-university-libraries/lyriceval/internal/cache"
	"github.com/lehigh-university-libraries/lyriceval/internal/corpus"
)

// DefaultBaseURL is the public Potafocal host.
const DefaultBaseURL = "http://www.potafocal.com"

// DefaultWorkers bounds concurrent thesaurus requests during prefetch.
const DefaultWorkers = 10

// ErrService wraps transport failures.
var ErrService = errors.New("thesaurus request failed")

// Lemmatizer reduces synonym phrases to lemmas.
type Lemmatizer interface {
	Lemmas(ctx context.Context, text string) ([]string, error)
}

// Observer receives one call per network lookup.
type Observer interface {
	ObserveLookup(service, outcome string, elapsed time.Duration)
}

// Client looks up synonyms and stores their lemmas.
type Client struct {
	BaseURL    string
	Workers    int
	cache      *cache.Cache[[]string]
	lemmatizer Lemmatizer
	observer   Observer
	httpClient *http.Client
}

// NewClient creates a thesaurus client. A nil lemmatizer stores synonyms as
// fetched.
func NewClient(baseURL string, c *cache.Cache[[]string], lem Lemmatizer, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Workers:    DefaultWorkers,
		cache:      c,
		lemmatizer: lem,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetObserver registers a lookup observer.
func (c *Client) SetObserver(o Observer) {
	c.observer = o
}

// Synonyms returns the cached synonym lemmas of lemma. It never issues a
// request; uncached words have no synonyms.
func (c *Client) Synonyms(lemma string) []string {
	syns, _ := c.cache.Get(lemma)
	return syns
}

// Lookup returns the synonyms of word, fetching and caching them when they
// are not cached yet.
func (c *Client) Lookup(ctx context.Context, word string) ([]string, error) {
	if syns, ok := c.cache.Get(word); ok {
		return syns, nil
	}
	syns, err := c.fetch(ctx, word)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Put(word, syns); err != nil {
		return nil, fmt.Errorf("failed to cache synonyms: %w", err)
	}
	return syns, nil
}

// Prefetch fetches every uncached word with a bounded worker pool and
// flushes the cache once. Words whose fetch fails are left uncached and
// reported in the returned error.
func (c *Client) Prefetch(ctx context.Context, words []string) error {
	var pending []string
	seen := make(map[string]bool)
	for _, w := range words {
		if w == "" || seen[w] || c.cache.Has(w) {
			continue
		}
		seen[w] = true
		pending = append(pending, w)
	}
	if len(pending) == 0 {
		return nil
	}

	workers := c.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	slog.Info("Prefetching synonyms", "words", len(pending), "workers", workers)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		fetched = make(map[string][]string, len(pending))
		errs    []error
	)

	pool, err := ants.NewPoolWithFunc(workers, func(arg any) {
		defer wg.Done()
		word := arg.(string)
		syns, err := c.fetch(ctx, word)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", word, err))
			return
		}
		fetched[word] = syns
	})
	if err != nil {
		return fmt.Errorf("failed to create prefetch pool: %w", err)
	}
	defer pool.Release()

	for _, w := range pending {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		if err := pool.Invoke(w); err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("%s: %w", w, err))
			mu.Unlock()
		}
	}
	wg.Wait()

	if err := c.cache.PutBatch(fetched); err != nil {
		errs = append(errs, fmt.Errorf("failed to cache synonyms: %w", err))
	}

	slog.Info("Synonym prefetch complete", "fetched", len(fetched), "failed", len(pending)-len(fetched))

	if ctx.Err() != nil {
		errs = append(errs, ctx.Err())
	}
	return errors.Join(errs...)
}

func (c *Client) fetch(ctx context.Context, word string) (syns []string, err error) {
	start := time.Now()
	defer func() { c.observe(start, syns, err) }()

	reqURL := c.BaseURL + "/thes/?s=" + url.QueryEscape(word)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrService, err)
	}
	defer resp.Body.Close()

	// Pages that do not exist are remembered as having no synonyms.
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		slog.Debug("Thesaurus returned non-OK status", "word", word, "status", resp.StatusCode)
		return []string{}, nil
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse page: %v", ErrService, err)
	}

	return c.lemmatize(ctx, ExtractSynonyms(doc))
}

func (c *Client) lemmatize(ctx context.Context, synonyms []string) ([]string, error) {
	if c.lemmatizer == nil {
		return synonyms, nil
	}

	set := make(map[string]bool)
	for _, s := range synonyms {
		lemmas, err := c.lemmatizer.Lemmas(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("failed to lemmatize synonym %q: %w", s, err)
		}
		for _, l := range lemmas {
			if l = corpus.Normalize(l); l != "" {
				set[l] = true
			}
		}
	}
	return sortedSet(set), nil
}

func (c *Client) observe(start time.Time, syns []string, err error) {
	if c.observer == nil {
		return
	}
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case len(syns) == 0:
		outcome = "miss"
	}
	c.observer.ObserveLookup("potafocal", outcome, time.Since(start))
}

// ExtractSynonyms returns the normalised text of every link inside a div
// with class "sense", deduplicated and sorted.
func ExtractSynonyms(doc *html.Node) []string {
	set := make(map[string]bool)

	var walk func(n *html.Node, inSense bool)
	walk = func(n *html.Node, inSense bool) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "div" && hasClass(n, "sense"):
				inSense = true
			case n.Data == "a" && inSense && hasAttr(n, "href"):
				if text := corpus.Normalize(textContent(n)); text != "" {
					set[text] = true
				}
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child, inSense)
		}
	}
	walk(doc, false)

	return sortedSet(set)
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" && slices.Contains(strings.Fields(a.Val), class) {
			return true
		}
	}
	return false
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(n)
	return sb.String()
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
