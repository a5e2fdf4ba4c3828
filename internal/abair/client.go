// Package abair is a client for the ABAIR Irish phonetiser. Responses are
// cached per word so that repeated evaluations do not hit the service.
package abair

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/lyriceval/internal/cache"
	"github.com/lehigh-university-libraries/lyriceval/internal/phonetic"
)

// DefaultBaseURL is the public ABAIR synthesis host.
const DefaultBaseURL = "https://synthesis.abair.ie"

var (
	// ErrNoPhonemes is returned when the phonetiser yields nothing usable for
	// a word.
	ErrNoPhonemes = errors.New("no phonemes returned")

	// ErrService wraps transport failures and non-200 responses.
	ErrService = errors.New("phonetiser request failed")
)

// Observer receives one call per network lookup.
type Observer interface {
	ObserveLookup(service, outcome string, elapsed time.Duration)
}

// Client fetches Irish phonetic transcriptions.
type Client struct {
	BaseURL    string
	Dialect    string
	Mapping    string
	cache      *cache.Cache[json.RawMessage]
	observer   Observer
	httpClient *http.Client
}

// NewClient creates a phonetiser client backed by c. A nil cache disables
// caching.
func NewClient(baseURL string, c *cache.Cache[json.RawMessage], timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Dialect: "co",
		Mapping: "mrpai",
		cache:   c,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetObserver registers a lookup observer.
func (c *Client) SetObserver(o Observer) {
	c.observer = o
}

// RhymeTails returns the single rhyme tail of word.
func (c *Client) RhymeTails(ctx context.Context, word string) ([]phonetic.Tail, error) {
	payload, err := c.Phonetise(ctx, word)
	if err != nil {
		return nil, err
	}

	tail, ok := phonetic.StressMarkedTail(payload)
	if !ok {
		return nil, fmt.Errorf("%w: no stressed vowel in %q for %q", ErrNoPhonemes, payload, word)
	}
	return []phonetic.Tail{tail}, nil
}

// Phonetise returns the phonetic payload for text, consulting the cache
// first.
func (c *Client) Phonetise(ctx context.Context, text string) (string, error) {
	if c.cache != nil {
		if raw, ok := c.cache.Get(text); ok {
			return decodePayload(raw)
		}
	}

	start := time.Now()
	raw, err := c.fetch(ctx, text)
	var payload string
	if err == nil {
		payload, err = decodePayload(raw)
	}
	c.observe(start, err)

	// Untranscribable words are cached too so they are not refetched.
	if raw != nil && c.cache != nil && (err == nil || errors.Is(err, ErrNoPhonemes)) {
		if perr := c.cache.Put(text, raw); perr != nil {
			slog.Warn("Failed to persist phonetics cache", "word", text, "error", perr)
		}
	}
	if err != nil {
		return "", err
	}
	return payload, nil
}

func (c *Client) fetch(ctx context.Context, text string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("text", text)
	q.Set("dialect", c.Dialect)
	q.Set("mapping", c.Mapping)
	q.Set("add_origins", "false")
	reqURL := c.BaseURL + "/api/phonetise?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrService, resp.StatusCode, string(body))
	}

	var result []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrService, err)
	}
	if len(result) == 0 {
		return json.RawMessage(`[]`), nil
	}

	return result[0], nil
}

func (c *Client) observe(start time.Time, err error) {
	if c.observer == nil {
		return
	}
	outcome := "ok"
	switch {
	case errors.Is(err, ErrNoPhonemes):
		outcome = "miss"
	case err != nil:
		outcome = "error"
	}
	c.observer.ObserveLookup("abair", outcome, time.Since(start))
}

// decodePayload accepts either a plain string or arbitrarily nested arrays
// of strings, which are flattened and joined with spaces.
func decodePayload(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("%w: malformed payload: %v", ErrNoPhonemes, err)
	}

	var parts []string
	flatten(v, &parts)
	payload := strings.TrimSpace(strings.Join(parts, " "))
	if payload == "" {
		return "", ErrNoPhonemes
	}
	return payload, nil
}

func flatten(v any, out *[]string) {
	switch x := v.(type) {
	case string:
		if s := strings.TrimSpace(x); s != "" {
			*out = append(*out, s)
		}
	case []any:
		for _, e := range x {
			flatten(e, out)
		}
	}
}
