// Package udpipe lemmatizes text through a UDPipe REST service and parses
// its CoNLL-U output.
package udpipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public LINDAT UDPipe endpoint.
const DefaultBaseURL = "https://lindat.mff.cuni.cz/services/udpipe/api"

// ErrService wraps transport failures and non-200 responses.
var ErrService = errors.New("lemmatizer request failed")

// Token is one CoNLL-U word line.
type Token struct {
	Form  string `json:"form"`
	Lemma string `json:"lemma"`
}

// Client calls the UDPipe /process endpoint.
type Client struct {
	BaseURL    string
	Model      string
	httpClient *http.Client
}

// NewClient creates a lemmatizer client for model (for example
// "irish-idt-ud-2.12").
func NewClient(baseURL, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Process runs the tokenizer and tagger over text and returns raw CoNLL-U.
func (c *Client) Process(ctx context.Context, text string) (string, error) {
	form := url.Values{}
	if c.Model != "" {
		form.Set("model", c.Model)
	}
	form.Set("tokenizer", "")
	form.Set("tagger", "")
	form.Set("data", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/process", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrService, resp.StatusCode, string(body))
	}

	var out struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrService, err)
	}

	return out.Result, nil
}

// Lemmatize returns the tokens of text. Blank input yields no tokens and
// makes no request.
func (c *Client) Lemmatize(ctx context.Context, text string) ([]Token, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	conllu, err := c.Process(ctx, text)
	if err != nil {
		return nil, err
	}
	return ParseCoNLLU(conllu), nil
}

// Lemmas returns only the lemma column for text.
func (c *Client) Lemmas(ctx context.Context, text string) ([]string, error) {
	tokens, err := c.Lemmatize(ctx, text)
	if err != nil {
		return nil, err
	}
	lemmas := make([]string, len(tokens))
	for i, t := range tokens {
		lemmas[i] = t.Lemma
	}
	return lemmas, nil
}

// ParseCoNLLU extracts FORM and LEMMA from every word line, skipping blank
// lines, comments and lines with fewer than three columns.
func ParseCoNLLU(conllu string) []Token {
	var tokens []Token
	for _, line := range strings.Split(conllu, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 3 {
			continue
		}
		tokens = append(tokens, Token{Form: cols[1], Lemma: cols[2]})
	}
	return tokens
}
