// Package cmudict loads the CMU Pronouncing Dictionary and derives English
// rhyme tails from its ARPAbet pronunciations.
package cmudict

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/lyriceval/internal/corpus"
	"github.com/lehigh-university-libraries/lyriceval/internal/phonetic"
)

// ErrNotFound is returned when a word has no usable pronunciation.
var ErrNotFound = errors.New("word not in pronouncing dictionary")

// Dict maps normalized words to their pronunciation variants.
type Dict struct {
	entries map[string][]string
}

// New creates an empty dictionary.
func New() *Dict {
	return &Dict{entries: make(map[string][]string)}
}

// Add appends a pronunciation variant for word.
func (d *Dict) Add(word, pronunciation string) {
	key := corpus.Normalize(word)
	d.entries[key] = append(d.entries[key], strings.Join(strings.Fields(pronunciation), " "))
}

// Load reads a dictionary in CMU format:
//
//	WORD  W ER1 D
//	WORD(2)  W ER2 D
//
// Lines starting with ";;;" are comments.
func Load(r io.Reader) (*Dict, error) {
	d := New()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";;;") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected word and phonemes, got %q", lineNum, line)
		}

		d.Add(baseWord(fields[0]), strings.Join(fields[1:], " "))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}

	return d, nil
}

// LoadFile opens and loads a dictionary file.
func LoadFile(path string) (*Dict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Len returns the number of distinct words.
func (d *Dict) Len() int {
	return len(d.entries)
}

// Pronunciations returns every variant for word in file order.
func (d *Dict) Pronunciations(word string) []string {
	return d.entries[corpus.Normalize(word)]
}

// RhymeTails returns the distinct stressed tails of every pronunciation of
// word. The context is unused; Dict satisfies the same lookup interface as
// the network-backed sources.
func (d *Dict) RhymeTails(_ context.Context, word string) ([]phonetic.Tail, error) {
	prons := d.Pronunciations(word)
	if len(prons) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, word)
	}

	seen := make(map[string]bool, len(prons))
	var tails []phonetic.Tail
	for _, p := range prons {
		tail, ok := phonetic.ARPAbetTail(p)
		if !ok || seen[tail.Key()] {
			continue
		}
		seen[tail.Key()] = true
		tails = append(tails, tail)
	}

	if len(tails) == 0 {
		return nil, fmt.Errorf("%w: %q has no stressed vowel", ErrNotFound, word)
	}
	return tails, nil
}

// baseWord strips a variant suffix such as "(2)".
func baseWord(w string) string {
	if i := strings.IndexByte(w, '('); i > 0 && strings.HasSuffix(w, ")") {
		return w[:i]
	}
	return w
}
