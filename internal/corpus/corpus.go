// Package corpus segments aligned lyric corpora into songs, stanzas and
// lines, following the corpus conventions: a line holding only "*" ends a
// song and blank lines separate stanzas.
package corpus

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// SongDelimiter is the line that separates songs.
const SongDelimiter = "*"

// Stanza is a block of non-blank, trimmed lyric lines.
type Stanza []string

// SplitSongs splits a corpus into songs at every line consisting only of the
// song delimiter. Songs with no lyric content are dropped.
func SplitSongs(text string) []string {
	var songs []string
	var current []string

	flush := func() {
		song := strings.TrimSpace(strings.Join(current, "\n"))
		if song != "" {
			songs = append(songs, song)
		}
		current = current[:0]
	}

	for _, line := range splitLines(text) {
		if strings.TrimSpace(line) == SongDelimiter {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return songs
}

// SplitStanzas splits a song into stanzas at blank lines.
func SplitStanzas(song string) []Stanza {
	var stanzas []Stanza
	var current Stanza

	for _, line := range splitLines(song) {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(current) > 0 {
				stanzas = append(stanzas, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		stanzas = append(stanzas, current)
	}

	return stanzas
}

// SplitSongLines groups a line-per-entry corpus into songs. Any line that
// contains the delimiter ends the current song; blank lines are kept so that
// line pairs stay aligned between reference and hypothesis files.
func SplitSongLines(lines []string) [][]string {
	var songs [][]string
	var current []string

	for _, line := range lines {
		if strings.Contains(line, SongDelimiter) {
			if len(current) > 0 {
				songs = append(songs, current)
				current = nil
			}
			continue
		}
		current = append(current, strings.TrimSpace(line))
	}
	if len(current) > 0 {
		songs = append(songs, current)
	}

	return songs
}

// Lines returns every line of a song in order, blank stanza separators
// included.
func Lines(song string) []string {
	lines := splitLines(song)
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

// LastWord returns the final word of a line with surrounding punctuation
// removed, or "" for a line without words.
func LastWord(line string) string {
	fields := strings.Fields(line)
	for i := len(fields) - 1; i >= 0; i-- {
		w := strings.TrimFunc(fields[i], func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if w != "" {
			return w
		}
	}
	return ""
}

var lower = cases.Lower(language.Und)

// Normalize returns the NFC, lower-cased form of s used for dictionary
// lookups.
func Normalize(s string) string {
	return lower.String(norm.NFC.String(strings.TrimSpace(s)))
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
