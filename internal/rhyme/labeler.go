package rhyme

import (
	"errors"

	"github.com/lehigh-university-libraries/lyriceval/internal/phonetic"
)

// maxClasses is the size of the single-alphabet label space.
const maxClasses = 26

// ErrTooManyClasses is returned when a stanza needs more than 26 exact
// rhyme classes.
var ErrTooManyClasses = errors.New("stanza exceeds 26 rhyme classes")

// Language selects how many candidate pronunciations a line contributes.
type Language int

const (
	// Source lines offer every dictionary pronunciation of their final word.
	Source Language = iota
	// Target lines offer exactly one phonetiser transcription.
	Target
)

func (l Language) String() string {
	if l == Target {
		return "target"
	}
	return "source"
}

// Line holds the candidate rhyme tails of a line's final word. An empty
// Line is a lookup miss: it never rhymes exactly and scores 0 similarity.
type Line []phonetic.Tail

// Labeler assigns rhyme labels to the lines of a stanza.
type Labeler struct {
	Language  Language
	Threshold float64
}

// NewLabeler returns a Labeler using the default slant threshold.
func NewLabeler(lang Language) *Labeler {
	return &Labeler{
		Language:  lang,
		Threshold: phonetic.SlantThreshold,
	}
}

// Label derives the stanza's rhyme scheme.
//
// The first pass groups lines whose candidate tails are identical: a line
// reuses the label of the first of its candidates already seen, otherwise it
// takes the next free letter and registers all of its candidates under it.
//
// The second pass resolves slant rhymes. Line pairs (i, j) are visited in
// ascending order. A partner j whose label already recurs, or is already a
// slant label, is left alone. Otherwise, if the best similarity between the
// two lines' candidates exceeds the threshold, j joins i's class as a slant
// label, i itself becomes slant when it was a singleton, and the scan moves
// on to the next i. Labels are rewritten in place, so an earlier commit can
// change which partners a later i is allowed to claim.
func (lb *Labeler) Label(lines []Line) (Scheme, error) {
	candidates := make([]Line, len(lines))
	for i, line := range lines {
		candidates[i] = line
		if lb.Language == Target && len(line) > 1 {
			candidates[i] = line[:1]
		}
	}

	scheme := make(Scheme, len(lines))
	classes := make(map[string]byte)
	next := byte('A')

	for i, line := range candidates {
		letter, found := byte(0), false
		for _, tail := range line {
			if l, ok := classes[tail.Key()]; ok {
				letter, found = l, true
				break
			}
		}
		if !found {
			if next-'A' >= maxClasses {
				return nil, ErrTooManyClasses
			}
			letter = next
			next++
			for _, tail := range line {
				classes[tail.Key()] = letter
			}
		}
		scheme[i] = Label{Letter: letter, Kind: Exact}
	}

	threshold := lb.Threshold
	for i := range scheme {
		for j := range scheme {
			if scheme.Count(scheme[j]) > 1 || scheme[j].Kind == Slant {
				continue
			}
			if i == j {
				continue
			}
			if phonetic.MaxSimilarity(candidates[i], candidates[j]) <= threshold {
				continue
			}
			scheme[j] = Label{Letter: scheme[i].Letter, Kind: Slant}
			if scheme.Count(scheme[i]) == 1 {
				scheme[i].Kind = Slant
			}
			break
		}
	}

	return scheme, nil
}
