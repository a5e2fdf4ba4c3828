// Package rhyme induces rhyme schemes from line-final phonetic tails and
// compares a translated stanza's scheme against its source.
package rhyme

import (
	"fmt"
	"strings"
)

// Kind records how a rhyme class was established.
type Kind int

const (
	// Exact marks a class backed by identical phonetic tails.
	Exact Kind = iota
	// Slant marks a class resolved only through tail similarity.
	Slant
)

func (k Kind) String() string {
	if k == Slant {
		return "slant"
	}
	return "exact"
}

// Label is one line's rhyme class within a stanza.
type Label struct {
	Letter byte // 'A'..'Z'
	Kind   Kind
}

// String renders the label the conventional way: upper case for exact
// classes, lower case for slant ones.
func (l Label) String() string {
	if l.Kind == Slant {
		return string(l.Letter + ('a' - 'A'))
	}
	return string(l.Letter)
}

// Scheme is the ordered sequence of labels for a stanza, one per line.
type Scheme []Label

func (s Scheme) String() string {
	var b strings.Builder
	for _, l := range s {
		b.WriteString(l.String())
	}
	return b.String()
}

// ParseScheme reads the compact letter form, e.g. "AAbb". Upper-case letters
// are exact classes and lower-case letters are slant classes.
func ParseScheme(s string) (Scheme, error) {
	scheme := make(Scheme, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			scheme = append(scheme, Label{Letter: c, Kind: Exact})
		case c >= 'a' && c <= 'z':
			scheme = append(scheme, Label{Letter: c - ('a' - 'A'), Kind: Slant})
		default:
			return nil, fmt.Errorf("invalid rhyme label %q at position %d", c, i)
		}
	}
	return scheme, nil
}

// Equal reports whether two schemes are identical label for label.
func (s Scheme) Equal(o Scheme) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Count returns how many lines carry label l.
func (s Scheme) Count(l Label) int {
	n := 0
	for _, x := range s {
		if x == l {
			n++
		}
	}
	return n
}

// HasRepeat reports whether any label occurs on more than one line. Stanzas
// whose source scheme has no repeat contain no rhyme to reproduce.
func (s Scheme) HasRepeat() bool {
	seen := make(map[Label]bool, len(s))
	for _, l := range s {
		if seen[l] {
			return true
		}
		seen[l] = true
	}
	return false
}

// Group is the set of line indices sharing one label, in ascending order.
type Group struct {
	Label   Label
	Indices []int
}

// Groups returns the scheme's label groups ordered by first occurrence.
func (s Scheme) Groups() []Group {
	pos := make(map[Label]int)
	var groups []Group
	for i, l := range s {
		g, ok := pos[l]
		if !ok {
			g = len(groups)
			pos[l] = g
			groups = append(groups, Group{Label: l})
		}
		groups[g].Indices = append(groups[g].Indices, i)
	}
	return groups
}
