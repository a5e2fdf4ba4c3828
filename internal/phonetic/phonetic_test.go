package phonetic

import (
	"math"
	"testing"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b Tail
		want float64
	}{
		{"identical", Parse("EY1 N"), Parse("EY1 N"), 1.0},
		{"one_symbol_differs", Parse("EY1 N"), Parse("EY1 M"), 0.8},
		{"shared_stress_digit", Parse("AA1"), Parse("IY1 Z"), 0.25},
		{"disjoint", Parse("AA"), Parse("IY Z"), 0.0},
		{"empty_a", nil, Parse("EY1 N"), 0.0},
		{"empty_both", nil, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %.4f, want %.4f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilaritySymmetricForSmallInputs(t *testing.T) {
	pairs := [][2]Tail{
		{Parse("AY1 T"), Parse("AY1 D")},
		{Parse("OW1 N L IY0"), Parse("OW1 N")},
		{Parse("a r'"), Parse("a: r'")},
	}
	for _, p := range pairs {
		if Similarity(p[0], p[1]) != Similarity(p[1], p[0]) {
			t.Errorf("Similarity not symmetric for %q / %q", p[0], p[1])
		}
	}
}

func TestIsSlant(t *testing.T) {
	if !IsSlant(Parse("EY1 N"), Parse("EY1 M")) {
		t.Error("expected EY1 N / EY1 M to be a slant rhyme")
	}
	if IsSlant(Parse("EY1 N"), Parse("EY1 N")) {
		t.Error("identical tails are exact rhymes, not slant rhymes")
	}
	if IsSlant(Parse("AA1"), Parse("IY1 Z")) {
		t.Error("unrelated tails must not be slant rhymes")
	}
}

func TestMaxSimilarity(t *testing.T) {
	as := []Tail{Parse("AA1"), Parse("EY1 N")}
	bs := []Tail{Parse("EY1 M")}
	if got := MaxSimilarity(as, bs); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("MaxSimilarity = %.4f, want 0.8", got)
	}
	if got := MaxSimilarity(nil, bs); got != 0 {
		t.Errorf("MaxSimilarity(nil, bs) = %.4f, want 0", got)
	}
}

func TestARPAbetTail(t *testing.T) {
	tests := []struct {
		pron string
		want string
		ok   bool
	}{
		{"K AE1 T", "AE1 T", true},
		{"B Y UW1 T AH0 F AH0 L", "UW1 T AH0 F AH0 L", true},
		{"D EH1 D L AY2 N", "AY2 N", true},
		{"DH AH0", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.pron, func(t *testing.T) {
			got, ok := ARPAbetTail(tt.pron)
			if ok != tt.ok {
				t.Fatalf("ARPAbetTail(%q) ok = %v, want %v", tt.pron, ok, tt.ok)
			}
			if got.Key() != tt.want {
				t.Errorf("ARPAbetTail(%q) = %q, want %q", tt.pron, got.Key(), tt.want)
			}
		})
	}
}

func TestStressMarkedTail(t *testing.T) {
	tests := []struct {
		payload string
		want    string
		ok      bool
	}{
		{"g' r' ax1 @ n'", "@ n'", true},
		{"1 b' o r'", "o r'", true},
		{"b' o1 r'", "", false},
		{"s t a r", "a r", true},
		{"1 k", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			got, ok := StressMarkedTail(tt.payload)
			if ok != tt.ok {
				t.Fatalf("StressMarkedTail(%q) ok = %v, want %v", tt.payload, ok, tt.ok)
			}
			if got.Key() != tt.want {
				t.Errorf("StressMarkedTail(%q) = %q, want %q", tt.payload, got.Key(), tt.want)
			}
		})
	}
}
