package evalcmd

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/lyriceval/internal/corpus"
	"github.com/lehigh-university-libraries/lyriceval/internal/evaluation"
)

func TestExecuteSchemeCompare(t *testing.T) {
	tests := []struct {
		ref, hyp string
		want     string
		wantErr  bool
	}{
		{ref: "AABB", hyp: "AABB", want: "AABB vs AABB: EXACT"},
		{ref: "AABB", hyp: "ABCC", want: "AABB vs ABCC: PARTIAL"},
		{ref: "ABCD", hyp: "ABCD", want: "would not be counted"},
		{ref: "AABB", hyp: "AAB", wantErr: true},
		{ref: "A-B", hyp: "AAB", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ref+"_"+tt.hyp, func(t *testing.T) {
			var buf bytes.Buffer
			err := executeSchemeCompare(&buf, tt.ref, tt.hyp)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestCSVReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	results := []evaluation.SongResult{
		{Index: 0, Title: "Song A", RhymeDiff: 0.25, CountedStanzas: 2, Meteor: 0.5, MeteorSynonym: 0.6, BLEU: 42.5, ChrF: 70, SemanticPairs: 8},
		{Index: 1, Title: "Song B", Error: "misaligned"},
	}
	if err := evaluation.SaveSongResults(path, results); err != nil {
		t.Fatalf("SaveSongResults() error = %v", err)
	}

	var buf bytes.Buffer
	if err := executeReport(&buf, path, "csv"); err != nil {
		t.Fatalf("executeReport() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[1][1] != "Song A" || rows[1][2] != "0.2500" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[1][6] != "42.50" || rows[1][7] != "70.00" {
		t.Errorf("row 1 BLEU/chrF = %v", rows[1][6:8])
	}
	if rows[2][9] != "misaligned" {
		t.Errorf("row 2 error column = %q", rows[2][9])
	}
}

func TestReportUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	if err := evaluation.SaveSongResults(path, []evaluation.SongResult{{Index: 0}}); err != nil {
		t.Fatal(err)
	}
	if err := executeReport(&bytes.Buffer{}, path, "xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestAlignmentProblem(t *testing.T) {
	tests := []struct {
		name  string
		orig  string
		trans string
		want  string
	}{
		{"aligned", "a\nb\n\nc", "x\ny\n\nz", ""},
		{"stanza count", "a\nb\n\nc", "x\ny", "2 original stanzas, 1 translated"},
		{"line count", "a\nb", "x", "stanza 1 has 2 original lines, 1 translated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := alignmentProblem(corpus.SplitStanzas(tt.orig), corpus.SplitStanzas(tt.trans))
			if got != tt.want {
				t.Errorf("alignmentProblem() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("áéíóúáéíóú", 6); got != "áéí..." {
		t.Errorf("truncate() = %q, want rune-safe cut", got)
	}
}
