package evaluation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// StanzaResult is the rhyme comparison of one stanza pair.
type StanzaResult struct {
	Index      int    `json:"index"`
	Reference  string `json:"reference_scheme"`
	Hypothesis string `json:"hypothesis_scheme"`
	Tier       string `json:"tier"`
	Counted    bool   `json:"counted"`
}

// RhymeResult is the rhyme comparison of a whole song.
type RhymeResult struct {
	Stanzas    []StanzaResult `json:"stanzas"`
	Counted    int            `json:"counted"`
	Divergence float64        `json:"rhyme_diff"`
}

// LineScore holds the scores of one line pair. BLEU and ChrF are on a
// 0-100 scale.
type LineScore struct {
	Index         int     `json:"index"`
	Meteor        float64 `json:"meteor"`
	MeteorSynonym float64 `json:"meteor_synonym"`
	BLEU          float64 `json:"sacrebleu"`
	ChrF          float64 `json:"chrf"`
}

// SemanticResult is the song-level semantic fidelity.
type SemanticResult struct {
	Pairs         int         `json:"pairs"`
	Meteor        float64     `json:"meteor"`
	MeteorSynonym float64     `json:"meteor_synonym"`
	BLEU          float64     `json:"sacrebleu"`
	ChrF          float64     `json:"chrf"`
	Lines         []LineScore `json:"lines,omitempty"`
}

// SongResult is the per-song record written to the results file.
type SongResult struct {
	Index          int            `json:"index"`
	Title          string         `json:"title,omitempty"`
	RhymeDiff      float64        `json:"rhyme_diff"`
	Meteor         float64        `json:"meteor"`
	MeteorSynonym  float64        `json:"meteor_synonym"`
	BLEU           float64        `json:"sacrebleu"`
	ChrF           float64        `json:"chrf"`
	SemanticPairs  int            `json:"semantic_pairs"`
	CountedStanzas int            `json:"counted_stanzas"`
	Stanzas        []StanzaResult `json:"stanzas,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// SaveSongResults merges results into the JSON array at path. Objects are
// matched on "index"; keys this package does not write are preserved, so
// several runs can contribute to the same file.
func SaveSongResults(path string, results []SongResult) error {
	objects, err := loadObjects(path)
	if err != nil {
		return err
	}

	byIndex := make(map[int]map[string]any, len(objects))
	for _, obj := range objects {
		if idx, ok := obj["index"].(float64); ok {
			byIndex[int(idx)] = obj
		}
	}

	for _, r := range results {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode song %d: %w", r.Index, err)
		}
		var fields map[string]any
		if err := json.Unmarshal(data, &fields); err != nil {
			return fmt.Errorf("failed to encode song %d: %w", r.Index, err)
		}

		obj, ok := byIndex[r.Index]
		if !ok {
			obj = make(map[string]any)
			objects = append(objects, obj)
			byIndex[r.Index] = obj
		}
		for k, v := range fields {
			obj[k] = v
		}
	}

	sort.SliceStable(objects, func(i, j int) bool {
		return objectIndex(objects[i]) < objectIndex(objects[j])
	})

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(objects); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	return nil
}

// LoadSongResults reads a results file written by SaveSongResults.
func LoadSongResults(path string) ([]SongResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer file.Close()

	var results []SongResult
	if err := json.NewDecoder(file).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}

	return results, nil
}

func loadObjects(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var objects []map[string]any
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, fmt.Errorf("failed to decode existing results %s: %w", path, err)
	}
	return objects, nil
}

func objectIndex(obj map[string]any) float64 {
	if idx, ok := obj["index"].(float64); ok {
		return idx
	}
	return -1
}
