package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/lehigh-university-libraries/lyriceval/internal/corpus"
)

// Loader reads aligned songs either from a single dataset file (.json,
// .jsonl, .parquet) or from parallel "*"-delimited text files.
type Loader struct {
	datasetPath     string
	originalPath    string
	translationPath string
	referencePath   string
}

// NewLoader creates a loader for a single dataset file.
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// NewTextLoader creates a loader for parallel text corpora. referencePath
// may be empty.
func NewTextLoader(originalPath, translationPath, referencePath string) *Loader {
	return &Loader{
		originalPath:    originalPath,
		translationPath: translationPath,
		referencePath:   referencePath,
	}
}

// Load loads every song.
func (l *Loader) Load() ([]SongRecord, error) {
	return l.LoadSample(0)
}

// LoadSample loads at most limit songs; limit <= 0 loads everything.
func (l *Loader) LoadSample(limit int) ([]SongRecord, error) {
	var (
		records []SongRecord
		err     error
	)

	if l.datasetPath == "" {
		records, err = l.loadText()
	} else {
		switch ext := strings.ToLower(filepath.Ext(l.datasetPath)); ext {
		case ".parquet":
			records, err = l.loadParquet(limit)
		case ".jsonl":
			records, err = l.loadJSONL(limit)
		case ".json":
			records, err = l.loadJSON()
		default:
			return nil, fmt.Errorf("unsupported file format: %s (supported: .json, .jsonl, .parquet)", ext)
		}
	}
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (l *Loader) loadText() ([]SongRecord, error) {
	if l.originalPath == "" || l.translationPath == "" {
		return nil, errors.New("original and translation files are required")
	}

	originals, err := readSongs(l.originalPath)
	if err != nil {
		return nil, err
	}
	translations, err := readSongs(l.translationPath)
	if err != nil {
		return nil, err
	}
	if len(originals) != len(translations) {
		return nil, fmt.Errorf("song count mismatch: %d in %s, %d in %s",
			len(originals), l.originalPath, len(translations), l.translationPath)
	}

	var references []string
	if l.referencePath != "" {
		references, err = readSongs(l.referencePath)
		if err != nil {
			return nil, err
		}
		if len(references) != len(translations) {
			return nil, fmt.Errorf("song count mismatch: %d in %s, %d in %s",
				len(references), l.referencePath, len(translations), l.translationPath)
		}
	}

	records := make([]SongRecord, len(originals))
	for i := range originals {
		records[i] = SongRecord{
			Original:   originals[i],
			Translated: translations[i],
		}
		if references != nil {
			records[i].Reference = references[i]
		}
	}

	slog.Debug("Loaded text corpora", "songs", len(records), "with_reference", references != nil)
	return records, nil
}

func readSongs(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus %s: %w", path, err)
	}
	return corpus.SplitSongs(string(data)), nil
}

func (l *Loader) loadJSON() ([]SongRecord, error) {
	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var records []SongRecord
	if err := json.NewDecoder(file).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	slog.Debug("Finished reading JSON file", "total_records", len(records))
	return records, nil
}

func (l *Loader) loadJSONL(limit int) ([]SongRecord, error) {
	slog.Debug("Opening JSONL file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var records []SongRecord
	scanner := bufio.NewScanner(file)

	const maxCapacity = 10 * 1024 * 1024 // 10MB per line
	scanner.Buffer(make([]byte, 64*1024), maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		if limit > 0 && len(records) >= limit {
			break
		}
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record SongRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_records", len(records), "total_lines", lineNum)
	return records, nil
}

func (l *Loader) loadParquet(limit int) ([]SongRecord, error) {
	slog.Debug("Opening Parquet file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[SongRecord](pf)
	defer reader.Close()

	var records []SongRecord
	rows := make([]SongRecord, 128)

	for {
		n, err := reader.Read(rows)
		records = append(records, rows[:n]...)
		if limit > 0 && len(records) >= limit {
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Finished reading Parquet file", "total_records", len(records))
	return records, nil
}
