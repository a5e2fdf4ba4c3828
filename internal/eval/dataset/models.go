package dataset

import "github.com/lehigh-university-libraries/lyriceval/internal/evaluation"

// SongRecord is one aligned song as stored in JSON, JSONL and Parquet
// datasets. Reference holds an optional human translation used as the
// semantic reference for Translated.
type SongRecord struct {
	Title      string `json:"title" parquet:"title"`
	Original   string `json:"original-lyrics" parquet:"original-lyrics"`
	Translated string `json:"translated-lyrics" parquet:"translated-lyrics"`
	Reference  string `json:"reference-lyrics,omitempty" parquet:"reference-lyrics"`
}

// Song converts the record into the evaluator's input.
func (r SongRecord) Song(index int) evaluation.Song {
	return evaluation.Song{
		Index:       index,
		Title:       r.Title,
		Original:    r.Original,
		Translation: r.Translated,
		Reference:   r.Reference,
	}
}

// Songs converts records, numbering them from zero.
func Songs(records []SongRecord) []evaluation.Song {
	songs := make([]evaluation.Song, len(records))
	for i, r := range records {
		songs[i] = r.Song(i)
	}
	return songs
}
