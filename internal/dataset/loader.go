// Package dataset reads the quiz-sentence CSV under test.
// Pure function: file path in, grouped rows out. No database dependencies.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/heartmarshall/quizcheck/internal/domain"
)

// Dataset holds the rows-under-test grouped by word.
type Dataset struct {
	Header []string
	Rows   []domain.Row

	// Groups maps each word to its rows in file order.
	Groups map[string][]domain.Row

	// Words is the sorted list of unique non-empty words.
	Words []string

	// LevelCounts maps each level value to its number of rows.
	LevelCounts map[string]int
}

// Load reads the CSV at path. The file must have a header row with the
// columns level, word and one of quiz_sentence/sentence; anything else
// is ignored. Missing required columns surface as domain.ErrBadSchema.
// Row indices are 1-based with the header counted as row 1.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s is empty, no header row", domain.ErrBadSchema, path)
	}

	header := records[0]
	levelIdx := columnIndex(header, "level")
	wordIdx := columnIndex(header, "word")
	sentenceIdx := columnIndex(header, "quiz_sentence")
	if sentenceIdx < 0 {
		sentenceIdx = columnIndex(header, "sentence")
	}

	if levelIdx < 0 || wordIdx < 0 {
		return nil, fmt.Errorf("%w: missing column %q or %q", domain.ErrBadSchema, "level", "word")
	}
	if sentenceIdx < 0 {
		return nil, fmt.Errorf("%w: missing column %q (or %q)", domain.ErrBadSchema, "quiz_sentence", "sentence")
	}

	ds := &Dataset{
		Header:      header,
		Groups:      make(map[string][]domain.Row),
		LevelCounts: make(map[string]int),
	}

	for i, record := range records[1:] {
		row := domain.Row{
			Level:    field(record, levelIdx),
			Word:     field(record, wordIdx),
			Sentence: field(record, sentenceIdx),
			RowIndex: i + 2, // header is row 1
		}
		ds.Rows = append(ds.Rows, row)
		ds.LevelCounts[row.Level]++
		if row.Word == "" {
			continue
		}
		if _, seen := ds.Groups[row.Word]; !seen {
			ds.Words = append(ds.Words, row.Word)
		}
		ds.Groups[row.Word] = append(ds.Groups[row.Word], row)
	}
	sort.Strings(ds.Words)

	return ds, nil
}

// columnIndex finds a header column by trimmed name, -1 if absent.
func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// field returns the trimmed record field, tolerating short rows.
func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
