package examiner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/heartmarshall/quizcheck/internal/domain"
)

// wordResult mirrors one entry of the model's results list. Unknown
// fields are ignored; missing fields decode to zero values and are
// repaired by the merger.
type wordResult struct {
	Word      string           `json:"word"`
	Overall   overallResult    `json:"overall"`
	Sentences []sentenceResult `json:"sentences"`
}

type overallResult struct {
	Pass  bool     `json:"pass"`
	Notes []string `json:"notes"`
}

type sentenceResult struct {
	Index    int           `json:"index"`
	RowIndex int           `json:"row_index"`
	Pass     bool          `json:"pass"`
	Issues   []string      `json:"issues"`
	Scores   domain.Scores `json:"scores"`
}

// containerKeys are the conventional wrapper keys a results list may
// hide under when the model ignores the schema.
var containerKeys = []string{"results", "items", "output", "data"}

// parseResults turns raw model content into word results. Strict parse
// first; if the content is not valid JSON, slice from the first opener
// to the last matching closer and retry. Valid JSON that is neither a
// list nor an object holding a list under a conventional key is a
// shape error.
func parseResults(content string) ([]wordResult, error) {
	data := bytes.TrimSpace([]byte(content))
	if !json.Valid(data) {
		sliced, ok := sliceJSON(content)
		if !ok {
			return nil, fmt.Errorf("%w: content is not JSON", domain.ErrShape)
		}
		data = []byte(sliced)
	}

	list, err := resultsList(data)
	if err != nil {
		return nil, err
	}

	var results []wordResult
	if err := json.Unmarshal(list, &results); err != nil {
		return nil, fmt.Errorf("%w: decode result entries: %v", domain.ErrShape, err)
	}
	return results, nil
}

// resultsList extracts the raw results array from valid JSON.
func resultsList(data []byte) (json.RawMessage, error) {
	if len(data) > 0 && data[0] == '[' {
		return json.RawMessage(data), nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("%w: neither list nor object", domain.ErrShape)
	}
	for _, key := range containerKeys {
		v, ok := obj[key]
		if !ok {
			continue
		}
		if trimmed := bytes.TrimSpace(v); len(trimmed) > 0 && trimmed[0] == '[' {
			return json.RawMessage(trimmed), nil
		}
	}
	return nil, fmt.Errorf("%w: object carries no results list under %v", domain.ErrShape, containerKeys)
}

// sliceJSON cuts the substring from the first { or [ to the last
// matching closer. This rescues replies wrapped in prose such as
// "here is the JSON: {...}".
func sliceJSON(content string) (string, bool) {
	braceAt := strings.IndexByte(content, '{')
	bracketAt := strings.IndexByte(content, '[')

	start, closer := braceAt, byte('}')
	if start < 0 || (bracketAt >= 0 && bracketAt < start) {
		start, closer = bracketAt, ']'
	}
	if start < 0 {
		return "", false
	}

	end := strings.LastIndexByte(content, closer)
	if end <= start {
		return "", false
	}

	sliced := content[start : end+1]
	if !json.Valid([]byte(sliced)) {
		return "", false
	}
	return sliced, true
}
