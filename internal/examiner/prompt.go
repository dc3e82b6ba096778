package examiner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/heartmarshall/quizcheck/internal/domain"
)

// sentencePayload is one quiz sentence as presented to the model.
// RequiredIssues is attached so the model cannot silently skip defects
// the normaliser has already found; the merger enforces them either way.
type sentencePayload struct {
	Index              int      `json:"index"`
	RowIndex           int      `json:"row_index"`
	SentenceNormalised string   `json:"sentence_normalised"`
	RequiredIssues     []string `json:"required_issues"`
}

// wordPayload is one word group in the user-prompt payload.
type wordPayload struct {
	Word      string            `json:"word"`
	Sentences []sentencePayload `json:"sentences"`
}

// buildPayload derives the prompt payload and the per-index required
// issues for one word group.
func buildPayload(word string, rows []domain.Row) (wordPayload, map[int][]string) {
	payload := wordPayload{Word: word}
	required := make(map[int][]string, len(rows))

	for i, row := range rows {
		meta := domain.NormalisePlaceholders(row.Sentence)
		issues := meta.RequiredIssues()
		if issues == nil {
			issues = []string{}
		}
		required[i+1] = issues
		payload.Sentences = append(payload.Sentences, sentencePayload{
			Index:              i + 1,
			RowIndex:           row.RowIndex,
			SentenceNormalised: meta.Normalised,
			RequiredIssues:     issues,
		})
	}
	return payload, required
}

// systemMessage establishes the examiner role. The response format is
// additionally pinned by the request schema.
func systemMessage() string {
	return "You are a strict examiner of vocabulary quiz sentences. " +
		"You judge fill-in-the-blank sentences against a written specification. " +
		"Respond with JSON only: no Markdown, no code fences, no commentary."
}

// userMessage assembles the user prompt: spec excerpt, task instructions,
// scoring rule, then the batch payload.
func userMessage(specExcerpt string, words []wordPayload, scoreFloor int) (string, error) {
	payload, err := json.Marshal(struct {
		Words []wordPayload `json:"words"`
	}{Words: words})
	if err != nil {
		return "", fmt.Errorf("marshal prompt payload: %w", err)
	}

	var b strings.Builder
	b.WriteString("The following specification excerpt is authoritative. Judge strictly against it.\n\n")
	b.WriteString("--- SPECIFICATION (authoritative) ---\n")
	b.WriteString(specExcerpt)
	b.WriteString("\n--- END SPECIFICATION ---\n\n")

	b.WriteString("Task: for every word below, examine each quiz sentence and return one result entry per word, ")
	b.WriteString("with one sentence entry per input sentence (same index and row_index).\n\n")

	b.WriteString("Allowed issue tags (use no others):\n")
	for _, tag := range domain.AllowedIssues {
		b.WriteString("- ")
		b.WriteString(tag)
		b.WriteString("\n")
	}

	b.WriteString("\nScoring rubric: rate each sentence 1..5 for accuracy, clarity and educational_usefulness. ")
	b.WriteString("5 = exemplary, 4 = meets the specification, 3 = noticeable weakness, 2 = poor, 1 = unusable.\n")
	fmt.Fprintf(&b, "Any score below %d is a fail: set pass=false and add the below_spec_score tag.\n\n", scoreFloor)

	b.WriteString("Every sentence lists its required_issues. These defects are already proven; ")
	b.WriteString("include them in that sentence's issues and set pass=false for it.\n\n")

	b.WriteString("Input:\n")
	b.Write(payload)

	return b.String(), nil
}
