// Package domain holds the core types of the quiz-sentence examiner:
// dataset rows, placeholder metadata, verdicts and the issue-tag
// vocabulary shared between the prompt and the merger.
package domain

// Issue tags the examiner may attach to a sentence. The first two are
// computed deterministically from the raw sentence; the rest are the
// model's qualitative judgement.
const (
	IssuePlaceholderNotBlank = "placeholder_not_<blank>"
	IssueBlankCountNot1      = "blank_count_not_1"
	IssueMissingContext      = "missing_context"
	IssueNotStoryLike        = "not_story_like"
	IssueDefinitionStyle     = "definition_style"
	IssueGrammar             = "grammar"
	IssueAmbiguity           = "ambiguity"
	IssueTooVague            = "too_vague"
	IssueUsesDirectSynonym   = "uses_direct_synonym"
	IssueRepetitivePattern   = "repetitive_pattern"
	IssueAmericanSpelling    = "american_spelling"
	IssueBelowSpecScore      = "below_spec_score"

	// IssueMissingModelOutput marks a sentence the model returned no
	// entry for. It is never offered to the model.
	IssueMissingModelOutput = "missing_model_output"
)

// AllowedIssues is the tag vocabulary offered to the model in the prompt.
var AllowedIssues = []string{
	IssuePlaceholderNotBlank,
	IssueBlankCountNot1,
	IssueMissingContext,
	IssueNotStoryLike,
	IssueDefinitionStyle,
	IssueGrammar,
	IssueAmbiguity,
	IssueTooVague,
	IssueUsesDirectSynonym,
	IssueRepetitivePattern,
	IssueAmericanSpelling,
	IssueBelowSpecScore,
}

// Row is one quiz sentence as read from the source CSV.
// RowIndex is 1-based and counts the header as row 1, so the first data
// row has RowIndex 2.
type Row struct {
	Level    string `json:"level"`
	Word     string `json:"word"`
	Sentence string `json:"sentence"`
	RowIndex int    `json:"row_index"`
}

// Scores holds the model's 1..5 rubric scores for one sentence.
type Scores struct {
	Accuracy              int `json:"accuracy"`
	Clarity               int `json:"clarity"`
	EducationalUsefulness int `json:"educational_usefulness"`
}

// Valid reports whether all three scores were actually provided.
// The response schema forces scores into 1..5, so a zero can only mean
// the model omitted the field.
func (s Scores) Valid() bool {
	return s.Accuracy >= 1 && s.Clarity >= 1 && s.EducationalUsefulness >= 1
}

// Min returns the smallest of the three scores.
func (s Scores) Min() int {
	m := s.Accuracy
	if s.Clarity < m {
		m = s.Clarity
	}
	if s.EducationalUsefulness < m {
		m = s.EducationalUsefulness
	}
	return m
}

// SentenceVerdict is the merged judgement for one sentence of a word
// group. Index is the 1-based position within the group; RowIndex ties
// the sentence back to the source CSV.
type SentenceVerdict struct {
	Index    int      `json:"index"`
	RowIndex int      `json:"row_index"`
	Pass     bool     `json:"pass"`
	Issues   []string `json:"issues"`
	Scores   Scores   `json:"scores"`
}

// PassIgnoringPlaceholder reports whether the sentence would pass if the
// placeholder-format defect were forgiven: either it passed outright, or
// it failed solely because of placeholder_not_<blank>.
func (v SentenceVerdict) PassIgnoringPlaceholder() bool {
	if v.Pass {
		return true
	}
	if len(v.Issues) == 0 {
		return false
	}
	for _, issue := range v.Issues {
		if issue != IssuePlaceholderNotBlank {
			return false
		}
	}
	return true
}

// Overall is the word-level summary of a verdict.
type Overall struct {
	Pass  bool     `json:"pass"`
	Notes []string `json:"notes"`
}

// WordVerdict is the complete merged judgement for one word group.
// It is the unit of the checkpoint log: one verdict per JSONL line.
type WordVerdict struct {
	Word      string            `json:"word"`
	Overall   Overall           `json:"overall"`
	Sentences []SentenceVerdict `json:"sentences"`
}

// PassIgnoringPlaceholder reports the word-level pass with the
// placeholder-format defect forgiven. Group-size defects still fail.
func (v WordVerdict) PassIgnoringPlaceholder(expected int) bool {
	if len(v.Sentences) != expected {
		return false
	}
	for _, s := range v.Sentences {
		if !s.PassIgnoringPlaceholder() {
			return false
		}
	}
	return true
}
