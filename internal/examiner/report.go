package examiner

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/quizcheck/internal/dataset"
	"github.com/heartmarshall/quizcheck/internal/domain"
)

const topIssueLimit = 20

// Prechecks are the deterministic pre-model counters over the dataset.
type Prechecks struct {
	RowsWithUnderscores       int `json:"rows_with_underscores"`
	RowsWithBlankTag          int `json:"rows_with_blank_tag"`
	RowsBlankCountNot1        int `json:"rows_blank_count_not_1"`
	WordsGroupSizeNotExpected int `json:"words_group_size_not_expected"`
}

// IssueCount is one entry of the issue histogram.
type IssueCount struct {
	Issue string `json:"issue"`
	Count int    `json:"count"`
}

// Report is the machine-readable result of a run.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	CSVPath  string `json:"csv_path"`
	SpecPath string `json:"spec_path"`
	Endpoint string `json:"endpoint"`
	Model    string `json:"model"`

	Header       []string       `json:"header"`
	LevelCounts  map[string]int `json:"level_counts"`
	ExpectedRows int            `json:"expected_rows"`
	Prechecks    Prechecks      `json:"prechecks"`

	WordsPass                    int `json:"words_pass"`
	WordsFail                    int `json:"words_fail"`
	WordsPassIgnoringPlaceholder int `json:"words_pass_ignoring_placeholder"`
	WordsFailIgnoringPlaceholder int `json:"words_fail_ignoring_placeholder"`

	SentenceResults                         int `json:"sentence_results"`
	SentenceFail                            int `json:"sentence_fail"`
	SentenceFailIgnoringPlaceholderNotBlank int `json:"sentence_fail_ignoring_placeholder_not_blank"`

	TopIssues []IssueCount         `json:"top_issues"`
	Words     []domain.WordVerdict `json:"words"`
}

// buildReport aggregates the verdict map for the words in scope.
func buildReport(ds *dataset.Dataset, words []string, verdicts map[string]domain.WordVerdict, cfg *Config, endpoint string) *Report {
	r := &Report{
		RunID:        uuid.NewString(),
		GeneratedAt:  time.Now().UTC(),
		CSVPath:      cfg.CSVPath,
		SpecPath:     cfg.SpecPath,
		Endpoint:     endpoint,
		Model:        cfg.Model,
		Header:       ds.Header,
		LevelCounts:  ds.LevelCounts,
		ExpectedRows: cfg.ExpectedRows,
	}

	for _, row := range ds.Rows {
		meta := domain.NormalisePlaceholders(row.Sentence)
		if meta.UsesUnderscores {
			r.Prechecks.RowsWithUnderscores++
		}
		if meta.UsesBlankTag {
			r.Prechecks.RowsWithBlankTag++
		}
		if meta.NormalisedBlankCount != 1 {
			r.Prechecks.RowsBlankCountNot1++
		}
	}
	for _, word := range ds.Words {
		if len(ds.Groups[word]) != cfg.ExpectedRows {
			r.Prechecks.WordsGroupSizeNotExpected++
		}
	}

	histogram := make(map[string]int)

	for _, word := range words {
		v, ok := verdicts[word]
		if !ok {
			continue
		}
		r.Words = append(r.Words, v)

		if v.Overall.Pass {
			r.WordsPass++
		} else {
			r.WordsFail++
		}
		if v.PassIgnoringPlaceholder(cfg.ExpectedRows) && len(ds.Groups[word]) == cfg.ExpectedRows {
			r.WordsPassIgnoringPlaceholder++
		} else {
			r.WordsFailIgnoringPlaceholder++
		}

		for _, s := range v.Sentences {
			r.SentenceResults++
			if !s.Pass {
				r.SentenceFail++
			}
			if !s.PassIgnoringPlaceholder() {
				r.SentenceFailIgnoringPlaceholderNotBlank++
			}
			for _, issue := range s.Issues {
				histogram[issue]++
			}
		}
	}

	sort.Slice(r.Words, func(a, b int) bool { return r.Words[a].Word < r.Words[b].Word })
	r.TopIssues = topIssues(histogram, topIssueLimit)

	return r
}

// topIssues sorts the histogram by count descending, tag ascending.
func topIssues(histogram map[string]int, limit int) []IssueCount {
	out := make([]IssueCount, 0, len(histogram))
	for issue, count := range histogram {
		out = append(out, IssueCount{Issue: issue, Count: count})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		return out[a].Issue < out[b].Issue
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Markdown renders the human summary.
func (r *Report) Markdown() string {
	var b strings.Builder

	b.WriteString("# Quiz sentence examination\n\n")
	fmt.Fprintf(&b, "- Generated: %s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Source: `%s`\n", r.CSVPath)
	fmt.Fprintf(&b, "- Specification: `%s`\n", r.SpecPath)
	fmt.Fprintf(&b, "- Model: `%s` at `%s`\n\n", r.Model, r.Endpoint)

	b.WriteString("## Headline\n\n")
	fmt.Fprintf(&b, "- Words: %d pass / %d fail (strict)\n", r.WordsPass, r.WordsFail)
	fmt.Fprintf(&b, "- Words ignoring placeholder format: %d pass / %d fail\n",
		r.WordsPassIgnoringPlaceholder, r.WordsFailIgnoringPlaceholder)
	fmt.Fprintf(&b, "- Sentences: %d examined, %d fail (%d ignoring %s)\n\n",
		r.SentenceResults, r.SentenceFail,
		r.SentenceFailIgnoringPlaceholderNotBlank, domain.IssuePlaceholderNotBlank)

	b.WriteString("## Prechecks\n\n")
	fmt.Fprintf(&b, "- Rows using underscore placeholders: %d\n", r.Prechecks.RowsWithUnderscores)
	fmt.Fprintf(&b, "- Rows already using %s: %d\n", domain.BlankToken, r.Prechecks.RowsWithBlankTag)
	fmt.Fprintf(&b, "- Rows with normalised blank count != 1: %d\n", r.Prechecks.RowsBlankCountNot1)
	fmt.Fprintf(&b, "- Words with group size != %d: %d\n\n", r.ExpectedRows, r.Prechecks.WordsGroupSizeNotExpected)

	b.WriteString("## Top issues\n\n")
	if len(r.TopIssues) == 0 {
		b.WriteString("No issues recorded.\n")
	}
	for _, ic := range r.TopIssues {
		fmt.Fprintf(&b, "- `%s` — %d\n", ic.Issue, ic.Count)
	}

	return b.String()
}

// Write stores the JSON report and the Markdown summary, replacing any
// prior files.
func (r *Report) Write(jsonPath, mdPath string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	if err := os.WriteFile(mdPath, []byte(r.Markdown()), 0644); err != nil {
		return fmt.Errorf("write markdown summary: %w", err)
	}
	return nil
}
