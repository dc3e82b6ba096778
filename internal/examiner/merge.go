package examiner

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/heartmarshall/quizcheck/internal/domain"
)

// noOutputNote is the advisory attached when the model returned no entry
// for a word even after the per-word fallback.
const noOutputNote = "Model did not return an entry for this word."

// merge reconciles one word's model output with deterministic ground
// truth. rows are the word's CSV rows in file order; required maps
// 1-based sentence index to the normaliser's required issues; res is the
// model's entry for the word, nil when the model produced none.
//
// The merger only ever downgrades: a model pass may be forced to fail,
// never the other way round. Overall pass holds iff the group has
// exactly expected rows and every merged sentence passes.
func merge(word string, rows []domain.Row, required map[int][]string, res *wordResult, expected, scoreFloor int) domain.WordVerdict {
	verdict := domain.WordVerdict{Word: word}

	if res != nil {
		verdict.Overall.Notes = slices.Clone(res.Overall.Notes)
	} else {
		verdict.Overall.Notes = []string{noOutputNote}
	}

	seen := make(map[int]bool, expected)
	var sentences []domain.SentenceVerdict

	if res != nil {
		for _, s := range res.Sentences {
			if s.Index < 1 || s.Index > expected || seen[s.Index] {
				continue
			}
			seen[s.Index] = true

			sv := domain.SentenceVerdict{
				Index:    s.Index,
				RowIndex: s.RowIndex,
				Pass:     s.Pass,
				Issues:   dedupe(s.Issues),
				Scores:   s.Scores,
			}
			if s.Index <= len(rows) {
				sv.RowIndex = rows[s.Index-1].RowIndex
			}

			if req := required[s.Index]; len(req) > 0 {
				for _, tag := range req {
					sv.Issues = appendIssue(sv.Issues, tag)
				}
				sv.Pass = false
			}

			if sv.Scores.Valid() && sv.Scores.Min() < scoreFloor {
				sv.Issues = appendIssue(sv.Issues, domain.IssueBelowSpecScore)
				sv.Pass = false
			}

			sentences = append(sentences, sv)
		}
	}

	var missing []int
	for i := 1; i <= expected; i++ {
		if seen[i] {
			continue
		}
		missing = append(missing, i)

		sv := domain.SentenceVerdict{
			Index:  i,
			Pass:   false,
			Issues: dedupe(required[i]),
		}
		if i <= len(rows) {
			sv.RowIndex = rows[i-1].RowIndex
		}
		sv.Issues = appendIssue(sv.Issues, domain.IssueMissingModelOutput)
		sentences = append(sentences, sv)
	}

	sort.Slice(sentences, func(a, b int) bool { return sentences[a].Index < sentences[b].Index })
	verdict.Sentences = sentences

	allPass := true
	for _, s := range sentences {
		if !s.Pass {
			allPass = false
			break
		}
	}
	verdict.Overall.Pass = len(rows) == expected && allPass

	if !verdict.Overall.Pass {
		if len(rows) != expected {
			verdict.Overall.Notes = append(verdict.Overall.Notes,
				fmt.Sprintf("Word has %d rows in CSV (expected %d).", len(rows), expected))
		}
		if res != nil && len(missing) > 0 {
			verdict.Overall.Notes = append(verdict.Overall.Notes,
				fmt.Sprintf("Model output missing sentence indices: %s.", joinInts(missing)))
		}
	}

	return verdict
}

// dedupe copies issues keeping the first occurrence of each tag.
func dedupe(issues []string) []string {
	var out []string
	for _, tag := range issues {
		out = appendIssue(out, tag)
	}
	return out
}

// appendIssue adds tag unless already present.
func appendIssue(issues []string, tag string) []string {
	if slices.Contains(issues, tag) {
		return issues
	}
	return append(issues, tag)
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
