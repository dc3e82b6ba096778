package examiner

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/quizcheck/internal/domain"
)

func goodScores() domain.Scores {
	return domain.Scores{Accuracy: 5, Clarity: 5, EducationalUsefulness: 5}
}

// makeGroup builds a word group of n rows; sentences at the given
// 1-based positions use the legacy underscore placeholder.
func makeGroup(word string, n int, underscoreAt ...int) []domain.Row {
	underscore := make(map[int]bool, len(underscoreAt))
	for _, i := range underscoreAt {
		underscore[i] = true
	}
	rows := make([]domain.Row, 0, n)
	for i := 1; i <= n; i++ {
		sentence := fmt.Sprintf("Sentence %d keeps the <blank> hidden.", i)
		if underscore[i] {
			sentence = fmt.Sprintf("Sentence %d keeps the _____ hidden.", i)
		}
		rows = append(rows, domain.Row{
			Level:    "1",
			Word:     word,
			Sentence: sentence,
			RowIndex: i + 1,
		})
	}
	return rows
}

func passingResult(word string, n int) *wordResult {
	res := &wordResult{Word: word, Overall: overallResult{Pass: true, Notes: []string{}}}
	for i := 1; i <= n; i++ {
		res.Sentences = append(res.Sentences, sentenceResult{
			Index:    i,
			RowIndex: i + 1,
			Pass:     true,
			Issues:   []string{},
			Scores:   goodScores(),
		})
	}
	return res
}

// Scenario: five of ten rows use underscores and the model waves them
// all through. The deterministic overlay must catch exactly those five,
// failing the strict pass while the placeholder-agnostic pass survives.
func TestMerge_PlaceholderOverlayBeatsModelPass(t *testing.T) {
	t.Parallel()

	rows := makeGroup("apple", 10, 2, 4, 6, 8, 10)
	_, required := buildPayload("apple", rows)

	v := merge("apple", rows, required, passingResult("apple", 10), 10, 4)

	flagged := 0
	for _, s := range v.Sentences {
		for _, issue := range s.Issues {
			if issue == domain.IssuePlaceholderNotBlank {
				flagged++
				assert.False(t, s.Pass, "index %d must fail", s.Index)
			}
		}
	}
	assert.Equal(t, 5, flagged)
	assert.False(t, v.Overall.Pass)
	assert.True(t, v.PassIgnoringPlaceholder(10))
}

// Scenario: model passes a sentence with one score below the floor.
func TestMerge_ScoreFloorDowngrade(t *testing.T) {
	t.Parallel()

	rows := makeGroup("brook", 1)
	_, required := buildPayload("brook", rows)

	res := passingResult("brook", 1)
	res.Sentences[0].Scores = domain.Scores{Accuracy: 5, Clarity: 5, EducationalUsefulness: 3}

	v := merge("brook", rows, required, res, 1, 4)
	require.Len(t, v.Sentences, 1)
	assert.Contains(t, v.Sentences[0].Issues, domain.IssueBelowSpecScore)
	assert.False(t, v.Sentences[0].Pass)
	assert.False(t, v.Overall.Pass)
}

func TestMerge_ScoreFloorIsConfigurable(t *testing.T) {
	t.Parallel()

	rows := makeGroup("brook", 1)
	_, required := buildPayload("brook", rows)

	res := passingResult("brook", 1)
	res.Sentences[0].Scores = domain.Scores{Accuracy: 3, Clarity: 3, EducationalUsefulness: 3}

	v := merge("brook", rows, required, res, 1, 3)
	assert.True(t, v.Overall.Pass, "floor of 3 accepts all-3 scores")
}

func TestMerge_OmittedScoresDoNotTriggerFloor(t *testing.T) {
	t.Parallel()

	rows := makeGroup("cedar", 1)
	_, required := buildPayload("cedar", rows)

	res := passingResult("cedar", 1)
	res.Sentences[0].Scores = domain.Scores{}

	v := merge("cedar", rows, required, res, 1, 4)
	assert.NotContains(t, v.Sentences[0].Issues, domain.IssueBelowSpecScore)
	assert.True(t, v.Sentences[0].Pass)
}

// Scenario: nine rows instead of ten. Every sentence may pass, the word
// must not.
func TestMerge_GroupSizeDefect(t *testing.T) {
	t.Parallel()

	rows := makeGroup("x", 9)
	_, required := buildPayload("x", rows)

	v := merge("x", rows, required, passingResult("x", 9), 10, 4)

	assert.False(t, v.Overall.Pass)
	assert.Contains(t, v.Overall.Notes, "Word has 9 rows in CSV (expected 10).")

	// Completeness: still exactly ten sentence verdicts, the tenth
	// synthesised.
	require.Len(t, v.Sentences, 10)
	last := v.Sentences[9]
	assert.Equal(t, 10, last.Index)
	assert.False(t, last.Pass)
	assert.Contains(t, last.Issues, domain.IssueMissingModelOutput)
	assert.Equal(t, 0, last.RowIndex, "no CSV row backs the synthetic index")
}

func TestMerge_NoModelOutput(t *testing.T) {
	t.Parallel()

	rows := makeGroup("ghost", 10, 1)
	_, required := buildPayload("ghost", rows)

	v := merge("ghost", rows, required, nil, 10, 4)

	assert.False(t, v.Overall.Pass)
	assert.Contains(t, v.Overall.Notes, noOutputNote)
	require.Len(t, v.Sentences, 10)
	for _, s := range v.Sentences {
		assert.False(t, s.Pass)
		assert.Contains(t, s.Issues, domain.IssueMissingModelOutput)
	}
	// Required issues survive even without any model entry.
	assert.Contains(t, v.Sentences[0].Issues, domain.IssuePlaceholderNotBlank)
}

func TestMerge_MissingIndicesFilled(t *testing.T) {
	t.Parallel()

	rows := makeGroup("delta", 10)
	_, required := buildPayload("delta", rows)

	res := passingResult("delta", 10)
	// Model skips indices 3 and 7.
	res.Sentences = append(res.Sentences[:2], append(res.Sentences[3:6], res.Sentences[7:]...)...)

	v := merge("delta", rows, required, res, 10, 4)

	require.Len(t, v.Sentences, 10)
	assert.False(t, v.Overall.Pass)
	assert.Contains(t, v.Overall.Notes, "Model output missing sentence indices: 3, 7.")

	for _, idx := range []int{3, 7} {
		s := v.Sentences[idx-1]
		assert.Equal(t, idx, s.Index)
		assert.False(t, s.Pass)
		assert.Contains(t, s.Issues, domain.IssueMissingModelOutput)
		assert.Equal(t, rows[idx-1].RowIndex, s.RowIndex)
	}
}

// The merger never upgrades: a model fail stays a fail no matter what.
func TestMerge_MonotonicDowngradeOnly(t *testing.T) {
	t.Parallel()

	rows := makeGroup("echo", 10)
	_, required := buildPayload("echo", rows)

	res := passingResult("echo", 10)
	res.Sentences[4].Pass = false
	res.Sentences[4].Issues = []string{domain.IssueTooVague}

	v := merge("echo", rows, required, res, 10, 4)

	assert.False(t, v.Sentences[4].Pass)
	assert.False(t, v.Overall.Pass)

	// strict word pass implies every sentence pass
	clean := merge("echo", rows, required, passingResult("echo", 10), 10, 4)
	assert.True(t, clean.Overall.Pass)
	for _, s := range clean.Sentences {
		assert.True(t, s.Pass)
	}
}

func TestMerge_ExtrasAndDuplicatesIgnored(t *testing.T) {
	t.Parallel()

	rows := makeGroup("fox", 2)
	_, required := buildPayload("fox", rows)

	res := passingResult("fox", 2)
	dup := res.Sentences[0]
	dup.Pass = false
	res.Sentences = append(res.Sentences,
		dup, // duplicate index, first wins
		sentenceResult{Index: 0, Pass: true},
		sentenceResult{Index: 3, Pass: true}, // beyond expected
		sentenceResult{Index: -1, Pass: true},
	)

	v := merge("fox", rows, required, res, 2, 4)
	require.Len(t, v.Sentences, 2)
	assert.True(t, v.Sentences[0].Pass, "first occurrence of index 1 wins")
	assert.True(t, v.Overall.Pass)
}

func TestMerge_RowIndexFromGroundTruth(t *testing.T) {
	t.Parallel()

	rows := makeGroup("gull", 2)
	_, required := buildPayload("gull", rows)

	res := passingResult("gull", 2)
	res.Sentences[0].RowIndex = 999 // model hallucinated the tie-back

	v := merge("gull", rows, required, res, 2, 4)
	assert.Equal(t, rows[0].RowIndex, v.Sentences[0].RowIndex)
}

func TestMerge_ModelNotesPreserved(t *testing.T) {
	t.Parallel()

	rows := makeGroup("heron", 9)
	_, required := buildPayload("heron", rows)

	res := passingResult("heron", 9)
	res.Overall.Notes = []string{"sentences lean on coastal imagery"}

	v := merge("heron", rows, required, res, 10, 4)
	assert.Equal(t, "sentences lean on coastal imagery", v.Overall.Notes[0])
	assert.Contains(t, v.Overall.Notes, "Word has 9 rows in CSV (expected 10).")
}

func TestMerge_IssueDeduplication(t *testing.T) {
	t.Parallel()

	rows := makeGroup("ibis", 1, 1)
	_, required := buildPayload("ibis", rows)

	res := passingResult("ibis", 1)
	// Model already reported the placeholder defect itself.
	res.Sentences[0].Pass = false
	res.Sentences[0].Issues = []string{domain.IssuePlaceholderNotBlank, domain.IssuePlaceholderNotBlank}

	v := merge("ibis", rows, required, res, 1, 4)

	want := []string{domain.IssuePlaceholderNotBlank}
	if diff := cmp.Diff(want, v.Sentences[0].Issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
}
