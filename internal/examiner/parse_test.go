package examiner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/quizcheck/internal/domain"
)

func TestParseResults_StrictObject(t *testing.T) {
	t.Parallel()

	content := `{"results":[{"word":"apple","overall":{"pass":true,"notes":[]},"sentences":[
		{"index":1,"row_index":2,"pass":true,"issues":[],
		 "scores":{"accuracy":5,"clarity":4,"educational_usefulness":4}}]}]}`

	results, err := parseResults(content)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "apple", results[0].Word)
	assert.True(t, results[0].Overall.Pass)
	require.Len(t, results[0].Sentences, 1)
	assert.Equal(t, 5, results[0].Sentences[0].Scores.Accuracy)
}

func TestParseResults_BareList(t *testing.T) {
	t.Parallel()

	results, err := parseResults(`[{"word":"pear","overall":{"pass":false,"notes":["weak"]},"sentences":[]}]`)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "pear", results[0].Word)
	assert.Equal(t, []string{"weak"}, results[0].Overall.Notes)
}

func TestParseResults_AlternateContainerKeys(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"results", "items", "output", "data"} {
		key := key
		t.Run(key, func(t *testing.T) {
			t.Parallel()
			results, err := parseResults(`{"` + key + `":[{"word":"plum"}]}`)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, "plum", results[0].Word)
		})
	}
}

func TestParseResults_SlicesProseWrappedJSON(t *testing.T) {
	t.Parallel()

	content := `here is the JSON: {"results":[{"word":"apple"}]} hope that helps!`
	results, err := parseResults(content)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "apple", results[0].Word)
}

func TestParseResults_SlicesProseWrappedList(t *testing.T) {
	t.Parallel()

	results, err := parseResults("Sure!\n[{\"word\":\"fig\"}]\nDone.")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "fig", results[0].Word)
}

func TestParseResults_ShapeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "no json at all", content: "I could not produce output."},
		{name: "scalar", content: `"just a string"`},
		{name: "object without list", content: `{"verdict":"pass"}`},
		{name: "container key not a list", content: `{"results":{"word":"apple"}}`},
		{name: "unbalanced braces", content: `here it comes: {"results":[`},
		{name: "empty", content: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseResults(tt.content)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrShape), "want ErrShape, got %v", err)
		})
	}
}

func TestParseResults_UnknownFieldsIgnored(t *testing.T) {
	t.Parallel()

	results, err := parseResults(`{"results":[{"word":"kiwi","confidence":0.9,"extra":{"x":1}}]}`)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "kiwi", results[0].Word)
}
