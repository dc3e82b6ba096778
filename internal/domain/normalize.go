package domain

import (
	"strings"
)

// BlankToken is the canonical placeholder for the removed word in a
// fill-in-the-blank sentence.
const BlankToken = "<blank>"

// UnderscoreToken is the legacy placeholder: a run of exactly five
// underscores. Always a spec violation.
const UnderscoreToken = "_____"

// PlaceholderMeta describes how a raw sentence represents its blank.
// Counts and flags are computed on the original string except
// NormalisedBlankCount, which is computed after substitution.
type PlaceholderMeta struct {
	UsesBlankTag         bool   `json:"uses_blank_tag"`
	UsesUnderscores      bool   `json:"uses_underscores"`
	RawBlankCount        int    `json:"raw_blank_count"`
	RawUnderscoreRuns    int    `json:"raw_underscore_runs"`
	Normalised           string `json:"normalised_sentence"`
	NormalisedBlankCount int    `json:"normalised_blank_count"`
}

// NormalisePlaceholders maps legacy underscore placeholders to the
// canonical <blank> token. The only substitution performed is
// five-underscore run -> <blank>; all other content is left untouched.
// A sentence already using only <blank> tokens comes back unchanged.
func NormalisePlaceholders(sentence string) PlaceholderMeta {
	meta := PlaceholderMeta{
		RawBlankCount:     strings.Count(sentence, BlankToken),
		RawUnderscoreRuns: strings.Count(sentence, UnderscoreToken),
	}
	meta.UsesBlankTag = meta.RawBlankCount > 0
	meta.UsesUnderscores = meta.RawUnderscoreRuns > 0
	meta.Normalised = strings.ReplaceAll(sentence, UnderscoreToken, BlankToken)
	meta.NormalisedBlankCount = strings.Count(meta.Normalised, BlankToken)
	return meta
}

// RequiredIssues derives the deterministic defect tags for a sentence.
// The merger guarantees these appear in the final verdict regardless of
// what the model returns.
func (m PlaceholderMeta) RequiredIssues() []string {
	var issues []string
	if m.UsesUnderscores {
		issues = append(issues, IssuePlaceholderNotBlank)
	}
	if m.NormalisedBlankCount != 1 {
		issues = append(issues, IssueBlankCountNot1)
	}
	return issues
}
