// Package specdoc extracts the authoritative rule excerpts from the
// vocabulary specification document. The excerpt is quoted verbatim into
// the LLM prompt and never parsed beyond section boundaries.
package specdoc

import (
	"fmt"
	"os"
	"strings"
)

// Anchors are the exact header lines that open the three sections fed to
// the examiner. A trailing "---" line terminates each section.
var Anchors = []string{
	"## British English Requirement (mandatory)",
	"### Quiz sentences must",
	"### Mandatory self-check",
}

const sectionSeparator = "\n\n---\n\n"

// Excerpt returns the three well-known sections of the spec document
// concatenated with a separator, in anchor order. If no anchor matches,
// the whole document is returned.
func Excerpt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read spec document: %w", err)
	}

	lines := strings.Split(string(data), "\n")

	var sections []string
	for _, anchor := range Anchors {
		if section, ok := extractSection(lines, anchor); ok {
			sections = append(sections, section)
		}
	}
	if len(sections) == 0 {
		return string(data), nil
	}
	return strings.Join(sections, sectionSeparator), nil
}

// extractSection returns the lines from the anchor line up to (but not
// including) the next "---" line, or end of document.
func extractSection(lines []string, anchor string) (string, bool) {
	start := -1
	for i, line := range lines {
		if strings.TrimRight(line, "\r") == anchor {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(strings.TrimRight(lines[i], "\r")) == "---" {
			end = i
			break
		}
	}
	return strings.TrimRight(strings.Join(lines[start:end], "\n"), "\n"), true
}
