// Package normalize canonicalizes raw query text before screening. Guard
// patterns and audit records both work on the normalized form so the same
// query always produces the same verdict and the same log line.
package normalize

import (
	"regexp"
	"strings"
)

// NormalizedQuery carries the canonical form of a question alongside the
// text as the user typed it.
type NormalizedQuery struct {
	Raw   string
	Text  string
	Empty bool
	Words int
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Query trims and collapses whitespace. Interior newlines become single
// spaces so a multi-line paste is screened as one sentence.
func Query(raw string) NormalizedQuery {
	text := strings.TrimSpace(raw)
	text = whitespaceRegex.ReplaceAllString(text, " ")

	nq := NormalizedQuery{
		Raw:  raw,
		Text: text,
	}
	if text == "" {
		nq.Empty = true
		return nq
	}
	nq.Words = len(strings.Fields(text))
	return nq
}
