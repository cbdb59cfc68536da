package ingest

import (
	"regexp"
	"strings"

	"clausebase/internal/rag/chunk"
	"clausebase/internal/rag/hashing"
)

var (
	horizontalWhitespace = regexp.MustCompile(`(?m)[\t\x0b\x0c\r ]+`)
	excessBlankLines     = regexp.MustCompile(`\n{3,}`)
)

// Preprocessed is the normalized form of a document's elements, ready for
// chunking, plus the content hash used for dedupe (§4.2).
type Preprocessed struct {
	Elements []chunk.ParsedElement
	Hash     string
}

// normalizeWhitespace collapses runs of horizontal whitespace and excess
// blank lines while preserving paragraph structure, ahead of chunking.
func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = horizontalWhitespace.ReplaceAllString(s, " ")
	s = excessBlankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Preprocess normalizes each element's text and computes the whole
// document's dedupe hash over their concatenation (§4.2).
func Preprocess(req Request) Preprocessed {
	norm := make([]chunk.ParsedElement, len(req.Elements))
	var texts []string
	for i, el := range req.Elements {
		el.Text = normalizeWhitespace(el.Text)
		norm[i] = el
		texts = append(texts, el.Text)
	}
	return Preprocessed{Elements: norm, Hash: hashing.ContentHash(strings.Join(texts, "\n"))}
}
