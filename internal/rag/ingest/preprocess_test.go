package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clausebase/internal/rag/chunk"
)

func TestPreprocess_NormalizesWhitespacePerElement(t *testing.T) {
	req := Request{
		Elements: []chunk.ParsedElement{
			{Kind: chunk.KindParagraph, Text: "hello   \t world\r\n\r\n\r\nagain"},
		},
	}
	pre := Preprocess(req)
	require.Len(t, pre.Elements, 1)
	assert.NotContains(t, pre.Elements[0].Text, "\t")
	assert.NotContains(t, pre.Elements[0].Text, "\r")
}

func TestPreprocess_HashDependsOnAllElementsJoined(t *testing.T) {
	a := Preprocess(Request{Elements: []chunk.ParsedElement{{Text: "one"}, {Text: "two"}}})
	b := Preprocess(Request{Elements: []chunk.ParsedElement{{Text: "one"}, {Text: "three"}}})
	assert.NotEqual(t, a.Hash, b.Hash)
}

func TestPreprocess_IdenticalInputSameHash(t *testing.T) {
	a := Preprocess(Request{Elements: []chunk.ParsedElement{{Text: "same content"}}})
	b := Preprocess(Request{Elements: []chunk.ParsedElement{{Text: "same   content"}}})
	// Preprocess collapses runs of horizontal whitespace in each element
	// before hashing, so differing internal spacing yields the same hash.
	assert.Equal(t, a.Hash, b.Hash)
}

func TestPreprocess_PreservesNonTextFields(t *testing.T) {
	req := Request{Elements: []chunk.ParsedElement{
		{Kind: chunk.KindHeading, Text: "Title", PageNumber: 3, HeadingLevel: 1},
	}}
	pre := Preprocess(req)
	require.Len(t, pre.Elements, 1)
	assert.Equal(t, chunk.KindHeading, pre.Elements[0].Kind)
	assert.Equal(t, 3, pre.Elements[0].PageNumber)
	assert.Equal(t, 1, pre.Elements[0].HeadingLevel)
}
