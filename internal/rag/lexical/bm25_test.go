package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_SearchRanksMoreRelevantDocHigher(t *testing.T) {
	idx := New()
	require.NoError(t, idx.Build(
		[]string{"d1", "d2", "d3"},
		[]string{
			"the quick brown fox jumps over the lazy dog",
			"fox fox fox fox fox",
			"a completely unrelated sentence about weather",
		},
	))

	results := idx.Search("fox", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, "d2", results[0].ID, "doc with higher term frequency should rank first")
}

func TestIndex_SearchEmptyQueryReturnsNil(t *testing.T) {
	idx := New()
	require.NoError(t, idx.Build([]string{"d1"}, []string{"some content"}))
	assert.Nil(t, idx.Search("   ", 10))
}

func TestIndex_SearchOnEmptyIndexReturnsNil(t *testing.T) {
	idx := New()
	assert.Nil(t, idx.Search("anything", 10))
	assert.Equal(t, 0, idx.DocumentCount())
}

func TestIndex_BuildRejectsMismatchedLengths(t *testing.T) {
	idx := New()
	err := idx.Build([]string{"d1", "d2"}, []string{"only one"})
	assert.Error(t, err)
}

func TestIndex_AddIncrementallyGrowsCorpus(t *testing.T) {
	idx := New()
	idx.Add("d1", "alpha beta gamma")
	idx.Add("d2", "alpha alpha alpha")
	assert.Equal(t, 2, idx.DocumentCount())

	results := idx.Search("alpha", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, "d2", results[0].ID)
}

func TestIndex_SearchRespectsK(t *testing.T) {
	idx := New()
	require.NoError(t, idx.Build(
		[]string{"d1", "d2", "d3"},
		[]string{"keyword here", "keyword keyword", "keyword keyword keyword"},
	))
	results := idx.Search("keyword", 2)
	assert.Len(t, results, 2)
}
