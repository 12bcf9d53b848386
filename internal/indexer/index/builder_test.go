package index

import (
	"iter"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	id     int
	tokens []string
}

func docs(items ...doc) iter.Seq2[int, []string] {
	return func(yield func(int, []string) bool) {
		for _, d := range items {
			if !yield(d.id, d.tokens) {
				return
			}
		}
	}
}

func sampleCorpus() iter.Seq2[int, []string] {
	return docs(
		doc{1, []string{"a", "b"}},
		doc{2, []string{"b"}},
		doc{3, []string{"a"}},
	)
}

func TestBuildScoresPostingsByIDF(t *testing.T) {
	idx := Build(sampleCorpus())

	require.Equal(t, 3, idx.DocumentCount())
	require.Equal(t, 2, idx.TokenCount())

	want := math.Log(3.0 / 2.0)
	a := idx.Postings("a")
	require.Len(t, a, 2)
	assert.Equal(t, []int{1, 3}, []int{a[0].DocID, a[1].DocID})
	for _, p := range a {
		assert.InDelta(t, want, p.Score, 1e-12)
	}

	b := idx.Postings("b")
	require.Len(t, b, 2)
	assert.Equal(t, []int{1, 2}, []int{b[0].DocID, b[1].DocID})
}

func TestBuildSortsPostingsByDocID(t *testing.T) {
	idx := Build(docs(
		doc{9, []string{"x"}},
		doc{4, []string{"x", "y"}},
		doc{7, []string{"x"}},
		doc{1, []string{"y"}},
	))

	for token := range idx.Tokens() {
		list := idx.Postings(token)
		assert.True(t, slices.IsSortedFunc(list, byDocID[int]), "postings for %q not sorted", token)
	}
}

func TestBuildTokenInEveryDocumentScoresZero(t *testing.T) {
	idx := Build(docs(
		doc{1, []string{"common"}},
		doc{2, []string{"common"}},
	))

	for _, p := range idx.Postings("common") {
		assert.Zero(t, p.Score)
	}
}

func TestBuildCountsRepeatedTokensPerOccurrence(t *testing.T) {
	idx := Build(docs(
		doc{1, []string{"dup", "dup"}},
		doc{2, []string{"other"}},
		doc{3, []string{"other"}},
		doc{4, []string{"other"}},
	))

	list := idx.Postings("dup")
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].DocID)
	assert.Equal(t, 1, list[1].DocID)
	assert.InDelta(t, math.Log(4.0/2.0), list[0].Score, 1e-12)
}

func TestBuildEmptyCorpus(t *testing.T) {
	idx := Build(docs())

	assert.Zero(t, idx.DocumentCount())
	assert.Zero(t, idx.TokenCount())
	assert.Empty(t, idx.Postings("anything"))
}

func TestBuildDocumentWithoutTokens(t *testing.T) {
	idx := Build(docs(
		doc{1, nil},
		doc{2, []string{"a"}},
	))

	assert.Equal(t, 2, idx.DocumentCount())
	assert.Equal(t, 1, idx.TokenCount())
	assert.InDelta(t, math.Log(2), idx.Postings("a")[0].Score, 1e-12)
}

func TestBuilderResetsAfterBuild(t *testing.T) {
	b := NewBuilder[string, string]()
	b.Add("first", []string{"a"})
	first := b.Build()

	assert.Zero(t, b.DocumentCount())
	b.Add("second", []string{"b"})
	second := b.Build()

	assert.Equal(t, 1, first.TokenCount())
	assert.Empty(t, first.Postings("b"))
	assert.Equal(t, "second", second.Postings("b")[0].DocID)
}

func TestPostingsReturnsCopy(t *testing.T) {
	idx := Build(sampleCorpus())

	list := idx.Postings("a")
	list[0].Score = 100

	assert.NotEqual(t, 100.0, idx.Postings("a")[0].Score)
}
