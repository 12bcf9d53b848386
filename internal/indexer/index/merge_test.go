package index

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(list []Posting[int]) []int {
	out := make([]int, len(list))
	for i, p := range list {
		out[i] = p.DocID
	}
	return out
}

func list(score float64, docIDs ...int) PostingList[int] {
	out := make(PostingList[int], len(docIDs))
	for i, id := range docIDs {
		out[i] = Posting[int]{DocID: id, Score: score}
	}
	return out
}

func TestMergeOrdersAcrossLists(t *testing.T) {
	merged := collect(Merge(
		list(1, 1, 4, 9),
		list(2, 2, 4, 4, 10),
		nil,
		list(3, 3),
	))

	assert.Equal(t, []int{1, 2, 3, 4, 4, 4, 9, 10}, ids(merged))
}

func TestMergeSameListTwice(t *testing.T) {
	l := list(1, 5, 6)
	merged := collect(Merge(l, l))

	assert.Equal(t, []int{5, 5, 6, 6}, ids(merged))
	assert.Equal(t, []int{5, 6}, ids(l), "input must not be modified")
}

func TestMergeNoLists(t *testing.T) {
	s := Merge[int]()

	_, ok := s.Next()
	assert.False(t, ok)
}

func TestMergeKeepsAllScores(t *testing.T) {
	merged := collect(Merge(list(0.5, 1, 2), list(0.25, 2, 3)))

	require.Len(t, merged, 4)
	var total float64
	for _, p := range merged {
		total += p.Score
	}
	assert.InDelta(t, 1.5, total, 1e-12)
	assert.True(t, slices.IsSortedFunc(merged, byDocID[int]))
}
