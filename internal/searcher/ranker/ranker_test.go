package ranker

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(docs ...ScoredDoc) iter.Seq2[string, float64] {
	return func(yield func(string, float64) bool) {
		for _, d := range docs {
			if !yield(d.DocID, d.Score) {
				return
			}
		}
	}
}

var sample = []ScoredDoc{
	{DocID: "c", Score: 0.2},
	{DocID: "a", Score: 0.9},
	{DocID: "d", Score: 0.5},
	{DocID: "b", Score: 0.2},
	{DocID: "e", Score: 0.1},
}

func TestRankTopK(t *testing.T) {
	ranked, total := Rank(seq(sample...), 3)

	assert.Equal(t, 5, total)
	assert.Equal(t, []ScoredDoc{
		{DocID: "a", Score: 0.9},
		{DocID: "d", Score: 0.5},
		{DocID: "b", Score: 0.2},
	}, ranked)
}

func TestRankLimitLargerThanResults(t *testing.T) {
	ranked, total := Rank(seq(sample[:2]...), 10)

	assert.Equal(t, 2, total)
	assert.Equal(t, "a", ranked[0].DocID)
	assert.Len(t, ranked, 2)
}

func TestRankAll(t *testing.T) {
	ranked, total := Rank(seq(sample...), 0)

	assert.Equal(t, 5, total)
	ids := make([]string, len(ranked))
	for i, d := range ranked {
		ids[i] = d.DocID
	}
	assert.Equal(t, []string{"a", "d", "b", "c", "e"}, ids)
}

func TestRankEmpty(t *testing.T) {
	ranked, total := Rank(seq(), 5)

	assert.Zero(t, total)
	assert.Empty(t, ranked)
}
