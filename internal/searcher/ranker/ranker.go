// Package ranker selects the best-scoring documents from an unordered
// stream of search results.
package ranker

import (
	"container/heap"
	"iter"
	"slices"
)

type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Rank drains results and returns the top limit documents by score
// descending, ties broken by DocID ascending, along with the number of
// documents seen. A limit of zero or less keeps every document.
func Rank(results iter.Seq2[string, float64], limit int) ([]ScoredDoc, int) {
	if limit <= 0 {
		return rankAll(results)
	}
	h := make(scoredDocHeap, 0, limit+1)
	total := 0
	for docID, score := range results {
		total++
		heap.Push(&h, ScoredDoc{DocID: docID, Score: score})
		if h.Len() > limit {
			heap.Pop(&h)
		}
	}
	ranked := make([]ScoredDoc, h.Len())
	for i := len(ranked) - 1; i >= 0; i-- {
		ranked[i] = heap.Pop(&h).(ScoredDoc)
	}
	return ranked, total
}

func rankAll(results iter.Seq2[string, float64]) ([]ScoredDoc, int) {
	var ranked []ScoredDoc
	for docID, score := range results {
		ranked = append(ranked, ScoredDoc{DocID: docID, Score: score})
	}
	slices.SortFunc(ranked, func(a, b ScoredDoc) int {
		if worse(a, b) {
			return 1
		}
		if worse(b, a) {
			return -1
		}
		return 0
	})
	return ranked, len(ranked)
}

// worse reports whether a ranks below b.
func worse(a, b ScoredDoc) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.DocID > b.DocID
}

// scoredDocHeap is a min-heap on rank: the root is the worst document kept.
type scoredDocHeap []ScoredDoc

func (h scoredDocHeap) Len() int { return len(h) }

func (h scoredDocHeap) Less(i, j int) bool { return worse(h[i], h[j]) }

func (h scoredDocHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoredDocHeap) Push(x any) {
	*h = append(*h, x.(ScoredDoc))
}

func (h *scoredDocHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
