package index

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// InvertedIndex maps tokens to their scored, id-sorted postings. It is
// read-only once built and safe for concurrent queries.
type InvertedIndex[ID cmp.Ordered, T comparable] struct {
	postings map[T]PostingList[ID]
	docCount int
}

// Postings returns a copy of the posting list for token. Unknown tokens
// yield an empty list.
func (idx *InvertedIndex[ID, T]) Postings(token T) PostingList[ID] {
	return slices.Clone(idx.postings[token])
}

// PostingCount is the number of postings recorded for token, duplicates
// included.
func (idx *InvertedIndex[ID, T]) PostingCount(token T) int {
	return len(idx.postings[token])
}

// DocumentCount is the number of documents seen while building.
func (idx *InvertedIndex[ID, T]) DocumentCount() int {
	return idx.docCount
}

// TokenCount is the number of distinct tokens in the index.
func (idx *InvertedIndex[ID, T]) TokenCount() int {
	return len(idx.postings)
}

// Tokens iterates over the indexed tokens in no particular order.
func (idx *InvertedIndex[ID, T]) Tokens() iter.Seq[T] {
	return maps.Keys(idx.postings)
}

// Search merges the postings of every query token, sums scores per document
// and divides each sum by len(tokens). Repeated tokens count as independent
// terms. The returned sequence yields each matching id once, in ascending id
// order, and can be ranged over only once.
func (idx *InvertedIndex[ID, T]) Search(tokens []T) (iter.Seq2[ID, float64], error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyQuery
	}
	lists := make([]PostingList[ID], len(tokens))
	for i, token := range tokens {
		lists[i] = idx.postings[token]
	}
	merged := Merge(lists...)
	norm := float64(len(tokens))
	consumed := false

	return func(yield func(ID, float64) bool) {
		if consumed {
			return
		}
		consumed = true
		sums, err := SumBy(merged, postingID[ID], postingScore[ID])
		if err != nil {
			// ErrEmptyInput: none of the tokens matched a document.
			return
		}
		for {
			s, ok := sums.Next()
			if !ok || !yield(s.Key, s.Total/norm) {
				return
			}
		}
	}, nil
}

func postingID[ID cmp.Ordered](p Posting[ID]) ID { return p.DocID }

func postingScore[ID cmp.Ordered](p Posting[ID]) float64 { return p.Score }
