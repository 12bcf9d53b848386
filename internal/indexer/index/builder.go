package index

import (
	"cmp"
	"fmt"
	"iter"
	"math"
	"slices"
)

// Builder accumulates raw document ids per token during a single pass over a
// corpus. It is not safe for concurrent use; see BuildParallel for
// partitioned ingestion.
type Builder[ID cmp.Ordered, T comparable] struct {
	raw      map[T][]ID
	docCount int
}

// NewBuilder returns an empty Builder.
func NewBuilder[ID cmp.Ordered, T comparable]() *Builder[ID, T] {
	return &Builder[ID, T]{
		raw: make(map[T][]ID),
	}
}

// Add records one document. The document counter advances once per call,
// and every entry in tokens appends id to that token's list, so a token
// repeated within one document is counted once per occurrence.
func (b *Builder[ID, T]) Add(id ID, tokens []T) {
	b.docCount++
	for _, token := range tokens {
		b.raw[token] = append(b.raw[token], id)
	}
}

// DocumentCount returns the number of documents added so far.
func (b *Builder[ID, T]) DocumentCount() int {
	return b.docCount
}

// Build scores and sorts every token's postings and returns the finished
// index. Each posting for a token scores ln(N/k), where N is the number of
// documents added and k the number of ids recorded for the token. The
// builder is reset afterwards and may be used for a new corpus.
func (b *Builder[ID, T]) Build() *InvertedIndex[ID, T] {
	postings := make(map[T]PostingList[ID], len(b.raw))
	n := float64(b.docCount)
	for token, ids := range b.raw {
		score := math.Log(n / float64(len(ids)))
		list := make(PostingList[ID], len(ids))
		for i, id := range ids {
			list[i] = Posting[ID]{DocID: id, Score: score}
		}
		slices.SortFunc(list, byDocID[ID])
		postings[token] = list
	}
	idx := &InvertedIndex[ID, T]{
		postings: postings,
		docCount: b.docCount,
	}
	b.raw = make(map[T][]ID)
	b.docCount = 0
	return idx
}

// absorb folds another builder's raw state into b. Lists are concatenated
// and document counts summed, which is equivalent to having added both
// partitions to a single builder.
func (b *Builder[ID, T]) absorb(other *Builder[ID, T]) error {
	b.docCount += other.docCount
	for token, ids := range other.raw {
		if len(ids) == 0 {
			return fmt.Errorf("%w: %v", ErrEmptyPostingList, token)
		}
		b.raw[token] = append(b.raw[token], ids...)
	}
	return nil
}

// Build consumes docs exactly once and returns the resulting index. An empty
// sequence yields an empty index with a document count of zero.
func Build[ID cmp.Ordered, T comparable](docs iter.Seq2[ID, []T]) *InvertedIndex[ID, T] {
	b := NewBuilder[ID, T]()
	for id, tokens := range docs {
		b.Add(id, tokens)
	}
	return b.Build()
}
