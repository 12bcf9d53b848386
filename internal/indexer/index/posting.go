package index

import (
	"cmp"
	"errors"
)

var (
	// ErrEmptyQuery is returned when Search is called without any tokens.
	ErrEmptyQuery = errors.New("empty query")
	// ErrEmptyInput is returned by SumBy when its source yields nothing.
	ErrEmptyInput = errors.New("empty grouping input")
	// ErrEmptyPostingList reports a token recorded with zero document ids.
	ErrEmptyPostingList = errors.New("token recorded without postings")
)

// Posting records that a document contains a token, weighted by the token's
// inverse document frequency.
type Posting[ID cmp.Ordered] struct {
	DocID ID      `json:"doc_id"`
	Score float64 `json:"score"`
}

// PostingList is sorted by DocID ascending. Duplicate ids are allowed.
type PostingList[ID cmp.Ordered] []Posting[ID]

func byDocID[ID cmp.Ordered](a, b Posting[ID]) int {
	return cmp.Compare(a.DocID, b.DocID)
}
