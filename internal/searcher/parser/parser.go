package parser

import (
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/indexer/tokenizer"
)

// QueryPlan is a tokenized query. Terms keeps repeats: every occurrence is
// an independent term and counts toward score normalization.
type QueryPlan struct {
	Terms    []string
	RawQuery string
}

// Parse tokenizes query with the same options used for the corpus.
func Parse(query string, opts ...tokenizer.Option) *QueryPlan {
	return &QueryPlan{
		Terms:    tokenizer.Tokenize(query, opts...),
		RawQuery: query,
	}
}

// Normalized renders the term multiset in a canonical order. Two plans with
// the same normalized form produce the same scores.
func (p *QueryPlan) Normalized() string {
	terms := slices.Clone(p.Terms)
	slices.Sort(terms)
	return strings.Join(terms, " ")
}
