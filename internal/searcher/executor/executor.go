package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/citation-index/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/metrics"
)

type SearchResult struct {
	Query     string             `json:"query"`
	Terms     []string           `json:"terms"`
	TotalHits int                `json:"total_hits"`
	Results   []ranker.ScoredDoc `json:"results"`
	TermStats map[string]int     `json:"term_stats"`
}

type Executor struct {
	index   *index.InvertedIndex[string, string]
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New returns an Executor over idx. m may be nil.
func New(idx *index.InvertedIndex[string, string], m *metrics.Metrics) *Executor {
	return &Executor{
		index:   idx,
		metrics: m,
		logger:  logger.WithComponent("query-executor"),
	}
}

func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrTimeout, err)
		}
		return nil, err
	}
	matches, err := e.index.Search(plan.Terms)
	if err != nil {
		e.observe("error", len(plan.Terms), 0)
		return nil, fmt.Errorf("searching %q: %w", plan.RawQuery, err)
	}
	ranked, total := ranker.Rank(matches, limit)

	termStats := make(map[string]int, len(plan.Terms))
	for _, term := range plan.Terms {
		termStats[term] = e.index.PostingCount(term)
	}

	resultType := "hit"
	if total == 0 {
		resultType = "zero_result"
	}
	e.observe(resultType, len(plan.Terms), total)
	e.logger.Debug("query executed",
		"query", plan.RawQuery,
		"terms", plan.Terms,
		"matches", total,
		"returned", len(ranked),
	)
	return &SearchResult{
		Query:     plan.RawQuery,
		Terms:     plan.Terms,
		TotalHits: total,
		Results:   ranked,
		TermStats: termStats,
	}, nil
}

func (e *Executor) observe(resultType string, terms, matches int) {
	if e.metrics == nil {
		return
	}
	e.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	e.metrics.SearchQueryTerms.Observe(float64(terms))
	if resultType != "error" {
		e.metrics.SearchResultsCount.Observe(float64(matches))
	}
}
