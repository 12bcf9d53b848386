package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/searcher/parser"
	apperrors "github.com/Adithya-Monish-Kumar-K/citation-index/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/metrics"
)

type SearchExecutor interface {
	Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*executor.SearchResult, error)
}

// IndexInfo reports the size of the loaded index.
type IndexInfo interface {
	DocumentCount() int
	TokenCount() int
}

type Handler struct {
	executor     SearchExecutor
	cache        *cache.QueryCache
	index        IndexInfo
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	queryOpts    []tokenizer.Option
	logger       *slog.Logger
}

// New wires the HTTP endpoints. queryCache and m may be nil. queryOpts must
// match the options the corpus was tokenized with.
func New(exec SearchExecutor, idx IndexInfo, queryCache *cache.QueryCache, m *metrics.Metrics, defaultLimit, maxResults int, queryOpts ...tokenizer.Option) *Handler {
	return &Handler{
		executor:     exec,
		cache:        queryCache,
		index:        idx,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		queryOpts:    queryOpts,
		logger:       logger.WithComponent("search-handler"),
	}
}

// Register mounts the handler's routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/index/stats", h.IndexStats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeAppError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}

	limit := min(h.defaultLimit, h.maxResults)
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeAppError(w, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"limit must be a positive integer, got %q", limitStr))
			return
		}
		limit = min(parsed, h.maxResults)
	}

	plan := parser.Parse(query, h.queryOpts...)

	var result *executor.SearchResult
	var err error
	cacheHit := false
	if h.cache != nil && len(plan.Terms) > 0 {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, plan, limit, func() (*executor.SearchResult, error) {
			return h.executor.Execute(ctx, plan, limit)
		})
	} else {
		result, err = h.executor.Execute(ctx, plan, limit)
	}
	if err != nil {
		if status := apperrors.HTTPStatusCode(err); status >= http.StatusInternalServerError {
			log.Error("search execution failed", "query", query, "status", status, "error", err)
			err = apperrors.New(apperrors.ErrInternal, status, "search failed")
		}
		h.writeAppError(w, err)
		return
	}

	elapsed := time.Since(start)
	h.observeLatency(cacheHit, elapsed)
	log.Info("search completed",
		"query", query,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", elapsed.Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) IndexStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]int{
		"documents": h.index.DocumentCount(),
		"tokens":    h.index.TokenCount(),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeAppError(w, apperrors.New(apperrors.ErrUnavailable, http.StatusServiceUnavailable, "caching is disabled"))
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeAppError(w, apperrors.New(apperrors.ErrInternal, http.StatusInternalServerError, "cache invalidation failed"))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) observeLatency(cacheHit bool, elapsed time.Duration) {
	if h.metrics == nil {
		return
	}
	status := "miss"
	switch {
	case h.cache == nil:
		status = "disabled"
	case cacheHit:
		status = "hit"
	}
	h.metrics.SearchLatency.WithLabelValues(status).Observe(elapsed.Seconds())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// writeAppError responds with the status HTTPStatusCode picks for err. An
// AppError contributes only its Message to the body.
func (h *Handler) writeAppError(w http.ResponseWriter, err error) {
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	h.writeJSON(w, apperrors.HTTPStatusCode(err), map[string]string{"error": message})
}
