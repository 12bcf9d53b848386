package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/searcher/parser"
	apperrors "github.com/Adithya-Monish-Kumar-K/citation-index/pkg/errors"
)

func testIndex() *index.InvertedIndex[string, string] {
	b := index.NewBuilder[string, string]()
	b.Add("p1", []string{"graph", "network"})
	b.Add("p2", []string{"network"})
	b.Add("p3", []string{"graph"})
	return b.Build()
}

func newServer(t *testing.T, exec SearchExecutor) *httptest.Server {
	t.Helper()
	idx := testIndex()
	if exec == nil {
		exec = executor.New(idx, nil)
	}
	mux := http.NewServeMux()
	New(exec, idx, nil, nil, 10, 2).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestSearch(t *testing.T) {
	srv := newServer(t, nil)

	resp, body := get(t, srv.URL+"/api/v1/search?q=graph+network")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["total_hits"])

	results := body["results"].([]any)
	require.Len(t, results, 2, "limit defaults to 10 but is capped at maxResults")
	assert.Equal(t, "p1", results[0].(map[string]any)["doc_id"])
}

func TestSearchRejectsBadInput(t *testing.T) {
	srv := newServer(t, nil)

	cases := map[string]string{
		"missing q":      "/api/v1/search",
		"no tokens":      "/api/v1/search?q=%21%21%21",
		"negative limit": "/api/v1/search?q=graph&limit=-1",
		"bad limit":      "/api/v1/search?q=graph&limit=abc",
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			resp, body := get(t, srv.URL+path)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

type failingExecutor struct{ err error }

func (f failingExecutor) Execute(context.Context, *parser.QueryPlan, int) (*executor.SearchResult, error) {
	return nil, f.err
}

func TestSearchInternalError(t *testing.T) {
	srv := newServer(t, failingExecutor{err: errors.New("disk on fire")})

	resp, body := get(t, srv.URL+"/api/v1/search?q=graph")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "search failed", body["error"])
}

func TestSearchDeadlineIsGatewayTimeout(t *testing.T) {
	timedOut := fmt.Errorf("%w: %w", apperrors.ErrTimeout, context.DeadlineExceeded)
	srv := newServer(t, failingExecutor{err: timedOut})

	resp, body := get(t, srv.URL+"/api/v1/search?q=graph")
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.Equal(t, "search failed", body["error"])
}

func TestSearchLimitErrorNamesValue(t *testing.T) {
	srv := newServer(t, nil)

	_, body := get(t, srv.URL+"/api/v1/search?q=graph&limit=abc")
	assert.Equal(t, `limit must be a positive integer, got "abc"`, body["error"])
}

func TestIndexStats(t *testing.T) {
	srv := newServer(t, nil)

	resp, body := get(t, srv.URL+"/api/v1/index/stats")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["documents"])
	assert.Equal(t, float64(2), body["tokens"])
}

func TestCacheEndpointsWhenDisabled(t *testing.T) {
	srv := newServer(t, nil)

	resp, body := get(t, srv.URL+"/api/v1/cache/stats")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "disabled", body["status"])

	post, err := http.Post(srv.URL+"/api/v1/cache/invalidate", "application/json", nil)
	require.NoError(t, err)
	post.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, post.StatusCode)
}
