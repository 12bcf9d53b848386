package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/searcher/ranker"
)

type memoryStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	getErr  error
	lastTTL time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.lastTTL = ttl
	return nil
}

func (s *memoryStore) DeleteByPattern(_ context.Context, pattern string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for key := range s.data {
		if ok, _ := path.Match(pattern, key); ok {
			delete(s.data, key)
			n++
		}
	}
	return n, nil
}

func result(query string) *executor.SearchResult {
	return &executor.SearchResult{
		Query:     query,
		TotalHits: 1,
		Results:   []ranker.ScoredDoc{{DocID: "p1", Score: 0.5}},
	}
}

func TestGetOrComputeCachesResult(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Minute, nil)
	plan := parser.Parse("graph network")

	calls := 0
	compute := func() (*executor.SearchResult, error) {
		calls++
		return result(plan.RawQuery), nil
	}

	first, hit, err := c.GetOrCompute(context.Background(), plan, 10, compute)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := c.GetOrCompute(context.Background(), parser.Parse("network graph"), 10, compute)
	require.NoError(t, err)
	assert.True(t, hit)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, time.Minute, store.lastTTL)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestKeyDistinguishesRepeatsAndLimits(t *testing.T) {
	c := New(newMemoryStore(), time.Minute, nil)

	base := c.buildKey(parser.Parse("graph network"), 10)
	assert.NotEqual(t, base, c.buildKey(parser.Parse("graph graph network"), 10))
	assert.NotEqual(t, base, c.buildKey(parser.Parse("graph network"), 5))
	assert.Equal(t, base, c.buildKey(parser.Parse("networks graphs"), 10))
}

func TestGetOrComputePropagatesError(t *testing.T) {
	c := New(newMemoryStore(), time.Minute, nil)
	boom := errors.New("boom")

	_, _, err := c.GetOrCompute(context.Background(), parser.Parse("graph"), 10, func() (*executor.SearchResult, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestStoreErrorCountsAsMiss(t *testing.T) {
	store := newMemoryStore()
	store.getErr = errors.New("connection refused")
	c := New(store, time.Minute, nil)

	_, ok := c.Get(context.Background(), parser.Parse("graph"), 10)
	assert.False(t, ok)
	_, misses := c.Stats()
	assert.Equal(t, int64(1), misses)
}

func TestGetOrComputeCoalescesConcurrentCalls(t *testing.T) {
	c := New(newMemoryStore(), time.Minute, nil)
	plan := parser.Parse("graph")

	var calls atomic.Int32
	release := make(chan struct{})
	compute := func() (*executor.SearchResult, error) {
		calls.Add(1)
		<-release
		return result(plan.RawQuery), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.GetOrCompute(context.Background(), plan, 10, compute)
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(8))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestInvalidate(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Minute, nil)
	c.Set(context.Background(), parser.Parse("graph"), 10, result("graph"))
	store.data["unrelated"] = []byte("x")

	require.NoError(t, c.Invalidate(context.Background()))

	_, ok := c.Get(context.Background(), parser.Parse("graph"), 10)
	assert.False(t, ok)
	assert.Contains(t, store.data, "unrelated")
}
