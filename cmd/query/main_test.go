package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/searcher/parser"
)

func testExecutor() *executor.Executor {
	b := index.NewBuilder[string, string]()
	b.Add("p1", []string{"graph", "network"})
	b.Add("p2", []string{"network"})
	return executor.New(b.Build(), nil)
}

func TestAnswerPrintsRankedResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, answer(context.Background(), &buf, testExecutor(), parser.Parse("network"), 10))

	assert.Equal(t, "# network\t2 hits\n1\tp1\t0.000000\n2\tp2\t0.000000\n\n", buf.String())
}

func TestAnswerNoSearchableTerms(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, answer(context.Background(), &buf, testExecutor(), parser.Parse("the of"), 10))

	assert.Contains(t, buf.String(), "no searchable terms")
}
