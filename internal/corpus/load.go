package corpus

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/logger"
)

// Index is the concrete index served by this repository: string document
// ids and string tokens.
type Index = index.InvertedIndex[string, string]

var errStopped = errors.New("ingestion stopped")

// Load reads every document from src and builds an index from them using
// the given number of ingestion workers. opts control how document text is
// tokenized.
func Load(ctx context.Context, src Source, workers int, opts ...tokenizer.Option) (*Index, error) {
	log := logger.WithComponent("corpus-loader")
	start := time.Now()

	var srcErr error
	docs := iter.Seq2[string, []string](func(yield func(string, []string) bool) {
		srcErr = src.Each(ctx, func(doc Document) error {
			if !yield(doc.ID, doc.IndexTokens(opts...)) {
				return errStopped
			}
			return nil
		})
	})

	idx, err := index.BuildParallel(ctx, docs, workers)
	if srcErr != nil && !errors.Is(srcErr, errStopped) {
		return nil, fmt.Errorf("reading corpus: %w", srcErr)
	}
	if err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}

	log.Info("index built",
		"documents", idx.DocumentCount(),
		"tokens", idx.TokenCount(),
		"workers", workers,
		"duration", time.Since(start),
	)
	return idx, nil
}
