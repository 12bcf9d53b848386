package index

import (
	"cmp"
	"context"
	"fmt"
	"iter"

	"golang.org/x/sync/errgroup"
)

type document[ID cmp.Ordered, T comparable] struct {
	id     ID
	tokens []T
}

// BuildParallel ingests docs with the given number of workers. Each worker
// owns a private Builder; the partial builders are merged once ingestion is
// complete, so the result is identical to Build over the same sequence.
// docs is still consumed exactly once, from a single goroutine.
func BuildParallel[ID cmp.Ordered, T comparable](ctx context.Context, docs iter.Seq2[ID, []T], workers int) (*InvertedIndex[ID, T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if workers <= 1 {
		return Build(docs), nil
	}

	g, gctx := errgroup.WithContext(ctx)
	queue := make(chan document[ID, T], workers*64)
	g.Go(func() error {
		defer close(queue)
		for id, tokens := range docs {
			select {
			case queue <- document[ID, T]{id: id, tokens: tokens}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	partials := make([]*Builder[ID, T], workers)
	for i := range partials {
		b := NewBuilder[ID, T]()
		partials[i] = b
		g.Go(func() error {
			for doc := range queue {
				b.Add(doc.id, doc.tokens)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ingesting documents: %w", err)
	}

	merged := NewBuilder[ID, T]()
	for i, partial := range partials {
		if err := merged.absorb(partial); err != nil {
			return nil, fmt.Errorf("merging partition %d: %w", i, err)
		}
	}
	return merged.Build(), nil
}
