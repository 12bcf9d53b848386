// Command query builds an index from a JSONL corpus and answers queries from
// the command line or, one per line, from stdin.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/logger"
)

func main() {
	corpusPath := flag.String("corpus", "data/corpus.jsonl", "JSONL corpus (.gz, .zst and .lz4 are decompressed)")
	limit := flag.Int("limit", 10, "results per query, 0 for all")
	workers := flag.Int("workers", 4, "parallel index builders")
	logLevel := flag.String("log-level", "warn", "log level")
	noStem := flag.Bool("no-stem", false, "index and query words as written")
	flag.Parse()

	logger.Setup(*logLevel, "text", os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var opts []tokenizer.Option
	if *noStem {
		opts = append(opts, tokenizer.WithoutStemming())
	}

	idx, err := corpus.Load(ctx, corpus.NewFileSource(*corpusPath), *workers, opts...)
	if err != nil {
		slog.Error("failed to build index", "corpus", *corpusPath, "error", err)
		os.Exit(1)
	}

	exec := executor.New(idx, nil)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	run := func(q string) {
		if err := answer(ctx, out, exec, parser.Parse(q, opts...), *limit); err != nil {
			slog.Warn("query failed", "query", q, "error", err)
		}
	}

	if flag.NArg() > 0 {
		for _, q := range flag.Args() {
			run(q)
		}
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if q := strings.TrimSpace(scanner.Text()); q != "" {
			run(q)
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Error("reading stdin", "error", err)
		os.Exit(1)
	}
}

// answer prints one block per query: a header line, then one
// "rank<TAB>doc<TAB>score" line per result.
func answer(ctx context.Context, w io.Writer, exec *executor.Executor, plan *parser.QueryPlan, limit int) error {
	query := plan.RawQuery
	result, err := exec.Execute(ctx, plan, limit)
	if errors.Is(err, index.ErrEmptyQuery) {
		fmt.Fprintf(w, "# %s\t(no searchable terms)\n\n", query)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "# %s\t%d hits\n", query, result.TotalHits)
	for i, doc := range result.Results {
		fmt.Fprintf(w, "%d\t%s\t%.6f\n", i+1, doc.DocID, doc.Score)
	}
	_, err = fmt.Fprintln(w)
	return err
}
