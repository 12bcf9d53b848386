package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/citation-index/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/citation-index/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/citation-index/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	slog.Info("starting search service",
		"port", cfg.Server.Port,
		"corpus_source", cfg.Corpus.Source,
		"index_workers", cfg.Index.Workers,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	idx, err := loadIndex(ctx, cfg, m)
	if err != nil {
		slog.Error("failed to build index", "error", err)
		os.Exit(1)
	}

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	checker := health.NewChecker()
	checker.Register("index", health.IndexCheck(idx.DocumentCount))
	if redisClient != nil {
		checker.Register("redis", health.PingCheck(redisClient.Ping, true))
	}

	h := handler.New(executor.New(idx, m), idx, queryCache, m,
		cfg.Search.DefaultLimit, cfg.Search.MaxResults, tokenizerOptions(cfg.Index)...)

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RateLimit(cfg.RateLimit, m)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.CORS(middleware.DefaultCORSConfig())(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}

// loadIndex reads the configured corpus and builds the index, retrying
// transient source failures.
func loadIndex(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*corpus.Index, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Corpus.LoadTimeout)
	defer cancel()

	src, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	var idx *corpus.Index
	start := time.Now()
	err = resilience.Retry(ctx, "load-corpus", resilience.RetryConfig{
		MaxAttempts:  cfg.Corpus.RetryAttempts,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
	}, func() error {
		built, err := corpus.Load(ctx, src, cfg.Index.Workers, tokenizerOptions(cfg.Index)...)
		if err != nil {
			return err
		}
		idx = built
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.IndexBuildDuration.Observe(time.Since(start).Seconds())
	m.DocsIndexedTotal.Add(float64(idx.DocumentCount()))
	m.IndexTokens.Set(float64(idx.TokenCount()))
	return idx, nil
}

func tokenizerOptions(cfg config.IndexConfig) []tokenizer.Option {
	if cfg.DisableStemming {
		return []tokenizer.Option{tokenizer.WithoutStemming()}
	}
	return nil
}

func openSource(ctx context.Context, cfg *config.Config) (corpus.Source, func(), error) {
	noop := func() {}
	switch cfg.Corpus.Source {
	case config.SourceFile:
		return corpus.NewFileSource(cfg.Corpus.Path), noop, nil
	case config.SourcePostgres:
		client, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return corpus.NewPostgresSource(client.DB, cfg.Corpus.Table), func() { client.Close() }, nil
	case config.SourceKafka:
		return corpus.NewKafkaSource(cfg.Kafka, cfg.Corpus.Topic, cfg.Corpus.Partition), noop, nil
	case config.SourceObject:
		client, err := corpus.NewObjectClient(cfg.ObjectStore)
		if err != nil {
			return nil, nil, err
		}
		return corpus.NewObjectSource(client, cfg.ObjectStore.Bucket, cfg.Corpus.Path), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown corpus source %q", cfg.Corpus.Source)
	}
}
