// Command tdsindex embeds the document metadata table and writes the vector index
// the API server loads at startup.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tdsqa/internal/bootstrap"
	"github.com/kailas-cloud/tdsqa/internal/config"
	"github.com/kailas-cloud/tdsqa/internal/index"
	logpkg "github.com/kailas-cloud/tdsqa/internal/logger"
	"github.com/kailas-cloud/tdsqa/internal/metrics"
	"github.com/kailas-cloud/tdsqa/internal/version"
)

func main() {
	_ = godotenv.Load()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	metaPath := flag.String("meta", cfg.Retrieval.Vector.MetadataPath, "metadata JSON file")
	outPath := flag.String("out", cfg.Retrieval.Vector.IndexPath, "index file to write")
	compress := flag.Bool("compress", cfg.Retrieval.Vector.Compress, "gzip the index file")
	flag.Parse()

	logger, err := logpkg.NewLogger(env, logpkg.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	metrics.RegisterPipelineMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *metaPath, *outPath, *compress, logger); err != nil {
		logger.Fatal("Index build failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, metaPath, outPath string, compress bool, logger *zap.Logger) error {
	start := time.Now()

	docs, err := index.LoadDocuments(metaPath)
	if err != nil {
		return err //nolint:wrapcheck // already carries the path
	}
	logger.Info("Documents loaded",
		zap.String("path", metaPath),
		zap.Int("documents", len(docs)),
		zap.String("version", version.String()),
	)

	chain, err := bootstrap.NewEmbedderChain(ctx, cfg, logger)
	if err != nil {
		return err //nolint:wrapcheck // already wrapped
	}
	defer chain.Close()

	db, err := index.Build(ctx, chain.Embedder, docs, cfg.Retrieval.Vector.Collection)
	if err != nil {
		return err //nolint:wrapcheck // already wrapped
	}

	written, err := index.Save(db, outPath, compress)
	if err != nil {
		return err //nolint:wrapcheck // already wrapped
	}

	logger.Info("Index written",
		zap.String("path", written),
		zap.String("collection", cfg.Retrieval.Vector.Collection),
		zap.String("model", cfg.LLM.EmbeddingModel),
		zap.Int("documents", len(docs)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
