// Package bootstrap assembles the embedder chain shared by the API server and the index builder.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tdsqa/internal/config"
	dbRedis "github.com/kailas-cloud/tdsqa/internal/db/redis"
	"github.com/kailas-cloud/tdsqa/internal/domain"
	"github.com/kailas-cloud/tdsqa/internal/metrics"
	"github.com/kailas-cloud/tdsqa/internal/repository/embcache"
	openaiTransport "github.com/kailas-cloud/tdsqa/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/tdsqa/internal/usecase/embedding"
)

// EmbedderChain is the composed embedder plus the parts callers need to reach directly.
type EmbedderChain struct {
	// Embedder is the outermost decorator: OpenAI -> Cached -> Instrumented.
	Embedder domain.Embedder
	// Provider is the bare API client, used for health checks.
	Provider *openaiTransport.Embedder
	// Cache is nil when no cache is configured.
	Cache *dbRedis.Store
}

// Close releases the cache connection, if any.
func (c *EmbedderChain) Close() {
	if c.Cache != nil {
		c.Cache.Close()
	}
}

// NewEmbedderChain builds the embedder decorator chain from cfg. When a cache is
// configured it blocks until the store answers or the readiness timeout passes.
func NewEmbedderChain(ctx context.Context, cfg config.Config, logger *zap.Logger) (*EmbedderChain, error) {
	provider := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Model:      cfg.LLM.EmbeddingModel,
		Dimensions: cfg.LLM.Dimensions,
		Provider:   cfg.LLM.Provider,
		Logger:     logger,
	})
	chain := &EmbedderChain{Provider: provider}

	var embedder domain.Embedder = provider
	if cfg.Cache.Enabled() {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Cache.Addrs,
			Password:   cfg.Cache.Password,
			Standalone: cfg.Cache.Standalone,
		})
		if err != nil {
			return nil, fmt.Errorf("create cache store: %w", err)
		}
		timeout := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("cache not ready: %w", err)
		}
		chain.Cache = store

		embedder = embcache.New(provider, store, embcache.Options{
			Model:      cfg.LLM.EmbeddingModel,
			TTL:        time.Duration(cfg.Cache.TTLSec) * time.Second,
			CacheTotal: metrics.EmbeddingCacheTotal,
			Logger:     logger,
		})
		logger.Info("Embedding cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	chain.Embedder = embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.LLM.EmbeddingModel, embeddinguc.DefaultMaxAPIBatchSize, logger,
	)
	return chain, nil
}
