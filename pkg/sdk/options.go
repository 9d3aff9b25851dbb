package tdsqa

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/tdsqa/internal/config"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	cfg config.Config

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithOpenAI sets the OpenAI-compatible provider credentials.
// An empty baseURL uses OPENAI_BASE_URL or the course proxy.
func WithOpenAI(apiKey, baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.LLM.APIKey = apiKey
		c.cfg.LLM.BaseURL = baseURL
	})
}

// WithEmbeddingModel sets the embedding model. dimensions 0 keeps the model default.
// It must match the model the index was built with.
func WithEmbeddingModel(model string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.LLM.EmbeddingModel = model
		c.cfg.LLM.Dimensions = dimensions
	})
}

// WithChatModel sets the chat completion model. Default: gpt-4o-mini.
func WithChatModel(model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.LLM.ChatModel = model
	})
}

// WithVectorIndex answers from a prebuilt index and its metadata table.
func WithVectorIndex(indexPath, metadataPath string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Retrieval.Strategy = config.StrategyVector
		c.cfg.Retrieval.Vector.IndexPath = indexPath
		c.cfg.Retrieval.Vector.MetadataPath = metadataPath
	})
}

// WithTopK sets how many passages the vector strategy retrieves. Default: 5.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Retrieval.Vector.TopK = k
	})
}

// WithScrape answers from the live docs site and discourse forum.
// Either URL may be empty to skip that source.
func WithScrape(docsURL, forumURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Retrieval.Strategy = config.StrategyScrape
		c.cfg.Retrieval.Scrape.DocsURL = docsURL
		c.cfg.Retrieval.Scrape.ForumURL = forumURL
	})
}

// WithTesseract sets the tesseract binary and languages used for image questions.
func WithTesseract(path, languages string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.OCR.Disabled = false
		c.cfg.OCR.TesseractPath = path
		c.cfg.OCR.Languages = languages
	})
}

// WithoutOCR ignores images attached to questions.
func WithoutOCR() Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.OCR.Disabled = true
	})
}

// WithRedisCache caches query embeddings in Redis or Valkey.
func WithRedisCache(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Cache.Addrs = []string{addr}
		c.cfg.Cache.Password = password
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
