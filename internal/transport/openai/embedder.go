package openai

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tdsqa/internal/domain"
)

// Embedder calls the /embeddings endpoint of an OpenAI-compatible API.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	user       string
	provider   string
	logger     *zap.Logger
}

// NewEmbedder creates an embedding provider from cfg.
func NewEmbedder(cfg *Config) *Embedder {
	return &Embedder{
		client:     newClient(cfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		user:       cfg.User,
		provider:   cfg.Provider,
		logger:     loggerOrNop(cfg.Logger),
	}
}

// Model returns the embedding model name.
func (e *Embedder) Model() string { return string(e.model) }

// Embed vectorizes a single text.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.create(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embeddings[0],
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// BatchEmbed sends all texts in one request and returns vectors in input order.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	return e.create(ctx, texts)
}

func (e *Embedder) create(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.user,
		Dimensions:     max(e.dimensions, 0),
	}

	c := startCall(opEmbedding, string(e.model))
	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		c.failed(errAPI)
		e.logger.Warn("Embedding request failed",
			zap.String("provider", e.provider),
			zap.String("model", c.model),
			zap.Int("batch_size", len(texts)),
			zap.Duration("duration", c.elapsed()),
			zap.Error(err),
		)
		return domain.BatchEmbeddingResult{}, parseAPIError(opEmbedding, err)
	}

	switch n := len(resp.Data); {
	case n == 0:
		c.failed(errEmpty)
		return domain.BatchEmbeddingResult{}, emptyResponse(opEmbedding)
	case n != len(texts):
		c.failed(errEmpty)
		return domain.BatchEmbeddingResult{}, &domain.ProviderError{
			Op:      opEmbedding,
			Message: fmt.Sprintf("expected %d embeddings, got %d", len(texts), n),
		}
	}
	c.succeeded(resp.Usage.PromptTokens, 0, resp.Usage.TotalTokens)

	data := slices.SortedFunc(slices.Values(resp.Data), func(a, b openai.Embedding) int {
		return cmp.Compare(a.Index, b.Index)
	})
	out := domain.BatchEmbeddingResult{
		Embeddings:   make([][]float32, len(data)),
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	for i, d := range data {
		out.Embeddings[i] = d.Embedding
	}
	return out, nil
}

// HealthCheck lists models, which costs no tokens.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
