package domain

import (
	"context"
	"fmt"
)

// Embedder turns text into a dense vector. Implementations are stacked as
// decorators (provider, cache, instrumentation) behind this one contract.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder is implemented by embedders that can vectorize many texts per call.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// EmbeddingResult is one vector plus the tokens the provider billed for it.
// A cache hit carries zero tokens.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult holds vectors in input order plus aggregate usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

func (b *BatchEmbeddingResult) add(r EmbeddingResult) {
	b.Embeddings = append(b.Embeddings, r.Embedding)
	b.PromptTokens += r.PromptTokens
	b.TotalTokens += r.TotalTokens
}

// EmbedAll vectorizes texts with a single BatchEmbed call when e supports it,
// otherwise with one Embed call per text. The result always has one vector per text.
func EmbedAll(ctx context.Context, e Embedder, texts []string) (BatchEmbeddingResult, error) {
	be, ok := e.(BatchEmbedder)
	if !ok {
		out := BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}
		for i, text := range texts {
			res, err := e.Embed(ctx, text)
			if err != nil {
				return BatchEmbeddingResult{}, fmt.Errorf("embed text %d: %w", i, err)
			}
			out.add(res)
		}
		return out, nil
	}

	res, err := be.BatchEmbed(ctx, texts)
	if err != nil {
		return BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}
	if len(res.Embeddings) != len(texts) {
		return BatchEmbeddingResult{}, fmt.Errorf("batch embed: got %d vectors for %d texts",
			len(res.Embeddings), len(texts))
	}
	return res, nil
}
