package retrieval

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tdsqa/internal/domain"
	"github.com/kailas-cloud/tdsqa/internal/logger"
)

// DefaultTopK is the number of passages the vector strategy retrieves.
const DefaultTopK = 5

// Vector retrieves passages by embedding the query and searching a prebuilt index.
type Vector struct {
	embed     Embedder
	index     Searcher
	topK      int
	retrieved prometheus.Observer
}

// NewVector creates the vector strategy. topK <= 0 uses DefaultTopK.
// retrieved observes the number of documents per request and may be nil.
func NewVector(embed Embedder, index Searcher, topK int, retrieved prometheus.Observer) *Vector {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Vector{embed: embed, index: index, topK: topK, retrieved: retrieved}
}

// Retrieve embeds question plus OCR text and returns the topK nearest documents, best first.
// An embedding failure is a *domain.PipelineError.
func (v *Vector) Retrieve(ctx context.Context, req domain.RetrievalRequest) ([]domain.Document, error) {
	emb, err := v.embed.Embed(ctx, req.Text())
	if err != nil {
		return nil, &domain.PipelineError{Stage: domain.StageEmbedding, Err: err}
	}

	docs, err := v.index.Search(ctx, emb.Embedding, v.topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	logger.FromContext(ctx).Debug("Vector retrieval completed",
		zap.Int("top_k", v.topK),
		zap.Int("documents", len(docs)),
	)
	if v.retrieved != nil {
		v.retrieved.Observe(float64(len(docs)))
	}
	return docs, nil
}
