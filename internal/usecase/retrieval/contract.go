package retrieval

import (
	"context"

	"github.com/kailas-cloud/tdsqa/internal/domain"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Searcher finds the documents nearest to a query vector.
type Searcher interface {
	Search(ctx context.Context, vec []float32, k int) ([]domain.Document, error)
}

// Fetcher loads documents from one live source. Failures are reported in the result.
type Fetcher interface {
	Source() string
	Fetch(ctx context.Context) domain.FetchResult
}
