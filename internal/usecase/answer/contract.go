package answer

import (
	"context"

	"github.com/kailas-cloud/tdsqa/internal/domain"
)

// Retriever selects the passages an answer is grounded on.
type Retriever interface {
	Retrieve(ctx context.Context, req domain.RetrievalRequest) ([]domain.Document, error)
}

// OCR extracts text from a base64-encoded image. It never fails the request.
type OCR interface {
	Extract(ctx context.Context, encoded string) domain.OCRResult
}

// Completer sends a prompt to a chat-completion model.
type Completer interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error)
}
