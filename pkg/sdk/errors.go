package tdsqa

import "github.com/kailas-cloud/tdsqa/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrProviderError   = domain.ErrProviderError
	ErrUnknownDocument = domain.ErrUnknownDocument
)

// PipelineError is returned when embedding or chat completion fails.
// Its message is what the HTTP API puts in the error field.
type PipelineError = domain.PipelineError
