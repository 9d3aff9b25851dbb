package domain

import (
	"errors"
)

var (
	// ErrProviderError signals an LLM provider failure (embedding or chat).
	ErrProviderError = errors.New("llm provider error")
	// ErrUnknownDocument signals an index hit that has no row in the document table.
	ErrUnknownDocument = errors.New("index references unknown document")
)

// Stage names the pipeline step that can abort a request.
type Stage string

const (
	// StageEmbedding is the query embedding call.
	StageEmbedding Stage = "Embedding"
	// StageCompletion is the chat completion call.
	StageCompletion Stage = "Chat completion"
)

// PipelineError is a fatal-to-request failure. Its message is returned to the client verbatim.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return string(e.Stage) + " failed: " + ErrorMessage(e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// ProviderError is a normalized LLM API failure.
type ProviderError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string { return e.Message }

func (e *ProviderError) Unwrap() error { return ErrProviderError }

// ErrorMessage returns the provider message when err carries one, err.Error() otherwise.
// Wrapping prefixes added by decorators are dropped so clients see the upstream message.
func ErrorMessage(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}
