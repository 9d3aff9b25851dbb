package domain

import "context"

// CompletionRequest is a single-turn chat prompt.
// Temperature nil leaves the provider default in place.
type CompletionRequest struct {
	System      string
	User        string
	Temperature *float32
}

// CompletionResult is the text of the first choice plus token usage.
type CompletionResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Completer sends a prompt to a chat-completion model.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}
