package domain

import "context"

type tokenUsageKey struct{}

// TokenUsage collects LLM token usage for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the service;
// the service writes after each provider call; the handler reads it for response headers.
type TokenUsage struct {
	EmbeddingTokens  int
	CompletionTokens int
	Embedded         bool // true if embedding was called, even on a cache hit with 0 tokens
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *TokenUsage) {
	u := &TokenUsage{}
	return context.WithValue(ctx, tokenUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *TokenUsage {
	u, _ := ctx.Value(tokenUsageKey{}).(*TokenUsage)
	return u
}

// AddEmbedding records consumed embedding tokens.
func (u *TokenUsage) AddEmbedding(n int) {
	if u != nil {
		u.EmbeddingTokens += n
		u.Embedded = true
	}
}

// AddCompletion records consumed prompt and completion tokens.
func (u *TokenUsage) AddCompletion(n int) {
	if u != nil {
		u.CompletionTokens += n
	}
}
