package health

import "context"

// CachePinger is the embedding cache.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// LLMChecker is the LLM provider.
type LLMChecker interface {
	HealthCheck(ctx context.Context) error
}

// VersionReporter is an external binary that can report its version, such as tesseract.
type VersionReporter interface {
	Version(ctx context.Context) (string, error)
}
