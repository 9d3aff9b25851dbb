package tdsqa

import (
	"context"
	"time"

	healthuc "github.com/kailas-cloud/tdsqa/internal/usecase/health"
)

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// HealthStatus is the outcome of probing the client's dependencies.
// Status is "ok", "degraded" (an optional dependency such as the cache or
// tesseract is down) or "error" (the LLM provider is unreachable).
type HealthStatus struct {
	Status string
	Checks map[string]string
}

// OK reports whether Ask can be expected to succeed. Degraded counts as OK.
func (h HealthStatus) OK() bool {
	return h.Status != string(healthuc.Unhealthy)
}

// Health probes the LLM provider, the embedding cache and tesseract, as configured.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.health.Check(ctx)

	h := HealthStatus{Status: string(report.Status), Checks: make(map[string]string, len(report.Checks))}
	for name, result := range report.Checks {
		h.Checks[name] = string(result)
	}
	c.obs.observe("health", start, nil)
	return h
}
