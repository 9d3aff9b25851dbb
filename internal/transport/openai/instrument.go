package openai

import (
	"time"

	"github.com/kailas-cloud/tdsqa/internal/metrics"
)

// Error types in the error_type label.
const (
	errAPI   = "api_error"
	errEmpty = "empty_response"
)

// call measures one provider request.
type call struct {
	op    string
	model string
	start time.Time
}

func startCall(op, model string) call {
	return call{op: op, model: model, start: time.Now()}
}

func (c call) elapsed() time.Duration { return time.Since(c.start) }

func (c call) failed(errType string) {
	metrics.LLMRequestsTotal.WithLabelValues(c.op, c.model, "error").Inc()
	metrics.LLMErrorsTotal.WithLabelValues(c.op, c.model, errType).Inc()
}

// succeeded records latency and billed tokens. Zero counts are skipped.
func (c call) succeeded(prompt, completion, total int) {
	metrics.LLMRequestsTotal.WithLabelValues(c.op, c.model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(c.op, c.model).Observe(c.elapsed().Seconds())
	for kind, n := range map[string]int{"prompt": prompt, "completion": completion, "total": total} {
		if n > 0 {
			metrics.LLMTokensTotal.WithLabelValues(c.op, c.model, kind).Add(float64(n))
		}
	}
}
