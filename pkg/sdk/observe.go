package tdsqa

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/tdsqa/internal/domain"
)

// Operation outcomes reported in the "outcome" label.
const (
	outcomeOK         = "ok"
	outcomeEmbedding  = "embedding_failed"
	outcomeCompletion = "completion_failed"
	outcomeError      = "error"
)

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	tokens     *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tdsqa",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "SDK calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tdsqa",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK call latency including OCR, retrieval and completion.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		}, []string{"operation"}),
		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tdsqa",
			Subsystem: "sdk",
			Name:      "tokens_total",
			Help:      "Provider tokens consumed by Ask, by kind.",
		}, []string{"kind"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.tokens); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or swaps in the collector already registered under
// the same descriptor so several clients can share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("tdsqa: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("tdsqa: metric already registered with incompatible type: %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// outcome classifies err for metrics and logs.
func outcome(err error) string {
	var pe *domain.PipelineError
	switch {
	case err == nil:
		return outcomeOK
	case errors.As(err, &pe) && pe.Stage == domain.StageEmbedding:
		return outcomeEmbedding
	case errors.As(err, &pe) && pe.Stage == domain.StageCompletion:
		return outcomeCompletion
	default:
		return outcomeError
	}
}

// observer logs and measures SDK calls. A nil observer does nothing.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	result := outcome(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, result).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}
	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("tdsqa call failed", "op", op, "outcome", result, "duration", dur, "error", err)
		return
	}
	o.logger.Debug("tdsqa call completed", "op", op, "duration", dur)
}

// usage records the tokens an Ask consumed.
func (o *observer) usage(u Usage) {
	if o == nil || o.metrics == nil {
		return
	}
	if u.EmbeddingTokens > 0 {
		o.metrics.tokens.WithLabelValues("embedding").Add(float64(u.EmbeddingTokens))
	}
	if u.CompletionTokens > 0 {
		o.metrics.tokens.WithLabelValues("completion").Add(float64(u.CompletionTokens))
	}
}
