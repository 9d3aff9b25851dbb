package tdsqa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/tdsqa/internal/domain"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, outcomeOK},
		{"embedding", &domain.PipelineError{Stage: domain.StageEmbedding, Err: errors.New("401")}, outcomeEmbedding},
		{"completion wrapped", fmt.Errorf("ask: %w",
			&domain.PipelineError{Stage: domain.StageCompletion, Err: errors.New("timeout")}), outcomeCompletion},
		{"other", domain.ErrUnknownDocument, outcomeError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, outcome(tc.err))
		})
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("ask", time.Now(), errors.New("err"))
	obs.usage(Usage{EmbeddingTokens: 1})

	quiet, err := newObserver(nil, nil)
	require.NoError(t, err)
	quiet.observe("ask", time.Now(), nil)
	quiet.usage(Usage{CompletionTokens: 1})
}

func TestObserver_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(slog.New(slog.DiscardHandler), reg)
	require.NoError(t, err)

	obs.observe("ask", time.Now().Add(-10*time.Millisecond), nil)
	obs.observe("ask", time.Now(), &domain.PipelineError{Stage: domain.StageCompletion, Err: errors.New("x")})
	obs.observe("health", time.Now(), nil)

	ops := obs.metrics.operations
	assert.InDelta(t, 1, testutil.ToFloat64(ops.WithLabelValues("ask", outcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(ops.WithLabelValues("ask", outcomeCompletion)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(ops.WithLabelValues("health", outcomeOK)), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(obs.metrics.duration))
}

func TestObserver_Tokens(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	require.NoError(t, err)

	obs.usage(Usage{EmbeddingTokens: 12, CompletionTokens: 300})
	obs.usage(Usage{CompletionTokens: 100})

	tokens := obs.metrics.tokens
	assert.InDelta(t, 12, testutil.ToFloat64(tokens.WithLabelValues("embedding")), 0)
	assert.InDelta(t, 400, testutil.ToFloat64(tokens.WithLabelValues("completion")), 0)
}

func TestObserver_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	require.NoError(t, err)
	second, err := newObserver(nil, reg)
	require.NoError(t, err)

	second.usage(Usage{EmbeddingTokens: 5})
	assert.Same(t, first.metrics.tokens, second.metrics.tokens)
	assert.InDelta(t, 5, testutil.ToFloat64(first.metrics.tokens.WithLabelValues("embedding")), 0)
}

func TestObserver_IncompatibleCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tdsqa", Subsystem: "sdk", Name: "tokens_total", Help: "Provider tokens consumed by Ask, by kind.",
	}))

	_, err := newObserver(nil, reg)
	require.Error(t, err)
}

func TestClient_Ask_RecordsTokens(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	require.NoError(t, err)

	c := wireClient(&mockAnswerer{fn: func(ctx context.Context, _ domain.Query) (domain.Answer, error) {
		domain.UsageFromContext(ctx).AddEmbedding(8)
		domain.UsageFromContext(ctx).AddCompletion(50)
		return domain.Answer{Text: "ok"}, nil
	}}, &mockHealth{}, obs)

	ans, err := c.Ask(context.Background(), Query{Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, Usage{EmbeddingTokens: 8, CompletionTokens: 50}, ans.Usage)
	assert.InDelta(t, 50, testutil.ToFloat64(obs.metrics.tokens.WithLabelValues("completion")), 0)
}
