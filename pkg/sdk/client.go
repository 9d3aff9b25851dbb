package tdsqa

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tdsqa/internal/bootstrap"
	"github.com/kailas-cloud/tdsqa/internal/domain"
)

// answerUseCase is the internal interface for the answer pipeline.
type answerUseCase interface {
	Answer(ctx context.Context, q domain.Query) (domain.Answer, error)
}

// Client is the tdsqa SDK entry point. Safe for concurrent use.
type Client struct {
	answers answerUseCase
	health  healthUseCase
	closer  func()
	obs     *observer
}

// New wires the pipeline. A retrieval source is required (WithVectorIndex or WithScrape).
// The provided context is used for loading the index and the cache readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cc := &clientConfig{}
	for _, o := range opts {
		o.apply(cc)
	}

	cfg := cc.cfg
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("tdsqa: %w", err)
	}

	obs, err := newObserver(cc.logger, cc.metricsReg)
	if err != nil {
		return nil, err
	}

	pipeline, err := bootstrap.NewPipeline(ctx, cfg, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("tdsqa: %w", err)
	}

	c := wireClient(pipeline.Answers, pipeline.Health, obs)
	c.closer = pipeline.Close
	return c, nil
}

func wireClient(answers answerUseCase, health healthUseCase, obs *observer) *Client {
	return &Client{answers: answers, health: health, obs: obs}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// Ask answers q. Embedding and completion failures are returned as *PipelineError.
func (c *Client) Ask(ctx context.Context, q Query) (ans Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err) }()

	ctx, usage := domain.NewContextWithUsage(ctx)
	res, err := c.answers.Answer(ctx, domain.Query{Question: q.Question, Image: q.Image})
	if err != nil {
		return Answer{}, err //nolint:wrapcheck // PipelineError is part of the public contract
	}

	links := make([]Link, len(res.Links))
	for i, l := range res.Links {
		links[i] = Link{URL: l.URL, Text: l.Text}
	}
	ans = Answer{
		Text:    res.Text,
		Links:   links,
		OCRText: res.OCRText,
		Usage: Usage{
			EmbeddingTokens:  usage.EmbeddingTokens,
			CompletionTokens: usage.CompletionTokens,
		},
	}
	c.obs.usage(ans.Usage)
	return ans, nil
}

