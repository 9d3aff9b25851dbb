package openai

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tdsqa/internal/domain"
)

// Completer is a chat-completion provider using the OpenAI-compatible API.
type Completer struct {
	client   *openai.Client
	model    string
	user     string
	provider string
	logger   *zap.Logger
}

// NewCompleter creates an OpenAI-compatible chat-completion provider.
func NewCompleter(cfg *Config) *Completer {
	return &Completer{
		client:   newClient(cfg),
		model:    cfg.Model,
		user:     cfg.User,
		provider: cfg.Provider,
		logger:   loggerOrNop(cfg.Logger),
	}
}

// Complete implements domain.Completer. The answer is the first choice, whitespace-trimmed.
func (c *Completer) Complete(ctx context.Context, in domain.CompletionRequest) (domain.CompletionResult, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: in.System},
			{Role: openai.ChatMessageRoleUser, Content: in.User},
		},
		User: c.user,
	}
	if in.Temperature != nil {
		req.Temperature = *in.Temperature
	}

	call := startCall(opCompletion, c.model)
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		call.failed(errAPI)
		c.logger.Warn("Chat completion request failed",
			zap.String("provider", c.provider),
			zap.String("model", c.model),
			zap.Duration("duration", call.elapsed()),
			zap.Error(err),
		)
		return domain.CompletionResult{}, parseAPIError(opCompletion, err)
	}
	if len(resp.Choices) == 0 {
		call.failed(errEmpty)
		return domain.CompletionResult{}, emptyResponse(opCompletion)
	}
	call.succeeded(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)

	c.logger.Debug("Chat completion completed",
		zap.String("model", c.model),
		zap.Duration("duration", call.elapsed()),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return domain.CompletionResult{
		Text:             strings.TrimSpace(resp.Choices[0].Message.Content),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}
