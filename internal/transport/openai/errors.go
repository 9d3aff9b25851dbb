package openai

import (
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/tdsqa/internal/domain"
)

// Operation labels for metrics and errors.
const (
	opEmbedding  = "embedding"
	opCompletion = "completion"
)

// parseAPIError extracts a human-readable error from the API response.
// The result is always a *domain.ProviderError so callers can surface the upstream message.
func parseAPIError(op string, err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return &domain.ProviderError{
			Op:         op,
			StatusCode: reqErr.HTTPStatusCode,
			Message:    fmt.Sprintf("API error %d: %s", reqErr.HTTPStatusCode, detail),
		}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &domain.ProviderError{
			Op:         op,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    fmt.Sprintf("API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message),
		}
	}

	return &domain.ProviderError{
		Op:      op,
		Message: fmt.Sprintf("%s request failed: %v", op, err),
	}
}

// extractDetail extracts the "detail" field from a JSON error body (proxy error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if parsed.Detail != "" {
		return parsed.Detail
	}
	return parsed.Message
}

func emptyResponse(op string) error {
	return &domain.ProviderError{Op: op, Message: "empty " + op + " response"}
}
