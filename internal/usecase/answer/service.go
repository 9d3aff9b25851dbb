package answer

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tdsqa/internal/domain"
	"github.com/kailas-cloud/tdsqa/internal/logger"
)

// Options configures answer synthesis.
type Options struct {
	Style Style
	// Temperature is sent to the model when set; nil keeps the provider default.
	Temperature *float32
}

// Service runs the per-request pipeline: OCR, retrieval, synthesis.
type Service struct {
	retriever Retriever
	ocr       OCR
	llm       Completer
	style     Style
	temp      *float32
}

// New creates a Service. ocr may be nil, in which case images are ignored.
func New(retriever Retriever, ocr OCR, llm Completer, opts Options) *Service {
	style := opts.Style
	if style == "" {
		style = StyleVector
	}
	return &Service{
		retriever: retriever,
		ocr:       ocr,
		llm:       llm,
		style:     style,
		temp:      opts.Temperature,
	}
}

// Answer answers q. Embedding and completion failures are returned as *domain.PipelineError;
// OCR and fetch failures only reduce the context the model sees.
func (s *Service) Answer(ctx context.Context, q domain.Query) (domain.Answer, error) {
	ctx = logger.With(ctx, zap.String("style", string(s.style)), zap.Bool("image", q.HasImage()))
	log := logger.FromContext(ctx)
	req := domain.RetrievalRequest{Question: strings.TrimSpace(q.Question)}

	if q.HasImage() {
		req.OCRText = s.extract(ctx, q.Image)
	}

	docs, err := s.retriever.Retrieve(ctx, req)
	if err != nil {
		return domain.Answer{}, err //nolint:wrapcheck // PipelineError message goes to the client verbatim
	}

	start := time.Now()
	res, err := s.llm.Complete(ctx, domain.CompletionRequest{
		System:      SystemPrompt,
		User:        buildUserPrompt(s.style, docs, req.Text()),
		Temperature: s.temp,
	})
	if err != nil {
		return domain.Answer{}, &domain.PipelineError{Stage: domain.StageCompletion, Err: err}
	}
	domain.UsageFromContext(ctx).AddCompletion(res.PromptTokens + res.CompletionTokens)

	log.Debug("Answer synthesized",
		zap.Int("documents", len(docs)),
		zap.Duration("completion_duration", time.Since(start)),
	)

	ans := domain.Answer{
		Text:  strings.TrimSpace(res.Text),
		Links: buildLinks(s.style, docs),
	}
	// The vector style always reports ocr_text, empty when no image was sent.
	if q.HasImage() || s.style == StyleVector {
		ocrText := req.OCRText
		ans.OCRText = &ocrText
	}
	return ans, nil
}

func (s *Service) extract(ctx context.Context, image string) string {
	if s.ocr == nil {
		logger.FromContext(ctx).Debug("Image ignored, OCR disabled")
		return ""
	}
	return s.ocr.Extract(ctx, image).Text
}
