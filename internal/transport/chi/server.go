package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tdsqa/internal/domain"
	"github.com/kailas-cloud/tdsqa/internal/logger"
	healthuc "github.com/kailas-cloud/tdsqa/internal/usecase/health"
)

// Answerer runs the question answering pipeline.
type Answerer interface {
	Answer(ctx context.Context, q domain.Query) (domain.Answer, error)
}

// HealthChecker reports aggregated component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers of the API.
type Server struct {
	answers Answerer
	health  HealthChecker
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(answers Answerer, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{answers: answers, health: health, logger: logger}
}

type askRequest struct {
	Question *string `json:"question"`
	Image    *string `json:"image"`
}

type linkResponse struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

type answerResponse struct {
	Answer  string         `json:"answer"`
	Links   []linkResponse `json:"links"`
	OCRText *string        `json:"ocr_text,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Ask handles POST /api/.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Question == nil {
		writeError(w, http.StatusBadRequest, "invalid request body: question is required")
		return
	}

	q := domain.Query{Question: *req.Question}
	if req.Image != nil {
		q.Image = *req.Image
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	ans, err := s.answers.Answer(ctx, q)
	setUsageHeaders(w, usage)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	links := make([]linkResponse, len(ans.Links))
	for i, l := range ans.Links {
		links[i] = linkResponse{URL: l.URL, Text: l.Text}
	}

	writeJSON(w, http.StatusOK, answerResponse{
		Answer:  ans.Text,
		Links:   links,
		OCRText: ans.OCRText,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.TokenUsage) {
	if usage == nil {
		return
	}
	if usage.Embedded {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.EmbeddingTokens))
	}
	if usage.CompletionTokens > 0 {
		w.Header().Set("X-Completion-Tokens", strconv.Itoa(usage.CompletionTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// handleError maps pipeline failures to a 200 error body and everything else to 500.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)

	var pe *domain.PipelineError
	if errors.As(err, &pe) {
		log.Warn("pipeline error", zap.String("stage", string(pe.Stage)), zap.Error(err))
		writeError(w, http.StatusOK, pe.Error())
		return
	}

	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
