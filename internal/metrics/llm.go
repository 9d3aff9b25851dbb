package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "tdsqa"

// LLM provider metrics. operation is "embedding" or "completion".
var (
	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM provider requests",
		},
		[]string{"operation", "model", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation", "model"},
	)

	LLMTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Total LLM tokens consumed",
		},
		[]string{"operation", "model", "type"},
	)

	LLMErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_errors_total",
			Help:      "Total LLM provider errors",
		},
		[]string{"operation", "model", "error_type"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

// Best-effort pipeline stages.
var (
	OCRTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ocr_total",
			Help:      "OCR attempts by outcome",
		},
		[]string{"result"}, // "ok" or a failure reason
	)

	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Live source fetches by source and outcome",
		},
		[]string{"source", "result"},
	)

	RetrievedDocuments = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieved_documents",
			Help:      "Number of context documents passed to synthesis",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 10},
		},
		[]string{"strategy"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers LLM and pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		LLMRequestsTotal,
		LLMRequestDuration,
		LLMTokensTotal,
		LLMErrorsTotal,
		EmbeddingCacheTotal,
		OCRTotal,
		FetchTotal,
		RetrievedDocuments,
	)
	pipelineMetricsRegistered = true
}
