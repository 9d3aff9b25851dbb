// Package ocr reads text out of base64-encoded images. Failures never abort
// a request: they come back as a domain.OCRResult with a reason.
package ocr

import (
	"bytes"
	"context"
	"image"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tdsqa/internal/domain"
	"github.com/kailas-cloud/tdsqa/internal/logger"
)

// Engine turns a PNG image into text.
type Engine interface {
	Recognize(ctx context.Context, png []byte) (string, error)
}

// Options configures the Adapter.
type Options struct {
	// Scale multiplies both image dimensions before recognition. Values below 1 mean 1.
	Scale int
	// MaxChars truncates the recognized text to that many runes. <= 0 disables truncation.
	MaxChars int
	// Total counts attempts by outcome ("ok" or a failure reason). Optional.
	Total  *prometheus.CounterVec
	Logger *zap.Logger
}

// Adapter decodes, normalizes and recognizes images.
type Adapter struct {
	engine   Engine
	scale    int
	maxChars int
	total    *prometheus.CounterVec
	logger   *zap.Logger
}

// New creates an OCR adapter around engine.
func New(engine Engine, opts Options) *Adapter {
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Adapter{
		engine:   engine,
		scale:    opts.Scale,
		maxChars: opts.MaxChars,
		total:    opts.Total,
		logger:   opts.Logger,
	}
}

// Extract returns the trimmed text found in the base64 image.
func (a *Adapter) Extract(ctx context.Context, encoded string) domain.OCRResult {
	res := a.extract(ctx, encoded)
	if res.Failed() {
		logger.FromContextOr(ctx, a.logger).Warn("OCR failed",
			zap.String("reason", res.Reason),
			zap.Error(res.Err),
		)
		a.inc(res.Reason)
		return res
	}
	a.inc("ok")
	return res
}

func (a *Adapter) extract(ctx context.Context, encoded string) domain.OCRResult {
	data, err := decodeBase64(encoded)
	if err != nil {
		return domain.OCRResult{Reason: domain.OCRReasonDecodeBase64, Err: err}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.OCRResult{Reason: domain.OCRReasonDecodeImage, Err: err}
	}

	png, err := prepare(img, a.scale)
	if err != nil {
		return domain.OCRResult{Reason: domain.OCRReasonDecodeImage, Err: err}
	}

	text, err := a.engine.Recognize(ctx, png)
	if err != nil {
		return domain.OCRResult{Reason: domain.OCRReasonEngine, Err: err}
	}

	return domain.OCRResult{Text: truncate(strings.TrimSpace(text), a.maxChars)}
}

func (a *Adapter) inc(result string) {
	if a.total != nil {
		a.total.WithLabelValues(result).Inc()
	}
}

// truncate keeps the first n runes of s. n <= 0 keeps everything.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
