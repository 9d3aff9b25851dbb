package retrieval

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tdsqa/internal/domain"
	"github.com/kailas-cloud/tdsqa/internal/logger"
	"github.com/kailas-cloud/tdsqa/internal/scrape"
)

// DefaultMaxMatches caps the documents the scrape strategy passes on.
const DefaultMaxMatches = 3

// Scrape fetches live sources on every request and keeps documents containing the question.
type Scrape struct {
	fetchers   []Fetcher
	maxMatches int
	fetchTotal *prometheus.CounterVec
	retrieved  prometheus.Observer
}

// ScrapeOptions configures the scrape strategy. Metric fields may be nil.
type ScrapeOptions struct {
	MaxMatches int
	// FetchTotal has labels "source" and "result" ("ok" or a failure reason).
	FetchTotal *prometheus.CounterVec
	Retrieved  prometheus.Observer
}

// NewScrape creates the scrape strategy. Fetchers run in the given order.
func NewScrape(fetchers []Fetcher, opts ScrapeOptions) *Scrape {
	if opts.MaxMatches <= 0 {
		opts.MaxMatches = DefaultMaxMatches
	}
	return &Scrape{
		fetchers:   fetchers,
		maxMatches: opts.MaxMatches,
		fetchTotal: opts.FetchTotal,
		retrieved:  opts.Retrieved,
	}
}

// Retrieve runs every fetcher in sequence and matches the plain question against
// the combined documents. Fetch failures yield no documents; they never fail the request.
func (s *Scrape) Retrieve(ctx context.Context, req domain.RetrievalRequest) ([]domain.Document, error) {
	log := logger.FromContext(ctx)

	var all []domain.Document
	for _, f := range s.fetchers {
		res := f.Fetch(ctx)
		if res.Failed() {
			log.Warn("Fetch failed",
				zap.String("source", f.Source()),
				zap.String("reason", res.Reason),
				zap.Error(res.Err),
			)
			s.incFetch(f.Source(), res.Reason)
			continue
		}
		s.incFetch(f.Source(), "ok")
		all = append(all, res.Docs...)
	}

	matched := scrape.MatchDocs(req.Question, all, s.maxMatches)

	log.Debug("Scrape retrieval completed",
		zap.Int("fetched", len(all)),
		zap.Int("matched", len(matched)),
	)
	if s.retrieved != nil {
		s.retrieved.Observe(float64(len(matched)))
	}
	return matched, nil
}

func (s *Scrape) incFetch(source, result string) {
	if s.fetchTotal != nil {
		s.fetchTotal.WithLabelValues(source, result).Inc()
	}
}
