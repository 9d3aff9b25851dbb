package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/tdsqa/internal/domain"
)

// --- Mocks ---

type mockEmbedder struct {
	got string
	vec []float32
	err error
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.got = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockSearcher struct {
	docs  []domain.Document
	err   error
	gotK  int
	calls int
}

func (m *mockSearcher) Search(_ context.Context, _ []float32, k int) ([]domain.Document, error) {
	m.calls++
	m.gotK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.docs[:min(k, len(m.docs))], nil
}

type mockFetcher struct {
	source string
	res    domain.FetchResult
	calls  int
}

func (m *mockFetcher) Source() string { return m.source }

func (m *mockFetcher) Fetch(_ context.Context) domain.FetchResult {
	m.calls++
	return m.res
}

func docs(contents ...string) []domain.Document {
	out := make([]domain.Document, len(contents))
	for i, c := range contents {
		out[i] = domain.Document{Content: c, URL: "https://x/" + c}
	}
	return out
}

// --- Vector ---

func TestVector_Retrieve(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{1, 0}}
	idx := &mockSearcher{docs: docs("a", "b", "c", "d", "e", "f")}
	v := NewVector(emb, idx, 0, nil)

	got, err := v.Retrieve(context.Background(), domain.RetrievalRequest{Question: "what is GA5", OCRText: "Q3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 documents, got %d", len(got))
	}
	if idx.gotK != DefaultTopK {
		t.Errorf("expected k=%d, got %d", DefaultTopK, idx.gotK)
	}
	if emb.got != "what is GA5 Q3" {
		t.Errorf("embedded text = %q", emb.got)
	}
}

func TestVector_EmbeddingFailure(t *testing.T) {
	emb := &mockEmbedder{err: &domain.ProviderError{Op: "embedding", Message: "API error 401: invalid token"}}
	idx := &mockSearcher{}
	v := NewVector(emb, idx, 5, nil)

	_, err := v.Retrieve(context.Background(), domain.RetrievalRequest{Question: "q"})

	var pe *domain.PipelineError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *domain.PipelineError, got %v", err)
	}
	if pe.Stage != domain.StageEmbedding {
		t.Errorf("stage = %q", pe.Stage)
	}
	if err.Error() != "Embedding failed: API error 401: invalid token" {
		t.Errorf("message = %q", err.Error())
	}
	if idx.calls != 0 {
		t.Error("index must not be searched after an embedding failure")
	}
}

func TestVector_SearchFailureIsNotPipelineError(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{1}}
	idx := &mockSearcher{err: domain.ErrUnknownDocument}
	v := NewVector(emb, idx, 5, nil)

	_, err := v.Retrieve(context.Background(), domain.RetrievalRequest{Question: "q"})
	if !errors.Is(err, domain.ErrUnknownDocument) {
		t.Fatalf("expected ErrUnknownDocument, got %v", err)
	}
	var pe *domain.PipelineError
	if errors.As(err, &pe) {
		t.Error("search failures are internal errors, not pipeline errors")
	}
}

func TestVector_ObservesRetrieved(t *testing.T) {
	h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "test_retrieved"})
	v := NewVector(&mockEmbedder{vec: []float32{1}}, &mockSearcher{docs: docs("a", "b")}, 5, h)

	if _, err := v.Retrieve(context.Background(), domain.RetrievalRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := testutil.CollectAndCount(h); n != 1 {
		t.Errorf("expected histogram to be collected, got %d", n)
	}
}

// --- Scrape ---

func TestScrape_MatchesInFetchOrder(t *testing.T) {
	site := &mockFetcher{source: "docs", res: domain.FetchResult{Docs: docs("docker basics", "git")}}
	forum := &mockFetcher{source: "forum", res: domain.FetchResult{Docs: docs("Docker error", "DOCKER compose")}}
	s := NewScrape([]Fetcher{site, forum}, ScrapeOptions{})

	got, err := s.Retrieve(context.Background(), domain.RetrievalRequest{Question: "Docker"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"docker basics", "Docker error", "DOCKER compose"}
	if len(got) != len(want) {
		t.Fatalf("expected %d docs, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Content != want[i] {
			t.Errorf("doc[%d] = %q, want %q", i, got[i].Content, want[i])
		}
	}
}

func TestScrape_CapsAtThree(t *testing.T) {
	site := &mockFetcher{source: "docs", res: domain.FetchResult{Docs: docs("a1", "a2", "a3")}}
	forum := &mockFetcher{source: "forum", res: domain.FetchResult{Docs: docs("a4")}}
	s := NewScrape([]Fetcher{site, forum}, ScrapeOptions{})

	got, _ := s.Retrieve(context.Background(), domain.RetrievalRequest{Question: "a"})
	if len(got) != 3 {
		t.Fatalf("expected 3 docs, got %d", len(got))
	}
	if got[2].Content != "a3" {
		t.Errorf("expected fetch order, got %+v", got)
	}
}

func TestScrape_NoMatch(t *testing.T) {
	site := &mockFetcher{source: "docs", res: domain.FetchResult{Docs: docs("alpha", "beta")}}
	s := NewScrape([]Fetcher{site}, ScrapeOptions{})

	got, err := s.Retrieve(context.Background(), domain.RetrievalRequest{Question: "xyz"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no documents, got %d", len(got))
	}
}

func TestScrape_IgnoresOCRText(t *testing.T) {
	site := &mockFetcher{source: "docs", res: domain.FetchResult{Docs: docs("deadline for GA5")}}
	s := NewScrape([]Fetcher{site}, ScrapeOptions{})

	got, _ := s.Retrieve(context.Background(), domain.RetrievalRequest{Question: "deadline", OCRText: "screenshot text"})
	if len(got) != 1 {
		t.Errorf("matching must use the question alone, got %d docs", len(got))
	}
}

func TestScrape_FetchFailureIsSwallowed(t *testing.T) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_fetch_total"}, []string{"source", "result"})
	site := &mockFetcher{source: "docs", res: domain.FetchResult{
		Reason: domain.FetchReasonRequest, Err: errors.New("dial tcp: connection refused"),
	}}
	forum := &mockFetcher{source: "forum", res: domain.FetchResult{Docs: docs("GA5 help")}}
	s := NewScrape([]Fetcher{site, forum}, ScrapeOptions{FetchTotal: total})

	got, err := s.Retrieve(context.Background(), domain.RetrievalRequest{Question: "ga5"})
	if err != nil {
		t.Fatalf("fetch failures must not fail retrieval: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected forum document, got %d", len(got))
	}
	if site.calls != 1 || forum.calls != 1 {
		t.Errorf("each fetcher runs once per request, got %d/%d", site.calls, forum.calls)
	}
	if v := testutil.ToFloat64(total.WithLabelValues("docs", domain.FetchReasonRequest)); v != 1 {
		t.Errorf("docs failure counter = %v", v)
	}
	if v := testutil.ToFloat64(total.WithLabelValues("forum", "ok")); v != 1 {
		t.Errorf("forum ok counter = %v", v)
	}
}
