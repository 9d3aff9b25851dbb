package embcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tdsqa/internal/db"
	"github.com/kailas-cloud/tdsqa/internal/domain"
)

// fixedEmbedder returns the same vector for every text and counts calls.
type fixedEmbedder struct {
	result     domain.EmbeddingResult
	err        error
	embeds     int
	batchCalls int
	batched    [][]string
}

func (f *fixedEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	f.embeds++
	return f.result, f.err
}

func (f *fixedEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	f.batchCalls++
	f.batched = append(f.batched, texts)
	if f.err != nil {
		return domain.BatchEmbeddingResult{}, f.err
	}
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i := range texts {
		out.Embeddings[i] = f.result.Embedding
		out.PromptTokens += f.result.PromptTokens
		out.TotalTokens += f.result.TotalTokens
	}
	return out, nil
}

// memStore is an in-memory store with injectable failures.
type memStore struct {
	data   map[string][]byte
	getErr error
	putErr error

	gets    []string
	mgets   [][]string
	puts    int
	putMany [][]db.Entry
	ttls    []time.Duration
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.gets = append(m.gets, key)
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) MGet(_ context.Context, keys []string) ([][]byte, error) {
	m.mgets = append(m.mgets, keys)
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = m.data[k]
	}
	return out, nil
}

func (m *memStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.puts++
	m.ttls = append(m.ttls, ttl)
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = value
	return nil
}

func (m *memStore) PutMany(_ context.Context, entries []db.Entry, ttl time.Duration) error {
	m.putMany = append(m.putMany, entries)
	m.ttls = append(m.ttls, ttl)
	if m.putErr != nil {
		return m.putErr
	}
	for _, e := range entries {
		m.data[e.Key] = e.Value
	}
	return nil
}

func newTestCache(t *testing.T, inner *fixedEmbedder, opts Options) (*CachedEmbedder, *memStore) {
	t.Helper()
	if opts.Model == "" {
		opts.Model = "test-model"
	}
	opts.Logger = zap.NewNop()
	s := newMemStore()
	return New(inner, s, opts), s
}

// seed stores vec under the key the cache would use for text.
func seed(c *CachedEmbedder, s *memStore, text string, vec []float32) {
	s.data[c.cacheKey(text)] = encodeVector(vec)
}
