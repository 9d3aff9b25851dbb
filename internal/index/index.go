// Package index serves nearest-neighbour lookups over the prebuilt course
// corpus. Vectors live in a chromem-go database file; the passages live in
// a JSON table whose positions are the vector IDs.
package index

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tdsqa/internal/domain"
)

// DefaultCollection is the collection name used when none is configured.
const DefaultCollection = "tds"

// errQueryByText is returned when chromem is asked to embed text itself.
// Queries always arrive as vectors produced by the configured embedder.
var errQueryByText = errors.New("index: text queries are not supported, pass an embedding")

func noEmbedding(context.Context, string) ([]float32, error) {
	return nil, errQueryByText
}

// Options locates the index on disk.
type Options struct {
	IndexPath    string
	MetadataPath string
	Collection   string
	Logger       *zap.Logger
}

// Index is a read-only vector index plus its document table. Safe for concurrent use.
type Index struct {
	coll *chromem.Collection
	docs []domain.Document
}

// Open loads the index file and the metadata table.
// A size mismatch between them is logged, not rejected.
func Open(opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	name := opts.Collection
	if name == "" {
		name = DefaultCollection
	}

	db := chromem.NewDB()
	if err := db.ImportFromFile(opts.IndexPath, ""); err != nil {
		return nil, fmt.Errorf("import index %s: %w", opts.IndexPath, err)
	}

	coll := db.GetCollection(name, noEmbedding)
	if coll == nil {
		return nil, fmt.Errorf("index %s has no collection %q", opts.IndexPath, name)
	}

	docs, err := LoadDocuments(opts.MetadataPath)
	if err != nil {
		return nil, err
	}

	if coll.Count() != len(docs) {
		logger.Warn("Index and metadata table differ in size",
			zap.Int("vectors", coll.Count()),
			zap.Int("documents", len(docs)),
		)
	}

	logger.Info("Vector index loaded",
		zap.String("collection", name),
		zap.Int("vectors", coll.Count()),
		zap.Int("documents", len(docs)),
	)

	return &Index{coll: coll, docs: docs}, nil
}

// New wraps an existing collection and document table.
func New(coll *chromem.Collection, docs []domain.Document) *Index {
	return &Index{coll: coll, docs: docs}
}

// Len returns the number of vectors in the index.
func (ix *Index) Len() int {
	return ix.coll.Count()
}

// Search returns up to k documents nearest to vec by cosine similarity, best first.
// k is clamped to the index size.
func (ix *Index) Search(ctx context.Context, vec []float32, k int) ([]domain.Document, error) {
	k = min(k, ix.coll.Count())
	if k <= 0 {
		return nil, nil
	}

	results, err := ix.coll.QueryEmbedding(ctx, vec, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	docs := make([]domain.Document, 0, len(results))
	for i := range results {
		doc, err := ix.document(results[i].ID)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (ix *Index) document(id string) (domain.Document, error) {
	pos, err := strconv.Atoi(id)
	if err != nil || pos < 0 || pos >= len(ix.docs) {
		return domain.Document{}, fmt.Errorf("%w: id %q (table has %d rows)", domain.ErrUnknownDocument, id, len(ix.docs))
	}
	return ix.docs[pos], nil
}
