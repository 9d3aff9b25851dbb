package index

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/philippgille/chromem-go"

	"github.com/kailas-cloud/tdsqa/internal/domain"
)

// Build embeds every document and stores it in a new in-memory collection.
// Document i gets ID "i", matching its position in the metadata table.
func Build(
	ctx context.Context, embedder domain.Embedder, docs []domain.Document, collection string,
) (*chromem.DB, error) {
	if collection == "" {
		collection = DefaultCollection
	}

	db := chromem.NewDB()
	coll, err := db.GetOrCreateCollection(collection, nil, noEmbedding)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	if len(docs) == 0 {
		return db, nil
	}

	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Content
	}

	res, err := domain.EmbedAll(ctx, embedder, texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}

	chromemDocs := make([]chromem.Document, len(docs))
	for i := range docs {
		chromemDocs[i] = chromem.Document{
			ID:        strconv.Itoa(i),
			Content:   docs[i].Content,
			Embedding: res.Embeddings[i],
			Metadata: map[string]string{
				"url":   docs[i].URL,
				"title": docs[i].Title,
			},
		}
	}

	if err := coll.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("add documents: %w", err)
	}
	return db, nil
}

// Save writes db to path as gob. With compress the file is gzipped and the
// path gets a ".gz" suffix if it lacks one. Returns the path written.
func Save(db *chromem.DB, path string, compress bool) (string, error) {
	if compress && !strings.HasSuffix(path, ".gz") {
		path += ".gz"
	}
	if err := db.ExportToFile(path, compress, ""); err != nil {
		return "", fmt.Errorf("export index %s: %w", path, err)
	}
	return path, nil
}
