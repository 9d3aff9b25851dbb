package index

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/philippgille/chromem-go"

	"github.com/kailas-cloud/tdsqa/internal/domain"
)

// axisEmbedder maps "doc<i>" to the i-th unit vector of a 6-dimensional space.
type axisEmbedder struct{}

func (axisEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: axis(text)}, nil
}

func axis(text string) []float32 {
	vec := make([]float32, 6)
	if len(text) > 3 {
		if i, err := strconv.Atoi(text[3:]); err == nil && i < len(vec) {
			vec[i] = 1
			return vec
		}
	}
	vec[len(vec)-1] = 1
	return vec
}

func testDocs(n int) []domain.Document {
	docs := make([]domain.Document, n)
	for i := range docs {
		docs[i] = domain.Document{
			Content: "doc" + strconv.Itoa(i),
			URL:     "https://tds.example/" + strconv.Itoa(i),
			Title:   "Doc " + strconv.Itoa(i),
		}
	}
	return docs
}

func writeTable(t *testing.T, dir string, docs []domain.Document) string {
	t.Helper()
	records := make([]Record, len(docs))
	for i, d := range docs {
		records[i] = Record{Content: d.Content, URL: d.URL, Title: d.Title}
	}
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(dir, "meta.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func buildOnDisk(t *testing.T, docs []domain.Document, compress bool) Options {
	t.Helper()
	dir := t.TempDir()

	db, err := Build(context.Background(), axisEmbedder{}, docs, "tds")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	indexPath, err := Save(db, filepath.Join(dir, "index.gob"), compress)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	return Options{
		IndexPath:    indexPath,
		MetadataPath: writeTable(t, dir, docs),
		Collection:   "tds",
	}
}

func TestOpen_SearchReturnsTopK(t *testing.T) {
	docs := testDocs(6)
	ix, err := Open(buildOnDisk(t, docs, false))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ix.Len() != 6 {
		t.Fatalf("expected 6 vectors, got %d", ix.Len())
	}

	got, err := ix.Search(context.Background(), axis("doc2"), 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected exactly 5 documents, got %d", len(got))
	}
	if got[0] != docs[2] {
		t.Errorf("nearest document = %+v, want %+v", got[0], docs[2])
	}
	for _, d := range got {
		if d.URL == "" || d.Content == "" {
			t.Errorf("search returned an empty document: %+v", d)
		}
	}
}

func TestOpen_Compressed(t *testing.T) {
	opts := buildOnDisk(t, testDocs(3), true)
	if filepath.Ext(opts.IndexPath) != ".gz" {
		t.Fatalf("expected .gz path, got %s", opts.IndexPath)
	}

	ix, err := Open(opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ix.Len() != 3 {
		t.Errorf("expected 3 vectors, got %d", ix.Len())
	}
}

func TestSearch_ClampsToIndexSize(t *testing.T) {
	ix, err := Open(buildOnDisk(t, testDocs(2), false))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	got, err := ix.Search(context.Background(), axis("doc0"), 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 documents, got %d", len(got))
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	db := chromem.NewDB()
	coll, err := db.CreateCollection("tds", nil, noEmbedding)
	if err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}

	got, err := New(coll, nil).Search(context.Background(), axis("doc0"), 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no documents, got %d", len(got))
	}
}

func TestSearch_UnknownDocument(t *testing.T) {
	db, err := Build(context.Background(), axisEmbedder{}, testDocs(3), "tds")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	coll := db.GetCollection("tds", noEmbedding)

	// Table shorter than the index.
	ix := New(coll, testDocs(1))

	_, err = ix.Search(context.Background(), axis("doc2"), 1)
	if !errors.Is(err, domain.ErrUnknownDocument) {
		t.Fatalf("expected ErrUnknownDocument, got %v", err)
	}
}

func TestOpen_SizeMismatchIsNotFatal(t *testing.T) {
	opts := buildOnDisk(t, testDocs(4), false)
	opts.MetadataPath = writeTable(t, t.TempDir(), testDocs(3))

	if _, err := Open(opts); err != nil {
		t.Fatalf("size mismatch must only warn, got %v", err)
	}
}

func TestOpen_MissingCollection(t *testing.T) {
	opts := buildOnDisk(t, testDocs(1), false)
	opts.Collection = "other"

	if _, err := Open(opts); err == nil {
		t.Fatal("expected error for missing collection")
	}
}

func TestOpen_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(Options{IndexPath: filepath.Join(dir, "nope.gob"), MetadataPath: "x"}); err == nil {
		t.Fatal("expected error for missing index")
	}
}

func TestLoadDocuments_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	if err := os.WriteFile(path, []byte(`{"not": "an array"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadDocuments(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadDocuments_OptionalTitle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	body := `[{"content":"a","url":"https://x/a"},{"content":"b","url":"","title":"B"}]`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	docs, err := LoadDocuments(path)
	if err != nil {
		t.Fatalf("LoadDocuments: %v", err)
	}
	want := []domain.Document{
		{Content: "a", URL: "https://x/a"},
		{Content: "b", Title: "B"},
	}
	if len(docs) != len(want) {
		t.Fatalf("expected %d docs, got %d", len(want), len(docs))
	}
	for i := range want {
		if docs[i] != want[i] {
			t.Errorf("doc[%d] = %+v, want %+v", i, docs[i], want[i])
		}
	}
}
