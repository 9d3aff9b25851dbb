package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/tdsqa/internal/domain"
)

// Record is one row of the metadata table, as stored on disk.
type Record struct {
	Content string `json:"content"`
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
}

func (r Record) toDomain() domain.Document {
	return domain.Document{Content: r.Content, URL: r.URL, Title: r.Title}
}

// LoadDocuments reads the metadata table: a JSON array of {content, url, title}.
// Position i in the array is the document with index ID i.
func LoadDocuments(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read metadata %s: %w", path, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", path, err)
	}

	docs := make([]domain.Document, len(records))
	for i := range records {
		docs[i] = records[i].toDomain()
	}
	return docs, nil
}
