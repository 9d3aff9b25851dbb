package scrape

import (
	"strings"

	"github.com/kailas-cloud/tdsqa/internal/domain"
)

// MatchDocs keeps documents whose text contains question as a case-insensitive
// literal substring, in input order, at most limit of them (limit <= 0 means no cap).
// An empty question matches every document.
func MatchDocs(question string, docs []domain.Document, limit int) []domain.Document {
	needle := strings.ToLower(question)

	matched := make([]domain.Document, 0, min(len(docs), max(limit, 0)))
	for _, d := range docs {
		if limit > 0 && len(matched) == limit {
			break
		}
		if strings.Contains(strings.ToLower(d.Content), needle) {
			matched = append(matched, d)
		}
	}
	return matched
}
