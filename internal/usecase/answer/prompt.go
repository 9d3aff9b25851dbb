package answer

import (
	"strings"

	"github.com/kailas-cloud/tdsqa/internal/domain"
)

// SystemPrompt is the fixed instruction sent with every question.
const SystemPrompt = "You are a helpful TDS assistant. Use only the context below to answer."

// Style selects how passages are rendered into the prompt and into links.
type Style string

const (
	// StyleVector renders bare passages and links only documents with a URL, titled by the document title.
	StyleVector Style = "vector"
	// StyleScrape prefixes each passage with its source URL and links every document.
	StyleScrape Style = "scrape"
)

func buildContext(style Style, docs []domain.Document) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		if style == StyleScrape {
			parts[i] = "Source: " + d.URL + "\n" + d.Content
			continue
		}
		parts[i] = d.Content
	}
	return strings.Join(parts, "\n\n")
}

func buildUserPrompt(style Style, docs []domain.Document, question string) string {
	return "Context:\n" + buildContext(style, docs) + "\n\nQuestion: " + question
}

func buildLinks(style Style, docs []domain.Document) []domain.Link {
	links := make([]domain.Link, 0, len(docs))
	for _, d := range docs {
		switch style {
		case StyleScrape:
			text := d.Title
			if text == "" {
				text = d.URL
			}
			links = append(links, domain.Link{URL: d.URL, Text: text})
		default:
			if d.URL == "" {
				continue
			}
			links = append(links, domain.Link{URL: d.URL, Text: d.Title})
		}
	}
	return links
}
