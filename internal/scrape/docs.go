package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tdsqa/internal/domain"
	"github.com/kailas-cloud/tdsqa/internal/logger"
)

// SourceDocs labels documents from the docs site.
const SourceDocs = "docs"

// DefaultLinkPattern selects hash-route anchors ("#/lesson").
const DefaultLinkPattern = `^#/`

var contentSelectors = []string{
	"main",
	"article",
	".content",
	"#content",
	".markdown-section",
}

// DocsFetcher reads the docs index page and the first pages it links to.
type DocsFetcher struct {
	client   *Client
	base     *url.URL
	pattern  *regexp.Regexp
	maxItems int
	logger   *zap.Logger
}

// NewDocsFetcher creates a fetcher for the docs site at baseURL.
// linkPattern selects which anchors count as pages; empty means DefaultLinkPattern.
func NewDocsFetcher(client *Client, baseURL, linkPattern string, maxItems int, l *zap.Logger) (*DocsFetcher, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse docs url: %w", err)
	}
	if linkPattern == "" {
		linkPattern = DefaultLinkPattern
	}
	pattern, err := regexp.Compile(linkPattern)
	if err != nil {
		return nil, fmt.Errorf("compile link pattern: %w", err)
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &DocsFetcher{client: client, base: base, pattern: pattern, maxItems: maxItems, logger: l}, nil
}

// Source implements the fetcher contract.
func (f *DocsFetcher) Source() string { return SourceDocs }

// Fetch returns up to maxItems pages linked from the index page.
// A failed index page fails the fetch; a failed linked page is skipped.
func (f *DocsFetcher) Fetch(ctx context.Context) domain.FetchResult {
	res := domain.FetchResult{Source: SourceDocs}

	index, err := f.page(ctx, f.base.String())
	if err != nil {
		res.Reason, res.Err = fetchReason(err), err
		return res
	}

	for _, link := range f.links(index) {
		page, err := f.page(ctx, link.URL)
		if err != nil {
			logger.FromContextOr(ctx, f.logger).Debug("Skipping docs page",
				zap.String("url", link.URL),
				zap.Error(err),
			)
			continue
		}

		title := strings.TrimSpace(page.Find("title").First().Text())
		if title == "" {
			title = link.Text
		}
		res.Docs = append(res.Docs, domain.Document{
			Content: extractText(page),
			URL:     link.URL,
			Title:   title,
		})
	}
	return res
}

func (f *DocsFetcher) page(ctx context.Context, u string) (*goquery.Document, error) {
	body, err := f.client.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, &parseError{err: err}
	}
	return doc, nil
}

// links returns the first maxItems distinct anchors matching the pattern, resolved against the base URL.
func (f *DocsFetcher) links(doc *goquery.Document) []domain.Link {
	seen := make(map[string]bool)
	var out []domain.Link

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !f.pattern.MatchString(href) {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		abs := f.base.ResolveReference(ref).String()
		if seen[abs] {
			return true
		}
		seen[abs] = true
		out = append(out, domain.Link{URL: abs, Text: cleanText(a.Text())})
		return f.maxItems <= 0 || len(out) < f.maxItems
	})
	return out
}

// extractText returns the visible text of the main content area, falling back to body.
func extractText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, header, footer").Remove()

	for _, selector := range contentSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			if text := cleanText(sel.Text()); text != "" {
				return text
			}
		}
	}
	return cleanText(doc.Find("body").Text())
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type parseError struct {
	err error
}

func (e *parseError) Error() string { return "parse: " + e.err.Error() }
func (e *parseError) Unwrap() error { return e.err }

func fetchReason(err error) string {
	var pe *parseError
	if errors.As(err, &pe) {
		return domain.FetchReasonParse
	}
	var se *StatusError
	if errors.As(err, &se) {
		return domain.FetchReasonStatus
	}
	return domain.FetchReasonRequest
}
