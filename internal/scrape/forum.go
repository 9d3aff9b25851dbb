package scrape

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kailas-cloud/tdsqa/internal/domain"
)

// SourceForum labels documents from the discourse forum.
const SourceForum = "forum"

type latestResponse struct {
	TopicList struct {
		Topics []topic `json:"topics"`
	} `json:"topic_list"`
}

type topic struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Excerpt string `json:"excerpt"`
}

// ForumFetcher reads the latest topics from a discourse forum's JSON API.
type ForumFetcher struct {
	client   *Client
	baseURL  string
	maxItems int
}

// NewForumFetcher creates a fetcher for the discourse forum at baseURL.
func NewForumFetcher(client *Client, baseURL string, maxItems int) *ForumFetcher {
	return &ForumFetcher{
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxItems: maxItems,
	}
}

// Source implements the fetcher contract.
func (f *ForumFetcher) Source() string { return SourceForum }

// Fetch returns the first maxItems topics of <forum>/latest.json.
// Document text is the topic excerpt, or the title when the forum sends no excerpt.
func (f *ForumFetcher) Fetch(ctx context.Context) domain.FetchResult {
	res := domain.FetchResult{Source: SourceForum}

	body, err := f.client.Get(ctx, f.baseURL+"/latest.json")
	if err != nil {
		res.Reason, res.Err = fetchReason(err), err
		return res
	}
	defer body.Close()

	var latest latestResponse
	if err := json.NewDecoder(body).Decode(&latest); err != nil {
		res.Reason, res.Err = domain.FetchReasonParse, err
		return res
	}

	topics := latest.TopicList.Topics
	if f.maxItems > 0 && len(topics) > f.maxItems {
		topics = topics[:f.maxItems]
	}

	for _, t := range topics {
		text := cleanText(t.Excerpt)
		if text == "" {
			text = t.Title
		}
		res.Docs = append(res.Docs, domain.Document{
			Content: text,
			URL:     f.baseURL + "/t/" + t.Slug + "/" + strconv.Itoa(t.ID),
			Title:   t.Title,
		})
	}
	return res
}
