package tdsqa

// Query is a question, optionally with a base64-encoded image whose text is added to it.
type Query struct {
	Question string
	Image    string
}

// Link is a source the answer was grounded on.
type Link struct {
	URL  string
	Text string
}

// Usage reports the tokens one Ask consumed.
type Usage struct {
	EmbeddingTokens  int
	CompletionTokens int
}

// Answer is the model's reply with its sources.
type Answer struct {
	Text  string
	Links []Link
	// OCRText is nil when the strategy omits it (scrape without an image).
	OCRText *string
	Usage   Usage
}
