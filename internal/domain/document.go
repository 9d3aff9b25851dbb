package domain

// Document is a retrievable text passage together with where it came from.
type Document struct {
	Content string
	URL     string
	Title   string
}

// Link is a source reference returned alongside an answer.
type Link struct {
	URL  string
	Text string
}

// Query is a single question, optionally accompanied by a base64-encoded image.
type Query struct {
	Question string
	Image    string
}

// HasImage reports whether the query carries an image. An empty string counts as absent.
func (q Query) HasImage() bool {
	return q.Image != ""
}

// Answer is the synthesized response to a Query.
// OCRText is nil when the field must be omitted from the response.
type Answer struct {
	Text    string
	Links   []Link
	OCRText *string
}

// RetrievalRequest is what a retrieval strategy sees of a query.
type RetrievalRequest struct {
	Question string
	OCRText  string
}

// Text returns the question extended with OCR text, the form that gets embedded
// and shown to the model.
func (r RetrievalRequest) Text() string {
	if r.OCRText == "" {
		return r.Question
	}
	return r.Question + " " + r.OCRText
}
