package domain

// Reasons an OCR attempt produced no text.
const (
	OCRReasonDecodeBase64 = "decode_base64"
	OCRReasonDecodeImage  = "decode_image"
	OCRReasonEngine       = "engine"
)

// OCRResult is the outcome of a best-effort OCR attempt.
// Reason is empty on success; otherwise Text is empty and Err holds the cause.
type OCRResult struct {
	Text   string
	Reason string
	Err    error
}

// Failed reports whether the attempt failed.
func (r OCRResult) Failed() bool {
	return r.Reason != ""
}

// Reasons a live fetch produced no documents.
const (
	FetchReasonRequest = "request"
	FetchReasonStatus  = "status"
	FetchReasonParse   = "parse"
)

// FetchResult is the outcome of a best-effort fetch of live documents.
type FetchResult struct {
	Source string
	Docs   []Document
	Reason string
	Err    error
}

// Failed reports whether the fetch failed.
func (r FetchResult) Failed() bool {
	return r.Reason != ""
}
