package models

// Document is the plain-text form of one fetched page.
type Document struct {
	ID       string
	URL      string
	Title    string
	Content  string
	Metadata map[string]interface{}
}

// FetchedResource is the raw outcome of fetching a single URL. Err is set
// when the fetch failed; downstream stages skip failed resources.
type FetchedResource struct {
	URL         string
	Body        []byte
	ContentType string
	StatusCode  int
	Err         error
}

// Chunk is a contiguous run of sentences from one Document. Metadata is
// inherited from the parent document. Score is set by the reranker.
type Chunk struct {
	ID         string
	DocumentID string
	URL        string
	Content    string
	Index      int
	Score      float64
	Metadata   map[string]interface{}
}

// Answer is the generated text plus the URLs of the chunks that were
// placed in the prompt context.
type Answer struct {
	Text    string
	Sources []string
}
