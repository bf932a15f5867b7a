package queue

// Persistence

// Provenance is the sidecar record written next to each image so the
// queue consumer can show where a file came from without re-resolving
// anything.
type Provenance struct {
	OriginalURL   string   `json:"original_url"`
	MaximisedURL  string   `json:"maximised_url"`
	RequestedURL  string   `json:"requested_url"`
	FetchedURL    string   `json:"fetched_url"`
	WasRedirected bool     `json:"was_redirected"`
	WasMaximised  bool     `json:"was_maximised"`
	Types         []string `json:"types,omitempty"`
	Comment       string   `json:"comment,omitempty"`
	MIMEType      string   `json:"mime_type"`
	SizeBytes     int      `json:"size_bytes"`
	ContentHash   string   `json:"content_hash"`
}

type WriteResult struct {
	path        string
	sidecarPath string
	contentHash string
}

func NewWriteResult(
	path string,
	sidecarPath string,
	contentHash string,
) WriteResult {
	return WriteResult{
		path:        path,
		sidecarPath: sidecarPath,
		contentHash: contentHash,
	}
}

func (w *WriteResult) Path() string {
	return w.path
}

func (w *WriteResult) SidecarPath() string {
	return w.sidecarPath
}

func (w *WriteResult) ContentHash() string {
	return w.contentHash
}
