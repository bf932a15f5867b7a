package maximise

import "net/url"

// Candidate is one alternative URL that may serve the same image at a
// higher resolution. Candidates are yielded most-preferred first; the
// consumer stops after the first one that fetches successfully.
type Candidate struct {
	url      url.URL
	filename string
	headers  map[string]string
}

func NewCandidate(candidateUrl url.URL, filename string, headers map[string]string) Candidate {
	return Candidate{
		url:      candidateUrl,
		filename: filename,
		headers:  headers,
	}
}

func (c Candidate) URL() url.URL {
	return c.url
}

// Filename suggests a base name for the fetched file. May be empty.
func (c Candidate) Filename() string {
	return c.filename
}

// Headers are extra request headers some hosts require for full-size
// variants (e.g. a Referer check). May be nil.
func (c Candidate) Headers() map[string]string {
	if c.headers == nil {
		return nil
	}
	headers := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		headers[k] = v
	}
	return headers
}
