package provider

import (
	"net/url"

	"github.com/rohmanhakim/coverart-fetcher/internal/artwork"
)

// Request describes a provider lookup: the page URL to inspect plus the
// default artwork types and comment to stamp on candidates whose type the
// provider cannot determine from the page itself.
type Request struct {
	url     url.URL
	types   []artwork.Type
	comment string
}

func NewRequest(pageUrl url.URL, types []artwork.Type, comment string) Request {
	return Request{
		url:     pageUrl,
		types:   types,
		comment: comment,
	}
}

func (r Request) URL() url.URL {
	return r.url
}

// Types returns the requested default artwork types. Providers that can
// read types off the page ignore these.
func (r Request) Types() []artwork.Type {
	out := make([]artwork.Type, len(r.types))
	copy(out, r.types)
	return out
}

func (r Request) Comment() string {
	return r.comment
}
