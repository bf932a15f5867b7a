package transport

import (
	"net/url"
)

// HTTP boundary

// ProgressFunc reports transfer progress. total is the declared
// Content-Length, or -1 when the server did not declare one; loaded is
// the number of body bytes read so far.
type ProgressFunc func(loaded int64, total int64)

type FetchParam struct {
	fetchUrl  url.URL
	headers   map[string]string
	userAgent string
	progress  ProgressFunc
}

func NewFetchParam(
	fetchUrl url.URL,
	headers map[string]string,
	userAgent string,
	progress ProgressFunc,
) FetchParam {
	return FetchParam{
		fetchUrl:  fetchUrl,
		headers:   headers,
		userAgent: userAgent,
		progress:  progress,
	}
}

func (f FetchParam) URL() url.URL {
	return f.fetchUrl
}

func (f FetchParam) Headers() map[string]string {
	return f.headers
}

func (f FetchParam) UserAgent() string {
	return f.userAgent
}

func (f FetchParam) Progress() ProgressFunc {
	return f.progress
}

type FetchResult struct {
	requestedUrl url.URL
	finalUrl     url.URL
	redirected   bool
	body         []byte
	meta         ResponseMeta
}

// RequestedURL is the URL the fetch was issued against.
func (f *FetchResult) RequestedURL() url.URL {
	return f.requestedUrl
}

// FinalURL is the resolved, post-redirect location the bytes came from.
// Equal to RequestedURL when no redirect occurred.
func (f *FetchResult) FinalURL() url.URL {
	return f.finalUrl
}

func (f *FetchResult) WasRedirected() bool {
	return f.redirected
}

func (f *FetchResult) Body() []byte {
	return f.body
}

func (f *FetchResult) Code() int {
	return f.meta.statusCode
}

// ContentType is the server-declared content type. Diagnostic only: the
// accept decision belongs to the signature classifier.
func (f *FetchResult) ContentType() string {
	return f.meta.contentType
}

func (f *FetchResult) Headers() map[string]string {
	return f.meta.responseHeaders
}

type ResponseMeta struct {
	statusCode      int
	contentType     string
	responseHeaders map[string]string
}

// NewFetchResultForTest creates a FetchResult for testing purposes.
// This allows test packages to construct FetchResult values without
// accessing unexported fields directly.
func NewFetchResultForTest(
	requestedUrl url.URL,
	finalUrl url.URL,
	redirected bool,
	body []byte,
	statusCode int,
	contentType string,
	responseHeaders map[string]string,
) FetchResult {
	return FetchResult{
		requestedUrl: requestedUrl,
		finalUrl:     finalUrl,
		redirected:   redirected,
		body:         body,
		meta: ResponseMeta{
			statusCode:      statusCode,
			contentType:     contentType,
			responseHeaders: responseHeaders,
		},
	}
}
