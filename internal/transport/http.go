package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rohmanhakim/coverart-fetcher/pkg/failure"
)

/*
Responsibilities

- Perform HTTP byte fetches
- Apply headers and body-size bounds
- Surface redirect chains via the final resolved URL
- Report transfer errors distinctly from HTTP-status errors

Fetch Semantics

- Any 2xx response body is returned as bytes; content inspection is the
  classifier's job, not the transport's
- Redirects are followed by the underlying client and reported, never
  hidden
- Progress is best-effort: reported per read when a callback is supplied

The transport never parses content; it only returns bytes and metadata.
*/

const progressChunkSize = 32 * 1024

// ByteFetcher is the transport collaborator the pipeline depends on.
type ByteFetcher interface {
	Fetch(ctx context.Context, param FetchParam) (FetchResult, failure.ClassifiedError)
}

type HTTPTransport struct {
	httpClient  *http.Client
	maxBodySize int64
}

// NewHTTPTransport wraps an HTTP client. maxBodySize bounds how many body
// bytes are accepted before the fetch fails; zero means unbounded.
func NewHTTPTransport(httpClient *http.Client, maxBodySize int64) HTTPTransport {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return HTTPTransport{
		httpClient:  httpClient,
		maxBodySize: maxBodySize,
	}
}

func (t *HTTPTransport) Fetch(ctx context.Context, param FetchParam) (FetchResult, failure.ClassifiedError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, param.fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &TransportError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseNetworkFailure,
		}
	}

	for key, value := range requestHeaders(param.userAgent) {
		req.Header.Set(key, value)
	}
	// Per-candidate headers win over the defaults
	for key, value := range param.headers {
		req.Header.Set(key, value)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		// Network/transport errors are retryable
		return FetchResult{}, &TransportError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
			Cause:     ErrCauseNetworkFailure,
		}
	}
	defer resp.Body.Close()

	if terr := classifyStatus(resp.StatusCode); terr != nil {
		return FetchResult{}, terr
	}

	body, terr := t.readBody(resp, param.progress)
	if terr != nil {
		return FetchResult{}, terr
	}

	// Build response headers map
	responseHeaders := make(map[string]string)
	for key, values := range resp.Header {
		if len(values) > 0 {
			responseHeaders[key] = values[0]
		}
	}

	finalUrl := param.fetchUrl
	if resp.Request != nil && resp.Request.URL != nil {
		finalUrl = *resp.Request.URL
	}

	return FetchResult{
		requestedUrl: param.fetchUrl,
		finalUrl:     finalUrl,
		redirected:   finalUrl.String() != param.fetchUrl.String(),
		body:         body,
		meta: ResponseMeta{
			statusCode:      resp.StatusCode,
			contentType:     resp.Header.Get("Content-Type"),
			responseHeaders: responseHeaders,
		},
	}, nil
}

// readBody drains the response body in chunks so progress can be reported
// as the transfer advances.
func (t *HTTPTransport) readBody(resp *http.Response, progress ProgressFunc) ([]byte, *TransportError) {
	total := resp.ContentLength // -1 when the server did not declare one

	var body []byte
	var loaded int64
	buf := make([]byte, progressChunkSize)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			body = append(body, buf[:n]...)
			loaded += int64(n)
			if t.maxBodySize > 0 && loaded > t.maxBodySize {
				return nil, &TransportError{
					Message:   fmt.Sprintf("body exceeded %d bytes", t.maxBodySize),
					Retryable: false,
					Cause:     ErrCauseResponseTooLarge,
				}
			}
			if progress != nil {
				progress(loaded, total)
			}
		}
		if err == io.EOF {
			return body, nil
		}
		if err != nil {
			return nil, &TransportError{
				Message:   fmt.Sprintf("failed to read response body: %v", err),
				Retryable: true,
				Cause:     ErrCauseReadResponseBodyError,
			}
		}
	}
}

// classifyStatus maps HTTP status codes to transport errors; 2xx is nil.
func classifyStatus(statusCode int) *TransportError {
	switch {
	case statusCode >= 500:
		// Server errors (5xx) are retryable
		return &TransportError{
			Message:    fmt.Sprintf("server error: %d", statusCode),
			Retryable:  true,
			Cause:      ErrCauseRequest5xx,
			StatusCode: statusCode,
		}

	case statusCode == http.StatusTooManyRequests:
		return &TransportError{
			Message:    "rate limited (429)",
			Retryable:  true,
			Cause:      ErrCauseRequestTooMany,
			StatusCode: statusCode,
		}

	case statusCode == http.StatusForbidden:
		return &TransportError{
			Message:    "access forbidden (403)",
			Retryable:  false,
			Cause:      ErrCauseRequestForbidden,
			StatusCode: statusCode,
		}

	case statusCode >= 400:
		return &TransportError{
			Message:    fmt.Sprintf("client error: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRequest4xx,
			StatusCode: statusCode,
		}

	case statusCode >= 300:
		// Redirects are handled by http.Client; reaching here means the
		// redirect limit was exceeded
		return &TransportError{
			Message:    fmt.Sprintf("redirect error: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRedirectLimitExceeded,
			StatusCode: statusCode,
		}
	}
	return nil
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "image/avif,image/webp,image/png,image/jpeg,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"DNT":             "1",
		"Connection":      "keep-alive",
	}
}
