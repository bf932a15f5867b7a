package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rohmanhakim/coverart-fetcher/internal/metadata"
	"github.com/rohmanhakim/coverart-fetcher/internal/transport"
	"github.com/rohmanhakim/coverart-fetcher/pkg/failure"
	"github.com/rohmanhakim/coverart-fetcher/pkg/limiter"
	"github.com/rohmanhakim/coverart-fetcher/pkg/retry"
)

/*
Responsibilities

- Fetch provider pages on behalf of provider implementations
- Apply per-host politeness delays before each page request
- Retry transient page failures with backoff

Page fetches are the only retried fetches in the pipeline. Image byte
fetches are not retried because maximisation already supplies the
fallback chain for them.
*/

type PageFetcher struct {
	byteFetcher  transport.ByteFetcher
	rateLimiter  limiter.RateLimiter
	retryParam   retry.RetryParam
	userAgent    string
	metadataSink metadata.MetadataSink
}

func NewPageFetcher(
	byteFetcher transport.ByteFetcher,
	rateLimiter limiter.RateLimiter,
	retryParam retry.RetryParam,
	userAgent string,
	metadataSink metadata.MetadataSink,
) PageFetcher {
	return PageFetcher{
		byteFetcher:  byteFetcher,
		rateLimiter:  rateLimiter,
		retryParam:   retryParam,
		userAgent:    userAgent,
		metadataSink: metadataSink,
	}
}

// FetchPage retrieves a provider page body, honoring the host politeness
// delay and retrying transient failures.
func (f *PageFetcher) FetchPage(ctx context.Context, pageUrl url.URL) ([]byte, failure.ClassifiedError) {
	if f.rateLimiter != nil {
		if err := f.rateLimiter.Wait(ctx, pageUrl.Host); err != nil {
			return nil, &DiscoveryError{
				Message:   fmt.Sprintf("wait cancelled: %v", err),
				Retryable: false,
				Cause:     ErrCausePageFetchFailed,
				Err:       err,
			}
		}
	}

	startedAt := time.Now()
	result, err := retry.Retry(f.retryParam, func() (transport.FetchResult, failure.ClassifiedError) {
		return f.byteFetcher.Fetch(ctx, transport.NewFetchParam(pageUrl, pageHeaders(), f.userAgent, nil))
	})
	if err != nil {
		f.metadataSink.RecordError(
			time.Now(),
			"provider",
			"PageFetcher.FetchPage",
			metadata.CauseNetworkFailure,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, pageUrl.String()),
				metadata.NewAttr(metadata.AttrHost, pageUrl.Host),
			},
		)
		return nil, &DiscoveryError{
			Message:   fmt.Sprintf("failed to fetch %s: %v", pageUrl.String(), err),
			Retryable: false,
			Cause:     ErrCausePageFetchFailed,
			Err:       err,
		}
	}

	f.metadataSink.RecordFetch(
		pageUrl.String(),
		result.Code(),
		time.Since(startedAt),
		result.ContentType(),
		result.WasRedirected(),
	)
	return result.Body(), nil
}

// pageHeaders asks for HTML rather than the transport's image-leaning
// defaults.
func pageHeaders() map[string]string {
	return map[string]string{
		"Accept": "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	}
}
