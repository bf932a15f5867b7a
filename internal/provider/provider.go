package provider

import (
	"context"
	"net/url"

	"github.com/rohmanhakim/coverart-fetcher/internal/artwork"
	"github.com/rohmanhakim/coverart-fetcher/pkg/failure"
)

/*
Responsibilities

- Define the contract a source site implementation fulfils
- Route page URLs to the provider that understands them

Lookup Semantics

- A provider declares the hosts it handles via SupportedDomains; the
  registry routes by host first and falls back to asking each provider via
  SupportsURL for hosts nobody claimed
- FindImages returns candidates in page order; the pipeline preserves
  that order in its output
- A provider that parses the page but finds no artwork returns an empty
  slice, not an error
*/

// Provider turns a source-site page URL into artwork candidates.
type Provider interface {
	// Name identifies the provider in diagnostics and provenance records.
	Name() string

	// SupportedDomains lists the normalized hosts this provider claims.
	// Hosts are matched without the www. prefix.
	SupportedDomains() []string

	// SupportsURL reports whether this provider can handle the given page
	// URL. Used as a fallback when no provider claims the host outright.
	SupportsURL(pageUrl url.URL) bool

	// FindImages discovers artwork candidates on the page.
	FindImages(ctx context.Context, request Request) ([]artwork.CandidateImage, failure.ClassifiedError)
}

// Postprocessor is an optional provider capability: it runs on each image
// after fetch and may rewrite it or veto it by returning nil with no
// error.
type Postprocessor interface {
	PostprocessImage(ctx context.Context, image *artwork.FetchedImage) (*artwork.FetchedImage, failure.ClassifiedError)
}
