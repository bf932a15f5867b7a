package provider

import (
	"fmt"
	"net/url"

	"github.com/rohmanhakim/coverart-fetcher/pkg/failure"
	"github.com/rohmanhakim/coverart-fetcher/pkg/urlutil"
)

// Registry routes page URLs to providers. Construction is the only write;
// lookups after that are safe for concurrent use.
type Registry struct {
	providers []Provider
	byDomain  map[string]Provider
}

// NewRegistry indexes providers by their supported domains. Registration
// order decides the fallback scan order. Nil providers and duplicate
// domain claims are rejected.
func NewRegistry(providers ...Provider) (*Registry, failure.ClassifiedError) {
	registry := &Registry{
		providers: make([]Provider, 0, len(providers)),
		byDomain:  make(map[string]Provider),
	}
	for _, p := range providers {
		if p == nil {
			return nil, &DiscoveryError{
				Message: "nil provider registered",
				Cause:   ErrCauseUnsupportedURL,
			}
		}
		for _, domain := range p.SupportedDomains() {
			host := urlutil.NormalizeHost(domain)
			if existing, ok := registry.byDomain[host]; ok {
				return nil, &DiscoveryError{
					Message:  fmt.Sprintf("domain %q claimed by both %s and %s", host, existing.Name(), p.Name()),
					Provider: p.Name(),
					Cause:    ErrCauseUnsupportedURL,
				}
			}
			registry.byDomain[host] = p
		}
		registry.providers = append(registry.providers, p)
	}
	return registry, nil
}

func (r *Registry) Providers() []Provider {
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// ByDomain returns the provider claiming the given host, if any.
func (r *Registry) ByDomain(host string) (Provider, bool) {
	p, ok := r.byDomain[urlutil.NormalizeHost(host)]
	return p, ok
}

// ByURL resolves the provider for a page URL: domain claim first, then a
// SupportsURL scan over providers in registration order. A domain claim
// alone is not enough; the claiming provider must also confirm the URL
// shape via SupportsURL, otherwise the URL falls through to the scan and
// ultimately to the unsupported-URL miss.
func (r *Registry) ByURL(pageUrl url.URL) (Provider, failure.ClassifiedError) {
	if p, ok := r.ByDomain(pageUrl.Host); ok && p.SupportsURL(pageUrl) {
		return p, nil
	}
	for _, p := range r.providers {
		if p.SupportsURL(pageUrl) {
			return p, nil
		}
	}
	return nil, &DiscoveryError{
		Message: fmt.Sprintf("no provider supports %s", pageUrl.String()),
		Cause:   ErrCauseUnsupportedURL,
	}
}
