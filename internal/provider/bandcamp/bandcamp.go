package bandcamp

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/coverart-fetcher/internal/artwork"
	"github.com/rohmanhakim/coverart-fetcher/internal/metadata"
	"github.com/rohmanhakim/coverart-fetcher/internal/provider"
	"github.com/rohmanhakim/coverart-fetcher/pkg/failure"
	"golang.org/x/net/html"
)

/*
Responsibilities

- Discover album art on Bandcamp album and track pages
- Resolve the full-size popup image rather than the page thumbnail

Extraction Strategy

- Priority order:
  - The tralbum art popup anchor (full-size lightbox image)
  - The image_src link element in the page head
  - The og:image meta property

Bandcamp pages carry exactly one cover per album so a successful parse
yields at most one candidate, typed as the front cover.
*/

const providerName = "bandcamp"

type Provider struct {
	pageFetcher  provider.PageFetcher
	metadataSink metadata.MetadataSink
}

func NewProvider(
	pageFetcher provider.PageFetcher,
	metadataSink metadata.MetadataSink,
) *Provider {
	return &Provider{
		pageFetcher:  pageFetcher,
		metadataSink: metadataSink,
	}
}

func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) SupportedDomains() []string {
	return []string{"bandcamp.com"}
}

// SupportsURL accepts artist subdomains (someband.bandcamp.com), which a
// static domain list cannot enumerate.
func (p *Provider) SupportsURL(pageUrl url.URL) bool {
	host := strings.ToLower(pageUrl.Host)
	return host == "bandcamp.com" || strings.HasSuffix(host, ".bandcamp.com")
}

func (p *Provider) FindImages(
	ctx context.Context,
	request provider.Request,
) ([]artwork.CandidateImage, failure.ClassifiedError) {
	startedAt := time.Now()
	pageUrl := request.URL()

	body, err := p.pageFetcher.FetchPage(ctx, pageUrl)
	if err != nil {
		return nil, err
	}

	candidates, err := p.extract(pageUrl, body)
	if err != nil {
		p.metadataSink.RecordError(
			time.Now(),
			"provider/bandcamp",
			"Provider.FindImages",
			metadata.CauseContentInvalid,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, pageUrl.String()),
			},
		)
		return nil, err
	}

	p.metadataSink.RecordDiscovery(pageUrl.String(), providerName, len(candidates), time.Since(startedAt))
	return candidates, nil
}

func (p *Provider) extract(pageUrl url.URL, body []byte) ([]artwork.CandidateImage, failure.ClassifiedError) {
	// Parse HTML
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &provider.DiscoveryError{
			Message:   fmt.Sprintf("failed to parse page: %v", err),
			Provider:  providerName,
			Retryable: false,
			Cause:     provider.ErrCausePageParseFailed,
			Err:       err,
		}
	}

	// Use goquery as convenience wrapper
	doc := goquery.NewDocumentFromNode(root)

	imageUrl, found := firstImageRef(doc)
	if !found {
		return []artwork.CandidateImage{}, nil
	}

	resolved, perr := resolveRef(pageUrl, imageUrl)
	if perr != nil {
		return nil, &provider.DiscoveryError{
			Message:   fmt.Sprintf("malformed image reference %q: %v", imageUrl, perr),
			Provider:  providerName,
			Retryable: false,
			Cause:     provider.ErrCauseMalformedPayload,
			Err:       perr,
		}
	}

	return []artwork.CandidateImage{
		artwork.NewCandidateImage(
			resolved,
			[]artwork.Type{artwork.TypeFront},
			"",
			false,
		),
	}, nil
}

func firstImageRef(doc *goquery.Document) (string, bool) {
	if href, ok := doc.Find("#tralbumArt a.popupImage").First().Attr("href"); ok && href != "" {
		return href, true
	}
	if href, ok := doc.Find(`link[rel="image_src"]`).First().Attr("href"); ok && href != "" {
		return href, true
	}
	if content, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok && content != "" {
		return content, true
	}
	return "", false
}

func resolveRef(pageUrl url.URL, ref string) (url.URL, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return url.URL{}, err
	}
	return *pageUrl.ResolveReference(parsed), nil
}
