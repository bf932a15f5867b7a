package itunes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/coverart-fetcher/internal/artwork"
	"github.com/rohmanhakim/coverart-fetcher/internal/metadata"
	"github.com/rohmanhakim/coverart-fetcher/internal/provider"
	"github.com/rohmanhakim/coverart-fetcher/pkg/failure"
)

/*
Responsibilities

- Discover album art on Apple Music and legacy iTunes album pages
- Reject placeholder responses Apple serves for missing artwork

Extraction Strategy

- Priority order:
  - The schema.org JSON-LD payload embedded in the page
  - The og:image meta property

Apple serves artwork from mzstatic hosts with the requested dimensions
encoded in the URL tail; the discovered URL is a page-sized rendition and
relies on maximisation for the full-size file.
*/

const providerName = "itunes"

// Apple answers requests for missing artwork with a tiny placeholder
// image instead of an error status. Real cover renditions are never this
// small.
const minImageSizeBytes = 1024

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
	return []string{"music.apple.com", "itunes.apple.com", "geo.music.apple.com"}
}

func (p *Provider) SupportsURL(pageUrl url.URL) bool {
	host := strings.ToLower(pageUrl.Host)
	for _, domain := range p.SupportedDomains() {
		if host == domain || host == "www."+domain {
			return true
		}
	}
	return false
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
			"provider/itunes",
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

// PostprocessImage vetoes Apple's missing-artwork placeholder, which
// arrives with a success status and a valid image signature.
func (p *Provider) PostprocessImage(
	ctx context.Context,
	image *artwork.FetchedImage,
) (*artwork.FetchedImage, failure.ClassifiedError) {
	if len(image.Content().Data()) < minImageSizeBytes {
		return nil, nil
	}
	return image, nil
}

func (p *Provider) extract(pageUrl url.URL, body []byte) ([]artwork.CandidateImage, failure.ClassifiedError) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &provider.DiscoveryError{
			Message:   fmt.Sprintf("failed to parse page: %v", err),
			Provider:  providerName,
			Retryable: false,
			Cause:     provider.ErrCausePageParseFailed,
			Err:       err,
		}
	}

	ref := imageFromJSONLD(doc)
	if ref == "" {
		if content, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok {
			ref = content
		}
	}
	if ref == "" {
		return []artwork.CandidateImage{}, nil
	}

	parsed, perr := url.Parse(ref)
	if perr != nil {
		return nil, &provider.DiscoveryError{
			Message:   fmt.Sprintf("malformed image reference %q: %v", ref, perr),
			Provider:  providerName,
			Retryable: false,
			Cause:     provider.ErrCauseMalformedPayload,
			Err:       perr,
		}
	}

	return []artwork.CandidateImage{
		artwork.NewCandidateImage(
			*pageUrl.ResolveReference(parsed),
			[]artwork.Type{artwork.TypeFront},
			"",
			false,
		),
	}, nil
}

// imageFromJSONLD pulls the image field out of the page's schema.org
// payload. Malformed JSON-LD is skipped rather than failing the parse;
// og:image remains as the fallback.
func imageFromJSONLD(doc *goquery.Document) string {
	var ref string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var payload struct {
			Image string `json:"image"`
		}
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return true
		}
		if payload.Image != "" {
			ref = payload.Image
			return false
		}
		return true
	})
	return ref
}
