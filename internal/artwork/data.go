package artwork

import (
	"net/url"
)

// Cover art domain types shared by provider discovery and the fetcher.

// Type classifies what part of a release packaging an image shows.
// The vocabulary mirrors the one used by cover art archives; providers may
// assert any subset, in order of confidence.
type Type string

const (
	TypeFront   Type = "front"
	TypeBack    Type = "back"
	TypeBooklet Type = "booklet"
	TypeMedium  Type = "medium"
	TypeTray    Type = "tray"
	TypeObi     Type = "obi"
	TypeSpine   Type = "spine"
	TypeTrack   Type = "track"
	TypeLiner   Type = "liner"
	TypeSticker Type = "sticker"
	TypePoster  Type = "poster"
	TypeRaw     Type = "raw"
	TypeOther   Type = "other"
)

// HasFront reports whether any of the asserted types is the release's
// primary (front) artwork.
func HasFront(types []Type) bool {
	for _, t := range types {
		if t == TypeFront {
			return true
		}
	}
	return false
}

// ImageFile is the in-memory representation of a fetched image: raw bytes
// plus the MIME type derived from the byte signature (never from response
// headers) and the unique filename assigned by the fetcher.
type ImageFile struct {
	data     []byte
	mimeType string
	fileName string
}

func NewImageFile(data []byte, mimeType string, fileName string) ImageFile {
	return ImageFile{
		data:     data,
		mimeType: mimeType,
		fileName: fileName,
	}
}

func (f ImageFile) Data() []byte {
	return f.data
}

func (f ImageFile) MIMEType() string {
	return f.mimeType
}

func (f ImageFile) FileName() string {
	return f.fileName
}

// CandidateImage is an image reference discovered on a provider page but
// not yet fetched. Two candidates are the same image when their resolved
// fetch URLs match, not when their raw URLs do: redirects and maximisation
// can change the effective URL.
type CandidateImage struct {
	url              url.URL
	types            []Type
	comment          string
	skipMaximisation bool
}

func NewCandidateImage(
	candidateUrl url.URL,
	types []Type,
	comment string,
	skipMaximisation bool,
) CandidateImage {
	return CandidateImage{
		url:              candidateUrl,
		types:            types,
		comment:          comment,
		skipMaximisation: skipMaximisation,
	}
}

func (c CandidateImage) URL() url.URL {
	return c.url
}

func (c CandidateImage) Types() []Type {
	types := make([]Type, len(c.types))
	copy(types, c.types)
	return types
}

func (c CandidateImage) Comment() string {
	return c.comment
}

func (c CandidateImage) SkipMaximisation() bool {
	return c.skipMaximisation
}

// FetchedImage is the pipeline's output unit.
//
// URL provenance, all retained because the queuing UI needs to show where
// an image came from:
//   - OriginalURL: the candidate URL as discovered
//   - MaximisedURL: what maximisation picked (equal to OriginalURL when
//     maximisation was skipped or found nothing)
//   - RequestedURL: the URL the byte fetch was issued against
//   - FetchedURL: the post-redirect resolved location
type FetchedImage struct {
	content       ImageFile
	requestedURL  url.URL
	fetchedURL    url.URL
	wasRedirected bool
	originalURL   url.URL
	maximisedURL  url.URL
	wasMaximised  bool
	types         []Type
	comment       string
}

func NewFetchedImage(
	content ImageFile,
	requestedURL url.URL,
	fetchedURL url.URL,
	wasRedirected bool,
	originalURL url.URL,
	maximisedURL url.URL,
	wasMaximised bool,
	types []Type,
	comment string,
) FetchedImage {
	return FetchedImage{
		content:       content,
		requestedURL:  requestedURL,
		fetchedURL:    fetchedURL,
		wasRedirected: wasRedirected,
		originalURL:   originalURL,
		maximisedURL:  maximisedURL,
		wasMaximised:  wasMaximised,
		types:         types,
		comment:       comment,
	}
}

func (f *FetchedImage) Content() ImageFile {
	return f.content
}

func (f *FetchedImage) RequestedURL() url.URL {
	return f.requestedURL
}

func (f *FetchedImage) FetchedURL() url.URL {
	return f.fetchedURL
}

func (f *FetchedImage) WasRedirected() bool {
	return f.wasRedirected
}

func (f *FetchedImage) OriginalURL() url.URL {
	return f.originalURL
}

func (f *FetchedImage) MaximisedURL() url.URL {
	return f.maximisedURL
}

func (f *FetchedImage) WasMaximised() bool {
	return f.wasMaximised
}

func (f *FetchedImage) Types() []Type {
	types := make([]Type, len(f.types))
	copy(types, f.types)
	return types
}

func (f *FetchedImage) Comment() string {
	return f.comment
}

// SetTypes replaces the asserted types. Used by provider postprocessors to
// refine a classification after the bytes are available.
func (f *FetchedImage) SetTypes(types []Type) {
	f.types = types
}

// SetComment replaces the asserted comment.
func (f *FetchedImage) SetComment(comment string) {
	f.comment = comment
}

// SetContent replaces the image payload. Used by postprocessors that
// re-encode or crop.
func (f *FetchedImage) SetContent(content ImageFile) {
	f.content = content
}
