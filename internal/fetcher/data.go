package fetcher

import (
	"context"
	"net/url"

	"github.com/rohmanhakim/coverart-fetcher/internal/artwork"
	"github.com/rohmanhakim/coverart-fetcher/pkg/failure"
)

// Options tune a single FetchImages run. The zero value fetches every
// discovered candidate with maximisation enabled.
type Options struct {
	frontOnly        bool
	skipMaximisation bool
}

func NewOptions(frontOnly bool, skipMaximisation bool) Options {
	return Options{
		frontOnly:        frontOnly,
		skipMaximisation: skipMaximisation,
	}
}

func (o Options) FrontOnly() bool {
	return o.frontOnly
}

func (o Options) SkipMaximisation() bool {
	return o.skipMaximisation
}

// Result is the outcome of one FetchImages run. Images appear in
// discovery order regardless of which fetch finished first. ContainerURL
// is the provider page the images came from; nil for direct image URLs.
type Result struct {
	images       []artwork.FetchedImage
	containerUrl *url.URL
}

func (r Result) Images() []artwork.FetchedImage {
	images := make([]artwork.FetchedImage, len(r.images))
	copy(images, r.images)
	return images
}

func (r Result) ContainerURL() *url.URL {
	return r.containerUrl
}

// Hooks observe fetch lifecycle per candidate. index is the discovery
// position, stable under out-of-order completion. Any hook may be nil.
// Invocations are serialized; hooks must not block.
type Hooks struct {
	OnFetchStarted  func(index int, fetchUrl url.URL)
	OnFetchProgress func(index int, loaded int64, total int64)
	OnFetchFinished func(index int)
}

// Enqueuer receives accepted images. Failures are recorded but never
// affect the run outcome.
type Enqueuer interface {
	Enqueue(ctx context.Context, image artwork.FetchedImage) failure.ClassifiedError
}

type Set[T comparable] map[T]struct{}

func NewSet[T comparable]() Set[T] {
	return make(Set[T])
}

func (s Set[T]) Add(item T) {
	s[item] = struct{}{}
}

func (s Set[T]) Contains(item T) bool {
	_, exists := s[item]
	return exists
}

func (s Set[T]) Remove(element T) {
	delete(s, element)
}

func (s Set[T]) Size() int {
	return len(s)
}
