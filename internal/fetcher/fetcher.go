package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rohmanhakim/coverart-fetcher/internal/artwork"
	"github.com/rohmanhakim/coverart-fetcher/internal/imagetype"
	"github.com/rohmanhakim/coverart-fetcher/internal/maximise"
	"github.com/rohmanhakim/coverart-fetcher/internal/metadata"
	"github.com/rohmanhakim/coverart-fetcher/internal/provider"
	"github.com/rohmanhakim/coverart-fetcher/internal/transport"
	"github.com/rohmanhakim/coverart-fetcher/pkg/failure"
	"github.com/rohmanhakim/coverart-fetcher/pkg/urlutil"
)

/*
 ImageFetcher is the sole control-plane authority of an acquisition run.

 Determinism and dedup guarantees:
 - ImageFetcher is the ONLY component allowed to decide whether an image
   URL may be fetched.
 - The claimed-URL check-and-mark is a single atomic step; losing a race
   discards the duplicate result silently.
 - A URL claimed once is never fetched again for the lifetime of the
   instance, in any spelling that was recorded for it (original,
   maximised, requested, post-redirect).
 - Provider pages whose every candidate terminated in Fetched or
   Deduplicated on an unfiltered run are never scanned again.
 - Pipeline collaborators may detect and classify failure, but never
   decide retry, continuation, or abortion.

 Ordering:
 - Candidates of one page are fetched concurrently, one goroutine per
   candidate, with no internal concurrency cap.
 - Output order is discovery order; completion order never shows through.

 Metadata emission is observational only and MUST NOT influence fetch
 decisions.

 ImageFetcher Responsibilities:
 - Route requests between the provider-page path and the direct-URL path
 - Enforce the at-most-once fetch guarantee
 - Drive maximisation fallback chains
 - Classify payloads by signature and reject non-images
 - Collate results and forward accepted images to the enqueuer
*/

const defaultBaseName = "cover"

type candidateStatus int

const (
	statusFailed candidateStatus = iota
	statusFetched
	statusDeduplicated
)

type candidateOutcome struct {
	image  *artwork.FetchedImage
	status candidateStatus
}

// indexedCandidate pairs a candidate with its position in the provider's
// discovered list, so hooks keep reporting that position even after
// front-only filtering narrows the attempted set.
type indexedCandidate struct {
	discoveryIndex int
	candidate      artwork.CandidateImage
}

type ImageFetcher struct {
	registry       *provider.Registry
	byteFetcher    transport.ByteFetcher
	maximiseSource maximise.Source
	enqueuer       Enqueuer
	metadataSink   metadata.MetadataSink
	userAgent      string
	hooks          Hooks

	mu          sync.Mutex
	doneImages  Set[string]
	donePages   Set[string]
	nameCounter int

	hookMu sync.Mutex
}

func NewImageFetcher(
	registry *provider.Registry,
	byteFetcher transport.ByteFetcher,
	maximiseSource maximise.Source,
	enqueuer Enqueuer,
	metadataSink metadata.MetadataSink,
	userAgent string,
	hooks Hooks,
) *ImageFetcher {
	if maximiseSource == nil {
		maximiseSource = maximise.NoMaximisation()
	}
	return &ImageFetcher{
		registry:       registry,
		byteFetcher:    byteFetcher,
		maximiseSource: maximiseSource,
		enqueuer:       enqueuer,
		metadataSink:   metadataSink,
		userAgent:      userAgent,
		hooks:          hooks,
		doneImages:     NewSet[string](),
		donePages:      NewSet[string](),
	}
}

// FetchImages resolves a request URL to images. A URL a registered
// provider claims goes through provider discovery; any other URL is
// treated as a direct image candidate through the same
// maximise+fetch+classify+dedup path.
func (f *ImageFetcher) FetchImages(
	ctx context.Context,
	request provider.Request,
	opts Options,
) (Result, failure.ClassifiedError) {
	prov, lookupErr := f.registry.ByURL(request.URL())
	if lookupErr != nil {
		return f.fetchDirect(ctx, request, opts)
	}
	return f.fetchFromProviderPage(ctx, prov, request, opts)
}

// fetchDirect treats the request URL as a bare image URL. Failures follow
// the per-candidate downgrade policy: an empty result, never an error.
func (f *ImageFetcher) fetchDirect(
	ctx context.Context,
	request provider.Request,
	opts Options,
) (Result, failure.ClassifiedError) {
	candidate := artwork.NewCandidateImage(request.URL(), request.Types(), request.Comment(), false)
	outcome := f.fetchCandidate(ctx, 0, candidate, opts)
	if outcome.status != statusFetched {
		return Result{}, nil
	}

	images, err := f.finalizeImages(ctx, nil, []*artwork.FetchedImage{outcome.image})
	if err != nil {
		return Result{}, err
	}
	return Result{images: images}, nil
}

func (f *ImageFetcher) fetchFromProviderPage(
	ctx context.Context,
	prov provider.Provider,
	request provider.Request,
	opts Options,
) (Result, failure.ClassifiedError) {
	pageUrl := request.URL()
	pageKey := canonicalKey(pageUrl)

	f.mu.Lock()
	exhausted := f.donePages.Contains(pageKey)
	f.mu.Unlock()
	if exhausted {
		return Result{containerUrl: &pageUrl}, nil
	}

	discovered, err := prov.FindImages(ctx, request)
	if err != nil {
		// Discovery failures abort the whole page request
		return Result{}, err
	}

	// Drop candidates whose URL was already claimed; they terminated in a
	// previous run.
	unresolved := make([]indexedCandidate, 0, len(discovered))
	for i, candidate := range discovered {
		if !f.isClaimed(candidate.URL()) {
			unresolved = append(unresolved, indexedCandidate{
				discoveryIndex: i,
				candidate:      applyRequestDefaults(candidate, request),
			})
		}
	}

	attempted := unresolved
	if opts.frontOnly {
		attempted = filterFront(unresolved)
	}
	pruned := len(attempted) < len(unresolved)

	outcomes := make([]candidateOutcome, len(attempted))
	var wg sync.WaitGroup
	for i, entry := range attempted {
		wg.Add(1)
		go func(slot int, entry indexedCandidate) {
			defer wg.Done()
			outcomes[slot] = f.fetchCandidate(ctx, entry.discoveryIndex, entry.candidate, opts)
		}(i, entry)
	}
	wg.Wait()

	allTerminal := true
	fetched := make([]*artwork.FetchedImage, 0, len(outcomes))
	for _, outcome := range outcomes {
		switch outcome.status {
		case statusFetched:
			fetched = append(fetched, outcome.image)
		case statusFailed:
			allTerminal = false
		}
	}

	// A page is fully exhausted only when nothing was pruned away and
	// every attempted candidate terminated in Fetched or Deduplicated.
	// Anything less re-runs discovery next time, skipping claimed URLs.
	if !pruned && allTerminal {
		f.mu.Lock()
		f.donePages.Add(pageKey)
		f.mu.Unlock()
	}

	images, ferr := f.finalizeImages(ctx, prov, fetched)
	if ferr != nil {
		return Result{}, ferr
	}
	return Result{images: images, containerUrl: &pageUrl}, nil
}

// fetchCandidate runs one candidate through maximisation, fetch,
// classification and the dedup commit. It never returns an error;
// failures downgrade to statusFailed after being recorded.
func (f *ImageFetcher) fetchCandidate(
	ctx context.Context,
	index int,
	candidate artwork.CandidateImage,
	opts Options,
) candidateOutcome {
	f.fireStarted(index, candidate.URL())
	defer f.fireFinished(index)

	if !opts.skipMaximisation && !candidate.SkipMaximisation() {
		iterator := f.maximiseSource.Maximise(candidate.URL())
		for {
			maxCandidate, ok := iterator.Next()
			if !ok {
				break
			}
			// A claimed maximised URL is a failed attempt, not a network
			// call; fall through to the next candidate.
			if f.isClaimed(maxCandidate.URL()) {
				continue
			}
			image, status := f.fetchAndCommit(ctx, index, candidate, maxCandidate.URL(), maxCandidate.Headers(), maxCandidate.Filename(), true)
			if status == statusFetched || status == statusDeduplicated {
				return candidateOutcome{image: image, status: status}
			}
		}
	}

	// Fallback to the originally discovered URL, itself subject to the
	// dedup short-circuit.
	if f.isClaimed(candidate.URL()) {
		return candidateOutcome{status: statusDeduplicated}
	}
	image, status := f.fetchAndCommit(ctx, index, candidate, candidate.URL(), nil, "", false)
	return candidateOutcome{image: image, status: status}
}

// fetchAndCommit fetches one URL, classifies the payload and, on success,
// atomically claims the resolved URL. Losing the claim race discards the
// result silently. A non-empty baseName overrides the default stem of
// the committed filename.
func (f *ImageFetcher) fetchAndCommit(
	ctx context.Context,
	index int,
	candidate artwork.CandidateImage,
	fetchUrl url.URL,
	headers map[string]string,
	baseName string,
	maximised bool,
) (*artwork.FetchedImage, candidateStatus) {
	startedAt := time.Now()
	result, err := f.byteFetcher.Fetch(ctx, transport.NewFetchParam(
		fetchUrl,
		headers,
		f.userAgent,
		func(loaded, total int64) {
			f.fireProgress(index, loaded, total)
		},
	))
	if err != nil {
		f.recordCandidateError(index, fetchUrl, &FetchError{
			Message:   fmt.Sprintf("fetch failed: %v", err),
			Retryable: false,
			Cause:     ErrCauseNetworkFailure,
		})
		return nil, statusFailed
	}

	kind := imagetype.Classify(result.Body())
	if !kind.IsImage() {
		f.recordCandidateError(index, fetchUrl, &FetchError{
			Message:     fmt.Sprintf("no known image signature in %d bytes", len(result.Body())),
			Retryable:   false,
			Cause:       ErrCauseUnsupportedContent,
			ContentType: result.ContentType(),
		})
		return nil, statusFailed
	}

	f.metadataSink.RecordFetch(
		fetchUrl.String(),
		result.Code(),
		time.Since(startedAt),
		result.ContentType(),
		result.WasRedirected(),
	)

	fetchedUrl := result.FinalURL()
	claimed, fileName := f.commit(candidate.URL(), fetchUrl, fetchedUrl, baseName, kind)
	if !claimed {
		return nil, statusDeduplicated
	}

	image := artwork.NewFetchedImage(
		artwork.NewImageFile(result.Body(), kind.MIME(), fileName),
		fetchUrl,
		fetchedUrl,
		result.WasRedirected(),
		candidate.URL(),
		fetchUrl,
		maximised,
		candidate.Types(),
		candidate.Comment(),
	)
	return &image, statusFetched
}

// commit is the atomic check-and-mark step. It claims every spelling of
// the image URL so later runs short-circuit on any of them, and hands out
// the unique filename under the same lock.
func (f *ImageFetcher) commit(
	originalUrl url.URL,
	requestedUrl url.URL,
	fetchedUrl url.URL,
	baseName string,
	kind imagetype.Kind,
) (bool, string) {
	resolvedKey := canonicalKey(fetchedUrl)
	if baseName == "" {
		baseName = defaultBaseName
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.doneImages.Contains(resolvedKey) {
		return false, ""
	}
	f.doneImages.Add(resolvedKey)
	f.doneImages.Add(canonicalKey(requestedUrl))
	f.doneImages.Add(canonicalKey(originalUrl))

	fileName := fmt.Sprintf("%s.%d.%s", baseName, f.nameCounter, kind.Extension())
	f.nameCounter++
	return true, fileName
}

// finalizeImages runs the provider postprocessor and the enqueuer over
// fetched images in discovery order. A nil postprocessor result removes
// the image silently; a postprocessor error aborts the run. Enqueue
// failures are recorded and ignored.
func (f *ImageFetcher) finalizeImages(
	ctx context.Context,
	prov provider.Provider,
	fetched []*artwork.FetchedImage,
) ([]artwork.FetchedImage, failure.ClassifiedError) {
	postprocessor, hasPostprocessor := prov.(provider.Postprocessor)

	images := make([]artwork.FetchedImage, 0, len(fetched))
	for _, image := range fetched {
		if hasPostprocessor {
			processed, err := postprocessor.PostprocessImage(ctx, image)
			if err != nil {
				return nil, err
			}
			if processed == nil {
				continue
			}
			image = processed
		}

		if f.enqueuer != nil {
			if err := f.enqueuer.Enqueue(ctx, *image); err != nil {
				fetchedUrl := image.FetchedURL()
				f.metadataSink.RecordError(
					time.Now(),
					"fetcher",
					"ImageFetcher.finalizeImages",
					metadata.CauseStorageFailure,
					err.Error(),
					[]metadata.Attribute{
						metadata.NewAttr(metadata.AttrURL, fetchedUrl.String()),
					},
				)
			} else {
				content := image.Content()
				f.metadataSink.RecordEnqueue(content.FileName(), content.MIMEType(), len(content.Data()))
			}
		}

		images = append(images, *image)
	}
	return images, nil
}

func (f *ImageFetcher) isClaimed(imageUrl url.URL) bool {
	key := canonicalKey(imageUrl)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doneImages.Contains(key)
}

func (f *ImageFetcher) recordCandidateError(index int, fetchUrl url.URL, err *FetchError) {
	f.metadataSink.RecordError(
		time.Now(),
		"fetcher",
		"ImageFetcher.fetchCandidate",
		mapFetchErrorToMetadataCause(err),
		err.Message,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			metadata.NewAttr(metadata.AttrIndex, strconv.Itoa(index)),
			metadata.NewAttr(metadata.AttrContentType, err.ContentType),
		},
	)
}

func (f *ImageFetcher) fireStarted(index int, fetchUrl url.URL) {
	if f.hooks.OnFetchStarted == nil {
		return
	}
	f.hookMu.Lock()
	defer f.hookMu.Unlock()
	f.hooks.OnFetchStarted(index, fetchUrl)
}

func (f *ImageFetcher) fireProgress(index int, loaded int64, total int64) {
	if f.hooks.OnFetchProgress == nil {
		return
	}
	f.hookMu.Lock()
	defer f.hookMu.Unlock()
	f.hooks.OnFetchProgress(index, loaded, total)
}

func (f *ImageFetcher) fireFinished(index int) {
	if f.hooks.OnFetchFinished == nil {
		return
	}
	f.hookMu.Lock()
	defer f.hookMu.Unlock()
	f.hooks.OnFetchFinished(index)
}

// applyRequestDefaults fills in the request-asserted types and comment
// where the provider asserted none. Provider-asserted metadata wins.
func applyRequestDefaults(candidate artwork.CandidateImage, request provider.Request) artwork.CandidateImage {
	types := candidate.Types()
	comment := candidate.Comment()
	if len(types) == 0 && len(request.Types()) > 0 {
		types = request.Types()
	}
	if comment == "" {
		comment = request.Comment()
	}
	return artwork.NewCandidateImage(candidate.URL(), types, comment, candidate.SkipMaximisation())
}

// filterFront keeps exactly the front-typed candidates when any exist,
// otherwise the first candidate by discovery order.
func filterFront(candidates []indexedCandidate) []indexedCandidate {
	front := make([]indexedCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if artwork.HasFront(candidate.candidate.Types()) {
			front = append(front, candidate)
		}
	}
	if len(front) > 0 {
		return front
	}
	if len(candidates) > 0 {
		return candidates[:1]
	}
	return candidates
}

func canonicalKey(u url.URL) string {
	canonical := urlutil.Canonicalize(u)
	return canonical.String()
}
