package queue

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rohmanhakim/coverart-fetcher/internal/artwork"
	"github.com/rohmanhakim/coverart-fetcher/internal/metadata"
	"github.com/rohmanhakim/coverart-fetcher/pkg/failure"
	"github.com/rohmanhakim/coverart-fetcher/pkg/fileutil"
	"github.com/rohmanhakim/coverart-fetcher/pkg/hashutil"
)

/*
Responsibilities
- Persist accepted images under their pipeline-assigned filenames
- Write provenance sidecars
- Keep reruns idempotent via content hashes

Output Characteristics
- Flat directory layout, one sidecar per image
- Overwrite-safe reruns: an existing file with the same content hash is
  left untouched
- Dry-run mode resolves paths and hashes but writes nothing
*/

type DirSink struct {
	outputDir    string
	hashAlgo     hashutil.HashAlgo
	dryRun       bool
	metadataSink metadata.MetadataSink
}

func NewDirSink(
	outputDir string,
	hashAlgo hashutil.HashAlgo,
	dryRun bool,
	metadataSink metadata.MetadataSink,
) DirSink {
	return DirSink{
		outputDir:    outputDir,
		hashAlgo:     hashAlgo,
		dryRun:       dryRun,
		metadataSink: metadataSink,
	}
}

// Enqueue persists one accepted image. Failures are reported to the
// caller, which records and ignores them; the queue is never load-bearing
// for pipeline correctness.
func (s *DirSink) Enqueue(ctx context.Context, image artwork.FetchedImage) failure.ClassifiedError {
	result, err := s.write(image)
	if err != nil {
		var queueError *QueueError
		errors.As(err, &queueError)
		fetchedUrl := image.FetchedURL()
		s.metadataSink.RecordError(
			time.Now(),
			"queue",
			"DirSink.Enqueue",
			mapQueueErrorToMetadataCause(queueError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fetchedUrl.String()),
				metadata.NewAttr(metadata.AttrWritePath, queueError.Path),
			},
		)
		return queueError
	}
	content := image.Content()
	s.metadataSink.RecordEnqueue(result.Path(), content.MIMEType(), len(content.Data()))
	return nil
}

func (s *DirSink) write(image artwork.FetchedImage) (WriteResult, failure.ClassifiedError) {
	content := image.Content()
	contentHash, err := hashutil.HashBytes(content.Data(), s.hashAlgo)
	if err != nil {
		return WriteResult{}, &QueueError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseHashComputationFailed,
		}
	}

	fileName := fileutil.SanitizeBaseName(content.FileName(), "image")
	fullPath := filepath.Join(s.outputDir, fileName)
	sidecarPath := fullPath + ".json"
	result := NewWriteResult(fullPath, sidecarPath, contentHash)

	if s.dryRun {
		return result, nil
	}

	if err := fileutil.EnsureDir(s.outputDir); err != nil {
		return WriteResult{}, &QueueError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseWriteFailure,
			Path:      s.outputDir,
		}
	}

	// A rerun that produced identical bytes leaves the existing file
	// alone.
	if existing, rerr := os.ReadFile(fullPath); rerr == nil {
		if existingHash, herr := hashutil.HashBytes(existing, s.hashAlgo); herr == nil && existingHash == contentHash {
			return result, nil
		}
	}

	if werr := os.WriteFile(fullPath, content.Data(), 0644); werr != nil {
		return WriteResult{}, writeError(werr, fullPath)
	}

	sidecar, merr := json.MarshalIndent(s.provenance(image, contentHash), "", "  ")
	if merr != nil {
		return WriteResult{}, &QueueError{
			Message:   merr.Error(),
			Retryable: false,
			Cause:     ErrCauseEncodeFailure,
			Path:      sidecarPath,
		}
	}
	if werr := os.WriteFile(sidecarPath, sidecar, 0644); werr != nil {
		return WriteResult{}, writeError(werr, sidecarPath)
	}

	return result, nil
}

func (s *DirSink) provenance(image artwork.FetchedImage, contentHash string) Provenance {
	types := make([]string, 0, len(image.Types()))
	for _, imageType := range image.Types() {
		types = append(types, string(imageType))
	}
	content := image.Content()
	originalUrl := image.OriginalURL()
	maximisedUrl := image.MaximisedURL()
	requestedUrl := image.RequestedURL()
	fetchedUrl := image.FetchedURL()
	return Provenance{
		OriginalURL:   originalUrl.String(),
		MaximisedURL:  maximisedUrl.String(),
		RequestedURL:  requestedUrl.String(),
		FetchedURL:    fetchedUrl.String(),
		WasRedirected: image.WasRedirected(),
		WasMaximised:  image.WasMaximised(),
		Types:         types,
		Comment:       image.Comment(),
		MIMEType:      content.MIMEType(),
		SizeBytes:     len(content.Data()),
		ContentHash:   contentHash,
	}
}

func writeError(err error, path string) *QueueError {
	cause := QueueErrorCause(ErrCauseWriteFailure)
	retryable := false
	if errors.Is(err, syscall.ENOSPC) {
		cause = ErrCauseDiskFull
		retryable = true
	}
	return &QueueError{
		Message:   err.Error(),
		Retryable: retryable,
		Cause:     cause,
		Path:      path,
	}
}
