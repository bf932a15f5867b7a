package imagetype

import "bytes"

/*
Responsibilities
- Determine the true type of a fetched payload from its leading bytes
- Never trust a server-declared content type for the accept decision

The declared content type is only useful for diagnostics when a payload is
rejected; servers routinely mislabel images (text/html error pages served
with 200, image/jpeg headers on PNG bytes, and so on).
*/

// Kind identifies a recognized payload type by its MIME string.
type Kind string

const (
	KindJPEG Kind = "image/jpeg"
	KindPNG  Kind = "image/png"
	KindGIF  Kind = "image/gif"
	KindWebP Kind = "image/webp"
	KindBMP  Kind = "image/bmp"
	// Booklet scans are commonly distributed as PDFs and accepted by
	// cover art queues alongside raster images.
	KindPDF Kind = "application/pdf"

	KindUnknown Kind = ""
)

// magic signatures, longest-prefix checks first where prefixes overlap
var (
	sigJPEG = []byte{0xFF, 0xD8, 0xFF}
	sigPNG  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	sigGIF7 = []byte("GIF87a")
	sigGIF9 = []byte("GIF89a")
	sigRIFF = []byte("RIFF")
	sigWebP = []byte("WEBP")
	sigBMP  = []byte("BM")
	sigPDF  = []byte("%PDF")
)

// Classify inspects the leading bytes of data and returns the matching
// Kind, or KindUnknown when no known signature matches. It never fails;
// the caller decides whether KindUnknown is an error.
func Classify(data []byte) Kind {
	switch {
	case bytes.HasPrefix(data, sigJPEG):
		return KindJPEG
	case bytes.HasPrefix(data, sigPNG):
		return KindPNG
	case bytes.HasPrefix(data, sigGIF7), bytes.HasPrefix(data, sigGIF9):
		return KindGIF
	case bytes.HasPrefix(data, sigRIFF):
		// RIFF is a container; only the WEBP fourcc at offset 8 makes it an image
		if len(data) >= 12 && bytes.Equal(data[8:12], sigWebP) {
			return KindWebP
		}
		return KindUnknown
	case bytes.HasPrefix(data, sigBMP):
		return KindBMP
	case bytes.HasPrefix(data, sigPDF):
		return KindPDF
	}
	return KindUnknown
}

// IsImage reports whether the kind is a recognized payload type.
func (k Kind) IsImage() bool {
	return k != KindUnknown
}

// MIME returns the MIME string for the kind, empty for KindUnknown.
func (k Kind) MIME() string {
	return string(k)
}

// Extension returns the conventional filename extension for the kind,
// without the leading dot. Empty for KindUnknown.
func (k Kind) Extension() string {
	switch k {
	case KindJPEG:
		return "jpg"
	case KindPNG:
		return "png"
	case KindGIF:
		return "gif"
	case KindWebP:
		return "webp"
	case KindBMP:
		return "bmp"
	case KindPDF:
		return "pdf"
	}
	return ""
}
