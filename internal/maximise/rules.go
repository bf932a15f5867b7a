package maximise

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/rohmanhakim/coverart-fetcher/pkg/urlutil"
)

/*
Built-in per-site maximisation rules.

Each rule recognizes one host's thumbnail URL shape and rewrites it into
the known full-resolution variants, most-preferred first. Rules are pure
URL rewrites: no network calls happen here, so a rule may propose variants
that turn out not to exist. The fetcher falls through failed variants and
ultimately back to the original URL.
*/

// Rule rewrites a recognized image URL into maximisation candidates.
// A nil or empty return means the rule does not apply.
type Rule func(imageUrl url.URL) []Candidate

// Rules is a composite Source. The first rule that recognizes the URL
// wins; its candidates become the sequence. Unrecognized URLs yield an
// empty sequence.
type Rules struct {
	rules []Rule
}

func NewRules(rules ...Rule) Rules {
	return Rules{rules: rules}
}

// DefaultRules covers the hosts the bundled providers discover images on,
// plus a generic thumbnail-suffix rule.
func DefaultRules() Rules {
	return NewRules(
		BandcampRule,
		AppleMusicRule,
		GenericThumbnailRule,
	)
}

func (r Rules) Maximise(imageUrl url.URL) Iterator {
	for _, rule := range r.rules {
		if candidates := rule(imageUrl); len(candidates) > 0 {
			return FromSlice(candidates)
		}
	}
	return Empty()
}

// bandcampImagePath matches Bandcamp CDN artwork paths like
// /img/a1234567890_10.jpg where the numeric suffix selects a size.
var bandcampImagePath = regexp.MustCompile(`^(/img/[a-z]?\d+)_\d+(\.(?:jpg|jpeg|png|gif))$`)

// BandcampRule rewrites a Bandcamp CDN artwork URL to the original upload.
// Suffix _0 is the unscaled original; _10 is the largest pre-scaled
// variant and serves as fallback when the original was purged.
func BandcampRule(imageUrl url.URL) []Candidate {
	host := urlutil.NormalizeHost(imageUrl.Hostname())
	if host != "bcbits.com" && !strings.HasSuffix(host, ".bcbits.com") {
		return nil
	}
	m := bandcampImagePath.FindStringSubmatch(imageUrl.Path)
	if m == nil {
		return nil
	}

	original := imageUrl
	original.Path = m[1] + "_0" + m[2]
	large := imageUrl
	large.Path = m[1] + "_10" + m[2]

	candidates := []Candidate{NewCandidate(original, "", nil)}
	if large.Path != imageUrl.Path {
		candidates = append(candidates, NewCandidate(large, "", nil))
	}
	return candidates
}

// appleSizeSegment matches the trailing size selector of Apple artwork
// URLs, e.g. 600x600bb.jpg or 100x100cc.webp.
var appleSizeSegment = regexp.MustCompile(`^\d+x\d+[a-z]{0,2}(?:-\d+)?\.([a-z]+)$`)

// AppleMusicRule rewrites mzstatic.com thumbnail URLs. Requesting an
// oversized bounding box returns the source image unscaled; a large fixed
// box is kept as fallback.
func AppleMusicRule(imageUrl url.URL) []Candidate {
	host := urlutil.NormalizeHost(imageUrl.Hostname())
	if !strings.HasSuffix(host, ".mzstatic.com") && host != "mzstatic.com" {
		return nil
	}

	slash := strings.LastIndex(imageUrl.Path, "/")
	if slash < 0 {
		return nil
	}
	dir, last := imageUrl.Path[:slash+1], imageUrl.Path[slash+1:]
	m := appleSizeSegment.FindStringSubmatch(last)
	if m == nil {
		return nil
	}
	ext := m[1]

	unscaled := imageUrl
	unscaled.Path = dir + "99999x99999bb." + ext
	large := imageUrl
	large.Path = dir + "1200x1200bb." + ext

	candidates := []Candidate{NewCandidate(unscaled, "", nil)}
	if large.Path != imageUrl.Path {
		candidates = append(candidates, NewCandidate(large, "", nil))
	}
	return candidates
}

// genericThumbSuffix matches WordPress-style dimension suffixes like
// cover-150x150.jpg.
var genericThumbSuffix = regexp.MustCompile(`^(.*)-\d+x\d+(\.(?:jpg|jpeg|png|gif|webp))$`)

// GenericThumbnailRule strips a -WxH suffix from the final path segment.
// Applies to any host, so it must stay last in the rule order.
func GenericThumbnailRule(imageUrl url.URL) []Candidate {
	m := genericThumbSuffix.FindStringSubmatch(imageUrl.Path)
	if m == nil {
		return nil
	}
	full := imageUrl
	full.Path = m[1] + m[2]
	return []Candidate{NewCandidate(full, "", nil)}
}
