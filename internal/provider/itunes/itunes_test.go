package itunes_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/rohmanhakim/coverart-fetcher/internal/artwork"
	"github.com/rohmanhakim/coverart-fetcher/internal/metadata"
	"github.com/rohmanhakim/coverart-fetcher/internal/provider"
	"github.com/rohmanhakim/coverart-fetcher/internal/provider/itunes"
	"github.com/rohmanhakim/coverart-fetcher/internal/transport"
	"github.com/rohmanhakim/coverart-fetcher/pkg/failure"
	"github.com/rohmanhakim/coverart-fetcher/pkg/retry"
	"github.com/rohmanhakim/coverart-fetcher/pkg/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const albumPage = `<!DOCTYPE html>
<html>
<head>
<meta property="og:image" content="https://is1-ssl.mzstatic.com/image/thumb/Music/cover.jpg/1200x630wf.png">
<script type="application/ld+json">
{"@type":"MusicAlbum","name":"Some Album","image":"https://is1-ssl.mzstatic.com/image/thumb/Music/cover.jpg/296x296bb.jpg"}
</script>
</head>
<body></body>
</html>`

type fixtureFetcher struct {
	body []byte
}

func (f *fixtureFetcher) Fetch(ctx context.Context, param transport.FetchParam) (transport.FetchResult, failure.ClassifiedError) {
	return transport.NewFetchResultForTest(
		param.URL(), param.URL(), false, f.body, 200, "text/html", nil,
	), nil
}

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("invalid url %q: %v", raw, err)
	}
	return *u
}

func newProvider(body string) *itunes.Provider {
	pageFetcher := provider.NewPageFetcher(
		&fixtureFetcher{body: []byte(body)},
		nil,
		retry.NewRetryParam(0, 42, 1, timeutil.NewBackoffParam(time.Millisecond, 2.0, time.Millisecond)),
		"test-agent",
		&metadata.NoopSink{},
	)
	return itunes.NewProvider(pageFetcher, &metadata.NoopSink{})
}

func TestSupportsURL(t *testing.T) {
	p := newProvider(albumPage)

	assert.True(t, p.SupportsURL(mustURL(t, "https://music.apple.com/us/album/x/12345")))
	assert.True(t, p.SupportsURL(mustURL(t, "https://itunes.apple.com/us/album/x/id12345")))
	assert.False(t, p.SupportsURL(mustURL(t, "https://podcasts.apple.com/us/podcast/x")))
}

func TestFindImagesPrefersJSONLD(t *testing.T) {
	p := newProvider(albumPage)

	candidates, err := p.FindImages(context.Background(), provider.NewRequest(
		mustURL(t, "https://music.apple.com/us/album/some-album/12345"), nil, "",
	))
	require.Nil(t, err)
	require.Len(t, candidates, 1)

	assert.Equal(t,
		mustURL(t, "https://is1-ssl.mzstatic.com/image/thumb/Music/cover.jpg/296x296bb.jpg"),
		candidates[0].URL())
	assert.Equal(t, []artwork.Type{artwork.TypeFront}, candidates[0].Types())
}

func TestFindImagesFallsBackToOGImage(t *testing.T) {
	page := `<html><head>
<meta property="og:image" content="https://is1-ssl.mzstatic.com/image/thumb/Music/cover.jpg/1200x630wf.png">
<script type="application/ld+json">not json at all</script>
</head><body></body></html>`
	p := newProvider(page)

	candidates, err := p.FindImages(context.Background(), provider.NewRequest(
		mustURL(t, "https://music.apple.com/us/album/x/1"), nil, "",
	))
	require.Nil(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t,
		mustURL(t, "https://is1-ssl.mzstatic.com/image/thumb/Music/cover.jpg/1200x630wf.png"),
		candidates[0].URL())
}

func TestFindImagesReturnsEmptyWhenNoArtwork(t *testing.T) {
	p := newProvider(`<html><head></head><body></body></html>`)

	candidates, err := p.FindImages(context.Background(), provider.NewRequest(
		mustURL(t, "https://music.apple.com/us/album/x/1"), nil, "",
	))
	require.Nil(t, err)
	assert.Empty(t, candidates)
}

func TestPostprocessVetoesPlaceholder(t *testing.T) {
	p := newProvider(albumPage)
	small := artwork.NewFetchedImage(
		artwork.NewImageFile(make([]byte, 100), "image/jpeg", "cover.0.jpg"),
		url.URL{}, url.URL{}, false, url.URL{}, url.URL{}, false,
		[]artwork.Type{artwork.TypeFront}, "",
	)

	result, err := p.PostprocessImage(context.Background(), &small)
	require.Nil(t, err)
	assert.Nil(t, result)
}

func TestPostprocessKeepsRealImage(t *testing.T) {
	p := newProvider(albumPage)
	img := artwork.NewFetchedImage(
		artwork.NewImageFile(make([]byte, 64*1024), "image/jpeg", "cover.0.jpg"),
		url.URL{}, url.URL{}, false, url.URL{}, url.URL{}, false,
		[]artwork.Type{artwork.TypeFront}, "",
	)

	result, err := p.PostprocessImage(context.Background(), &img)
	require.Nil(t, err)
	require.NotNil(t, result)
	assert.Equal(t, &img, result)
}
