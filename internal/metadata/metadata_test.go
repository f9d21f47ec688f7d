package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractYouTubeID(t *testing.T) {
	testCases := []struct {
		name     string
		link     string
		expected string
		ok       bool
	}{
		{name: "watch link", link: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", expected: "dQw4w9WgXcQ", ok: true},
		{name: "watch link with params", link: "https://www.youtube.com/watch?v=dQw4w9WgXcQ&feature=share", expected: "dQw4w9WgXcQ", ok: true},
		{name: "short link", link: "https://youtu.be/dQw4w9WgXcQ?si=abc", expected: "dQw4w9WgXcQ", ok: true},
		{name: "embed link", link: "https://www.youtube.com/embed/dQw4w9WgXcQ", expected: "dQw4w9WgXcQ", ok: true},
		{name: "music link", link: "https://music.youtube.com/watch?v=dQw4w9WgXcQ", expected: "dQw4w9WgXcQ", ok: true},
		{name: "wrong host", link: "https://vimeo.com/watch?v=dQw4w9WgXcQ", ok: false},
		{name: "bad id", link: "https://youtu.be/short", ok: false},
		{name: "not a url", link: "hello", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := ExtractYouTubeID(tc.link)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, id)
		})
	}
}

func TestExtractSpotifyTrackID(t *testing.T) {
	id, ok := ExtractSpotifyTrackID("https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT?si=xxx")
	assert.True(t, ok)
	assert.Equal(t, "4cOdK2wGLETKBW3PvgPWqT", id)

	_, ok = ExtractSpotifyTrackID("https://open.spotify.com/album/4cOdK2wGLETKBW3PvgPWqT")
	assert.False(t, ok)

	_, ok = ExtractSpotifyTrackID("https://example.com/track/abc")
	assert.False(t, ok)
}

func TestParseISODuration(t *testing.T) {
	assert.Equal(t, 253, ParseISODuration("PT4M13S"))
	assert.Equal(t, 3723, ParseISODuration("PT1H2M3S"))
	assert.Equal(t, 30, ParseISODuration("PT30S"))
	assert.Equal(t, 0, ParseISODuration("P1D"))
	assert.Equal(t, 0, ParseISODuration(""))
}

func TestSpotifyResolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tracks/4cOdK2wGLETKBW3PvgPWqT", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"name": "Mr. Brightside",
			"duration_ms": 222973,
			"artists": [{"name": "The Killers"}, {"name": "Guest"}],
			"album": {"name": "Hot Fuss", "images": [{"url": "https://img/large.jpg"}, {"url": "https://img/small.jpg"}]}
		}`))
	}))
	defer server.Close()

	client := &SpotifyClient{httpClient: server.Client(), baseURL: server.URL}
	md, err := client.Resolve(context.Background(), "https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT")
	require.NoError(t, err)

	assert.Equal(t, "Mr. Brightside", md.Title)
	assert.Equal(t, "The Killers, Guest", md.Artist)
	require.NotNil(t, md.Album)
	assert.Equal(t, "Hot Fuss", *md.Album)
	require.NotNil(t, md.DurationSeconds)
	assert.Equal(t, 222, *md.DurationSeconds)
	require.NotNil(t, md.ThumbnailURL)
	assert.Equal(t, "https://img/large.jpg", *md.ThumbnailURL)
	assert.Equal(t, "4cOdK2wGLETKBW3PvgPWqT", md.ExternalID)
}

func TestSpotifyResolve_Failures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := &SpotifyClient{httpClient: server.Client(), baseURL: server.URL}

	_, err := client.Resolve(context.Background(), "https://open.spotify.com/track/missing1")
	assert.True(t, errors.Is(err, ErrLookupFailed))

	_, err = client.Resolve(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	assert.True(t, errors.Is(err, ErrInvalidURL))
}

func TestYouTubeResolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos", r.URL.Path)
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("id"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Write([]byte(`{"items": [{
			"snippet": {"title": "Never Gonna Give You Up", "channelTitle": "Rick Astley",
				"thumbnails": {"high": {"url": "https://img/high.jpg"}}},
			"contentDetails": {"duration": "PT3M33S"}
		}]}`))
	}))
	defer server.Close()

	client := &YouTubeClient{httpClient: server.Client(), baseURL: server.URL, apiKey: "test-key"}
	md, err := client.Resolve(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "Never Gonna Give You Up", md.Title)
	assert.Equal(t, "Rick Astley", md.Artist)
	assert.Nil(t, md.Album)
	require.NotNil(t, md.DurationSeconds)
	assert.Equal(t, 213, *md.DurationSeconds)
	require.NotNil(t, md.ThumbnailURL)
	assert.Equal(t, "https://img/high.jpg", *md.ThumbnailURL)
}

func TestYouTubeResolve_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	client := &YouTubeClient{httpClient: server.Client(), baseURL: server.URL}
	_, err := client.Resolve(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	assert.True(t, errors.Is(err, ErrLookupFailed))
}

func TestRegistryResolve(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Resolve(context.Background(), SourceSpotify, "https://open.spotify.com/track/abc")
	assert.True(t, errors.Is(err, ErrNoResolver))

	_, err = registry.Resolve(context.Background(), SourceManual, "")
	assert.Error(t, err)
}

func TestGetEmbedInfo(t *testing.T) {
	id := "dQw4w9WgXcQ"
	assert.Equal(t, EmbedInfo{Type: EmbedTypeYouTube, URL: "https://www.youtube.com/embed/dQw4w9WgXcQ"}, GetEmbedInfo(SourceYouTube, &id))

	track := "4cOdK2wGLETKBW3PvgPWqT"
	assert.Equal(t, EmbedTypeSpotify, GetEmbedInfo(SourceSpotify, &track).Type)

	assert.Equal(t, EmbedTypeNone, GetEmbedInfo(SourceManual, nil).Type)
}
