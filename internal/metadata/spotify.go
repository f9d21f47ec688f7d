package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyAPIURL   = "https://api.spotify.com/v1"
)

type SpotifyClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewSpotifyClient authenticates with the client credentials flow; tokens are fetched lazily
// and refreshed by the oauth2 transport.
func NewSpotifyClient(clientID, clientSecret string, timeout time.Duration) *SpotifyClient {
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}
	httpClient := cfg.Client(context.Background())
	httpClient.Timeout = timeout

	return &SpotifyClient{httpClient: httpClient, baseURL: spotifyAPIURL}
}

type spotifyTrack struct {
	Name       string `json:"name"`
	DurationMS int    `json:"duration_ms"`
	Artists    []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
}

func (c *SpotifyClient) Resolve(ctx context.Context, rawURL string) (*Metadata, error) {
	trackID, ok := ExtractSpotifyTrackID(rawURL)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a Spotify track link", ErrInvalidURL, rawURL)
	}

	var track spotifyTrack
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/tracks/"+url.PathEscape(trackID), &track); err != nil {
		return nil, fmt.Errorf("spotify track %s: %w", trackID, err)
	}

	artists := make([]string, 0, len(track.Artists))
	for _, a := range track.Artists {
		artists = append(artists, a.Name)
	}

	md := &Metadata{
		Title:      track.Name,
		Artist:     strings.Join(artists, ", "),
		ExternalID: trackID,
		URL:        rawURL,
	}
	if track.Album.Name != "" {
		album := track.Album.Name
		md.Album = &album
	}
	if track.DurationMS > 0 {
		seconds := track.DurationMS / 1000
		md.DurationSeconds = &seconds
	}
	if len(track.Album.Images) > 0 {
		thumb := track.Album.Images[0].URL
		md.ThumbnailURL = &thumb
	}
	return md, nil
}
