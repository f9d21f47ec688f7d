package metadata

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	spotifyTrackPattern = regexp.MustCompile(`track/([a-zA-Z0-9]+)`)
	youtubeIDPattern    = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
)

// ExtractSpotifyTrackID handles open.spotify.com/track/<id> links, with or without query params.
func ExtractSpotifyTrackID(link string) (string, bool) {
	if !strings.Contains(link, "spotify.com") {
		return "", false
	}
	match := spotifyTrackPattern.FindStringSubmatch(link)
	if match == nil {
		return "", false
	}
	return match[1], true
}

func ExtractYouTubeID(link string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")

	var videoID string
	switch host {
	case "youtu.be":
		videoID = strings.Trim(u.Path, "/")
	case "youtube.com", "music.youtube.com":
		switch {
		case u.Path == "/watch":
			videoID = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/embed/"):
			videoID = strings.TrimPrefix(u.Path, "/embed/")
		case strings.HasPrefix(u.Path, "/shorts/"):
			videoID = strings.TrimPrefix(u.Path, "/shorts/")
		}
	default:
		return "", false
	}

	if !youtubeIDPattern.MatchString(videoID) {
		return "", false
	}
	return videoID, true
}

type EmbedType int

const (
	EmbedTypeNone EmbedType = iota
	EmbedTypeYouTube
	EmbedTypeSpotify
)

type EmbedInfo struct {
	Type EmbedType
	URL  string
}

// GetEmbedInfo builds a player URL for a stored song.
func GetEmbedInfo(source Source, externalID *string) EmbedInfo {
	if externalID == nil || *externalID == "" {
		return EmbedInfo{Type: EmbedTypeNone}
	}

	switch source {
	case SourceYouTube:
		return EmbedInfo{Type: EmbedTypeYouTube, URL: "https://www.youtube.com/embed/" + *externalID}
	case SourceSpotify:
		return EmbedInfo{Type: EmbedTypeSpotify, URL: "https://open.spotify.com/embed/track/" + *externalID}
	}
	return EmbedInfo{Type: EmbedTypeNone}
}
