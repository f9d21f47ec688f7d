package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"
)

const youtubeAPIURL = "https://www.googleapis.com/youtube/v3"

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

type YouTubeClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewYouTubeClient(apiKey string, timeout time.Duration) *YouTubeClient {
	return &YouTubeClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    youtubeAPIURL,
		apiKey:     apiKey,
	}
}

type youtubeThumbnail struct {
	URL string `json:"url"`
}

type youtubeVideoList struct {
	Items []struct {
		Snippet struct {
			Title        string                      `json:"title"`
			ChannelTitle string                      `json:"channelTitle"`
			Thumbnails   map[string]youtubeThumbnail `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// YouTube has no album concept, the channel name stands in for the artist.
func (c *YouTubeClient) Resolve(ctx context.Context, rawURL string) (*Metadata, error) {
	videoID, ok := ExtractYouTubeID(rawURL)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a YouTube video link", ErrInvalidURL, rawURL)
	}

	query := url.Values{}
	query.Set("part", "snippet,contentDetails")
	query.Set("id", videoID)
	query.Set("key", c.apiKey)

	var list youtubeVideoList
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/videos?"+query.Encode(), &list); err != nil {
		return nil, fmt.Errorf("youtube video %s: %w", videoID, err)
	}
	if len(list.Items) == 0 {
		return nil, fmt.Errorf("youtube video %s: %w: video not found", videoID, ErrLookupFailed)
	}

	video := list.Items[0]
	md := &Metadata{
		Title:      video.Snippet.Title,
		Artist:     video.Snippet.ChannelTitle,
		ExternalID: videoID,
		URL:        rawURL,
	}
	if seconds := ParseISODuration(video.ContentDetails.Duration); seconds > 0 {
		md.DurationSeconds = &seconds
	}
	if thumb, ok := video.Snippet.Thumbnails["high"]; ok && thumb.URL != "" {
		md.ThumbnailURL = &thumb.URL
	}
	return md, nil
}

// ParseISODuration converts durations like PT1H2M3S to seconds. Unparseable input yields 0.
func ParseISODuration(s string) int {
	match := isoDurationPattern.FindStringSubmatch(s)
	if match == nil {
		return 0
	}

	total := 0
	for i, unit := range []int{3600, 60, 1} {
		if match[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(match[i+1])
		if err != nil {
			return 0
		}
		total += n * unit
	}
	return total
}
