// YouTube Data API [SearchProvider] implementation
//
// Calls GET {base}/search with an API key. One call costs quota, so the matcher throttles callers.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/hitlist/internal/models"
	"github.com/desertthunder/hitlist/internal/shared"
)

const (
	defaultYTBaseURL    string = "https://www.googleapis.com/youtube/v3"
	defaultYTMaxResults int    = 10
	// WatchURL is the public URL prefix for a video ID.
	WatchURL string = "https://www.youtube.com/watch?v="
)

type youtubeThumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type youtubeSearchItem struct {
	ID struct {
		Kind    string `json:"kind"`
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		PublishedAt  string                      `json:"publishedAt"`
		Title        string                      `json:"title"`
		ChannelTitle string                      `json:"channelTitle"`
		Thumbnails   map[string]youtubeThumbnail `json:"thumbnails"`
	} `json:"snippet"`
}

type youtubeSearchResponse struct {
	Items []youtubeSearchItem `json:"items"`
}

// YouTubeSearch implements [SearchProvider] with the YouTube Data API v3.
type YouTubeSearch struct {
	baseURL    string
	apiKey     string
	maxResults int
	categoryID string
	httpClient *http.Client
}

// NewYouTubeSearch creates a new search provider from the YouTube configuration.
func NewYouTubeSearch(cfg shared.YouTubeConfig, client *http.Client) *YouTubeSearch {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultYTBaseURL
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultYTMaxResults
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &YouTubeSearch{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		maxResults: cfg.MaxResults,
		categoryID: cfg.CategoryID,
		httpClient: client,
	}
}

// Search queries "{artist} {title}" restricted to videos, ordered by relevance.
func (y *YouTubeSearch) Search(ctx context.Context, artist, title string) ([]models.Candidate, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", strings.TrimSpace(artist+" "+title))
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(y.maxResults))
	params.Set("order", "relevance")
	if y.categoryID != "" {
		params.Set("videoCategoryId", y.categoryID)
	}
	params.Set("key", y.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: youtube search: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: youtube search returned status %d%s", shared.ErrAPIRequest, resp.StatusCode, errorDetail(body))
	}

	var result youtubeSearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	candidates := make([]models.Candidate, 0, len(result.Items))
	for _, item := range result.Items {
		if item.ID.VideoID == "" {
			continue
		}
		candidates = append(candidates, toCandidate(item))
	}

	return candidates, nil
}

func toCandidate(item youtubeSearchItem) models.Candidate {
	c := models.Candidate{
		VideoID:      item.ID.VideoID,
		Title:        html.UnescapeString(item.Snippet.Title),
		ChannelTitle: html.UnescapeString(item.Snippet.ChannelTitle),
		Thumbnails: models.Thumbnails{
			Default: toThumbnail(item.Snippet.Thumbnails, "default"),
			Medium:  toThumbnail(item.Snippet.Thumbnails, "medium"),
			High:    toThumbnail(item.Snippet.Thumbnails, "high"),
		},
	}
	if ts, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
		c.PublishedAt = ts
	}
	return c
}

func toThumbnail(thumbs map[string]youtubeThumbnail, key string) *models.Thumbnail {
	t, ok := thumbs[key]
	if !ok || t.URL == "" {
		return nil
	}
	return &models.Thumbnail{URL: t.URL, Width: t.Width, Height: t.Height}
}
