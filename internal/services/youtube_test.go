package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/hitlist/internal/shared"
)

const searchFixture = `{
  "items": [
    {
      "id": {"kind": "youtube#video", "videoId": "abc123"},
      "snippet": {
        "publishedAt": "2024-03-01T12:00:00Z",
        "title": "Artist &amp; Friends - Song (Official Music Video)",
        "channelTitle": "ArtistVEVO",
        "thumbnails": {
          "default": {"url": "https://i.ytimg.com/vi/abc123/default.jpg", "width": 120, "height": 90},
          "high": {"url": "https://i.ytimg.com/vi/abc123/hqdefault.jpg", "width": 480, "height": 360}
        }
      }
    },
    {
      "id": {"kind": "youtube#channel", "channelId": "UC1"},
      "snippet": {"title": "A channel"}
    },
    {
      "id": {"kind": "youtube#video", "videoId": "def456"},
      "snippet": {
        "publishedAt": "not a date",
        "title": "Song (Live)",
        "channelTitle": "Fan Uploads"
      }
    }
  ]
}`

func TestYouTubeSearch(t *testing.T) {
	t.Run("NewYouTubeSearch", func(t *testing.T) {
		t.Run("applies defaults", func(t *testing.T) {
			svc := NewYouTubeSearch(shared.YouTubeConfig{}, nil)
			if svc.baseURL != defaultYTBaseURL {
				t.Errorf("expected baseURL %s, got %s", defaultYTBaseURL, svc.baseURL)
			}
			if svc.maxResults != defaultYTMaxResults {
				t.Errorf("expected maxResults %d, got %d", defaultYTMaxResults, svc.maxResults)
			}
		})

		t.Run("trims trailing slash", func(t *testing.T) {
			svc := NewYouTubeSearch(shared.YouTubeConfig{BaseURL: "http://localhost:9000/"}, nil)
			if svc.baseURL != "http://localhost:9000" {
				t.Errorf("unexpected baseURL %s", svc.baseURL)
			}
		})
	})

	t.Run("Search", func(t *testing.T) {
		t.Run("sends query parameters", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/search" {
					t.Errorf("expected path /search, got %s", r.URL.Path)
				}

				q := r.URL.Query()
				want := map[string]string{
					"part":            "snippet",
					"q":               "Artist Song",
					"type":            "video",
					"maxResults":      "5",
					"order":           "relevance",
					"videoCategoryId": "10",
					"key":             "yt-key",
				}
				for k, v := range want {
					if got := q.Get(k); got != v {
						t.Errorf("expected %s=%q, got %q", k, v, got)
					}
				}

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"items": []}`))
			}))
			defer server.Close()

			svc := NewYouTubeSearch(shared.YouTubeConfig{
				BaseURL: server.URL, APIKey: "yt-key", MaxResults: 5, CategoryID: "10",
			}, server.Client())

			candidates, err := svc.Search(context.Background(), "Artist", "Song")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(candidates) != 0 {
				t.Errorf("expected no candidates, got %d", len(candidates))
			}
		})

		t.Run("omits category when blank", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Has("videoCategoryId") {
					t.Error("expected no videoCategoryId parameter")
				}
				w.Write([]byte(`{"items": []}`))
			}))
			defer server.Close()

			svc := NewYouTubeSearch(shared.YouTubeConfig{BaseURL: server.URL}, server.Client())
			if _, err := svc.Search(context.Background(), "Artist", "Song"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("parses candidates in provider order", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(searchFixture))
			}))
			defer server.Close()

			svc := NewYouTubeSearch(shared.YouTubeConfig{BaseURL: server.URL}, server.Client())
			candidates, err := svc.Search(context.Background(), "Artist", "Song")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(candidates) != 2 {
				t.Fatalf("expected 2 video candidates, got %d", len(candidates))
			}

			first := candidates[0]
			if first.VideoID != "abc123" {
				t.Errorf("expected videoId abc123, got %s", first.VideoID)
			}
			if first.Title != "Artist & Friends - Song (Official Music Video)" {
				t.Errorf("expected unescaped title, got %q", first.Title)
			}
			if first.ChannelTitle != "ArtistVEVO" {
				t.Errorf("unexpected channel %q", first.ChannelTitle)
			}
			if first.PublishedAt.Year() != 2024 {
				t.Errorf("expected publishedAt in 2024, got %v", first.PublishedAt)
			}
			if first.Thumbnails.Default == nil || first.Thumbnails.Default.Width != 120 {
				t.Errorf("unexpected default thumbnail %+v", first.Thumbnails.Default)
			}
			if first.Thumbnails.Medium != nil {
				t.Errorf("expected no medium thumbnail, got %+v", first.Thumbnails.Medium)
			}
			if best := first.Thumbnails.Best(); best == nil || best.Width != 480 {
				t.Errorf("expected high thumbnail as best, got %+v", best)
			}

			second := candidates[1]
			if second.VideoID != "def456" {
				t.Errorf("expected videoId def456, got %s", second.VideoID)
			}
			if !second.PublishedAt.IsZero() {
				t.Errorf("expected zero publishedAt for bad date, got %v", second.PublishedAt)
			}
		})

		t.Run("returns API error with detail", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error": {"code": 403, "message": "quotaExceeded"}}`))
			}))
			defer server.Close()

			svc := NewYouTubeSearch(shared.YouTubeConfig{BaseURL: server.URL}, server.Client())
			_, err := svc.Search(context.Background(), "Artist", "Song")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), "quotaExceeded") {
				t.Errorf("expected error detail in %q", err.Error())
			}
		})

		t.Run("fails on invalid JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			}))
			defer server.Close()

			svc := NewYouTubeSearch(shared.YouTubeConfig{BaseURL: server.URL}, server.Client())
			if _, err := svc.Search(context.Background(), "Artist", "Song"); err == nil {
				t.Fatal("expected decode error")
			}
		})

		t.Run("fails when server is unreachable", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			url := server.URL
			server.Close()

			svc := NewYouTubeSearch(shared.YouTubeConfig{BaseURL: url}, nil)
			_, err := svc.Search(context.Background(), "Artist", "Song")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
		})
	})
}
