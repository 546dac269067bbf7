package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/hitlist/internal/models"
	"github.com/desertthunder/hitlist/internal/services"
	tu "github.com/desertthunder/hitlist/internal/testing"
)

// slowSearch takes a fixed time per call and records when each call started and finished.
type slowSearch struct {
	took   time.Duration
	starts []time.Time
	ends   []time.Time
}

func (s *slowSearch) Search(ctx context.Context, artist, title string) ([]models.Candidate, error) {
	s.starts = append(s.starts, time.Now())
	time.Sleep(s.took)
	s.ends = append(s.ends, time.Now())
	return nil, nil
}

func candidate(id, title, channel string) models.Candidate {
	return models.Candidate{VideoID: id, Title: title, ChannelTitle: channel}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		c     models.Candidate
		index int
		want  int
	}{
		{"plain later candidate", candidate("1", "something else", "someone"), 1, 0},
		{"first position bonus", candidate("1", "something else", "someone"), 0, FirstBonus},
		{"vevo channel", candidate("1", "x", "ArtistVEVO"), 1, ChannelBonus},
		{"artist channel", candidate("1", "x", "The Band Channel"), 1, ChannelBonus},
		{"channel keywords counted once", candidate("1", "x", "Official Music Records VEVO"), 1, ChannelBonus},
		{"title contains artist and title", candidate("1", "The Band - Hit Song", "someone"), 1, TitleBonus},
		{"title contains only the track", candidate("1", "Hit Song", "someone"), 1, 0},
		{"official keyword", candidate("1", "Official Audio", "someone"), 1, OfficialBonus},
		{"music video keyword", candidate("1", "Music Video", "someone"), 1, OfficialBonus},
		{"excluded keywords counted once", candidate("1", "Live Acoustic Cover", "someone"), 1, -ExcludedPenalty},
		{
			"everything",
			candidate("1", "The Band - Hit Song (Official Music Video)", "TheBandVEVO"),
			0,
			ChannelBonus + TitleBonus + OfficialBonus + FirstBonus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.c, tt.index, "The Band", "Hit Song"); got != tt.want {
				t.Errorf("expected score %d, got %d", tt.want, got)
			}
		})
	}

	t.Run("excluded keyword lowers score by exactly the penalty", func(t *testing.T) {
		titles := []string{
			"The Band - Hit Song",
			"The Band - Hit Song (Official Video)",
			"Hit Song",
			"random upload",
		}
		for _, title := range titles {
			for _, kw := range excludedKeywords {
				for index := 0; index < 2; index++ {
					base := Score(candidate("1", title, "uploader"), index, "The Band", "Hit Song")
					with := Score(candidate("1", title+" "+kw, "uploader"), index, "The Band", "Hit Song")
					if base-with != ExcludedPenalty {
						t.Errorf("%q + %q at %d: expected drop of %d, got %d", title, kw, index, ExcludedPenalty, base-with)
					}
				}
			}
		}
	})

	t.Run("matching is case insensitive", func(t *testing.T) {
		a := Score(candidate("1", "THE BAND - HIT SONG", "x"), 1, "the band", "hit song")
		b := Score(candidate("1", "the band - hit song", "x"), 1, "THE BAND", "HIT SONG")
		if a != TitleBonus || b != TitleBonus {
			t.Errorf("expected %d for both, got %d and %d", TitleBonus, a, b)
		}
	})

	t.Run("blank artist does not match every channel", func(t *testing.T) {
		if got := Score(candidate("1", "x", "uploader"), 1, "", "Hit Song"); got != 0 {
			t.Errorf("expected 0, got %d", got)
		}
	})
}

func TestSelectBest(t *testing.T) {
	t.Run("returns nil for no candidates", func(t *testing.T) {
		if got := SelectBest(nil, "A", "B"); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
		if got := SelectBest([]models.Candidate{}, "A", "B"); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("returns a single candidate regardless of score", func(t *testing.T) {
		c := candidate("v1", "A - B karaoke cover live remix", "nobody")
		got := SelectBest([]models.Candidate{c}, "A", "B")
		if got == nil || got.VideoID != "v1" {
			t.Fatalf("expected v1, got %+v", got)
		}
	})

	t.Run("returns least bad when all scores are negative", func(t *testing.T) {
		candidates := []models.Candidate{
			candidate("v1", "karaoke version", "nobody"),
			candidate("v2", "cover", "nobody"),
		}
		got := SelectBest(candidates, "A", "B")
		if got == nil || got.VideoID != "v1" {
			t.Fatalf("expected v1, got %+v", got)
		}
	})

	t.Run("ties go to the earliest candidate", func(t *testing.T) {
		candidates := []models.Candidate{
			candidate("v0", "unrelated live", "nobody"),
			candidate("v1", "A - B", "nobody"),
			candidate("v2", "A - B", "nobody"),
		}
		got := SelectBest(candidates, "A", "B")
		if got == nil || got.VideoID != "v1" {
			t.Fatalf("expected v1, got %+v", got)
		}
	})

	t.Run("first position bonus can be overtaken", func(t *testing.T) {
		candidates := []models.Candidate{
			candidate("v0", "A - B lyrics", "fan"),
			candidate("v1", "A - B (Official Video)", "A VEVO"),
		}
		got := SelectBest(candidates, "A", "B")
		if got == nil || got.VideoID != "v1" {
			t.Fatalf("expected v1, got %+v", got)
		}
	})

	t.Run("fills match fields", func(t *testing.T) {
		c := candidate("abc", "A - B", "A VEVO")
		c.PublishedAt = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
		c.Thumbnails.High = &models.Thumbnail{URL: "https://img/hq.jpg"}

		got := SelectBest([]models.Candidate{c}, "A", "B")
		if got.URL != services.WatchURL+"abc" {
			t.Errorf("unexpected URL %s", got.URL)
		}
		if got.Title != "A - B" || got.ChannelTitle != "A VEVO" || !got.PublishedAt.Equal(c.PublishedAt) {
			t.Errorf("unexpected match %+v", got)
		}
		if got.Thumbnails.Best() == nil || got.Thumbnails.Best().URL != "https://img/hq.jpg" {
			t.Errorf("unexpected thumbnails %+v", got.Thumbnails)
		}
	})
}

func credited(rank int, artist, title string) models.CreditedEntry {
	return models.CreditedEntry{
		ChartEntry: models.ChartEntry{Rank: rank, Artist: artist, Title: title},
		Credits:    []models.CreditLine{},
	}
}

func TestVideoMatcher(t *testing.T) {
	ctx := context.Background()

	t.Run("EnrichAll", func(t *testing.T) {
		t.Run("preserves order and isolates failures", func(t *testing.T) {
			search := &tu.FakeSearch{
				Results: map[string][]models.Candidate{
					"A|a": {candidate("va", "A - a", "A VEVO")},
					"C|c": {candidate("vc", "C - c", "C")},
				},
				Errs: map[string]error{"B|b": errors.New("quota exceeded")},
			}
			entries := []models.CreditedEntry{
				credited(1, "A", "a"),
				credited(2, "B", "b"),
				credited(3, "C", "c"),
				credited(4, "D", "d"),
			}

			result, err := NewVideoMatcher(search, MatcherOpts{}).EnrichAll(ctx, entries)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if result.Total != 4 || result.Matched != 2 || result.Failed != 1 {
				t.Errorf("unexpected counts total=%d matched=%d failed=%d", result.Total, result.Matched, result.Failed)
			}
			if len(search.Calls) != 4 {
				t.Errorf("expected 4 searches, got %d", len(search.Calls))
			}

			for i, e := range result.Entries {
				if e.Rank != i+1 {
					t.Errorf("position %d: expected rank %d, got %d", i, i+1, e.Rank)
				}
			}
			if result.Entries[0].Video == nil || result.Entries[0].Video.VideoID != "va" {
				t.Errorf("expected va for rank 1, got %+v", result.Entries[0].Video)
			}
			if result.Entries[1].Video != nil {
				t.Errorf("expected no match for failed search, got %+v", result.Entries[1].Video)
			}
			if result.Entries[3].Video != nil {
				t.Errorf("expected no match for empty search, got %+v", result.Entries[3].Video)
			}
		})

		t.Run("spaces searches by the delay", func(t *testing.T) {
			search := &tu.FakeSearch{}
			entries := []models.CreditedEntry{credited(1, "A", "a"), credited(2, "B", "b"), credited(3, "C", "c")}
			delay := 20 * time.Millisecond

			start := time.Now()
			if _, err := NewVideoMatcher(search, MatcherOpts{Delay: delay}).EnrichAll(ctx, entries); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if elapsed := time.Since(start); elapsed < 2*delay-5*time.Millisecond {
				t.Errorf("expected at least %v between 3 searches, took %v", 2*delay, elapsed)
			}
		})

		t.Run("measures the delay from the end of each search", func(t *testing.T) {
			search := &slowSearch{took: 30 * time.Millisecond}
			entries := []models.CreditedEntry{credited(1, "A", "a"), credited(2, "B", "b"), credited(3, "C", "c")}
			delay := 40 * time.Millisecond

			if _, err := NewVideoMatcher(search, MatcherOpts{Delay: delay}).EnrichAll(ctx, entries); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(search.starts) != 3 {
				t.Fatalf("expected 3 searches, got %d", len(search.starts))
			}
			for i := 1; i < len(search.starts); i++ {
				if gap := search.starts[i].Sub(search.ends[i-1]); gap < delay-5*time.Millisecond {
					t.Errorf("search %d started %v after the previous one finished, want at least %v", i+1, gap, delay)
				}
			}
		})

		t.Run("stops when cancelled", func(t *testing.T) {
			search := &tu.FakeSearch{}
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := NewVideoMatcher(search, MatcherOpts{}).EnrichAll(cctx, []models.CreditedEntry{credited(1, "A", "a")})
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("expected context.Canceled, got %v", err)
			}
			if len(search.Calls) != 0 {
				t.Errorf("expected no searches, got %d", len(search.Calls))
			}
		})

		t.Run("handles empty input", func(t *testing.T) {
			result, err := NewVideoMatcher(&tu.FakeSearch{}, MatcherOpts{}).EnrichAll(ctx, nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.Total != 0 || len(result.Entries) != 0 {
				t.Errorf("unexpected result %+v", result)
			}
		})

		t.Run("fails without a search provider", func(t *testing.T) {
			if _, err := NewVideoMatcher(nil, MatcherOpts{}).EnrichAll(ctx, nil); err == nil {
				t.Fatal("expected error")
			}
		})
	})
}
