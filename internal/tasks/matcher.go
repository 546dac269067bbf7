package tasks

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/hitlist/internal/models"
	"github.com/desertthunder/hitlist/internal/services"
	"github.com/desertthunder/hitlist/internal/shared"
	"golang.org/x/time/rate"
)

// Score weights
const (
	ChannelBonus    = 10
	TitleBonus      = 5
	OfficialBonus   = 3
	ExcludedPenalty = 5
	FirstBonus      = 2
)

var (
	channelKeywords  = []string{"vevo", "records", "music", "official"}
	officialKeywords = []string{"official", "music video"}
	excludedKeywords = []string{"cover", "remix", "live", "acoustic", "karaoke", "instrumental"}
)

// Score rates how likely c is the official video for artist - title.
//
// index is the candidate's position in provider order; the first candidate gets [FirstBonus].
func Score(c models.Candidate, index int, artist, title string) int {
	channel := strings.ToLower(c.ChannelTitle)
	videoTitle := strings.ToLower(c.Title)
	artist = strings.ToLower(strings.TrimSpace(artist))
	title = strings.ToLower(strings.TrimSpace(title))

	score := 0

	if containsAny(channel, channelKeywords) || (artist != "" && strings.Contains(channel, artist)) {
		score += ChannelBonus
	}
	if artist != "" && title != "" && strings.Contains(videoTitle, artist) && strings.Contains(videoTitle, title) {
		score += TitleBonus
	}
	if containsAny(videoTitle, officialKeywords) {
		score += OfficialBonus
	}
	if containsAny(videoTitle, excludedKeywords) {
		score -= ExcludedPenalty
	}
	if index == 0 {
		score += FirstBonus
	}

	return score
}

// SelectBest returns the highest scoring candidate as a [models.VideoMatch].
//
// A later candidate must score strictly higher to replace the current best, so ties keep the
// earliest. The winner is returned whatever its score; nil is returned only for no candidates.
func SelectBest(candidates []models.Candidate, artist, title string) *models.VideoMatch {
	if len(candidates) == 0 {
		return nil
	}

	best, bestScore := 0, Score(candidates[0], 0, artist, title)
	for i := 1; i < len(candidates); i++ {
		if s := Score(candidates[i], i, artist, title); s > bestScore {
			best, bestScore = i, s
		}
	}

	c := candidates[best]
	return &models.VideoMatch{
		VideoID:      c.VideoID,
		URL:          services.WatchURL + c.VideoID,
		Title:        c.Title,
		ChannelTitle: c.ChannelTitle,
		PublishedAt:  c.PublishedAt,
		Thumbnails:   c.Thumbnails,
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// MatcherOpts contains configuration for a [VideoMatcher].
type MatcherOpts struct {
	Delay    time.Duration // Minimum spacing between searches; zero disables throttling
	Logger   *log.Logger
	Progress chan<- ProgressUpdate
}

// EnrichResult contains the enriched entries and match counts from [VideoMatcher.EnrichAll].
type EnrichResult struct {
	Entries []models.EnrichedEntry
	Total   int
	Matched int
	Failed  int // searches that returned an error
}

// VideoMatcher searches for one video per credited entry, one request at a time.
type VideoMatcher struct {
	search   services.SearchProvider
	limit    rate.Limit
	logger   *log.Logger
	progress chan<- ProgressUpdate
}

// NewVideoMatcher creates a matcher that waits opts.Delay between the end of one search and the start of the next.
func NewVideoMatcher(search services.SearchProvider, opts MatcherOpts) *VideoMatcher {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}

	return &VideoMatcher{
		search:   search,
		limit:    limit,
		logger:   opts.Logger,
		progress: opts.Progress,
	}
}

// EnrichAll attaches the best video match to every entry, preserving order.
//
// A failed or empty search leaves that entry without a video and processing continues.
// Cancelling ctx stops the fan-out and returns an error.
func (m *VideoMatcher) EnrichAll(ctx context.Context, entries []models.CreditedEntry) (*EnrichResult, error) {
	if m.search == nil {
		return nil, fmt.Errorf("%w: search provider not initialized", shared.ErrServiceUnavailable)
	}

	total := len(entries)
	result := &EnrichResult{
		Entries: make([]models.EnrichedEntry, 0, total),
		Total:   total,
	}

	var cooldown *rate.Limiter
	for i, entry := range entries {
		if err := pause(ctx, cooldown); err != nil {
			return nil, fmt.Errorf("video search stopped at %d/%d: %w", i+1, total, err)
		}

		sendProgress(m.progress, searchVideosUpdate(i+1, total, entry.ChartEntry))

		candidates, err := m.search.Search(ctx, entry.Artist, entry.Title)
		cooldown = m.startCooldown()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("video search stopped at %d/%d: %w", i+1, total, ctxErr)
			}
			m.logger.Warn("video search failed", "rank", entry.Rank, "artist", entry.Artist, "title", entry.Title, "err", err)
			result.Failed++
			candidates = nil
		}

		match := SelectBest(candidates, entry.Artist, entry.Title)
		if match != nil {
			result.Matched++
		} else if err == nil {
			m.logger.Debug("no video candidates", "rank", entry.Rank, "artist", entry.Artist, "title", entry.Title)
		}

		sendProgress(m.progress, matchedVideoUpdate(i+1, total, match))
		result.Entries = append(result.Entries, models.EnrichedEntry{CreditedEntry: entry, Video: match})
	}

	m.logger.Info("video matching finished", "matched", result.Matched, "total", total, "failed", result.Failed)
	return result, nil
}

// startCooldown returns a limiter whose only token was just spent, so the next Wait lasts the full delay.
func (m *VideoMatcher) startCooldown() *rate.Limiter {
	l := rate.NewLimiter(m.limit, 1)
	l.Allow()
	return l
}

func pause(ctx context.Context, cooldown *rate.Limiter) error {
	if cooldown == nil {
		return ctx.Err()
	}
	return cooldown.Wait(ctx)
}
