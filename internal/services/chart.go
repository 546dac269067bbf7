// HTML table [ChartSource] implementation
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/desertthunder/hitlist/internal/models"
	"github.com/desertthunder/hitlist/internal/shared"
)

// ChartSelectors locate the chart cells within the page.
type ChartSelectors struct {
	Row    string
	Rank   string
	Title  string
	Artist string
}

// HTMLChartSource implements [ChartSource] by scraping an HTML table.
type HTMLChartSource struct {
	pageURL    string
	selectors  ChartSelectors
	limit      int
	userAgent  string
	httpClient *http.Client
}

// NewHTMLChartSource creates a chart source from the chart configuration.
func NewHTMLChartSource(cfg shared.ChartConfig, client *http.Client) *HTMLChartSource {
	if client == nil {
		client = http.DefaultClient
	}

	return &HTMLChartSource{
		pageURL: cfg.URL,
		selectors: ChartSelectors{
			Row:    cfg.RowSelector,
			Rank:   cfg.RankSelector,
			Title:  cfg.TitleSelector,
			Artist: cfg.ArtistSelector,
		},
		limit:      cfg.Limit,
		userAgent:  cfg.UserAgent,
		httpClient: client,
	}
}

// Name returns "html:" followed by the chart host.
func (c *HTMLChartSource) Name() string {
	if u, err := url.Parse(c.pageURL); err == nil && u.Host != "" {
		return "html:" + u.Host
	}
	return "html"
}

// FetchChart downloads the chart page and parses its rows.
func (c *HTMLChartSource) FetchChart(ctx context.Context) ([]models.ChartEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: chart request failed: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: chart page returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	return ParseChart(resp.Body, c.selectors, c.limit)
}

// ParseChart reads chart entries from an HTML document.
//
// Rows whose rank cell holds no positive integer, or whose title or artist is blank, are skipped.
// A limit of zero or less keeps every row.
func ParseChart(r io.Reader, sel ChartSelectors, limit int) ([]models.ChartEntry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	entries := []models.ChartEntry{}
	doc.Find(sel.Row).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if limit > 0 && len(entries) >= limit {
			return false
		}

		rank, ok := parseRank(cellText(row, sel.Rank))
		if !ok {
			return true
		}

		title := cellText(row, sel.Title)
		artist := cellText(row, sel.Artist)
		if title == "" || artist == "" {
			return true
		}

		entries = append(entries, models.ChartEntry{Rank: rank, Artist: artist, Title: title})
		return true
	})

	return entries, nil
}

func cellText(row *goquery.Selection, selector string) string {
	return strings.Join(strings.Fields(row.Find(selector).First().Text()), " ")
}

func parseRank(s string) (int, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
