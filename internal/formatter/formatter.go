// package formatter renders the enriched chart to static files (HTML, Markdown, CSV, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/hitlist/internal/models"
	"github.com/desertthunder/hitlist/internal/shared"
)

// TopContributorsLimit caps [models.Stats.TopContributors].
const TopContributorsLimit = 10

// Page is everything a renderer needs to produce the chart page.
type Page struct {
	Title       string                 `json:"title"`
	GeneratedAt time.Time              `json:"generatedAt"`
	Entries     []models.EnrichedEntry `json:"entries"`
	Stats       models.Stats           `json:"stats"`
}

// NewPage builds a page for entries and computes its stats.
func NewPage(title string, generatedAt time.Time, entries []models.EnrichedEntry) *Page {
	if entries == nil {
		entries = []models.EnrichedEntry{}
	}
	return &Page{
		Title:       title,
		GeneratedAt: generatedAt.UTC(),
		Entries:     entries,
		Stats:       ComputeStats(entries),
	}
}

// ComputeStats totals entries, credits, matched videos and contributors.
//
// A contributor is counted once per entry no matter how many roles they fill on it.
func ComputeStats(entries []models.EnrichedEntry) models.Stats {
	stats := models.Stats{
		TotalEntries:    len(entries),
		TopContributors: []models.Contributor{},
	}
	counts := map[string]int{}
	display := map[string]string{}

	for _, e := range entries {
		if len(e.Credits) > 0 {
			stats.CreditedEntries++
		}
		if e.Video != nil {
			stats.MatchedVideos++
		}
		stats.CreditLines += len(e.Credits)

		seen := map[string]bool{}
		for _, line := range e.Credits {
			for _, name := range SplitPeople(line.People) {
				key := shared.NormalizeKey(name)
				if seen[key] {
					continue
				}
				seen[key] = true
				counts[key]++
				if _, ok := display[key]; !ok {
					display[key] = name
				}
			}
		}
	}

	stats.Contributors = len(counts)
	for key, n := range counts {
		stats.TopContributors = append(stats.TopContributors, models.Contributor{Name: display[key], Entries: n})
	}
	sort.Slice(stats.TopContributors, func(i, j int) bool {
		a, b := stats.TopContributors[i], stats.TopContributors[j]
		if a.Entries != b.Entries {
			return a.Entries > b.Entries
		}
		return a.Name < b.Name
	})
	if len(stats.TopContributors) > TopContributorsLimit {
		stats.TopContributors = stats.TopContributors[:TopContributorsLimit]
	}

	return stats
}

// SplitPeople splits a comma-joined people field into trimmed names.
func SplitPeople(people string) []string {
	var names []string
	for _, n := range strings.Split(people, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// FormatCredits joins credit lines as "Role: People; Role: People".
func FormatCredits(lines []models.CreditLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.Role + ": " + l.People
	}
	return strings.Join(parts, "; ")
}

// ExportToCSV converts enriched entries to CSV with columns: Rank, Artist, Title, Album, Credits, Video URL, Channel
func ExportToCSV(entries []models.EnrichedEntry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "Artist", "Title", "Album", "Credits", "Video URL", "Channel"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range entries {
		videoURL, channel := "", ""
		if e.Video != nil {
			videoURL, channel = e.Video.URL, e.Video.ChannelTitle
		}

		record := []string{
			strconv.Itoa(e.Rank),
			e.Artist,
			e.Title,
			e.Album,
			FormatCredits(e.Credits),
			videoURL,
			channel,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a page to Markdown with a stats summary and one section per entry
func ExportToMarkdown(page *Page) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", page.Title))
	buf.WriteString(fmt.Sprintf("_Generated %s_\n\n", page.GeneratedAt.Format(time.RFC1123)))

	s := page.Stats
	buf.WriteString(fmt.Sprintf("**Entries**: %d\n", s.TotalEntries))
	buf.WriteString(fmt.Sprintf("**Credited**: %d\n", s.CreditedEntries))
	buf.WriteString(fmt.Sprintf("**Videos**: %d/%d\n", s.MatchedVideos, s.TotalEntries))
	buf.WriteString(fmt.Sprintf("**Contributors**: %d\n\n", s.Contributors))

	if len(s.TopContributors) > 0 {
		buf.WriteString("## Top Contributors\n\n")
		for _, c := range s.TopContributors {
			buf.WriteString(fmt.Sprintf("- %s (%d)\n", c.Name, c.Entries))
		}
		buf.WriteString("\n")
	}

	buf.WriteString("## Chart\n\n")
	for _, e := range page.Entries {
		albumPart := ""
		if e.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", e.Album)
		}
		buf.WriteString(fmt.Sprintf("### %d. %s - %s%s\n\n", e.Rank, e.Artist, e.Title, albumPart))

		if e.Video != nil {
			buf.WriteString(fmt.Sprintf("[%s](%s)\n\n", e.Video.Title, e.Video.URL))
		}
		for _, line := range e.Credits {
			buf.WriteString(fmt.Sprintf("- **%s**: %s\n", line.Role, line.People))
		}
		if len(e.Credits) > 0 {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON returns the page as indented JSON
func ExportToJSON(page *Page) ([]byte, error) {
	return shared.MarshalJSON(page, true)
}
