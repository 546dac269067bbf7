// package models defines the data model for the chart enrichment pipeline
package models

import (
	"encoding/json"
	"time"
)

// ChartEntry is one ranked position on the chart for a period.
type ChartEntry struct {
	Rank   int    `json:"rank"`
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// CreditLine names the people who filled one production role.
type CreditLine struct {
	Role   string `json:"role"`
	People string `json:"people"` // comma-joined names
}

// CreditedEntry is a [ChartEntry] with album and credits collected by the remote agent.
type CreditedEntry struct {
	ChartEntry
	Album   string       `json:"album"`
	Credits []CreditLine `json:"credits"`
}

// Thumbnail is one rendition of a video thumbnail.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Thumbnails holds the thumbnail renditions returned by the search provider.
type Thumbnails struct {
	Default *Thumbnail `json:"default,omitempty"`
	Medium  *Thumbnail `json:"medium,omitempty"`
	High    *Thumbnail `json:"high,omitempty"`
}

// Best returns the largest available thumbnail, or nil.
func (t Thumbnails) Best() *Thumbnail {
	switch {
	case t.High != nil:
		return t.High
	case t.Medium != nil:
		return t.Medium
	default:
		return t.Default
	}
}

// Candidate is one search result considered by the video scorer.
type Candidate struct {
	VideoID      string     `json:"videoId"`
	Title        string     `json:"title"`
	ChannelTitle string     `json:"channelTitle"`
	PublishedAt  time.Time  `json:"publishedAt"`
	Thumbnails   Thumbnails `json:"thumbnails"`
}

// VideoMatch is the candidate selected for a chart entry.
type VideoMatch struct {
	VideoID      string     `json:"videoId"`
	URL          string     `json:"url"`
	Title        string     `json:"title"`
	ChannelTitle string     `json:"channelTitle"`
	PublishedAt  time.Time  `json:"publishedAt"`
	Thumbnails   Thumbnails `json:"thumbnails"`
}

// EnrichedEntry is a [CreditedEntry] with its matched video, when one was found.
type EnrichedEntry struct {
	CreditedEntry
	Video *VideoMatch `json:"video"`
}

// TaskStatus is the lifecycle state reported by the remote task API.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// IsTerminal reports whether polling should stop at this status.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// TaskRequest is the submission body for a remote task.
type TaskRequest struct {
	Type       string         `json:"type"`
	Prompt     string         `json:"prompt"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// RemoteTask is a single poll observation of the remote credits job.
type RemoteTask struct {
	ID     string          `json:"id"`
	Status TaskStatus      `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// SnapshotKind names the stage that owns a snapshot.
type SnapshotKind string

const (
	KindChart   SnapshotKind = "chart"
	KindCredits SnapshotKind = "credits"
	KindVideos  SnapshotKind = "videos"
)

// Kinds lists snapshot kinds in pipeline order.
func Kinds() []SnapshotKind {
	return []SnapshotKind{KindChart, KindCredits, KindVideos}
}

// Valid reports whether k is a known snapshot kind.
func (k SnapshotKind) Valid() bool {
	for _, kind := range Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// Snapshot is an immutable, timestamped record of one stage's output.
//
// Data holds the stage's entries as raw JSON so that stores stay independent of entry types.
type Snapshot struct {
	ID        string          `json:"-"`
	Kind      SnapshotKind    `json:"-"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	Range     int             `json:"range"`
	Data      json.RawMessage `json:"data"`
}

// Contributor counts how many chart entries credit a person.
type Contributor struct {
	Name    string `json:"name"`
	Entries int    `json:"entries"`
}

// Stats summarises an enriched chart for rendering.
type Stats struct {
	TotalEntries    int           `json:"totalEntries"`
	CreditedEntries int           `json:"creditedEntries"`
	MatchedVideos   int           `json:"matchedVideos"`
	CreditLines     int           `json:"creditLines"`
	Contributors    int           `json:"contributors"`
	TopContributors []Contributor `json:"topContributors"`
}
