package tasks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/desertthunder/hitlist/internal/models"
	"github.com/desertthunder/hitlist/internal/shared"
	"github.com/hashicorp/go-multierror"
)

// resultKeys are object fields searched, in order, for the entry array when a task result is wrapped.
var resultKeys = []string{"data", "tracks", "results"}

// CleanReport summarizes what [CleanCredits] kept and dropped.
type CleanReport struct {
	Kept         int
	Dropped      int
	DroppedLines int
	warnings     *multierror.Error
}

// Err returns the aggregated per-item warnings, or nil when nothing was dropped.
func (r *CleanReport) Err() error {
	return r.warnings.ErrorOrNil()
}

// Warnings returns each per-item warning in input order.
func (r *CleanReport) Warnings() []error {
	if r.warnings == nil {
		return nil
	}
	return r.warnings.Errors
}

func (r *CleanReport) warn(format string, args ...any) {
	r.Dropped++
	r.warnings = multierror.Append(r.warnings, fmt.Errorf(format, args...))
}

// CleanCredits validates a credits task result into [models.CreditedEntry] values.
//
// The payload must be (or wrap) a JSON array, otherwise [shared.ErrSchema] is returned.
// Items without a positive rank, an artist, and a title are dropped and reported.
// A missing or malformed credits field becomes an empty list, and credit lines
// without a non-empty role and people are dropped. Input order is preserved.
func CleanCredits(payload json.RawMessage) ([]models.CreditedEntry, *CleanReport, error) {
	items, err := unwrapResult(payload, 0)
	if err != nil {
		return nil, nil, err
	}

	report := &CleanReport{}
	entries := make([]models.CreditedEntry, 0, len(items))

	for i, raw := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			report.warn("item %d: not an object", i)
			continue
		}

		rank, ok := rankValue(fields["rank"])
		if !ok {
			report.warn("item %d: missing or invalid rank", i)
			continue
		}

		artist := stringValue(fields["artist"])
		title := stringValue(fields["title"])
		if artist == "" || title == "" {
			report.warn("item %d (rank %d): missing artist or title", i, rank)
			continue
		}

		lines, dropped := creditLines(fields["credits"])
		report.DroppedLines += dropped

		entries = append(entries, models.CreditedEntry{
			ChartEntry: models.ChartEntry{Rank: rank, Artist: artist, Title: title},
			Album:      stringValue(fields["album"]),
			Credits:    lines,
		})
		report.Kept++
	}

	return entries, report, nil
}

// unwrapResult locates the entry array inside a task result.
//
// Agents often answer with text, so a JSON string is decoded again after removing a Markdown code fence.
func unwrapResult(payload json.RawMessage, depth int) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: task result is empty", shared.ErrSchema)
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: task result is not a valid array: %v", shared.ErrSchema, err)
		}
		return items, nil
	case '"':
		if depth > 0 {
			break
		}
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, fmt.Errorf("%w: task result is not a valid string: %v", shared.ErrSchema, err)
		}
		return unwrapResult(json.RawMessage(stripCodeFence(text)), depth+1)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, fmt.Errorf("%w: task result is not a valid object: %v", shared.ErrSchema, err)
		}
		for _, key := range resultKeys {
			if v, ok := obj[key]; ok && len(bytes.TrimSpace(v)) > 0 && bytes.TrimSpace(v)[0] == '[' {
				return unwrapResult(v, depth+1)
			}
		}
		return nil, fmt.Errorf("%w: task result object has no %s array", shared.ErrSchema, strings.Join(resultKeys, "/"))
	}

	return nil, fmt.Errorf("%w: task result is not an array", shared.ErrSchema)
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

// rankValue accepts a positive integer given as a JSON number or a numeric string.
func rankValue(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n < 1 || n != math.Trunc(n) || n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 1 {
		return 0, false
	}
	return v, true
}

// stringValue returns the trimmed string held by raw, or "" for any other JSON type.
func stringValue(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// peopleValue accepts a string or an array of strings, which is comma-joined.
func peopleValue(raw json.RawMessage) string {
	if s := stringValue(raw); s != "" {
		return s
	}

	var names []string
	if len(raw) == 0 || json.Unmarshal(raw, &names) != nil {
		return ""
	}

	kept := names[:0]
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			kept = append(kept, n)
		}
	}
	return strings.Join(kept, ", ")
}

// creditLines returns the well-formed lines of a credits field and how many were dropped.
func creditLines(raw json.RawMessage) ([]models.CreditLine, int) {
	lines := []models.CreditLine{}

	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return lines, 0
	}

	dropped := 0
	for _, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			dropped++
			continue
		}

		role := stringValue(fields["role"])
		people := peopleValue(fields["people"])
		if role == "" || people == "" {
			dropped++
			continue
		}

		lines = append(lines, models.CreditLine{Role: role, People: people})
	}

	return lines, dropped
}
