package tasks

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/desertthunder/hitlist/internal/models"
	"github.com/desertthunder/hitlist/internal/shared"
)

func TestCleanCredits(t *testing.T) {
	t.Run("preserves input order", func(t *testing.T) {
		payload := `[
			{"rank": 3, "artist": "C", "title": "c"},
			{"rank": 1, "artist": "A", "title": "a"},
			{"rank": 2, "artist": "B", "title": "b"}
		]`

		entries, report, err := CleanCredits(json.RawMessage(payload))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if report.Kept != 3 || report.Dropped != 0 {
			t.Errorf("unexpected report %+v", report)
		}

		want := []int{3, 1, 2}
		for i, e := range entries {
			if e.Rank != want[i] {
				t.Errorf("position %d: expected rank %d, got %d", i, want[i], e.Rank)
			}
		}
	})

	t.Run("drops items missing identity fields", func(t *testing.T) {
		payload := `[
			{"rank": 1, "artist": "A", "title": "a"},
			{"artist": "B", "title": "b"},
			{"rank": 3, "title": "c"},
			{"rank": 4, "artist": "D", "title": "  "},
			{"rank": 0, "artist": "E", "title": "e"},
			"not an object",
			{"rank": "6", "artist": "F", "title": "f"}
		]`

		entries, report, err := CleanCredits(json.RawMessage(payload))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
		}
		if entries[1].Rank != 6 {
			t.Errorf("expected numeric string rank 6, got %d", entries[1].Rank)
		}
		if report.Dropped != 5 {
			t.Errorf("expected 5 dropped, got %d", report.Dropped)
		}
		if len(report.Warnings()) != 5 {
			t.Errorf("expected 5 warnings, got %d", len(report.Warnings()))
		}
		if report.Err() == nil {
			t.Error("expected aggregated warning error")
		}
	})

	t.Run("drops malformed credit lines but keeps the entry", func(t *testing.T) {
		payload := `[{
			"rank": 1, "artist": "A", "title": "B", "album": "C",
			"credits": [
				{"role": "PRODUCER", "people": "X"},
				{"role": "", "people": "Y"},
				{"role": "WRITER", "people": ""},
				{"role": "MIXER"},
				{"role": 5, "people": "Z"},
				"garbage",
				{"role": "FEATURED", "people": ["P", " Q ", ""]}
			]
		}]`

		entries, report, err := CleanCredits(json.RawMessage(payload))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}

		got := entries[0]
		if got.Album != "C" {
			t.Errorf("expected album C, got %q", got.Album)
		}
		want := []models.CreditLine{
			{Role: "PRODUCER", People: "X"},
			{Role: "FEATURED", People: "P, Q"},
		}
		if len(got.Credits) != len(want) {
			t.Fatalf("expected %d credit lines, got %+v", len(want), got.Credits)
		}
		for i := range want {
			if got.Credits[i] != want[i] {
				t.Errorf("line %d: expected %+v, got %+v", i, want[i], got.Credits[i])
			}
		}
		if report.DroppedLines != 5 {
			t.Errorf("expected 5 dropped lines, got %d", report.DroppedLines)
		}
		if report.Dropped != 0 {
			t.Errorf("dropped lines must not count as dropped entries, got %d", report.Dropped)
		}
	})

	t.Run("trims surrounding whitespace and keeps inner text", func(t *testing.T) {
		payload := `[{
			"rank": 1, "artist": "  The  Band ", "title": "\tSong (Remix) ",
			"credits": [
				{"role": " PRODUCER ", "people": "  X,  Y & Z  "},
				{"role": "WRITER", "people": "   "},
				{"role": "   ", "people": "W"}
			]
		}]`

		entries, report, err := CleanCredits(json.RawMessage(payload))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}

		got := entries[0]
		if got.Artist != "The  Band" || got.Title != "Song (Remix)" {
			t.Errorf("unexpected artist/title %q / %q", got.Artist, got.Title)
		}
		want := []models.CreditLine{{Role: "PRODUCER", People: "X,  Y & Z"}}
		if len(got.Credits) != 1 || got.Credits[0] != want[0] {
			t.Errorf("expected %+v, got %+v", want, got.Credits)
		}
		if report.DroppedLines != 2 {
			t.Errorf("expected blank role and people lines to be dropped, got %d", report.DroppedLines)
		}
	})

	t.Run("coerces missing or malformed credits to empty", func(t *testing.T) {
		payload := `[
			{"rank": 1, "artist": "A", "title": "a"},
			{"rank": 2, "artist": "B", "title": "b", "credits": "none"},
			{"rank": 3, "artist": "C", "title": "c", "credits": null}
		]`

		entries, _, err := CleanCredits(json.RawMessage(payload))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, e := range entries {
			if e.Credits == nil || len(e.Credits) != 0 {
				t.Errorf("rank %d: expected empty non-nil credits, got %#v", e.Rank, e.Credits)
			}
		}
	})

	t.Run("unwraps text and object results", func(t *testing.T) {
		tests := []struct {
			name    string
			payload string
		}{
			{"json string", `"[{\"rank\":1,\"artist\":\"A\",\"title\":\"B\"}]"`},
			{"fenced string", "\"```json\\n[{\\\"rank\\\":1,\\\"artist\\\":\\\"A\\\",\\\"title\\\":\\\"B\\\"}]\\n```\""},
			{"data object", `{"data": [{"rank":1,"artist":"A","title":"B"}]}`},
			{"tracks object", `{"summary": "ok", "tracks": [{"rank":1,"artist":"A","title":"B"}]}`},
			{"results object", `{"results": [{"rank":1,"artist":"A","title":"B"}]}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				entries, _, err := CleanCredits(json.RawMessage(tt.payload))
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if len(entries) != 1 || entries[0].Artist != "A" || entries[0].Title != "B" {
					t.Errorf("unexpected entries %+v", entries)
				}
			})
		}
	})

	t.Run("rejects non-array payloads", func(t *testing.T) {
		tests := []struct {
			name    string
			payload string
		}{
			{"empty", ``},
			{"null", `null`},
			{"number", `42`},
			{"object without array", `{"data": "nope"}`},
			{"prose", `"Sorry, I could not find credits."`},
			{"nested string", `"\"[]\""`},
			{"broken array", `[{"rank": 1}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, _, err := CleanCredits(json.RawMessage(tt.payload))
				if !errors.Is(err, shared.ErrSchema) {
					t.Errorf("expected ErrSchema, got %v", err)
				}
			})
		}
	})
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"[1]", "[1]"},
		{"```json\n[1]\n```", "[1]"},
		{"```\n[1]\n```\n", "[1]"},
		{"  [1]  ", "[1]"},
	}

	for _, tt := range tests {
		if got := stripCodeFence(tt.in); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRankValue(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{`1`, 1, true},
		{`"7"`, 7, true},
		{`" 8 "`, 8, true},
		{`2.5`, 0, false},
		{`0`, 0, false},
		{`-1`, 0, false},
		{`"x"`, 0, false},
		{`true`, 0, false},
		{``, 0, false},
	}

	for _, tt := range tests {
		got, ok := rankValue(json.RawMessage(tt.raw))
		if got != tt.want || ok != tt.ok {
			t.Errorf("rankValue(%s) = %d, %v; want %d, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}
