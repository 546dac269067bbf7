package tasks

import "testing"

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{FetchChart, "fetch_chart"},
		{SubmitTask, "submit_task"},
		{PollTask, "poll_task"},
		{CleaningCredits, "clean_credits"},
		{SearchVideos, "search_videos"},
		{WriteSnapshot, "write_snapshot"},
		{RenderPage, "render_page"},
		{Phase(99), ""},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}
