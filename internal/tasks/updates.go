package tasks

import (
	"fmt"

	"github.com/desertthunder/hitlist/internal/models"
)

// ProgressUpdate represents a progress event during a long-running stage.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchChart Phase = iota
	SubmitTask
	PollTask
	CleaningCredits
	SearchVideos
	WriteSnapshot
	RenderPage
)

func (p Phase) String() string {
	switch p {
	case FetchChart:
		return "fetch_chart"
	case SubmitTask:
		return "submit_task"
	case PollTask:
		return "poll_task"
	case CleaningCredits:
		return "clean_credits"
	case SearchVideos:
		return "search_videos"
	case WriteSnapshot:
		return "write_snapshot"
	case RenderPage:
		return "render_page"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchChartUpdate(source string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchChart,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching chart from %s...", source),
	}
}

func submitTaskUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SubmitTask,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Submitting credits task for %d entries...", count),
	}
}

func pollTaskUpdate(step, total int, task *models.RemoteTask) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PollTask,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] task %s is %s", step, total, task.ID, task.Status),
		Data:    task,
	}
}

func cleanCreditsUpdate(report *CleanReport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CleaningCredits,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Kept %d entries, dropped %d", report.Kept, report.Dropped),
		Data:    report,
	}
}

func searchVideosUpdate(step, total int, entry models.ChartEntry) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchVideos,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, entry.Artist, entry.Title),
	}
}

func matchedVideoUpdate(step, total int, match *models.VideoMatch) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] ✗ no match", step, total)
	if match != nil {
		msg = fmt.Sprintf("[%d/%d] ✓ %s", step, total, match.Title)
	}
	return ProgressUpdate{
		Phase:   SearchVideos,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    match,
	}
}

func writeSnapshotUpdate(kind models.SnapshotKind, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteSnapshot,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote %s snapshot %s", kind, id),
	}
}

func renderPageUpdate(files []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RenderPage,
		Step:    len(files),
		Total:   len(files),
		Message: fmt.Sprintf("Rendered %d files", len(files)),
		Data:    files,
	}
}
