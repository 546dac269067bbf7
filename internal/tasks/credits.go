package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/hitlist/internal/models"
	"github.com/desertthunder/hitlist/internal/services"
	"github.com/desertthunder/hitlist/internal/shared"
)

const (
	defaultTaskType = "collect_credits"
	// CreditsSchema names the output shape requested from the agent.
	CreditsSchema = "credited_entries"
)

// CreditsOpts contains configuration for a [CreditsTaskClient].
type CreditsOpts struct {
	TaskType string
	Logger   *log.Logger
	Progress chan<- ProgressUpdate
}

// CreditsTaskClient drives one bulk credits job on the remote agent from submission to a cleaned result.
type CreditsTaskClient struct {
	api      services.TaskAPI
	taskType string
	logger   *log.Logger
	progress chan<- ProgressUpdate
}

// NewCreditsTaskClient creates a credits client backed by api.
func NewCreditsTaskClient(api services.TaskAPI, opts CreditsOpts) *CreditsTaskClient {
	if opts.TaskType == "" {
		opts.TaskType = defaultTaskType
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &CreditsTaskClient{
		api:      api,
		taskType: opts.TaskType,
		logger:   opts.Logger,
		progress: opts.Progress,
	}
}

// Submit sends a single task describing every entry and returns the task ID.
func (c *CreditsTaskClient) Submit(ctx context.Context, entries []models.ChartEntry) (string, error) {
	if c.api == nil {
		return "", fmt.Errorf("%w: task API not initialized", shared.ErrServiceUnavailable)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("%w: no chart entries to submit", shared.ErrInvalidInput)
	}

	sendProgress(c.progress, submitTaskUpdate(len(entries)))

	taskID, err := c.api.CreateTask(ctx, models.TaskRequest{
		Type:   c.taskType,
		Prompt: BuildCreditsPrompt(entries),
		Parameters: map[string]any{
			"entries":       entries,
			"output_schema": CreditsSchema,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrSubmission, err)
	}

	c.logger.Info("submitted credits task", "task_id", taskID, "entries", len(entries))
	return taskID, nil
}

// AwaitCompletion polls taskID until it reaches a terminal status and returns the raw result.
//
// Each attempt sleeps for interval before polling, so at most maxAttempts polls are made.
// Exhausting the budget fails with [shared.ErrRemoteTaskTimeout]; a failed task fails with
// [shared.ErrRemoteTask]. Cancelling ctx returns an error that wraps ctx.Err() and names the task.
func (c *CreditsTaskClient) AwaitCompletion(ctx context.Context, taskID string, interval time.Duration, maxAttempts int) (json.RawMessage, error) {
	if c.api == nil {
		return nil, fmt.Errorf("%w: task API not initialized", shared.ErrServiceUnavailable)
	}
	if taskID == "" {
		return nil, fmt.Errorf("%w: task id", shared.ErrMissingArgument)
	}
	if maxAttempts <= 0 {
		return nil, fmt.Errorf("%w: max attempts must be positive, got %d", shared.ErrInvalidArgument, maxAttempts)
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, abandoned(taskID, err)
		}

		select {
		case <-ctx.Done():
			return nil, abandoned(taskID, ctx.Err())
		case <-time.After(interval):
		}

		if err := ctx.Err(); err != nil {
			return nil, abandoned(taskID, err)
		}

		task, err := c.api.GetTask(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, abandoned(taskID, ctx.Err())
			}
			return nil, fmt.Errorf("poll task %s: %w", taskID, err)
		}
		if task.ID == "" {
			task.ID = taskID
		}

		sendProgress(c.progress, pollTaskUpdate(attempt, maxAttempts, task))

		switch task.Status {
		case models.TaskCompleted:
			c.logger.Info("credits task completed", "task_id", taskID, "polls", attempt)
			return task.Result, nil
		case models.TaskFailed:
			msg := task.Error
			if msg == "" {
				msg = "no error message"
			}
			return nil, fmt.Errorf("%w: task %s: %s", shared.ErrRemoteTask, taskID, msg)
		case models.TaskPending, models.TaskRunning:
			c.logger.Debug("credits task not finished", "task_id", taskID, "status", task.Status, "attempt", attempt)
		default:
			return nil, fmt.Errorf("%w: task %s reported unknown status %q", shared.ErrSchema, taskID, task.Status)
		}
	}

	return nil, fmt.Errorf("%w: task %s still unfinished after %d polls (resume with --task-id %s)",
		shared.ErrRemoteTaskTimeout, taskID, maxAttempts, taskID)
}

// ValidateAndClean converts a completed task result into credited entries, logging every dropped item.
func (c *CreditsTaskClient) ValidateAndClean(payload json.RawMessage) ([]models.CreditedEntry, *CleanReport, error) {
	entries, report, err := CleanCredits(payload)
	if err != nil {
		return nil, nil, err
	}

	for _, w := range report.Warnings() {
		c.logger.Warn("dropped credits entry", "reason", w)
	}
	if report.DroppedLines > 0 {
		c.logger.Debug("dropped malformed credit lines", "count", report.DroppedLines)
	}

	sendProgress(c.progress, cleanCreditsUpdate(report))
	return entries, report, nil
}

// BuildCreditsPrompt describes the requested job and lists every entry as "rank. artist - title".
func BuildCreditsPrompt(entries []models.ChartEntry) string {
	var b strings.Builder

	b.WriteString("For each chart entry below, find the album it was released on and its production credits ")
	b.WriteString("(producers, writers, engineers, featured performers).\n")
	b.WriteString("Respond with a JSON array only. Each element must be an object with the fields ")
	b.WriteString(`"rank" (integer), "artist" (string), "title" (string), "album" (string) and `)
	b.WriteString(`"credits" (array of {"role": string, "people": string}, people comma-separated).` + "\n")
	b.WriteString("Keep rank, artist and title exactly as given.\n\n")

	for _, e := range entries {
		fmt.Fprintf(&b, "%d. %s - %s\n", e.Rank, e.Artist, e.Title)
	}

	return b.String()
}

func abandoned(taskID string, err error) error {
	return fmt.Errorf("stopped waiting for task %s (resume with --task-id %s): %w", taskID, taskID, err)
}
