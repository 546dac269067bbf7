// package services defines the external collaborators of the pipeline and their HTTP implementations
//
// Chart page (HTML), remote agent task API, YouTube Data API search
package services

import (
	"context"
	"encoding/json"

	"github.com/desertthunder/hitlist/internal/models"
)

// ChartSource produces the ranked entries of the current chart period.
type ChartSource interface {
	// FetchChart returns chart entries in rank order.
	FetchChart(ctx context.Context) ([]models.ChartEntry, error)

	// Name returns a short tag recorded as the snapshot source (e.g. "html:example.com")
	Name() string
}

// TaskAPI submits and observes long-running jobs on a remote agent.
type TaskAPI interface {
	// CreateTask submits a job and returns its opaque identifier.
	CreateTask(ctx context.Context, req models.TaskRequest) (string, error)

	// GetTask returns the current state of a job.
	GetTask(ctx context.Context, taskID string) (*models.RemoteTask, error)
}

// SearchProvider finds candidate videos for a track.
type SearchProvider interface {
	// Search returns candidates in the provider's relevance order.
	Search(ctx context.Context, artist, title string) ([]models.Candidate, error)
}

type taskCreated struct {
	TaskID string `json:"task_id"`
}

type taskState struct {
	ID     string          `json:"id,omitempty"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *string         `json:"error,omitempty"`
}
