// Remote agent [TaskAPI] implementation
//
// The agent runs long jobs asynchronously; callers submit once and poll for a terminal status.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/hitlist/internal/models"
	"github.com/desertthunder/hitlist/internal/shared"
	"golang.org/x/oauth2"
)

const defaultAgentBaseURL string = "http://localhost:8090"

// AgentOpts contains configuration for creating an [AgentClient].
type AgentOpts struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// HTTPClient is the base client wrapped by the bearer token transport.
	HTTPClient *http.Client
}

// AgentClient implements [TaskAPI] against the agent's REST API.
type AgentClient struct {
	baseURL    string
	httpClient *http.Client
	newKey     func() string
}

// NewAgentClient creates a new agent client that authenticates every request with opts.APIKey.
func NewAgentClient(opts AgentOpts) *AgentClient {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultAgentBaseURL
	}

	ctx := context.Background()
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: opts.APIKey,
		TokenType:   "Bearer",
	}))
	if opts.Timeout > 0 {
		client.Timeout = opts.Timeout
	}

	return &AgentClient{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: client,
		newKey:     shared.GenerateID,
	}
}

// CreateTask submits a job with POST /tasks and returns its task_id.
func (a *AgentClient) CreateTask(ctx context.Context, taskReq models.TaskRequest) (string, error) {
	body, err := json.Marshal(taskReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/tasks", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", a.newKey())

	var created taskCreated
	if err := a.do(req, &created); err != nil {
		return "", err
	}
	if created.TaskID == "" {
		return "", fmt.Errorf("%w: response did not include task_id", shared.ErrAPIRequest)
	}

	return created.TaskID, nil
}

// GetTask fetches GET /tasks/{id}.
func (a *AgentClient) GetTask(ctx context.Context, taskID string) (*models.RemoteTask, error) {
	endpoint := fmt.Sprintf("%s/tasks/%s", a.baseURL, url.PathEscape(taskID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var state taskState
	if err := a.do(req, &state); err != nil {
		return nil, err
	}

	task := &models.RemoteTask{
		ID:     taskID,
		Status: models.TaskStatus(strings.ToLower(state.Status)),
		Result: state.Result,
	}
	if state.Error != nil {
		task.Error = *state.Error
	}

	return task, nil
}

func (a *AgentClient) do(req *http.Request, result any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s returned status %d%s", shared.ErrAPIRequest, req.Method, req.URL.Path, resp.StatusCode, errorDetail(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// errorDetail extracts a human readable message from common error body shapes.
func errorDetail(body []byte) string {
	var errResp struct {
		Detail  string `json:"detail"`
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		return ""
	}

	switch e := errResp.Error.(type) {
	case string:
		if e != "" {
			return ": " + e
		}
	case map[string]any:
		if msg, ok := e["message"].(string); ok && msg != "" {
			return ": " + msg
		}
	}
	if errResp.Detail != "" {
		return ": " + errResp.Detail
	}
	if errResp.Message != "" {
		return ": " + errResp.Message
	}
	return ""
}
