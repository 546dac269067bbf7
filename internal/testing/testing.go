// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/hitlist/internal/models"
)

// StaticChart is a test double for services.ChartSource
type StaticChart struct {
	Entries []models.ChartEntry
	Err     error
	Tag     string
}

func (s *StaticChart) FetchChart(ctx context.Context) ([]models.ChartEntry, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Entries, nil
}

func (s *StaticChart) Name() string {
	if s.Tag == "" {
		return "static"
	}
	return s.Tag
}

// ScriptedTaskAPI is a test double for services.TaskAPI.
//
// Each GetTask call returns the next entry of Script; the last entry repeats once the script runs out.
type ScriptedTaskAPI struct {
	TaskID    string
	CreateErr error
	Script    []models.RemoteTask
	PollErr   error // returned by every GetTask when set

	mu       sync.Mutex
	Requests []models.TaskRequest
	Polls    int
}

func (s *ScriptedTaskAPI) CreateTask(ctx context.Context, req models.TaskRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Requests = append(s.Requests, req)
	if s.CreateErr != nil {
		return "", s.CreateErr
	}
	if s.TaskID == "" {
		return "task-1", nil
	}
	return s.TaskID, nil
}

func (s *ScriptedTaskAPI) GetTask(ctx context.Context, taskID string) (*models.RemoteTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Polls++
	if s.PollErr != nil {
		return nil, s.PollErr
	}
	if len(s.Script) == 0 {
		return &models.RemoteTask{ID: taskID, Status: models.TaskPending}, nil
	}

	i := s.Polls - 1
	if i >= len(s.Script) {
		i = len(s.Script) - 1
	}
	task := s.Script[i]
	task.ID = taskID
	return &task, nil
}

// PollCount returns the number of GetTask calls made so far.
func (s *ScriptedTaskAPI) PollCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Polls
}

// Statuses builds a poll script from bare statuses.
func Statuses(statuses ...models.TaskStatus) []models.RemoteTask {
	script := make([]models.RemoteTask, len(statuses))
	for i, st := range statuses {
		script[i] = models.RemoteTask{Status: st}
	}
	return script
}

// FakeSearch is a test double for services.SearchProvider keyed by "artist|title".
type FakeSearch struct {
	Results map[string][]models.Candidate
	Errs    map[string]error

	mu    sync.Mutex
	Calls []string
}

func (f *FakeSearch) Search(ctx context.Context, artist, title string) ([]models.Candidate, error) {
	key := artist + "|" + title

	f.mu.Lock()
	f.Calls = append(f.Calls, key)
	f.mu.Unlock()

	if err, ok := f.Errs[key]; ok {
		return nil, err
	}
	return f.Results[key], nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
