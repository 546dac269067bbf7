package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/hitlist/internal/models"
	"github.com/desertthunder/hitlist/internal/shared"
	tu "github.com/desertthunder/hitlist/internal/testing"
)

func newTestAgent(t *testing.T, handler http.HandlerFunc) *AgentClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewAgentClient(AgentOpts{
		BaseURL:    server.URL,
		APIKey:     "secret",
		Timeout:    5 * time.Second,
		HTTPClient: server.Client(),
	})
}

func TestAgentClient(t *testing.T) {
	t.Run("NewAgentClient", func(t *testing.T) {
		if a := NewAgentClient(AgentOpts{APIKey: "k"}); a.baseURL != defaultAgentBaseURL {
			t.Errorf("expected baseURL %s, got %s", defaultAgentBaseURL, a.baseURL)
		}
	})

	t.Run("CreateTask", func(t *testing.T) {
		t.Run("posts task with bearer token and idempotency key", func(t *testing.T) {
			a := newTestAgent(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/tasks" {
					t.Errorf("expected path /tasks, got %s", r.URL.Path)
				}
				if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
					t.Errorf("expected bearer auth, got %q", auth)
				}
				if key := r.Header.Get("Idempotency-Key"); key != "key-1" {
					t.Errorf("expected idempotency key key-1, got %q", key)
				}

				var body models.TaskRequest
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				if body.Type != "collect_credits" || body.Prompt != "list credits" {
					t.Errorf("unexpected body %+v", body)
				}

				w.WriteHeader(http.StatusAccepted)
				w.Write([]byte(`{"task_id": "t-42"}`))
			})
			a.newKey = func() string { return "key-1" }

			id, err := a.CreateTask(context.Background(), models.TaskRequest{Type: "collect_credits", Prompt: "list credits"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if id != "t-42" {
				t.Errorf("expected task id t-42, got %s", id)
			}
		})

		t.Run("fails without task_id", func(t *testing.T) {
			a := newTestAgent(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			})

			_, err := a.CreateTask(context.Background(), models.TaskRequest{Type: "collect_credits"})
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("includes error detail on rejection", func(t *testing.T) {
			a := newTestAgent(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail": "invalid api key"}`))
			})

			_, err := a.CreateTask(context.Background(), models.TaskRequest{Type: "collect_credits"})
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "invalid api key") {
				t.Errorf("expected status and detail in %q", err.Error())
			}
		})
	})

	t.Run("GetTask", func(t *testing.T) {
		t.Run("returns status and result", func(t *testing.T) {
			a := newTestAgent(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/tasks/t-42" {
					t.Errorf("expected path /tasks/t-42, got %s", r.URL.Path)
				}
				w.Write([]byte(`{"status": "COMPLETED", "result": [{"rank": 1}]}`))
			})

			task, err := a.GetTask(context.Background(), "t-42")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if task.ID != "t-42" {
				t.Errorf("expected id t-42, got %s", task.ID)
			}
			if task.Status != models.TaskCompleted {
				t.Errorf("expected completed status, got %s", task.Status)
			}
			if string(task.Result) != `[{"rank": 1}]` {
				t.Errorf("unexpected result %s", task.Result)
			}
		})

		t.Run("returns remote error message", func(t *testing.T) {
			a := newTestAgent(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status": "failed", "error": "agent crashed"}`))
			})

			task, err := a.GetTask(context.Background(), "t-1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if task.Status != models.TaskFailed || task.Error != "agent crashed" {
				t.Errorf("unexpected task %+v", task)
			}
		})

		t.Run("escapes the task id", func(t *testing.T) {
			a := newTestAgent(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.EscapedPath() != "/tasks/a%2Fb" {
					t.Errorf("expected escaped path, got %s", r.URL.EscapedPath())
				}
				w.Write([]byte(`{"status": "pending"}`))
			})

			if _, err := a.GetTask(context.Background(), "a/b"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("fails on server error", func(t *testing.T) {
			a := newTestAgent(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error": {"message": "boom"}}`))
			})

			_, err := a.GetTask(context.Background(), "t-1")
			if !errors.Is(err, shared.ErrAPIRequest) || !strings.Contains(err.Error(), "boom") {
				t.Fatalf("expected ErrAPIRequest with detail, got %v", err)
			}
		})
	})
}

func TestAgentClientTransport(t *testing.T) {
	t.Run("transport failure wraps ErrAPIRequest", func(t *testing.T) {
		client := NewAgentClient(AgentOpts{
			BaseURL:    "http://agent.test",
			APIKey:     "secret",
			HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))},
		})

		_, err := client.GetTask(context.Background(), "t-1")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if !strings.Contains(err.Error(), "connection refused") {
			t.Errorf("expected cause in %q", err.Error())
		}
	})

	t.Run("body read failure", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
		client := NewAgentClient(AgentOpts{
			BaseURL:    "http://agent.test",
			APIKey:     "secret",
			HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)},
		})

		_, err := client.GetTask(context.Background(), "t-1")
		if err == nil || !strings.Contains(err.Error(), "failed to read response") {
			t.Fatalf("expected read error, got %v", err)
		}
	})
}

func TestErrorDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail", `{"detail": "nope"}`, ": nope"},
		{"error string", `{"error": "bad"}`, ": bad"},
		{"error object", `{"error": {"message": "quota"}}`, ": quota"},
		{"message", `{"message": "hi"}`, ": hi"},
		{"empty object", `{}`, ""},
		{"not json", `<html>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorDetail([]byte(tt.body)); got != tt.want {
				t.Errorf("errorDetail(%s) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}
