package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/hitlist/internal/models"
	"github.com/desertthunder/hitlist/internal/shared"
	"github.com/desertthunder/hitlist/internal/snapshots"
)

// DefaultAddr is the preview server's listen address when none is given.
const DefaultAddr = "127.0.0.1:3000"

const (
	requestIDHeader = "X-Request-Id"
	shutdownTimeout = 5 * time.Second
)

// SiteHandler serves the files written by the render stage.
type SiteHandler struct {
	files http.Handler
}

// NewSiteHandler serves the contents of dir.
func NewSiteHandler(dir string) *SiteHandler {
	return &SiteHandler{files: http.FileServer(http.Dir(dir))}
}

func (h *SiteHandler) Routes() []string { return []string{"/"} }

func (h *SiteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.files.ServeHTTP(w, r)
}

// SnapshotHandler exposes a [snapshots.Store] as read-only JSON.
type SnapshotHandler struct {
	store snapshots.Store
}

// NewSnapshotHandler creates a handler reading from store.
func NewSnapshotHandler(store snapshots.Store) *SnapshotHandler {
	return &SnapshotHandler{store: store}
}

func (h *SnapshotHandler) Routes() []string {
	return []string{"/api/snapshots/{kind}", "/api/snapshots/{kind}/{id}"}
}

type snapshotResponse struct {
	ID   string              `json:"id"`
	Kind models.SnapshotKind `json:"kind"`
	*models.Snapshot
}

func (h *SnapshotHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	kind := models.SnapshotKind(r.PathValue("kind"))
	if !kind.Valid() {
		writeError(w, fmt.Errorf("%w: unknown snapshot kind %q", shared.ErrInvalidArgument, kind))
		return
	}

	id := r.PathValue("id")
	if id == "" {
		ids, err := h.store.List(kind)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ids)
		return
	}

	var snap *models.Snapshot
	var err error
	if id == "latest" {
		snap, err = h.store.ReadLatest(kind)
	} else {
		snap, err = h.store.Read(kind, id)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshotResponse{ID: snap.ID, Kind: kind, Snapshot: snap})
}

// RequestLogger logs one line per request and tags the response with a request ID.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = shared.GenerateID()
			}
			w.Header().Set(requestIDHeader, id)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
				"request_id", id,
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// PreviewOpts configures [NewPreviewServer].
type PreviewOpts struct {
	Addr    string
	SiteDir string
	Store   snapshots.Store
	Logger  *log.Logger
}

// NewPreviewServer builds an [http.Server] serving the rendered site and snapshot API.
func NewPreviewServer(opts PreviewOpts) *http.Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	router := NewBasicRouter()
	router.Use(RequestLogger(opts.Logger))
	router.Handler(NewSiteHandler(opts.SiteDir))
	if opts.Store != nil {
		router.Handler(NewSnapshotHandler(opts.Store))
	}

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Serve runs srv until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, srv *http.Server, logger *log.Logger) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("preview server listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%w: preview server: %v", shared.ErrServiceUnavailable, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down preview server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down preview server: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, shared.ErrSnapshotNotFound):
		status = http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidArgument):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
