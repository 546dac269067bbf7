package snapshots

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/desertthunder/hitlist/internal/models"
	"github.com/desertthunder/hitlist/internal/shared"
)

const latestFile = "latest.json"

// FileStore implements [Store] with JSON files.
//
// Layout: {dir}/{kind}/{kind}-{date}.json for each period and {dir}/{kind}/latest.json for the alias.
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore creates a [FileStore] rooted at dir. Directories are created on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

// WithClock replaces the clock used to timestamp snapshots.
func (s *FileStore) WithClock(now func() time.Time) *FileStore {
	s.now = now
	return s
}

// Dir returns the root directory of the store.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) kindDir(kind models.SnapshotKind) string {
	return filepath.Join(s.dir, string(kind))
}

// Write persists the period snapshot first and then overwrites the latest alias.
func (s *FileStore) Write(kind models.SnapshotKind, snap *models.Snapshot) (string, error) {
	if err := checkKind(kind); err != nil {
		return "", err
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = s.now().UTC()
	}

	id := SnapshotID(kind, snap.Timestamp)
	snap.ID = id
	snap.Kind = kind

	data, err := shared.MarshalJSON(snap, true)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot %s: %w", id, err)
	}

	dir := s.kindDir(kind)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, id+".json"), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot %s: %w", id, err)
	}

	if err := os.WriteFile(filepath.Join(dir, latestFile), data, 0644); err != nil {
		return "", fmt.Errorf("failed to update latest %s alias: %w", kind, err)
	}

	return id, nil
}

// ReadLatest reads {dir}/{kind}/latest.json.
func (s *FileStore) ReadLatest(kind models.SnapshotKind) (*models.Snapshot, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	return s.readFile(kind, filepath.Join(s.kindDir(kind), latestFile), "latest")
}

// Read reads the snapshot with the given ID.
func (s *FileStore) Read(kind models.SnapshotKind, id string) (*models.Snapshot, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("%w: snapshot id %q", shared.ErrInvalidArgument, id)
	}
	return s.readFile(kind, filepath.Join(s.kindDir(kind), id+".json"), id)
}

// List returns snapshot IDs of kind sorted newest first. A kind never written yields an empty list.
func (s *FileStore) List(kind models.SnapshotKind) ([]string, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.kindDir(kind))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s snapshots: %w", kind, err)
	}

	prefix := string(kind) + "-"
	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}

	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

func (s *FileStore) readFile(kind models.SnapshotKind, path, what string) (*models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(kind, what)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s snapshot: %w", kind, err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrSchema, path, err)
	}
	snap.Kind = kind
	snap.ID = SnapshotID(kind, snap.Timestamp)

	return &snap, nil
}
