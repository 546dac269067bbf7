package snapshots

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/desertthunder/hitlist/internal/models"
)

// MemoryStore implements [Store] in memory. Snapshots are stored encoded so callers
// cannot mutate what was written.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[models.SnapshotKind]map[string][]byte
	latest map[models.SnapshotKind][]byte
	now    func() time.Time
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[models.SnapshotKind]map[string][]byte),
		latest: make(map[models.SnapshotKind][]byte),
		now:    time.Now,
	}
}

// WithClock replaces the clock used to timestamp snapshots.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Write(kind models.SnapshotKind, snap *models.Snapshot) (string, error) {
	if err := checkKind(kind); err != nil {
		return "", err
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = s.now().UTC()
	}

	id := SnapshotID(kind, snap.Timestamp)
	snap.ID = id
	snap.Kind = kind

	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.byID[kind] == nil {
		s.byID[kind] = make(map[string][]byte)
	}
	s.byID[kind][id] = data
	s.latest[kind] = data

	return id, nil
}

func (s *MemoryStore) ReadLatest(kind models.SnapshotKind) (*models.Snapshot, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, ok := s.latest[kind]
	s.mu.RUnlock()

	if !ok {
		return nil, notFound(kind, "latest")
	}
	return decode(kind, data)
}

func (s *MemoryStore) Read(kind models.SnapshotKind, id string) (*models.Snapshot, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, ok := s.byID[kind][id]
	s.mu.RUnlock()

	if !ok {
		return nil, notFound(kind, id)
	}
	return decode(kind, data)
}

func (s *MemoryStore) List(kind models.SnapshotKind) ([]string, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.byID[kind]))
	for id := range s.byID[kind] {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

func decode(kind models.SnapshotKind, data []byte) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode %s snapshot: %w", kind, err)
	}
	snap.Kind = kind
	snap.ID = SnapshotID(kind, snap.Timestamp)
	return &snap, nil
}
