package snapshots

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/hitlist/internal/models"
	"github.com/desertthunder/hitlist/internal/shared"
)

// PeriodLayout formats the period part of a snapshot ID.
const PeriodLayout = "2006-01-02"

// Store defines persistence for stage snapshots.
type Store interface {
	// Write persists snap as the current period's snapshot of kind and points the latest alias at it.
	// A zero Timestamp is filled from the store's clock. Returns the snapshot ID.
	Write(kind models.SnapshotKind, snap *models.Snapshot) (string, error)

	// ReadLatest returns the most recently written snapshot of kind.
	ReadLatest(kind models.SnapshotKind) (*models.Snapshot, error)

	// Read returns a specific snapshot by ID.
	Read(kind models.SnapshotKind, id string) (*models.Snapshot, error)

	// List returns the IDs of all stored snapshots of kind, newest first.
	List(kind models.SnapshotKind) ([]string, error)
}

// SnapshotID derives the period-stamped identifier for a snapshot of kind taken at ts.
func SnapshotID(kind models.SnapshotKind, ts time.Time) string {
	return fmt.Sprintf("%s-%s", kind, ts.UTC().Format(PeriodLayout))
}

// Save marshals entries into a snapshot of kind tagged with source and writes it to store.
func Save[T any](store Store, kind models.SnapshotKind, source string, entries []T) (string, error) {
	if entries == nil {
		entries = []T{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s snapshot: %w", kind, err)
	}

	return store.Write(kind, &models.Snapshot{
		Source: source,
		Range:  len(entries),
		Data:   data,
	})
}

// Load reads the latest snapshot of kind from store and decodes its entries.
func Load[T any](store Store, kind models.SnapshotKind) ([]T, *models.Snapshot, error) {
	snap, err := store.ReadLatest(kind)
	if err != nil {
		return nil, nil, err
	}

	var entries []T
	if err := json.Unmarshal(snap.Data, &entries); err != nil {
		return nil, snap, fmt.Errorf("%w: %s snapshot %s: %v", shared.ErrSchema, kind, snap.ID, err)
	}

	return entries, snap, nil
}

func checkKind(kind models.SnapshotKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown snapshot kind %q", shared.ErrInvalidArgument, kind)
	}
	return nil
}

func notFound(kind models.SnapshotKind, what string) error {
	return fmt.Errorf("%w: no %s snapshot %s", shared.ErrSnapshotNotFound, kind, what)
}
