// Package snapshots persists pipeline stage outputs.
//
// Every stage writes a [models.Snapshot] of its own [models.SnapshotKind] and reads only the
// latest snapshot of the kind before it. Snapshot IDs are derived from the period (the UTC
// calendar date of the snapshot timestamp), so rerunning a stage on the same day overwrites
// that day's snapshot and the latest alias instead of appending.
//
// # Stores
//
//   - [FileStore] : JSON files under a data directory, one directory per kind
//   - [MemoryStore] : in-process maps, used by tests and dry runs
//
// The latest alias is a plain overwrite. Stages run strictly one after another, so a
// reader never observes an alias mid-write.
//
// # Typed access
//
// [Save] and [Load] convert between typed entry slices and the raw snapshot data.
// A missing alias yields [shared.ErrSnapshotNotFound]; undecodable data yields [shared.ErrSchema].
package snapshots
