// Package models defines the records that flow between hitlist pipeline stages.
//
// Each stage narrows or widens the previous stage's record:
//
//   - [ChartEntry] : a ranked (artist, title) pair scraped from the chart source
//   - [CreditedEntry] : a chart entry with album and production [CreditLine] values
//   - [EnrichedEntry] : a credited entry with an optional [VideoMatch]
//
// Stage outputs are persisted as a [Snapshot] of a given [SnapshotKind]. The remote
// credits job is tracked as a [RemoteTask] whose [TaskStatus] is polled to a terminal state.
package models
