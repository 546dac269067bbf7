// Package tasks runs the chart enrichment pipeline with non-blocking progress reporting.
//
// # Stages
//
// [Pipeline] executes four stages in order. Each reads the latest snapshot written by the
// previous stage and writes its own only when it succeeds:
//
//  1. [Pipeline.Chart] : fetch chart entries from a [services.ChartSource]
//     - Truncates to the configured limit and requires ranks 1..N ([ValidateChart])
//
//  2. [Pipeline.Credits] : collect album and production credits from the remote agent
//     - [CreditsTaskClient.Submit] sends one task for the whole chart
//     - [CreditsTaskClient.AwaitCompletion] sleeps then polls until completed, failed or out of attempts
//     - [CreditsTaskClient.ValidateAndClean] drops malformed items and credit lines ([CleanReport])
//
//  3. [Pipeline.Videos] : attach a video to each credited entry
//     - [VideoMatcher.EnrichAll] searches sequentially, pausing a fixed delay after each search returns
//     - [SelectBest] picks the highest [Score]; ties keep the earliest candidate
//
//  4. [Pipeline.Render] : build a [formatter.Page] and hand it to a [PageRenderer]
//
// [Pipeline.Run] chains the stages from a given [Stage]. Failures are returned as a [StageError].
//
// # Progress Reporting
//
// All stages accept an optional channel of [ProgressUpdate] values.
// Updates use select with default to prevent blocking.
package tasks
