// Package services implements the pipeline's external collaborators over HTTP.
//
// # Interfaces
//
//   - [ChartSource] : where chart entries come from
//   - [TaskAPI] : the remote agent that runs the bulk credits job
//   - [SearchProvider] : where candidate videos come from
//
// Stages in the tasks package depend only on these interfaces, so tests substitute
// scripted fakes from internal/testing.
//
// # Chart
//
// [HTMLChartSource] downloads a page and reads one entry per table row with goquery,
// using CSS selectors from configuration. Rows without a numeric rank (headers, ads) are skipped.
//
// # Agent Task API
//
// [AgentClient] speaks the task protocol:
//
//	POST /tasks       {type, prompt, parameters} -> {task_id}
//	GET  /tasks/{id}  -> {status, result?, error?}
//
// Requests carry a bearer token through an [oauth2.StaticTokenSource] transport and every
// submission carries a fresh Idempotency-Key.
//
// # YouTube Search
//
// [YouTubeSearch] calls the Data API v3 search endpoint restricted to videos in one category,
// relevance ordered and capped at max_results. HTML entities in titles are unescaped.
//
// # Error Handling
//
// Transport and non-2xx failures wrap [shared.ErrAPIRequest]; the API's own error message is
// included when the body carries one.
package services
