// Package server serves the rendered chart page and the stored snapshots over HTTP for local preview.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering. Patterns may use
// path wildcards, read with [http.Request.PathValue].
//
// # Routes
//
//	GET /                              rendered site (index.html, chart.md, chart.csv, chart.json)
//	GET /api/snapshots/{kind}          snapshot IDs of kind, newest first
//	GET /api/snapshots/{kind}/latest   latest snapshot of kind
//	GET /api/snapshots/{kind}/{id}     a specific snapshot
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
