// Package main provides the dupe-checker command.
//
// dupe-checker reads a CSV inventory of media files (Name, Path, Size),
// keeps every record that shares a size or a case-insensitive name with
// another record, probes each duplicate's duration with ffprobe and, on
// request, grabs a midpoint frame with ffmpeg as a 240x135 preview.
//
// # Commands
//
//   - serve: Runs the review server. The import and preview pipelines run in
//     the background and stream their progress to browsers over /api/ws.
//   - scan <inventory.csv>: Runs the import headlessly and prints the
//     duplicate table. --previews also generates thumbnails and
//     --thumbs-dir writes them as JPEG files.
//   - version: Prints build information.
//
// The persistent --log-level flag overrides LOG_LEVEL.
//
// # Server Lifecycle
//
//  1. Configuration Loading: CONFIG_FILE (TOML) then environment variables
//  2. Instance Lock: one server per runtime directory
//  3. Media Tools: locates ffmpeg and ffprobe and logs their versions
//  4. View: a single goroutine applies pipeline events to the view model and
//     fans them out to websocket clients
//  5. HTTP Server Setup: routes, access log and request metrics
//  6. Graceful Shutdown: SIGINT/SIGTERM cancels both pipelines, aborts
//     in-flight ffmpeg calls, closes websocket clients and stops the servers
//
// # HTTP Server
//
//  1. Main Server (default port 8080):
//     - POST /api/import, /api/import/cancel
//     - POST /api/previews, /api/previews/cancel
//     - GET /api/status, /api/rows, /api/rows/{index}/thumbnail
//     - POST /api/rows/{index}/reveal
//     - GET /api/ws (live view)
//     - GET /health, /livez, /readyz, /version
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//     - Health check endpoint (/health)
//
// See package startup for the configuration keys.
package main
