// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// [LoadConfig] starts from [DefaultConfig], decodes the TOML file named by
// CONFIG_FILE over it when set, then applies environment variables, which
// win over both. Unknown keys in the file are an error. Invalid numeric or
// duration values fall back to the default with a warning.
//
//   - CONFIG_FILE: Optional TOML file with the keys below in snake_case
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - FFMPEG_PATH: ffmpeg binary (default: next to the executable, then $PATH)
//   - FFPROBE_PATH: ffprobe binary (default: next to the executable, then $PATH)
//   - PROBE_TIMEOUT: Per-file ffprobe timeout as Go duration (default: 30s)
//   - EXTRACT_TIMEOUT: Per-file frame extraction timeout (default: 30s)
//   - THUMBNAIL_WIDTH / THUMBNAIL_HEIGHT: Preview box size (default: 240x135)
//   - MATCH_EMPTY_NAMES: Let empty names match each other (default: false)
//   - RUNTIME_DIR: Directory for the instance lock (default: $TMPDIR/dupe-checker)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_THUMBNAILS: Log thumbnail requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Instance Lock
//
// [AcquireLock] takes a non-blocking file lock so that only one server runs
// per runtime directory.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
//   - [LogMediaTools]: ffmpeg and ffprobe availability
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
package startup
