// Package logging provides a simple leveled logger for dupe-checker.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (per-record probe and extract failures)
//   - INFO: General operational messages (pipeline phases, startup)
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The level comes from DEBUG or LOG_LEVEL and can be overridden with
// [SetLevel], which the CLI uses for its --log-level flag.
package logging
