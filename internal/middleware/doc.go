// Package middleware provides HTTP middleware for the duplicate checker.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics with bounded path labels
//   - Configurable filtering for thumbnails and health checks
//
// Both wrappers support connection hijacking so the websocket stream passes
// through them.
package middleware
