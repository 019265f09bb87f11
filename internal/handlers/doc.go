// Package handlers provides HTTP request handlers for the duplicate checker API.
//
// It includes handlers for:
//   - Starting and cancelling the import and preview pipelines
//   - Listing grid rows and serving row thumbnails
//   - Revealing a row's file in the platform file manager
//   - The live websocket stream of grid updates
//   - Health checks, version and metrics
package handlers
