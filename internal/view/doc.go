// Package view holds the presentation state of the duplicate grid.
//
// A single goroutine running [Run] drains the pipeline event queue and
// applies each event to the [Model]. When a [Hub] is attached, every applied
// event is also sent to connected websocket clients, which receive a full
// snapshot when they connect. Thumbnail bytes stay in the pipeline session;
// rows only carry a flag and clients fetch the image over HTTP.
package view
