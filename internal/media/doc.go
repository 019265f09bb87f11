// Package media wraps the external tools used to enrich duplicates.
//
//   - [FFprobe] implements [Prober]: it reports a container duration in seconds.
//   - [FFmpegExtractor] implements [Extractor]: it seeks into a file and
//     decodes a single frame.
//   - [StillExtractor] decodes image files directly and falls back to
//     another [Extractor] for video and for images Go cannot decode.
//   - [Thumbnailer] resizes a frame to the fixed preview size and encodes it
//     as JPEG.
//
// Calls block for as long as the external process runs and must only be made
// from background workers. Binaries placed next to the executable win over
// the ones found in $PATH, see [LocateBinaries].
package media
