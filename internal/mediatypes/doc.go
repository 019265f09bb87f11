// Package mediatypes classifies files by extension.
//
// It is dependency-free so the view and the pipeline can both import it
// without cycles. The kind is shown in the duplicate grid and used as a
// metric label; it never decides whether a record is probed or previewed.
//
//	kind := mediatypes.KindOf("Holiday.MKV") // mediatypes.FileTypeVideo
package mediatypes
