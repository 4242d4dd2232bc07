// Package publish runs the ingestion pipeline: relocate inbox drops into the
// working directories, publish each staged file to the object store with its
// variants and metadata record, tear the working directories down, and report
// a summary.
//
// Files are processed strictly in sequence. A failure for one file is logged
// and recorded, and the run moves on; only setup, relocation, and cleanup
// failures abort a run.
package publish
