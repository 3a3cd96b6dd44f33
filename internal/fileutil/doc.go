// Package fileutil holds the small filesystem helpers shared by the pipeline
// stages: extension-filtered directory listings, size snapshots and moves
// that survive crossing filesystems.
package fileutil
