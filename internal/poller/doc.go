// Package poller decides when a torrent download directory has finished
// filling.
//
// A Tracker consumes size snapshots and moves between three states:
// waiting for files, sizes changing, and stable. A directory is stable once
// the same non-empty set of media files with the same sizes has been seen on
// StableChecks consecutive comparisons with no partial-download markers
// present. The first snapshot has nothing to compare against, so a threshold
// of 3 needs four identical snapshots.
//
// Poller drives a Tracker on a fixed interval until the directory is stable
// or the context is cancelled. Cancellation is not an error: the caller is
// expected to continue optimistically.
package poller
