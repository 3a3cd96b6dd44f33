// Package episodes pairs subtitle files with downloaded videos by episode
// number and renames each subtitle to its video's base name.
//
// Release groups number episodes inconsistently, so matching is a
// best-effort heuristic: an ordered list of Strategy functions is tried on
// every filename and the first one that yields a number wins. Files that
// cannot be numbered are reported and skipped; they never abort a batch.
//
// Filenames are NFC-normalized before matching so that names written by
// different tools compare equal.
package episodes
