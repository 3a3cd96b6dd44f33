// Package dispatch launches one detached torrent-client process per magnet
// link.
//
// Launches never block on the download. Each child runs in its own process
// group so an interrupt delivered to onepace does not reach it, and its output
// is discarded. Every launch attempt is written to the job registry; a reaper
// goroutine per launched job waits for the child and records its exit, which
// callers can observe through Handle.Done.
package dispatch
