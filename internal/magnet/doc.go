// Package magnet extracts magnet URIs from torrent-index pages.
//
// Extraction tries a list-page strategy first (table rows, with rows tagged as
// alternate releases skipped) and falls back to scanning the whole document
// for magnet anchors, which covers single-torrent detail pages. Fetch failures
// never surface as errors from Scrape: an unreachable page simply yields no
// links and the caller reports that nothing was found.
package magnet
