package magnet

import (
	"strings"

	"github.com/anacrolix/torrent/metainfo"
)

// Info holds the decoded parts of a magnet URI.
type Info struct {
	InfoHash    string
	DisplayName string
	Trackers    int
}

// Describe decodes uri. Magnet links are dispatched as opaque strings, so a
// URI that fails to decode is still usable; ok reports whether decoding
// succeeded.
func Describe(uri string) (Info, bool) {
	m, err := metainfo.ParseMagnetUri(strings.TrimSpace(uri))
	if err != nil {
		return Info{}, false
	}
	return Info{
		InfoHash:    m.InfoHash.HexString(),
		DisplayName: m.DisplayName,
		Trackers:    len(m.Trackers),
	}, true
}

// Label returns a short human label for uri: its display name when present,
// otherwise its info hash, otherwise a truncated form of the URI itself.
func Label(uri string) string {
	if info, ok := Describe(uri); ok {
		if info.DisplayName != "" {
			return info.DisplayName
		}
		return info.InfoHash
	}
	const limit = 60
	runes := 0
	for i := range uri {
		if runes == limit {
			return uri[:i] + "..."
		}
		runes++
	}
	return uri
}
