// Package verify audits a directory for videos lacking a same-named
// subtitle. It never modifies the directory.
package verify

import (
	"fmt"
	"path/filepath"

	"onepace/internal/fileutil"
	"onepace/internal/services"
)

// Entry is the audit result for one video.
type Entry struct {
	Video    string
	Subtitle string
	Present  bool
}

// Report is the result of auditing one directory.
type Report struct {
	Dir     string
	Entries []Entry
	Matched int
	Missing int
}

// OK reports whether every video has its subtitle.
func (r Report) OK() bool {
	return len(r.Entries) > 0 && r.Missing == 0
}

// MissingVideos returns the videos without a subtitle.
func (r Report) MissingVideos() []string {
	var out []string
	for _, e := range r.Entries {
		if !e.Present {
			out = append(out, e.Video)
		}
	}
	return out
}

// Dir checks every video in dir for a subtitle with the same base name and
// subtitleExt alongside it. A missing directory or one without videos is a
// missing-input error.
func Dir(dir, videoExt, subtitleExt string) (Report, error) {
	if !fileutil.IsDir(dir) {
		return Report{}, services.Wrap(services.ErrMissingInput, "verify", "scan", fmt.Sprintf("directory not found: %s", dir), nil)
	}
	videos, err := fileutil.ListByExt(dir, videoExt)
	if err != nil {
		return Report{}, services.Wrap(services.ErrMissingInput, "verify", "list videos", dir, err)
	}
	if len(videos) == 0 {
		return Report{}, services.Wrap(services.ErrMissingInput, "verify", "scan", fmt.Sprintf("no %s files in %s", videoExt, dir), nil)
	}

	report := Report{Dir: dir, Entries: make([]Entry, 0, len(videos))}
	for _, video := range videos {
		subtitle := fileutil.TrimExt(video) + subtitleExt
		present := fileExists(filepath.Join(dir, subtitle))
		report.Entries = append(report.Entries, Entry{Video: video, Subtitle: subtitle, Present: present})
		if present {
			report.Matched++
		} else {
			report.Missing++
		}
	}
	return report, nil
}
