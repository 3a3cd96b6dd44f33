package episodes

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"onepace/internal/config"
	"onepace/internal/fileutil"
	"onepace/internal/logging"
	"onepace/internal/services"
)

// Settings holds the file conventions the matcher works with.
type Settings struct {
	VideoExt    string
	SubtitleExt string
	ReleaseTag  string
}

// SettingsFromConfig derives matcher settings from the loaded configuration.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		VideoExt:    cfg.Media.VideoExtension,
		SubtitleExt: cfg.Subtitles.Extension,
		ReleaseTag:  cfg.Matcher.ReleaseTag,
	}
}

// Option configures the matcher.
type Option func(*Matcher)

// WithStrategies replaces the episode number strategies.
func WithStrategies(strategies ...Strategy) Option {
	return func(m *Matcher) {
		if len(strategies) > 0 {
			m.strategies = strategies
		}
	}
}

// WithDryRun reports the renames without performing them.
func WithDryRun(dryRun bool) Option {
	return func(m *Matcher) { m.dryRun = dryRun }
}

// WithLogger sets the matcher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) { m.logger = logging.NewComponentLogger(logger, "matcher") }
}

// Matcher renames subtitles to their video's base name.
type Matcher struct {
	settings   Settings
	strategies []Strategy
	dryRun     bool
	logger     *slog.Logger
}

// New constructs a Matcher.
func New(settings Settings, opts ...Option) *Matcher {
	m := &Matcher{
		settings:   settings,
		strategies: DefaultStrategies,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Pair is the outcome for one video.
type Pair struct {
	Episode  int
	Video    string
	Subtitle string
	// Target is the subtitle's new name inside the video directory.
	Target  string
	Renamed bool
	Err     error
}

// Duplicate records a subtitle that lost an episode-number collision.
type Duplicate struct {
	Episode  int
	Kept     string
	Replaced string
}

// Report summarizes one matching run.
type Report struct {
	Arc       string
	Videos    int
	Subtitles int
	Matched   int
	DryRun    bool
	Pairs     []Pair
	// Unmatched lists videos with no episode number or no subtitle.
	Unmatched []string
	// Unnumbered lists subtitles no strategy could number.
	Unnumbered []string
	Duplicates []Duplicate
}

// Complete reports whether every video was matched.
func (r Report) Complete() bool {
	return r.Videos > 0 && r.Matched == r.Videos
}

// Match pairs the videos in videoDir with the subtitles in subtitleDir and
// renames each matched subtitle into videoDir. Rename failures are recorded
// per pair and do not stop the batch.
func (m *Matcher) Match(ctx context.Context, videoDir, subtitleDir string) (Report, error) {
	logger := logging.WithContext(ctx, m.logger)
	if subtitleDir == "" {
		subtitleDir = videoDir
	}
	for _, dir := range []string{videoDir, subtitleDir} {
		if !fileutil.IsDir(dir) {
			return Report{}, services.Wrap(services.ErrMissingInput, "match", "scan", fmt.Sprintf("directory not found: %s", dir), nil)
		}
	}

	videos, err := fileutil.ListByExt(videoDir, m.settings.VideoExt)
	if err != nil {
		return Report{}, services.Wrap(services.ErrMissingInput, "match", "list videos", videoDir, err)
	}
	subtitles, err := fileutil.ListByExt(subtitleDir, m.settings.SubtitleExt)
	if err != nil {
		return Report{}, services.Wrap(services.ErrMissingInput, "match", "list subtitles", subtitleDir, err)
	}
	if len(videos) == 0 {
		return Report{}, services.Wrap(services.ErrMissingInput, "match", "scan", fmt.Sprintf("no %s files in %s", m.settings.VideoExt, videoDir), nil)
	}
	if len(subtitles) == 0 {
		return Report{}, services.Wrap(services.ErrMissingInput, "match", "scan", fmt.Sprintf("no %s files in %s", m.settings.SubtitleExt, subtitleDir), nil)
	}

	report := Report{Videos: len(videos), Subtitles: len(subtitles), DryRun: m.dryRun}
	report.Arc = DetectArc(videos[0], m.settings.ReleaseTag)
	if report.Arc != "" {
		logger.Info("arc detected", logging.String("arc", report.Arc))
	} else {
		logger.Warn("arc name not detected; using generic matching", logging.String("video", videos[0]))
	}

	lookup := make(map[int]string, len(subtitles))
	for _, sub := range subtitles {
		n, ok := Number(sub, report.Arc, m.strategies)
		if !ok {
			report.Unnumbered = append(report.Unnumbered, sub)
			logger.Warn("no episode number in subtitle", logging.String("subtitle", sub))
			continue
		}
		if prev, exists := lookup[n]; exists {
			report.Duplicates = append(report.Duplicates, Duplicate{Episode: n, Kept: sub, Replaced: prev})
			logger.Warn("duplicate subtitle for episode; keeping the later file",
				logging.String(logging.FieldEpisode, FormatNumber(n)),
				logging.String("kept", sub),
				logging.String("dropped", prev),
			)
		}
		lookup[n] = sub
	}

	for _, video := range videos {
		n, ok := Number(video, report.Arc, m.strategies)
		if !ok {
			report.Unmatched = append(report.Unmatched, video)
			logger.Warn("no episode number in video", logging.String("video", video))
			continue
		}
		sub, ok := lookup[n]
		if !ok {
			report.Unmatched = append(report.Unmatched, video)
			logger.Warn("no subtitle for video",
				logging.String(logging.FieldEpisode, FormatNumber(n)),
				logging.String("video", video),
			)
			continue
		}

		pair := Pair{
			Episode:  n,
			Video:    video,
			Subtitle: sub,
			Target:   fileutil.TrimExt(video) + m.settings.SubtitleExt,
		}
		src, dst := filepath.Join(subtitleDir, sub), filepath.Join(videoDir, pair.Target)
		if err := m.rename(src, dst); err != nil {
			pair.Err = err
			report.Pairs = append(report.Pairs, pair)
			logger.Warn("subtitle rename failed",
				logging.String(logging.FieldEpisode, FormatNumber(n)),
				logging.String("subtitle", sub),
				logging.Error(err),
			)
			continue
		}
		pair.Renamed = !m.dryRun && src != dst
		delete(lookup, n)
		report.Matched++
		report.Pairs = append(report.Pairs, pair)
		logger.Info("subtitle matched",
			logging.String(logging.FieldEpisode, FormatNumber(n)),
			logging.String("video", video),
			logging.String("subtitle", sub),
		)
	}

	logger.Info("matching complete",
		logging.Int("matched", report.Matched),
		logging.Int("total", report.Videos),
	)
	return report, nil
}

func (m *Matcher) rename(src, dst string) error {
	if src == dst {
		return nil
	}
	if m.dryRun {
		_, err := os.Stat(src)
		return err
	}
	return fileutil.MoveFile(src, dst)
}
