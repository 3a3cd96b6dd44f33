package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScrape()
	c.normalizeTorrent()
	c.normalizeSubtitles()
	c.normalizeMedia()
	c.normalizePoll()
	c.Matcher.ReleaseTag = strings.TrimSpace(c.Matcher.ReleaseTag)
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("ONEPACE_STATE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.StateDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScrape() {
	if c.Scrape.TimeoutSeconds <= 0 {
		c.Scrape.TimeoutSeconds = defaultScrapeTimeout
	}
	c.Scrape.UserAgent = strings.TrimSpace(c.Scrape.UserAgent)
	if c.Scrape.UserAgent == "" {
		c.Scrape.UserAgent = defaultUserAgent
	}
	markers := make([]string, 0, len(c.Scrape.ExcludeMarkers))
	seen := make(map[string]struct{}, len(c.Scrape.ExcludeMarkers))
	for _, marker := range c.Scrape.ExcludeMarkers {
		// Markers are matched case-sensitively against raw row HTML.
		trimmed := strings.TrimSpace(marker)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		markers = append(markers, trimmed)
	}
	c.Scrape.ExcludeMarkers = markers
}

func (c *Config) normalizeTorrent() {
	if value, ok := os.LookupEnv("ONEPACE_TORRENT_BINARY"); ok && strings.TrimSpace(value) != "" {
		c.Torrent.Binary = value
	}
	c.Torrent.Binary = strings.TrimSpace(c.Torrent.Binary)
	if c.Torrent.Binary == "" {
		c.Torrent.Binary = defaultTorrentBinary
	}
	args := c.Torrent.ExtraArgs[:0]
	for _, arg := range c.Torrent.ExtraArgs {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			args = append(args, trimmed)
		}
	}
	c.Torrent.ExtraArgs = args
}

func (c *Config) normalizeSubtitles() {
	if value, ok := os.LookupEnv("ONEPACE_GDOWN_BINARY"); ok && strings.TrimSpace(value) != "" {
		c.Subtitles.Binary = value
	}
	c.Subtitles.Binary = strings.TrimSpace(c.Subtitles.Binary)
	if c.Subtitles.Binary == "" {
		c.Subtitles.Binary = defaultSubtitleBinary
	}
	c.Subtitles.Subdir = strings.Trim(strings.TrimSpace(c.Subtitles.Subdir), "/")
	if c.Subtitles.Subdir == "" {
		c.Subtitles.Subdir = defaultSubtitleSubdir
	}
	c.Subtitles.Extension = normalizeExtension(c.Subtitles.Extension, defaultSubtitleExtension)
}

func (c *Config) normalizeMedia() {
	c.Media.VideoExtension = normalizeExtension(c.Media.VideoExtension, defaultVideoExtension)
	c.Media.PartialExtension = normalizeExtension(c.Media.PartialExtension, defaultPartialExtension)
}

func (c *Config) normalizePoll() {
	if c.Poll.IntervalSeconds <= 0 {
		c.Poll.IntervalSeconds = defaultPollInterval
	}
	if c.Poll.StableChecks <= 0 {
		c.Poll.StableChecks = defaultStableChecks
	}
	if c.Poll.SettleSeconds < 0 {
		c.Poll.SettleSeconds = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	switch c.Logging.Level {
	case "":
		c.Logging.Level = defaultLogLevel
	case "warning":
		c.Logging.Level = "warn"
	}
}

func normalizeExtension(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	if !strings.HasPrefix(value, ".") {
		value = "." + value
	}
	return value
}
