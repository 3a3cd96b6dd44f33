package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := ensurePositiveMap(map[string]int{
		"scrape.timeout_seconds": c.Scrape.TimeoutSeconds,
		"poll.interval_seconds":  c.Poll.IntervalSeconds,
		"poll.stable_checks":     c.Poll.StableChecks,
	}); err != nil {
		return err
	}
	if c.Poll.SettleSeconds < 0 {
		return errors.New("poll.settle_seconds must not be negative")
	}
	if err := c.validateExtensions(); err != nil {
		return err
	}
	if strings.ContainsAny(c.Subtitles.Subdir, `\`) || strings.Contains(c.Subtitles.Subdir, "..") {
		return fmt.Errorf("subtitles.subdir %q must be a plain relative directory name", c.Subtitles.Subdir)
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateExtensions() error {
	if c.Media.VideoExtension == c.Subtitles.Extension {
		return fmt.Errorf("media.video_extension and subtitles.extension must differ (both %q)", c.Media.VideoExtension)
	}
	if c.Media.PartialExtension == c.Media.VideoExtension {
		return fmt.Errorf("media.partial_extension must differ from media.video_extension (both %q)", c.Media.VideoExtension)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
