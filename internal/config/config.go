package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains state and log directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Scrape contains configuration for fetching torrent-index pages.
type Scrape struct {
	TimeoutSeconds int      `toml:"timeout_seconds"`
	UserAgent      string   `toml:"user_agent"`
	ExcludeMarkers []string `toml:"exclude_markers"`
}

// Torrent contains configuration for the external torrent client.
type Torrent struct {
	Binary    string   `toml:"binary"`
	ExtraArgs []string `toml:"extra_args"`
}

// Subtitles contains configuration for the cloud-folder subtitle download tool.
type Subtitles struct {
	Binary    string `toml:"binary"`
	Subdir    string `toml:"subdir"`
	Extension string `toml:"extension"`
}

// Media contains file conventions for downloaded episodes.
type Media struct {
	VideoExtension   string `toml:"video_extension"`
	PartialExtension string `toml:"partial_extension"`
}

// Poll contains configuration for the download completion poller.
type Poll struct {
	IntervalSeconds int `toml:"interval_seconds"`
	StableChecks    int `toml:"stable_checks"`
	SettleSeconds   int `toml:"settle_seconds"`
}

// Matcher contains configuration for episode matching.
type Matcher struct {
	// ReleaseTag is the bracketed group tag that opens release filenames,
	// e.g. "One Pace" in "[One Pace][1-5] Jaya 04 [480p].mkv".
	ReleaseTag string `toml:"release_tag"`
}

// Folders contains configuration for arc folder naming.
type Folders struct {
	AutoPrefix bool `toml:"auto_prefix"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for onepace.
//
// Configuration sections by subsystem:
//   - Paths: state directory (job registry) and log directory
//   - Scrape: torrent-index page fetching and row exclusion markers
//   - Torrent: external torrent client invocation
//   - Subtitles: external cloud-folder download tool and subtitle layout
//   - Media: video and partial-download file extensions
//   - Poll: completion poller cadence and stability threshold
//   - Matcher: release filename conventions
//   - Folders: arc folder naming
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Scrape    Scrape    `toml:"scrape"`
	Torrent   Torrent   `toml:"torrent"`
	Subtitles Subtitles `toml:"subtitles"`
	Media     Media     `toml:"media"`
	Poll      Poll      `toml:"poll"`
	Matcher   Matcher   `toml:"matcher"`
	Folders   Folders   `toml:"folders"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("onepace.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// JobsDBPath returns the location of the download job registry.
func (c *Config) JobsDBPath() string {
	return filepath.Join(c.Paths.StateDir, "jobs.db")
}

// LogFilePath returns the location of the persistent log file.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "onepace.log")
}

// SubtitleDir returns the directory fetched subtitles land in for a target folder.
func (c *Config) SubtitleDir(target string) string {
	return filepath.Join(target, c.Subtitles.Subdir)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
