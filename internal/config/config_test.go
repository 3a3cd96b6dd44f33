package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"onepace/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"ONEPACE_STATE_DIR", "ONEPACE_TORRENT_BINARY", "ONEPACE_GDOWN_BINARY"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "onepace")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.JobsDBPath() != filepath.Join(wantState, "jobs.db") {
		t.Fatalf("unexpected jobs db path: %q", cfg.JobsDBPath())
	}
	if cfg.Torrent.Binary != "transmission-cli" {
		t.Fatalf("unexpected torrent binary: %q", cfg.Torrent.Binary)
	}
	if cfg.Subtitles.Binary != "gdown" {
		t.Fatalf("unexpected subtitle binary: %q", cfg.Subtitles.Binary)
	}
	if cfg.Media.VideoExtension != ".mkv" || cfg.Subtitles.Extension != ".ass" || cfg.Media.PartialExtension != ".part" {
		t.Fatalf("unexpected extensions: %+v %+v", cfg.Media, cfg.Subtitles)
	}
	if cfg.Poll.IntervalSeconds != 5 || cfg.Poll.StableChecks != 3 {
		t.Fatalf("unexpected poll defaults: %+v", cfg.Poll)
	}
	if strings.Join(cfg.Scrape.ExcludeMarkers, ",") != "Alternate,G-8" {
		t.Fatalf("unexpected exclude markers: %v", cfg.Scrape.ExcludeMarkers)
	}
	if !cfg.Folders.AutoPrefix {
		t.Fatal("expected auto prefix enabled by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "onepace.toml")

	type payload struct {
		Scrape struct {
			ExcludeMarkers []string `toml:"exclude_markers"`
		} `toml:"scrape"`
		Media struct {
			VideoExtension string `toml:"video_extension"`
		} `toml:"media"`
		Poll struct {
			StableChecks int `toml:"stable_checks"`
		} `toml:"poll"`
	}
	custom := payload{}
	custom.Scrape.ExcludeMarkers = []string{" Batch ", "Batch", ""}
	custom.Media.VideoExtension = "MP4"
	custom.Poll.StableChecks = 6
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if len(cfg.Scrape.ExcludeMarkers) != 1 || cfg.Scrape.ExcludeMarkers[0] != "Batch" {
		t.Fatalf("expected deduplicated markers, got %v", cfg.Scrape.ExcludeMarkers)
	}
	if cfg.Media.VideoExtension != ".mp4" {
		t.Fatalf("expected normalized extension .mp4, got %q", cfg.Media.VideoExtension)
	}
	if cfg.Poll.StableChecks != 6 {
		t.Fatalf("expected stable checks 6, got %d", cfg.Poll.StableChecks)
	}
}

func TestEnvVarOverridesConfigFileForBinaries(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "onepace.toml")
	contents := "[torrent]\nbinary = \"file-torrent\"\n\n[subtitles]\nbinary = \"file-gdown\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("ONEPACE_TORRENT_BINARY", "env-torrent")
	t.Setenv("ONEPACE_GDOWN_BINARY", "env-gdown")
	stateDir := t.TempDir()
	t.Setenv("ONEPACE_STATE_DIR", stateDir)

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Torrent.Binary != "env-torrent" {
		t.Errorf("expected torrent binary from env, got %q", cfg.Torrent.Binary)
	}
	if cfg.Subtitles.Binary != "env-gdown" {
		t.Errorf("expected gdown binary from env, got %q", cfg.Subtitles.Binary)
	}
	if cfg.Paths.StateDir != stateDir {
		t.Errorf("expected state dir from env, got %q", cfg.Paths.StateDir)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "onepace.toml")
	if err := os.WriteFile(configPath, []byte("[poll]\nintervall = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected parse error for unknown key")
	}
}

func TestValidateRejectsCollidingExtensions(t *testing.T) {
	cfg := config.Default()
	cfg.Subtitles.Extension = cfg.Media.VideoExtension
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for identical extensions")
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "logging.level") {
		t.Fatalf("expected logging.level error, got %v", err)
	}
}

func TestLoadAcceptsWarningLogLevel(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "onepace.toml")
	if err := os.WriteFile(configPath, []byte("[logging]\nlevel = \"WARNING\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load rejected warning level: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected warning to normalize to warn, got %q", cfg.Logging.Level)
	}

	direct := config.Default()
	direct.Logging.Level = "warning"
	if err := direct.Validate(); err != nil {
		t.Fatalf("Validate rejected warning level: %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[poll]") {
		t.Fatalf("sample missing poll section: %s", contents)
	}

	t.Setenv("HOME", t.TempDir())
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}
