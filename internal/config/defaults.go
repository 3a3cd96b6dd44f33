package config

const (
	defaultConfigPath        = "~/.config/onepace/config.toml"
	defaultStateDir          = "~/.local/share/onepace"
	defaultLogDir            = "~/.local/share/onepace/logs"
	defaultScrapeTimeout     = 30
	defaultUserAgent         = "onepace/dev"
	defaultTorrentBinary     = "transmission-cli"
	defaultSubtitleBinary    = "gdown"
	defaultSubtitleSubdir    = "subtitles"
	defaultSubtitleExtension = ".ass"
	defaultVideoExtension    = ".mkv"
	defaultPartialExtension  = ".part"
	defaultPollInterval      = 5
	defaultStableChecks      = 3
	defaultSettleSeconds     = 2
	defaultReleaseTag        = "One Pace"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// DefaultExcludeMarkers lists the row substrings that mark alternate releases on
// torrent-index list pages.
var DefaultExcludeMarkers = []string{"Alternate", "G-8"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Scrape: Scrape{
			TimeoutSeconds: defaultScrapeTimeout,
			UserAgent:      defaultUserAgent,
			ExcludeMarkers: append([]string(nil), DefaultExcludeMarkers...),
		},
		Torrent: Torrent{
			Binary: defaultTorrentBinary,
		},
		Subtitles: Subtitles{
			Binary:    defaultSubtitleBinary,
			Subdir:    defaultSubtitleSubdir,
			Extension: defaultSubtitleExtension,
		},
		Media: Media{
			VideoExtension:   defaultVideoExtension,
			PartialExtension: defaultPartialExtension,
		},
		Poll: Poll{
			IntervalSeconds: defaultPollInterval,
			StableChecks:    defaultStableChecks,
			SettleSeconds:   defaultSettleSeconds,
		},
		Matcher: Matcher{
			ReleaseTag: defaultReleaseTag,
		},
		Folders: Folders{
			AutoPrefix: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
