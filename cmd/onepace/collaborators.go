package main

import (
	"log/slog"
	"time"

	"onepace/internal/config"
	"onepace/internal/dispatch"
	"onepace/internal/episodes"
	"onepace/internal/jobs"
	"onepace/internal/magnet"
	"onepace/internal/poller"
	"onepace/internal/subfetch"
)

func newScraper(cfg *config.Config, logger *slog.Logger) *magnet.Scraper {
	fetcher := magnet.NewHTTPFetcher(time.Duration(cfg.Scrape.TimeoutSeconds)*time.Second, cfg.Scrape.UserAgent)
	return magnet.NewScraper(fetcher, magnet.NewExtractor(cfg.Scrape.ExcludeMarkers), logger)
}

func newDispatcher(cfg *config.Config, logger *slog.Logger, registry *jobs.Store) (*dispatch.Dispatcher, error) {
	opts := []dispatch.Option{dispatch.WithLogger(logger)}
	if registry != nil {
		opts = append(opts, dispatch.WithRegistry(registry))
	}
	return dispatch.New(cfg.Torrent.Binary, cfg.Torrent.ExtraArgs, opts...)
}

func newSubtitleFetcher(cfg *config.Config, logger *slog.Logger) (*subfetch.Fetcher, error) {
	return subfetch.New(cfg.Subtitles.Binary, cfg.Subtitles.Subdir, cfg.Subtitles.Extension, subfetch.WithLogger(logger))
}

func newPoller(cfg *config.Config, logger *slog.Logger, progress func(poller.Progress)) *poller.Poller {
	opts := []poller.Option{poller.WithLogger(logger)}
	if progress != nil {
		opts = append(opts, poller.WithProgress(progress))
	}
	return poller.New(poller.SettingsFromConfig(cfg), opts...)
}

func newMatcher(cfg *config.Config, logger *slog.Logger, dryRun bool) *episodes.Matcher {
	return episodes.New(episodes.SettingsFromConfig(cfg), episodes.WithDryRun(dryRun), episodes.WithLogger(logger))
}
