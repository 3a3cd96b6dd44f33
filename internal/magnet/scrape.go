package magnet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"onepace/internal/logging"
	"onepace/internal/services"
)

const maxPageBytes = 16 << 20

// Fetcher retrieves the raw text of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches pages over HTTP with a bounded timeout.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher builds a fetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch returns the page body. Transport failures and non-2xx statuses are
// reported as services.ErrTransport.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "scrape", "build request", url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "scrape", "fetch", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", services.Wrap(services.ErrTransport, "scrape", "fetch", fmt.Sprintf("%s returned %d", url, resp.StatusCode), nil)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "scrape", "read body", url, err)
	}
	return string(body), nil
}

// Scraper combines a Fetcher with an Extractor.
type Scraper struct {
	fetcher   Fetcher
	extractor *Extractor
	logger    *slog.Logger
}

// NewScraper wires a fetcher and extractor together.
func NewScraper(fetcher Fetcher, extractor *Extractor, logger *slog.Logger) *Scraper {
	return &Scraper{
		fetcher:   fetcher,
		extractor: extractor,
		logger:    logging.NewComponentLogger(logger, "scraper"),
	}
}

// Scrape fetches url and extracts its magnet links. A failed fetch is logged
// and yields an empty result.
func (s *Scraper) Scrape(ctx context.Context, url string) Result {
	page, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		logging.WithContext(ctx, s.logger).Debug("page fetch failed; treating as no magnets",
			logging.String("url", url), logging.Error(err))
		return Result{Strategy: StrategyNone}
	}
	result := s.extractor.Extract(page)
	logging.WithContext(ctx, s.logger).Debug("magnets extracted",
		logging.String("url", url),
		logging.Int("count", len(result.Links)),
		logging.String("strategy", string(result.Strategy)),
		logging.Int("excluded_rows", result.Excluded),
	)
	return result
}
