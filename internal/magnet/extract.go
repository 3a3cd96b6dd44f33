package magnet

import (
	"html"
	"regexp"
	"strings"
)

// Strategy names the extraction pass that produced a result.
type Strategy string

const (
	StrategyNone   Strategy = "none"
	StrategyList   Strategy = "list"
	StrategyDetail Strategy = "detail"
)

var (
	rowPattern    = regexp.MustCompile(`(?is)<tr(?:\s[^>]*)?>(.*?)</tr>`)
	anchorPattern = regexp.MustCompile(`(?is)<a\s[^>]*href\s*=\s*["']([^"']*magnet:[^"']*)["']`)
)

// Result is the outcome of extracting magnet links from one page.
type Result struct {
	// Links holds unique magnet URIs in first-seen order.
	Links    []string
	Strategy Strategy
	// Excluded counts list rows skipped because they carried an exclusion marker.
	Excluded int
}

// Extractor pulls magnet URIs out of raw HTML.
type Extractor struct {
	excludeMarkers []string
}

// NewExtractor builds an extractor that skips list rows containing any of the
// given marker substrings.
func NewExtractor(excludeMarkers []string) *Extractor {
	markers := make([]string, 0, len(excludeMarkers))
	for _, m := range excludeMarkers {
		if m != "" {
			markers = append(markers, m)
		}
	}
	return &Extractor{excludeMarkers: markers}
}

// Extract returns the unique magnet URIs found in page.
func (e *Extractor) Extract(page string) Result {
	if strings.TrimSpace(page) == "" {
		return Result{Strategy: StrategyNone}
	}

	var (
		links    []string
		matched  int
		excluded int
	)
	for _, row := range rowPattern.FindAllStringSubmatch(page, -1) {
		body := row[1]
		anchor := anchorPattern.FindStringSubmatch(body)
		if anchor == nil {
			continue
		}
		matched++
		if e.excludes(body) {
			excluded++
			continue
		}
		links = append(links, html.UnescapeString(anchor[1]))
	}
	if matched > 0 {
		// Rows with magnets exist, so this is a list page; an all-excluded
		// page yields nothing rather than falling back to unfiltered anchors.
		if len(links) == 0 {
			return Result{Strategy: StrategyList, Excluded: excluded}
		}
		return Result{Links: dedupe(links), Strategy: StrategyList, Excluded: excluded}
	}

	for _, anchor := range anchorPattern.FindAllStringSubmatch(page, -1) {
		links = append(links, html.UnescapeString(anchor[1]))
	}
	if len(links) == 0 {
		return Result{Strategy: StrategyNone}
	}
	return Result{Links: dedupe(links), Strategy: StrategyDetail}
}

func (e *Extractor) excludes(row string) bool {
	for _, marker := range e.excludeMarkers {
		if strings.Contains(row, marker) {
			return true
		}
	}
	return false
}

func dedupe(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))
	for _, link := range links {
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, link)
	}
	return out
}
