package magnet_test

import (
	"slices"
	"testing"

	"onepace/internal/magnet"
)

const listPage = `<table>
<tr><th>Name</th><th>Link</th></tr>
<tr><td>[One Pace][1-5] Jaya 01 [480p]</td><td><a href="magnet:?xt=urn:btih:aaa&amp;dn=jaya01">dl</a></td></tr>
<tr class="row"><td>[One Pace][6-9] Jaya 02 [480p]</td><td><a href='magnet:?xt=urn:btih:bbb'>dl</a><a href="magnet:?xt=urn:btih:zzz">mirror</a></td></tr>
<tr><td>Jaya 02 Alternate [480p]</td><td><a href="magnet:?xt=urn:btih:ccc">dl</a></td></tr>
<tr><td>Jaya G-8 Special</td><td><a href="magnet:?xt=urn:btih:ddd">dl</a></td></tr>
<tr><td>Duplicate</td><td><a href="magnet:?xt=urn:btih:aaa&amp;dn=jaya01">dl</a></td></tr>
</table>`

func TestExtractListPageFirstAnchorPerRow(t *testing.T) {
	result := magnet.NewExtractor([]string{"Alternate", "G-8"}).Extract(listPage)

	want := []string{
		"magnet:?xt=urn:btih:aaa&dn=jaya01",
		"magnet:?xt=urn:btih:bbb",
	}
	if !slices.Equal(result.Links, want) {
		t.Fatalf("unexpected links:\n got %v\nwant %v", result.Links, want)
	}
	if result.Strategy != magnet.StrategyList {
		t.Fatalf("expected list strategy, got %q", result.Strategy)
	}
	if result.Excluded != 2 {
		t.Fatalf("expected 2 excluded rows, got %d", result.Excluded)
	}
}

func TestExtractWithoutMarkersKeepsAllRows(t *testing.T) {
	result := magnet.NewExtractor(nil).Extract(listPage)
	if len(result.Links) != 4 {
		t.Fatalf("expected 4 unique links, got %d: %v", len(result.Links), result.Links)
	}
	if result.Excluded != 0 {
		t.Fatalf("expected no exclusions, got %d", result.Excluded)
	}
}

func TestExtractAllExcludedDoesNotFallBack(t *testing.T) {
	page := `<tr><td>Alternate cut</td><td><a href="magnet:?xt=urn:btih:ccc">dl</a></td></tr>`
	result := magnet.NewExtractor([]string{"Alternate"}).Extract(page)
	if len(result.Links) != 0 {
		t.Fatalf("expected no links, got %v", result.Links)
	}
	if result.Strategy != magnet.StrategyList || result.Excluded != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestExtractDetailPageFallback(t *testing.T) {
	page := `<div class="torrent">
<p>Jaya Alternate notes</p>
<a class="btn" href="magnet:?xt=urn:btih:eee&amp;tr=udp%3A%2F%2Ftracker">Magnet</a>
<a href="/download/1.torrent">Torrent</a>
<a href="magnet:?xt=urn:btih:eee&amp;tr=udp%3A%2F%2Ftracker">Again</a>
</div>`
	result := magnet.NewExtractor([]string{"Alternate"}).Extract(page)

	want := []string{"magnet:?xt=urn:btih:eee&tr=udp%3A%2F%2Ftracker"}
	if !slices.Equal(result.Links, want) {
		t.Fatalf("unexpected links: %v", result.Links)
	}
	if result.Strategy != magnet.StrategyDetail {
		t.Fatalf("expected detail strategy, got %q", result.Strategy)
	}
}

func TestExtractNoMagnets(t *testing.T) {
	for _, page := range []string{"", "   ", "<html><body><a href=\"/x\">x</a></body></html>"} {
		result := magnet.NewExtractor(nil).Extract(page)
		if len(result.Links) != 0 || result.Strategy != magnet.StrategyNone {
			t.Fatalf("page %q: unexpected result %+v", page, result)
		}
	}
}

func TestExtractIsPure(t *testing.T) {
	ex := magnet.NewExtractor([]string{"Alternate"})
	first := ex.Extract(listPage)
	second := ex.Extract(listPage)
	if !slices.Equal(first.Links, second.Links) {
		t.Fatalf("extraction not deterministic: %v vs %v", first.Links, second.Links)
	}
}
