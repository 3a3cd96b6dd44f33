package verify_test

import (
	"errors"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"onepace/internal/services"
	"onepace/internal/testsupport"
	"onepace/internal/verify"
)

func TestDirReportsMatchedAndMissing(t *testing.T) {
	dir := t.TempDir()
	testsupport.TouchFiles(t, dir,
		"Jaya 01.mkv", "Jaya 01.ass",
		"Jaya 02.mkv",
		"Jaya 03.mkv", "Jaya 03.ass",
	)

	report, err := verify.Dir(dir, ".mkv", ".ass")
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	if report.Matched != 2 || report.Missing != 1 || report.OK() {
		t.Fatalf("unexpected report %+v", report)
	}
	if got := report.MissingVideos(); !slices.Equal(got, []string{"Jaya 02.mkv"}) {
		t.Fatalf("unexpected missing %v", got)
	}
	if report.Entries[1].Subtitle != "Jaya 02.ass" {
		t.Fatalf("unexpected expected subtitle name %q", report.Entries[1].Subtitle)
	}
}

func TestDirIsIdempotentAndReadOnly(t *testing.T) {
	dir := t.TempDir()
	testsupport.TouchFiles(t, dir, "a.mkv", "a.ass", "b.mkv")
	before := testsupport.ListDir(t, dir)

	first, err := verify.Dir(dir, ".mkv", ".ass")
	if err != nil {
		t.Fatalf("first Dir: %v", err)
	}
	second, err := verify.Dir(dir, ".mkv", ".ass")
	if err != nil {
		t.Fatalf("second Dir: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reports differ:\n%+v\n%+v", first, second)
	}
	if after := testsupport.ListDir(t, dir); !slices.Equal(before, after) {
		t.Fatalf("directory changed: %v -> %v", before, after)
	}
}

func TestDirAllMatched(t *testing.T) {
	dir := t.TempDir()
	testsupport.TouchFiles(t, dir, "a.mkv", "a.ass")
	report, err := verify.Dir(dir, ".mkv", ".ass")
	if err != nil || !report.OK() {
		t.Fatalf("expected OK report, got %+v (%v)", report, err)
	}
}

func TestDirMissingInput(t *testing.T) {
	empty := t.TempDir()
	testsupport.TouchFiles(t, empty, "a.ass")
	for _, dir := range []string{filepath.Join(empty, "nope"), empty} {
		if _, err := verify.Dir(dir, ".mkv", ".ass"); !errors.Is(err, services.ErrMissingInput) {
			t.Fatalf("%s: expected missing input error, got %v", dir, err)
		}
	}
}
