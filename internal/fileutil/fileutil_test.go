package fileutil

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListByExtSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mkv", "a.MKV", "c.ass", ".hidden.mkv", "d.mkv.part"} {
		writeFile(t, filepath.Join(dir, name), "x")
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.mkv"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ListByExt(dir, ".mkv")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a.MKV", "b.mkv"}; !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if CountByExt(dir, ".part") != 1 {
		t.Fatal("expected one partial file")
	}
	if CountByExt(filepath.Join(dir, "missing"), ".mkv") != 0 {
		t.Fatal("expected zero for missing directory")
	}
}

func TestSizesByExt(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.mkv"), "1234")
	writeFile(t, filepath.Join(dir, "b.mkv"), "12")

	sizes, err := SizesByExt(dir, ".mkv")
	if err != nil {
		t.Fatal(err)
	}
	if len(sizes) != 2 || sizes["a.mkv"] != 4 || sizes["b.mkv"] != 2 {
		t.Fatalf("unexpected sizes %v", sizes)
	}
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.ass")
	dst := filepath.Join(dir, "dst.ass")
	writeFile(t, src, "dialogue")

	if err := MoveFile(src, dst); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source to be gone, err=%v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil || string(got) != "dialogue" {
		t.Fatalf("unexpected destination content %q (%v)", got, err)
	}
}

func TestCopyFileMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	writeFile(t, src, "data")

	if err := CopyFileMode(src, dst, 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "data" {
		t.Fatalf("content mismatch: got %q", got)
	}
}

func TestTrimExtAndIsDir(t *testing.T) {
	if TrimExt("[One Pace] Jaya 04 [480p].mkv") != "[One Pace] Jaya 04 [480p]" {
		t.Fatal("unexpected TrimExt result")
	}
	if !IsDir(t.TempDir()) || IsDir(filepath.Join(t.TempDir(), "nope")) {
		t.Fatal("unexpected IsDir result")
	}
}
