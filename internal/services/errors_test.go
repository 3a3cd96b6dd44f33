package services_test

import (
	"errors"
	"strings"
	"testing"

	"onepace/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "subtitles", "gdown", "exited non-zero", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"subtitles", "gdown", "exited non-zero"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(services.ErrMissingInput, "", "", "", nil)
	if err.Error() != "missing input: service failure" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCategory(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{services.Wrap(services.ErrMissingInput, "match", "scan", "no videos", nil), "missing input"},
		{services.Wrap(services.ErrExternalTool, "subtitles", "run", "", errors.New("exit 1")), "external tool failure"},
		{services.Wrap(services.ErrTransport, "scrape", "fetch", "", nil), "transport failure"},
		{errors.New("plain"), "failure"},
	}
	for _, tc := range cases {
		if got := services.Category(tc.err); got != tc.want {
			t.Fatalf("Category(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
