package pipeline_test

import (
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"onepace/internal/pipeline"
)

func flockTarget(t *testing.T, target string) func() {
	t.Helper()
	lock := flock.New(filepath.Join(target, pipeline.LockFileName))
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("hold lock: ok=%v err=%v", ok, err)
	}
	return func() { _ = lock.Unlock() }
}
