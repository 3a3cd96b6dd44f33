package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// CheckBinary verifies that command resolves on PATH.
func CheckBinary(name, command string) Result {
	command = strings.TrimSpace(command)
	if command == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not found on PATH)", command)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTarget verifies that path can be created or written: either it is an
// accessible directory, or its nearest existing ancestor is.
func CheckTarget(name, path string) Result {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	for dir := abs; ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(dir); err == nil {
			result := CheckDirectoryAccess(name, dir)
			if result.Passed && dir != abs {
				result.Detail = fmt.Sprintf("%s (will be created under %s)", abs, dir)
			}
			return result
		}
		if parent := filepath.Dir(dir); parent == dir {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing ancestor)", abs)}
		}
	}
}

// CheckIndexReachable verifies that the torrent index answers url with a
// success status. It uses a single attempt bounded by timeout.
func CheckIndexReachable(ctx context.Context, url, userAgent string, timeout time.Duration) Result {
	const name = "Torrent index"

	url = strings.TrimSpace(url)
	if url == "" {
		return Result{Name: name, Optional: true, Passed: true, Detail: "skipped (no url)"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, url, nil)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("request failed (%v)", err)}
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Optional: true, Detail: summarizeNetError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("unexpected status (%d)", resp.StatusCode)}
	}
	return Result{Name: name, Optional: true, Passed: true, Detail: "Reachable"}
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}
	return err.Error()
}
