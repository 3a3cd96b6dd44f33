package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
)

// ListByExt returns the sorted names of regular files in dir whose extension
// matches ext case-insensitively. Dot-prefixed files are ignored.
func ListByExt(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// CountByExt returns the number of files in dir with extension ext. A missing
// directory counts as zero.
func CountByExt(dir, ext string) int {
	names, err := ListByExt(dir, ext)
	if err != nil {
		return 0
	}
	return len(names)
}

// SizesByExt maps each file in dir with extension ext to its size in bytes.
// Files that vanish between listing and stat are skipped.
func SizesByExt(dir, ext string) (map[string]int64, error) {
	names, err := ListByExt(dir, ext)
	if err != nil {
		return nil, err
	}
	sizes := make(map[string]int64, len(names))
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		sizes[name] = info.Size()
	}
	return sizes, nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// TrimExt returns name without its final extension.
func TrimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// MoveFile renames src to dst, falling back to copy and remove when the two
// paths sit on different filesystems.
func MoveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	info, statErr := os.Stat(src)
	if statErr != nil {
		return statErr
	}
	if err := CopyFileMode(src, dst, info.Mode().Perm()); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("copy across devices: %w", err)
	}
	return os.Remove(src)
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
