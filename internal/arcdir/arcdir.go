// Package arcdir names the folder an arc's episodes are downloaded into.
package arcdir

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Namer maps a user-supplied folder name to the directory to use.
type Namer func(name string) string

// AsIs returns the name unchanged.
func AsIs(name string) string {
	return strings.TrimSpace(name)
}

// Default keeps names that already look like arc folders and turns anything
// else into "arc-<lower_snake>": "Little Garden" becomes "arc-little_garden".
// Names starting with "arc" or "." and names containing a path separator are
// used as-is.
func Default(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	lower := cases.Lower(language.Und).String(name)
	if strings.HasPrefix(lower, "arc") || strings.HasPrefix(name, ".") || strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return "arc-" + strings.Join(strings.Fields(lower), "_")
}

// For returns Default when autoPrefix is set and AsIs otherwise.
func For(autoPrefix bool) Namer {
	if autoPrefix {
		return Default
	}
	return AsIs
}
