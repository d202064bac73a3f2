package pathsafe

import (
	"path/filepath"
	"strings"
)

// Resolve joins name onto base and cleans the result. Absolute names are
// only cleaned.
func Resolve(base, name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(base, name)
}

// IsContained reports whether candidate, resolved against base, is base
// itself or lies below it. The comparison is by whole path segments, so
// /data2 is not inside /data.
func IsContained(base, candidate string) bool {
	base = filepath.Clean(base)
	resolved := Resolve(base, candidate)

	rel, err := filepath.Rel(base, resolved)
	if err != nil {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}
