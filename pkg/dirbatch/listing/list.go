package listing

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/dirbatch/pkg/dirbatch/filesystem"
)

// Entry is a direct child of a listed directory.
type Entry struct {
	Name string
	Path string
}

// NormalizeExtension gives a non-empty extension filter its leading dot.
func NormalizeExtension(ext string) string {
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// MatchesExtension reports whether name passes the filter: a literal,
// case-sensitive suffix match. An empty filter matches everything.
func MatchesExtension(name, ext string) bool {
	ext = NormalizeExtension(ext)
	return ext == "" || strings.HasSuffix(name, ext)
}

// ListEntries returns the direct children of dir sorted by name, keeping only
// those matching the extension filter. Hidden entries and subdirectories are
// included.
func ListEntries(fsys filesystem.ReadFS, dir Directory, ext string) ([]Entry, error) {
	dirEntries, err := fsys.ReadDir(dir.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir.Path, err)
	}

	ext = NormalizeExtension(ext)
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !MatchesExtension(de.Name(), ext) {
			continue
		}
		entries = append(entries, Entry{
			Name: de.Name(),
			Path: dir.Join(de.Name()),
		})
	}
	return entries, nil
}
