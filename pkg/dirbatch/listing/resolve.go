package listing

import (
	"path/filepath"

	"github.com/arthur-debert/dirbatch/pkg/dirbatch/core"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/filesystem"
)

// Directory is an absolute, cleaned path that was an existing directory when
// it was resolved. It is not re-checked afterwards.
type Directory struct {
	Path string
}

// Join returns the absolute path of name inside the directory.
func (d Directory) Join(name string) string {
	return filepath.Join(d.Path, name)
}

// ResolveDirectory turns a caller supplied path, possibly relative, into a
// Directory. It fails with core.ErrNotADirectory when the path is missing,
// unreadable or not a directory.
func ResolveDirectory(fsys filesystem.ReadFS, path string) (Directory, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Directory{}, &core.DirectoryError{Path: path, Cause: err}
	}

	info, err := fsys.Stat(abs)
	if err != nil {
		return Directory{}, &core.DirectoryError{Path: abs, Cause: err}
	}
	if !info.IsDir() {
		return Directory{}, &core.DirectoryError{Path: abs}
	}

	return Directory{Path: abs}, nil
}
