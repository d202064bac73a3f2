package pathsafe

import (
	"errors"
	"fmt"
	"io/fs"
)

// LstatFS is the part of a filesystem the existence probe needs.
type LstatFS interface {
	Lstat(name string) (fs.FileInfo, error)
}

// Exists probes path without following a final symlink, so a dangling link
// counts as present. Only "not found" means absent; every other error is
// returned.
func Exists(fsys LstatFS, path string) (bool, error) {
	_, err := fsys.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to probe %s: %w", path, err)
}
