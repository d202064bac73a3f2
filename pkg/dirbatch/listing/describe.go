package listing

import (
	"fmt"
	"time"

	"github.com/arthur-debert/dirbatch/pkg/dirbatch/core"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/filesystem"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/pathsafe"
)

// FileMetadata describes one listed entry. Field names follow the JSON
// contract consumed by the host application.
type FileMetadata struct {
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	IsDirectory bool      `json:"isDirectory"`
	IsFile      bool      `json:"isFile"`
	Birthtime   time.Time `json:"birthtime"`
	Mtime       time.Time `json:"mtime"`
	Atime       time.Time `json:"atime"`
}

// Describe stats entry and returns its metadata. Symlinks are followed.
func Describe(fsys filesystem.ReadFS, dir Directory, entry Entry) (FileMetadata, error) {
	// Entries come from a listing of dir, so this only trips on corrupted input.
	if !pathsafe.IsContained(dir.Path, entry.Path) {
		return FileMetadata{}, &core.PathEscapeError{Base: dir.Path, Path: entry.Path}
	}

	info, err := fsys.Stat(entry.Path)
	if err != nil {
		return FileMetadata{}, fmt.Errorf("failed to stat %s: %w", entry.Path, err)
	}

	times := filesystem.FileTimes{
		Birth:    info.ModTime(),
		Modified: info.ModTime(),
		Accessed: info.ModTime(),
	}
	if tfs, ok := fsys.(filesystem.TimesFS); ok {
		times, err = tfs.Times(entry.Path)
		if err != nil {
			return FileMetadata{}, fmt.Errorf("failed to read timestamps of %s: %w", entry.Path, err)
		}
	}

	return FileMetadata{
		Filename:    entry.Name,
		Size:        info.Size(),
		IsDirectory: info.IsDir(),
		IsFile:      info.Mode().IsRegular(),
		Birthtime:   times.Birth.UTC(),
		Mtime:       times.Modified.UTC(),
		Atime:       times.Accessed.UTC(),
	}, nil
}
