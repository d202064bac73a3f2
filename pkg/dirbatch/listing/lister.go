package listing

import (
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/core"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/filesystem"
)

// Lister resolves, lists and describes directories on one filesystem.
type Lister struct {
	fs     filesystem.ReadFS
	logger core.Logger
}

// NewLister creates a Lister
func NewLister(fsys filesystem.ReadFS, logger core.Logger) *Lister {
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Lister{fs: fsys, logger: logger}
}

// FetchFiles resolves path and describes every entry passing the extension
// filter. Nothing is cached: each call stats every entry again.
func (l *Lister) FetchFiles(path, ext string) ([]FileMetadata, error) {
	dir, err := ResolveDirectory(l.fs, path)
	if err != nil {
		return nil, err
	}

	entries, err := ListEntries(l.fs, dir, ext)
	if err != nil {
		return nil, err
	}

	l.logger.Debug().
		Str("dir", dir.Path).
		Str("extension", NormalizeExtension(ext)).
		Int("entries", len(entries)).
		Msg("listed directory")

	files := make([]FileMetadata, 0, len(entries))
	for _, entry := range entries {
		meta, err := Describe(l.fs, dir, entry)
		if err != nil {
			return nil, err
		}
		files = append(files, meta)
	}
	return files, nil
}
