package filesystem

import (
	"io/fs"
	"time"
)

// ReadFS defines the read side of a filesystem. Paths are absolute, native paths.
type ReadFS interface {
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
}

// WriteFS defines the mutations the engine performs.
type WriteFS interface {
	Rename(oldpath, newpath string) error
}

// FileSystem combines read and write operations.
type FileSystem interface {
	ReadFS
	WriteFS
}

// FileTimes holds the timestamps reported for a path. Birth falls back to
// Modified where the platform cannot report creation time.
type FileTimes struct {
	Birth    time.Time
	Modified time.Time
	Accessed time.Time
}

// TimesFS is implemented by filesystems that can report birth and access times.
type TimesFS interface {
	Times(name string) (FileTimes, error)
}
