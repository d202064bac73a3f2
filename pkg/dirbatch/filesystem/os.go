package filesystem

import (
	"io/fs"
	"os"
)

// OSFileSystem implements FileSystem and TimesFS on top of the os package.
type OSFileSystem struct{}

// NewOSFileSystem creates a new OS-backed filesystem
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Stat implements ReadFS
func (osfs *OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

// Lstat implements ReadFS
func (osfs *OSFileSystem) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}

// ReadDir implements ReadFS. Entries are sorted by name.
func (osfs *OSFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

// Rename implements WriteFS
func (osfs *OSFileSystem) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

// Times implements TimesFS, following symlinks like Stat.
func (osfs *OSFileSystem) Times(name string) (FileTimes, error) {
	return fileTimes(name)
}
