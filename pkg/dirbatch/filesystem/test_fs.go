package filesystem

import (
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing/fstest"
	"time"
)

// TestFileSystem is an in-memory FileSystem backed by fstest.MapFS. It
// accepts the same absolute paths as OSFileSystem and is safe for concurrent
// use, so the executor can run against it. Renames can be made to fail per
// source path.
type TestFileSystem struct {
	mu           sync.Mutex
	files        fstest.MapFS
	renameErrors map[string]error
	statErrors   map[string]error
}

// NewTestFileSystem creates an empty test filesystem
func NewTestFileSystem() *TestFileSystem {
	return &TestFileSystem{
		files:        make(fstest.MapFS),
		renameErrors: make(map[string]error),
		statErrors:   make(map[string]error),
	}
}

// mapKey converts an absolute native path into an fstest.MapFS key.
func mapKey(op, name string) (string, error) {
	slashed := filepath.ToSlash(name)
	if !path.IsAbs(slashed) {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	key := strings.TrimPrefix(path.Clean(slashed), "/")
	if key == "" {
		key = "."
	}
	return key, nil
}

// withPath rewrites the path reported by a MapFS error to the caller's path.
func withPath(op, name string, err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return &fs.PathError{Op: op, Path: name, Err: pathErr.Err}
	}
	return err
}

// WriteFile creates or replaces a regular file.
func (tfs *TestFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	key, err := mapKey("writefile", name)
	if err != nil {
		return err
	}
	tfs.mu.Lock()
	defer tfs.mu.Unlock()
	tfs.files[key] = &fstest.MapFile{
		Data:    data,
		Mode:    perm,
		ModTime: time.Now(),
	}
	return nil
}

// MkdirAll creates an explicit directory entry.
func (tfs *TestFileSystem) MkdirAll(name string, perm fs.FileMode) error {
	key, err := mapKey("mkdirall", name)
	if err != nil {
		return err
	}
	tfs.mu.Lock()
	defer tfs.mu.Unlock()
	tfs.files[key] = &fstest.MapFile{
		Mode:    perm | fs.ModeDir,
		ModTime: time.Now(),
	}
	return nil
}

// FailRename makes every rename whose source is name fail with err.
func (tfs *TestFileSystem) FailRename(name string, err error) {
	tfs.mu.Lock()
	defer tfs.mu.Unlock()
	tfs.renameErrors[filepath.Clean(name)] = err
}

// FailStat makes Stat and Lstat of name fail with err.
func (tfs *TestFileSystem) FailStat(name string, err error) {
	tfs.mu.Lock()
	defer tfs.mu.Unlock()
	tfs.statErrors[filepath.Clean(name)] = err
}

// Exists reports whether name is present.
func (tfs *TestFileSystem) Exists(name string) bool {
	_, err := tfs.Stat(name)
	return err == nil
}

// Stat implements ReadFS
func (tfs *TestFileSystem) Stat(name string) (fs.FileInfo, error) {
	key, err := mapKey("stat", name)
	if err != nil {
		return nil, err
	}
	tfs.mu.Lock()
	defer tfs.mu.Unlock()
	if statErr, ok := tfs.statErrors[filepath.Clean(name)]; ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: statErr}
	}
	info, err := tfs.files.Stat(key)
	if err != nil {
		return nil, withPath("stat", name, err)
	}
	return info, nil
}

// Lstat implements ReadFS. The test filesystem has no symlinks.
func (tfs *TestFileSystem) Lstat(name string) (fs.FileInfo, error) {
	return tfs.Stat(name)
}

// ReadDir implements ReadFS
func (tfs *TestFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	key, err := mapKey("readdir", name)
	if err != nil {
		return nil, err
	}
	tfs.mu.Lock()
	defer tfs.mu.Unlock()
	entries, err := tfs.files.ReadDir(key)
	if err != nil {
		return nil, withPath("readdir", name, err)
	}
	return entries, nil
}

// Rename implements WriteFS. Like rename(2) it replaces an existing target
// file and moves directories together with their children.
func (tfs *TestFileSystem) Rename(oldpath, newpath string) error {
	oldKey, err := mapKey("rename", oldpath)
	if err != nil {
		return err
	}
	newKey, err := mapKey("rename", newpath)
	if err != nil {
		return err
	}

	tfs.mu.Lock()
	defer tfs.mu.Unlock()

	if renameErr, ok := tfs.renameErrors[filepath.Clean(oldpath)]; ok {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: renameErr}
	}
	if _, err := tfs.files.Stat(oldKey); err != nil {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}

	moved := make(map[string]*fstest.MapFile)
	for key, file := range tfs.files {
		switch {
		case key == oldKey:
			moved[newKey] = file
		case strings.HasPrefix(key, oldKey+"/"):
			moved[newKey+strings.TrimPrefix(key, oldKey)] = file
		default:
			continue
		}
		delete(tfs.files, key)
	}
	for key, file := range moved {
		tfs.files[key] = file
	}
	return nil
}

// Times implements TimesFS. Every timestamp is the entry's ModTime.
func (tfs *TestFileSystem) Times(name string) (FileTimes, error) {
	info, err := tfs.Stat(name)
	if err != nil {
		return FileTimes{}, err
	}
	modified := info.ModTime()
	return FileTimes{Birth: modified, Modified: modified, Accessed: modified}, nil
}
