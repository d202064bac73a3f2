package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// ErrSourceChanged is reported when a rename source no longer matches the
// state recorded when its plan was validated.
var ErrSourceChanged = errors.New("source changed since validation")

// LstatFS is the part of a filesystem snapshots need.
type LstatFS interface {
	Lstat(name string) (fs.FileInfo, error)
}

// Snapshot records the identity-relevant metadata of a path.
type Snapshot struct {
	Path    string
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
	TakenAt time.Time
}

// ChangedError describes how a path differs from its snapshot.
type ChangedError struct {
	Path   string
	Reason string
	Cause  error
}

func (e *ChangedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s changed since validation: %s: %v", e.Path, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s changed since validation: %s", e.Path, e.Reason)
}

func (e *ChangedError) Is(target error) bool {
	return target == ErrSourceChanged
}

func (e *ChangedError) Unwrap() error {
	return e.Cause
}

// Take records the current state of path without following a final symlink.
func Take(fsys LstatFS, path string) (*Snapshot, error) {
	info, err := fsys.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return &Snapshot{
		Path:    path,
		Size:    info.Size(),
		Mode:    info.Mode(),
		ModTime: info.ModTime(),
		TakenAt: time.Now(),
	}, nil
}

// Verify checks that the path still matches the snapshot.
func (s *Snapshot) Verify(fsys LstatFS) error {
	info, err := fsys.Lstat(s.Path)
	if err != nil {
		return &ChangedError{Path: s.Path, Reason: "no longer accessible", Cause: err}
	}
	switch {
	case info.Mode().Type() != s.Mode.Type():
		return &ChangedError{Path: s.Path, Reason: fmt.Sprintf("type changed from %s to %s", s.Mode.Type(), info.Mode().Type())}
	case info.Size() != s.Size:
		return &ChangedError{Path: s.Path, Reason: fmt.Sprintf("size changed from %d to %d", s.Size, info.Size())}
	case !info.ModTime().Equal(s.ModTime):
		return &ChangedError{Path: s.Path, Reason: "modification time changed"}
	}
	return nil
}
