package core

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every typed error below reports one of these through errors.Is.
var (
	ErrNotADirectory         = errors.New("not a directory")
	ErrNotFound              = errors.New("not found")
	ErrPathEscape            = errors.New("path escapes target directory")
	ErrDuplicateTarget       = errors.New("duplicate rename target")
	ErrTargetExists          = errors.New("target already exists")
	ErrInvalidImage          = errors.New("not a valid image")
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrRenameIO              = errors.New("rename failed")
)

// DirectoryError is returned when a path does not resolve to an existing directory.
type DirectoryError struct {
	Path  string
	Cause error
}

func (e *DirectoryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to access folder %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("failed to access folder %s: %s is not a valid directory", e.Path, e.Path)
}

func (e *DirectoryError) Is(target error) bool {
	return target == ErrNotADirectory
}

func (e *DirectoryError) Unwrap() error {
	return e.Cause
}

// NotFoundError is returned when an input file does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file %s does not exist", e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PathEscapeError is returned when a target path is not contained in its base directory.
type PathEscapeError struct {
	Base string
	Path string
}

func (e *PathEscapeError) Error() string {
	return fmt.Sprintf("attempt to escape target directory %s blocked: %s", e.Base, e.Path)
}

func (e *PathEscapeError) Is(target error) bool {
	return target == ErrPathEscape
}

// DuplicateTargetError is returned when two or more operations share a target.
type DuplicateTargetError struct {
	Duplicates []string
}

func (e *DuplicateTargetError) Error() string {
	return fmt.Sprintf("renaming would result in duplicates, process stopped: %s",
		strings.Join(e.Duplicates, ", "))
}

func (e *DuplicateTargetError) Is(target error) bool {
	return target == ErrDuplicateTarget
}

// TargetExistsError is returned when a computed target is already present on disk.
type TargetExistsError struct {
	Path string
}

func (e *TargetExistsError) Error() string {
	return fmt.Sprintf("target file already exists, operation aborted: %s", e.Path)
}

func (e *TargetExistsError) Is(target error) bool {
	return target == ErrTargetExists
}

// ConversionError rejects a conversion request. Kind is ErrInvalidImage or
// ErrUnsupportedConversion.
type ConversionError struct {
	Path   string
	Format string
	Kind   error
	Reason string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s to %q: %s", e.Path, e.Format, e.Reason)
}

func (e *ConversionError) Is(target error) bool {
	return target == e.Kind
}

// RenameError wraps a filesystem failure of a single rename in an executed batch.
type RenameError struct {
	ID     OperationID
	Source string
	Target string
	Cause  error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("error renaming %s to %s: %v", e.Source, e.Target, e.Cause)
}

func (e *RenameError) Is(target error) bool {
	return target == ErrRenameIO
}

func (e *RenameError) Unwrap() error {
	return e.Cause
}

// BatchError reports the failed operations of a batch whose other operations
// may have completed. Completed renames are not rolled back.
type BatchError struct {
	Failures  []*RenameError
	Succeeded int
	Total     int
}

func (e *BatchError) Error() string {
	msg := fmt.Sprintf("%d of %d renames failed (%d succeeded, not rolled back)",
		len(e.Failures), e.Total, e.Succeeded)
	for _, f := range e.Failures {
		msg += "\n  - " + f.Error()
	}
	return msg
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
