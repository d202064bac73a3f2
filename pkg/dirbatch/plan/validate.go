package plan

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/dirbatch/pkg/dirbatch/core"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/filesystem"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/pathsafe"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/validation"
)

// Validator checks rename plans before anything is renamed.
type Validator struct {
	fs     filesystem.ReadFS
	logger core.Logger
}

// NewValidator creates a Validator probing fsys.
func NewValidator(fsys filesystem.ReadFS, logger core.Logger) *Validator {
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Validator{fs: fsys, logger: logger}
}

// Validate checks p with a Validator that does not log.
func Validate(ctx context.Context, fsys filesystem.ReadFS, p *RenamePlan) error {
	return NewValidator(fsys, nil).Validate(ctx, p)
}

// Validate re-sanitizes the final segment of every target, then requires the
// candidate targets to be distinct, contained in the plan's directory and
// absent from disk. The first violation is returned and nothing is renamed.
// On success the sources are snapshotted for the executor's re-check.
func (v *Validator) Validate(ctx context.Context, p *RenamePlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for i := range p.Operations {
		p.Operations[i].Target = sanitizeTarget(p.Operations[i].Target)
	}
	if p.Candidates == nil {
		p.Candidates = p.Targets()
	}
	for i, candidate := range p.Candidates {
		p.Candidates[i] = sanitizeTarget(candidate)
	}

	v.logger.Debug().
		Str("directory", p.Dir.Path).
		Str("mode", string(p.Mode)).
		Int("operations", len(p.Operations)).
		Int("candidates", len(p.Candidates)).
		Msg("validating rename plan")

	if dups := duplicates(p.Candidates); len(dups) > 0 {
		v.logger.Debug().Interface("duplicates", dups).Msg("duplicate targets")
		return &core.DuplicateTargetError{Duplicates: dups}
	}

	for _, candidate := range p.Candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !pathsafe.IsContained(p.Dir.Path, candidate) {
			return &core.PathEscapeError{Base: p.Dir.Path, Path: candidate}
		}
		exists, err := pathsafe.Exists(v.fs, candidate)
		if err != nil {
			return err
		}
		if exists {
			return &core.TargetExistsError{Path: candidate}
		}
	}

	snapshots := make(map[core.OperationID]*validation.Snapshot, len(p.Operations))
	for _, op := range p.Operations {
		snap, err := validation.Take(v.fs, op.Source)
		if err != nil {
			return fmt.Errorf("failed to snapshot source %s: %w", op.Source, err)
		}
		snapshots[op.ID] = snap
	}
	p.snapshots = snapshots
	p.validated = true

	v.logger.Debug().Int("operations", len(p.Operations)).Msg("rename plan validated")
	return nil
}

// sanitizeTarget sanitizes the last segment of target and keeps the
// directory part as given, so traversal stays visible to the containment
// check.
func sanitizeTarget(target string) string {
	return filepath.Join(filepath.Dir(target), pathsafe.SanitizeName(filepath.Base(target)))
}

// duplicates returns every path that occurs more than once, in order of first
// occurrence.
func duplicates(paths []string) []string {
	counts := make(map[string]int, len(paths))
	for _, path := range paths {
		counts[path]++
	}
	var dups []string
	for _, path := range paths {
		if counts[path] > 1 {
			dups = append(dups, path)
			counts[path] = 0
		}
	}
	return dups
}
