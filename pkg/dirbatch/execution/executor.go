// Package execution runs validated rename plans.
package execution

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arthur-debert/dirbatch/pkg/dirbatch/core"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/filesystem"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/pathsafe"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/plan"
)

// ErrNotValidated is returned when a plan is executed without passing
// validation first.
var ErrNotValidated = errors.New("rename plan has not been validated")

// Options controls execution behaviour
type Options struct {
	// RecheckBeforeRename re-probes each target and compares each source
	// with its validation snapshot right before renaming it.
	RecheckBeforeRename bool
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{RecheckBeforeRename: true}
}

// Executor runs every operation of a plan concurrently
type Executor struct {
	fs       filesystem.FileSystem
	logger   core.Logger
	eventBus core.EventBus
	opts     Options
}

// NewExecutor creates a new Executor
func NewExecutor(fsys filesystem.FileSystem, logger core.Logger, opts Options) *Executor {
	if logger == nil {
		logger = core.NopLogger()
	}
	return &Executor{
		fs:       fsys,
		logger:   logger,
		eventBus: core.NewSyncEventBus(logger),
		opts:     opts,
	}
}

// EventBus returns the executor's event bus for subscription. Handlers of
// rename.* events are called from several goroutines at once.
func (e *Executor) EventBus() core.EventBus {
	return e.eventBus
}

// Run starts every operation of the validated plan at once and waits for all
// of them. Completed renames are never rolled back. The returned error is
// non-nil only when the batch could not start; per-operation failures are in
// the Result, see Result.Err.
//
// A context cancelled before Run is called prevents the start. Once started
// the batch runs to completion.
func (e *Executor) Run(ctx context.Context, p *plan.RenamePlan) (*core.Result, error) {
	if !p.Validated() {
		return nil, ErrNotValidated
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch not started: %w", err)
	}

	e.logger.Info().
		Str("directory", p.Dir.Path).
		Int("operation_count", len(p.Operations)).
		Bool("recheck", e.opts.RecheckBeforeRename).
		Msg("starting execution")

	// Handlers run after cancellation too, the batch is already in flight.
	runCtx := context.WithoutCancel(ctx)
	start := time.Now()
	results := make([]core.OperationResult, len(p.Operations))

	var wg sync.WaitGroup
	for i, op := range p.Operations {
		wg.Add(1)
		go func(i int, op plan.RenameOperation) {
			defer wg.Done()
			results[i] = e.runOperation(runCtx, p, op)
		}(i, op)
	}
	wg.Wait()

	result := &core.Result{
		Success:    true,
		Operations: results,
		Errors:     []error{},
		Duration:   time.Since(start),
	}
	for _, opResult := range results {
		if opResult.Error != nil {
			result.Success = false
			result.Errors = append(result.Errors, opResult.Error)
		}
	}

	succeeded := result.Succeeded()
	e.eventBus.Publish(runCtx, core.NewEvent(core.EventBatchCompleted, core.BatchEvent{
		Total:     len(results),
		Succeeded: succeeded,
		Failed:    len(results) - succeeded,
		Duration:  result.Duration,
	}))

	e.logger.Info().
		Bool("success", result.Success).
		Int("succeeded", succeeded).
		Int("failed", len(results)-succeeded).
		Dur("duration", result.Duration).
		Msg("execution completed")

	return result, nil
}

func (e *Executor) runOperation(ctx context.Context, p *plan.RenamePlan, op plan.RenameOperation) core.OperationResult {
	start := time.Now()
	e.eventBus.Publish(ctx, core.NewEvent(core.EventRenameStarted, core.RenameEvent{
		OperationID: op.ID,
		Source:      op.Source,
		Target:      op.Target,
	}))

	e.logger.Debug().
		Str("op_id", string(op.ID)).
		Str("source", op.Source).
		Str("target", op.Target).
		Msg("renaming")

	err := e.recheck(p, op)
	if err == nil {
		err = e.fs.Rename(op.Source, op.Target)
	}

	opResult := core.OperationResult{
		OperationID: op.ID,
		Source:      op.Source,
		Target:      op.Target,
		Status:      core.StatusSuccess,
		Duration:    time.Since(start),
	}

	if err != nil {
		renameErr := &core.RenameError{ID: op.ID, Source: op.Source, Target: op.Target, Cause: err}
		opResult.Status = core.StatusFailure
		opResult.Error = renameErr

		e.logger.Warn().
			Str("op_id", string(op.ID)).
			Err(renameErr).
			Msg("rename failed")

		e.eventBus.Publish(ctx, core.NewEvent(core.EventRenameFailed, core.RenameEvent{
			OperationID: op.ID,
			Source:      op.Source,
			Target:      op.Target,
			Error:       renameErr,
			Duration:    opResult.Duration,
		}))
		return opResult
	}

	e.eventBus.Publish(ctx, core.NewEvent(core.EventRenameCompleted, core.RenameEvent{
		OperationID: op.ID,
		Source:      op.Source,
		Target:      op.Target,
		Duration:    opResult.Duration,
	}))
	return opResult
}

// recheck narrows the window between validation and rename. It does not
// close it: nothing is locked.
func (e *Executor) recheck(p *plan.RenamePlan, op plan.RenameOperation) error {
	if !e.opts.RecheckBeforeRename {
		return nil
	}
	exists, err := pathsafe.Exists(e.fs, op.Target)
	if err != nil {
		return err
	}
	if exists {
		return &core.TargetExistsError{Path: op.Target}
	}
	if snap, ok := p.Snapshot(op.ID); ok {
		return snap.Verify(e.fs)
	}
	return nil
}
