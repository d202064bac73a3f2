// Package dirbatch lists directories, plans and runs batch renames and
// resolves image conversion targets.
//
// Every rename batch is validated in full before anything is touched: target
// names are sanitized, targets must be distinct, stay inside the directory
// and not exist. Validated batches run concurrently and successful renames
// are never rolled back, so a partial failure leaves the directory half
// renamed. The Engine can record each batch in a journal for reconciliation.
package dirbatch

import (
	"context"
	"fmt"

	"github.com/arthur-debert/dirbatch/pkg/dirbatch/config"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/convert"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/core"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/execution"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/filesystem"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/journal"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/listing"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/plan"
)

// Engine runs dirbatch commands against one filesystem.
type Engine struct {
	fs        filesystem.FileSystem
	logger    core.Logger
	lister    *listing.Lister
	validator *plan.Validator
	executor  *execution.Executor
	resolver  *convert.Resolver
	journal   *journal.Journal
}

// Option configures an Engine
type Option func(*engineOptions)

type engineOptions struct {
	logger  core.Logger
	journal *journal.Journal
	exec    execution.Options
}

// WithLogger sets the engine's logger
func WithLogger(logger core.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithJournal records every rename batch in j
func WithJournal(j *journal.Journal) Option {
	return func(o *engineOptions) {
		o.journal = j
	}
}

// WithExecutionOptions sets the executor's options
func WithExecutionOptions(opts execution.Options) Option {
	return func(o *engineOptions) {
		o.exec = opts
	}
}

// NewEngine creates an Engine on fsys
func NewEngine(fsys filesystem.FileSystem, opts ...Option) *Engine {
	o := engineOptions{
		logger: core.NopLogger(),
		exec:   execution.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = core.NopLogger()
	}

	return &Engine{
		fs:        fsys,
		logger:    o.logger,
		lister:    listing.NewLister(fsys, o.logger),
		validator: plan.NewValidator(fsys, o.logger),
		executor:  execution.NewExecutor(fsys, o.logger, o.exec),
		resolver:  convert.NewResolver(fsys, o.logger),
		journal:   o.journal,
	}
}

// NewEngineFromConfig creates an Engine on fsys set up by cfg. The journal is
// opened when cfg enables it.
func NewEngineFromConfig(fsys filesystem.FileSystem, cfg *config.Config, logger core.Logger) (*Engine, error) {
	opts := []Option{
		WithLogger(logger),
		WithExecutionOptions(execution.Options{
			RecheckBeforeRename: cfg.Execution.RecheckBeforeRename,
		}),
	}
	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path, logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithJournal(j))
	}
	return NewEngine(fsys, opts...), nil
}

// EventBus returns the bus rename events are published on
func (e *Engine) EventBus() core.EventBus {
	return e.executor.EventBus()
}

// FetchFiles describes every entry of the folder at path that passes the
// extension filter.
func (e *Engine) FetchFiles(ctx context.Context, path, ext string) ([]listing.FileMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.lister.FetchFiles(path, ext)
}

// PlanBulkRename builds and validates a pattern-mode plan.
func (e *Engine) PlanBulkRename(ctx context.Context, path, search, replace, ext string) (*plan.RenamePlan, error) {
	dir, err := listing.ResolveDirectory(e.fs, path)
	if err != nil {
		return nil, err
	}
	p, err := plan.BuildPattern(e.fs, dir, search, replace, ext)
	if err != nil {
		return nil, err
	}
	if err := e.validator.Validate(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// PlanRenameFiles builds and validates a mapping-mode plan.
func (e *Engine) PlanRenameFiles(ctx context.Context, path string, mapping []plan.MappingRecord, ext string) (*plan.RenamePlan, error) {
	dir, err := listing.ResolveDirectory(e.fs, path)
	if err != nil {
		return nil, err
	}
	p, err := plan.BuildMapping(e.fs, dir, mapping, ext)
	if err != nil {
		return nil, err
	}
	if err := e.validator.Validate(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// BulkRename replaces the first occurrence of search with replace in every
// matching entry name of the folder at path.
func (e *Engine) BulkRename(ctx context.Context, path, search, replace, ext string) (*core.Result, error) {
	p, err := e.PlanBulkRename(ctx, path, search, replace, ext)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, CommandBulkRename, p)
}

// RenameFiles renames the entries of the folder at path named by mapping.
func (e *Engine) RenameFiles(ctx context.Context, path string, mapping []plan.MappingRecord, ext string) (*core.Result, error) {
	p, err := e.PlanRenameFiles(ctx, path, mapping, ext)
	if err != nil {
		return nil, err
	}
	return e.Execute(ctx, CommandRenameFiles, p)
}

// Execute runs a validated plan and journals the outcome. The error is the
// *core.BatchError of a partially failed batch, or why the batch could not
// start.
func (e *Engine) Execute(ctx context.Context, command string, p *plan.RenamePlan) (*core.Result, error) {
	result, err := e.executor.Run(ctx, p)
	if err != nil {
		return nil, err
	}

	if e.journal != nil {
		entry := journal.NewEntry(command, p.Dir.Path)
		entry.AddResult(result)
		if err := e.journal.Append(entry); err != nil {
			e.logger.Error().Err(err).Str("journal", e.journal.Path()).Msg("failed to journal batch")
		}
	}

	return result, result.Err()
}

// RecordDryRun journals a validated plan that was not executed. It does
// nothing without a journal.
func (e *Engine) RecordDryRun(command string, p *plan.RenamePlan) error {
	if e.journal == nil {
		return nil
	}
	entry := journal.NewEntry(command, p.Dir.Path)
	entry.DryRun = true
	entry.Success = true
	for _, op := range p.Operations {
		entry.Operations = append(entry.Operations, journal.Operation{
			ID:     op.ID,
			Source: op.Source,
			Target: op.Target,
			Status: core.StatusSkipped,
		})
	}
	if err := e.journal.Append(entry); err != nil {
		return fmt.Errorf("failed to journal dry run: %w", err)
	}
	return nil
}

// ResolveImageConversion validates a conversion request and computes its
// output path. Nothing is written.
func (e *Engine) ResolveImageConversion(ctx context.Context, imagePath, format, outputDir string) (convert.Target, error) {
	if err := ctx.Err(); err != nil {
		return convert.Target{}, err
	}
	return e.resolver.Resolve(convert.Request{
		ImagePath: imagePath,
		Format:    format,
		OutputDir: outputDir,
	})
}
