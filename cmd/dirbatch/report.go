package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/arthur-debert/dirbatch/pkg/dirbatch/core"
)

// reporter prints rename outcomes to stderr: one line per operation while
// a batch runs at -v, and a summary of a failed batch.
type reporter struct {
	mu    sync.Mutex
	w     io.Writer
	green *color.Color
	red   *color.Color
	bold  *color.Color
}

func newReporter(w io.Writer, useColor bool) *reporter {
	r := &reporter{
		w:     w,
		green: color.New(color.FgGreen),
		red:   color.New(color.FgRed),
		bold:  color.New(color.Bold),
	}
	for _, c := range []*color.Color{r.green, r.red, r.bold} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// progress handles rename.completed and rename.failed. It is called from
// the executor's rename goroutines.
func (r *reporter) progress(ctx context.Context, event core.Event) error {
	rename, ok := event.Data().(core.RenameEvent)
	if !ok {
		return fmt.Errorf("unexpected %s payload %T", event.Type(), event.Data())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if rename.Error != nil {
		r.red.Fprintf(r.w, "✗ %v\n", rename.Error)
		return nil
	}
	r.green.Fprintf(r.w, "✓ %s -> %s\n", rename.Source, rename.Target)
	return nil
}

func (r *reporter) batch(err *core.BatchError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bold.Fprintf(r.w, "Batch partially failed: %d of %d renames failed\n", len(err.Failures), err.Total)
	r.green.Fprintf(r.w, "✓ %d renamed (not rolled back)\n", err.Succeeded)
	for _, f := range err.Failures {
		r.red.Fprintf(r.w, "✗ %s -> %s: %v\n", f.Source, f.Target, f.Cause)
	}
}
