package core

import (
	"time"
)

// OperationResult holds the outcome of a single operation's execution
type OperationResult struct {
	OperationID OperationID
	Source      string
	Target      string
	Status      OperationStatus
	Error       error
	Duration    time.Duration
}

// Result holds the overall outcome of executing a batch
type Result struct {
	Success    bool              // True if all operations were successful
	Operations []OperationResult // Results in plan order
	Duration   time.Duration
	Errors     []error // Failures, in plan order
}

// Succeeded returns the number of successful operations.
func (r *Result) Succeeded() int {
	n := 0
	for _, op := range r.Operations {
		if op.Status == StatusSuccess {
			n++
		}
	}
	return n
}

// Err returns a *BatchError describing the failed operations, or nil when
// every operation succeeded.
func (r *Result) Err() error {
	if r.Success {
		return nil
	}
	batchErr := &BatchError{
		Succeeded: r.Succeeded(),
		Total:     len(r.Operations),
	}
	for _, op := range r.Operations {
		var renameErr *RenameError
		if op.Error == nil {
			continue
		}
		if re, ok := op.Error.(*RenameError); ok {
			renameErr = re
		} else {
			renameErr = &RenameError{ID: op.OperationID, Source: op.Source, Target: op.Target, Cause: op.Error}
		}
		batchErr.Failures = append(batchErr.Failures, renameErr)
	}
	return batchErr
}
