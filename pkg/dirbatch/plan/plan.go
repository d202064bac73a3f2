// Package plan builds and validates batches of renames inside a single
// directory.
package plan

import (
	"fmt"

	"github.com/arthur-debert/dirbatch/pkg/dirbatch/core"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/listing"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/validation"
)

// Mode identifies how a plan's targets were computed.
type Mode string

const (
	ModePattern Mode = "pattern"
	ModeMapping Mode = "mapping"
)

// RenameOperation moves Source to Target. Both are absolute paths.
type RenameOperation struct {
	ID     core.OperationID `json:"id"`
	Source string           `json:"source"`
	Target string           `json:"target"`
}

// Describe returns the operation's description
func (op RenameOperation) Describe() core.OperationDesc {
	return core.OperationDesc{
		Type: core.OpTypeRename,
		Path: op.Source,
		Details: map[string]interface{}{
			"target": op.Target,
		},
	}
}

// RenamePlan is an ordered batch of renames inside Dir.
//
// Candidates are the target paths validation checks. For pattern plans they
// are the operation targets. For mapping plans they cover every usable
// mapping record, including records whose source is not in the directory.
type RenamePlan struct {
	Dir        listing.Directory
	Mode       Mode
	Operations []RenameOperation
	Candidates []string

	validated bool
	snapshots map[core.OperationID]*validation.Snapshot
}

// Validated reports whether the plan passed Validate.
func (p *RenamePlan) Validated() bool {
	return p.validated
}

// Snapshot returns the state of an operation's source recorded during
// validation.
func (p *RenamePlan) Snapshot(id core.OperationID) (*validation.Snapshot, bool) {
	snap, ok := p.snapshots[id]
	return snap, ok
}

// Targets returns the operation targets in plan order.
func (p *RenamePlan) Targets() []string {
	targets := make([]string, len(p.Operations))
	for i, op := range p.Operations {
		targets[i] = op.Target
	}
	return targets
}

// sequence hands out operation IDs in plan order: rename-1, rename-2, ...
type sequence struct {
	n int
}

func (s *sequence) next() core.OperationID {
	s.n++
	return core.OperationID(fmt.Sprintf("%s-%d", core.OpTypeRename, s.n))
}
