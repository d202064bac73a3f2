package plan

import (
	"strings"

	"github.com/arthur-debert/dirbatch/pkg/dirbatch/filesystem"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/listing"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/pathsafe"
)

// BuildPattern plans a rename for every entry of dir whose name contains
// search. The first occurrence is replaced and the result sanitized.
// Entries not containing search are left out. An empty search matches every
// name and prefixes it with replace.
func BuildPattern(fsys filesystem.ReadFS, dir listing.Directory, search, replace, ext string) (*RenamePlan, error) {
	entries, err := listing.ListEntries(fsys, dir, ext)
	if err != nil {
		return nil, err
	}

	p := &RenamePlan{Dir: dir, Mode: ModePattern}
	var ids sequence
	for _, entry := range entries {
		if !strings.Contains(entry.Name, search) {
			continue
		}
		newName := pathsafe.SanitizeName(strings.Replace(entry.Name, search, replace, 1))
		p.Operations = append(p.Operations, RenameOperation{
			ID:     ids.next(),
			Source: entry.Path,
			Target: dir.Join(newName),
		})
	}
	p.Candidates = p.Targets()
	return p, nil
}
