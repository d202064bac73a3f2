package plan

import (
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/filesystem"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/listing"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/pathsafe"
)

// MappingRecord asks for the entry named Old to be renamed to New. An empty
// New leaves the entry unchanged.
type MappingRecord struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// BuildMapping plans a rename for every entry of dir named by a mapping
// record. Both sides of each record are sanitized first and the first record
// whose Old equals an entry name wins. Every record with a usable New
// contributes a candidate target, whether or not its Old is present.
func BuildMapping(fsys filesystem.ReadFS, dir listing.Directory, mapping []MappingRecord, ext string) (*RenamePlan, error) {
	records := make([]MappingRecord, 0, len(mapping))
	p := &RenamePlan{Dir: dir, Mode: ModeMapping, Candidates: []string{}}
	for _, rec := range mapping {
		clean := MappingRecord{
			Old: pathsafe.SanitizeName(rec.Old),
			New: pathsafe.SanitizeName(rec.New),
		}
		if clean.New == "" {
			continue
		}
		records = append(records, clean)
		p.Candidates = append(p.Candidates, dir.Join(clean.New))
	}

	entries, err := listing.ListEntries(fsys, dir, ext)
	if err != nil {
		return nil, err
	}

	var ids sequence
	for _, entry := range entries {
		rec, ok := findRecord(records, entry.Name)
		if !ok {
			continue
		}
		p.Operations = append(p.Operations, RenameOperation{
			ID:     ids.next(),
			Source: entry.Path,
			Target: dir.Join(rec.New),
		})
	}
	return p, nil
}

func findRecord(records []MappingRecord, name string) (MappingRecord, bool) {
	for _, rec := range records {
		if rec.Old == name {
			return rec, true
		}
	}
	return MappingRecord{}, false
}
