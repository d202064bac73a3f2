// Package journal keeps an append-only record of rename batches so that a
// partially failed batch can be reconciled by hand.
//
// Entries are stored one JSON document per line. Writers take an advisory
// lock on "<path>.lock" so concurrent processes never interleave entries.
package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/arthur-debert/dirbatch/pkg/dirbatch/core"
)

// Operation records one rename of a batch.
type Operation struct {
	ID     core.OperationID     `json:"id"`
	Source string               `json:"source"`
	Target string               `json:"target"`
	Status core.OperationStatus `json:"status"`
	Error  string               `json:"error,omitempty"`
}

// Entry records one batch.
type Entry struct {
	ID         string      `json:"id"`
	Time       time.Time   `json:"time"`
	Command    string      `json:"command"`
	Directory  string      `json:"directory"`
	DryRun     bool        `json:"dry_run"`
	Success    bool        `json:"success"`
	Operations []Operation `json:"operations"`
}

// NewEntry starts an entry for a batch run by command in directory.
func NewEntry(command, directory string) *Entry {
	return &Entry{
		ID:         uuid.New().String(),
		Time:       time.Now().UTC(),
		Command:    command,
		Directory:  directory,
		Operations: []Operation{},
	}
}

// AddResult records the outcome of every operation in result.
func (e *Entry) AddResult(result *core.Result) {
	e.Success = result.Success
	for _, op := range result.Operations {
		rec := Operation{
			ID:     op.OperationID,
			Source: op.Source,
			Target: op.Target,
			Status: op.Status,
		}
		if op.Error != nil {
			rec.Error = op.Error.Error()
		}
		e.Operations = append(e.Operations, rec)
	}
}

// Journal appends entries to a file.
type Journal struct {
	path   string
	lock   *flock.Flock
	logger core.Logger
}

// Open prepares the journal at path, creating its directory if needed. The
// file itself is created by the first Append.
func Open(path string, logger core.Logger) (*Journal, error) {
	if logger == nil {
		logger = core.NopLogger()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	return &Journal{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}, nil
}

// Path returns the journal file's path.
func (j *Journal) Path() string {
	return j.path
}

// Append writes entry as a single line while holding the journal lock.
func (j *Journal) Append(entry *Entry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode journal entry: %w", err)
	}
	line = append(line, '\n')

	if err := j.lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", j.path, err)
	}
	defer func() {
		if err := j.lock.Unlock(); err != nil {
			j.logger.Warn().Err(err).Str("path", j.path).Msg("failed to release journal lock")
		}
	}()

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write journal entry: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close journal: %w", err)
	}

	j.logger.Debug().
		Str("entry_id", entry.ID).
		Str("command", entry.Command).
		Int("operations", len(entry.Operations)).
		Msg("journal entry appended")
	return nil
}

// Read returns every entry in the journal at path, oldest first. A missing
// journal has no entries.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	entries := []Entry{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("failed to decode journal line %d: %w", lineNo, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return entries, nil
}
