package dirbatch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dirbatch/pkg/dirbatch"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/config"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/convert"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/core"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/filesystem"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/journal"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/plan"
)

func newDataFS(t *testing.T, names ...string) *filesystem.TestFileSystem {
	t.Helper()
	tfs := filesystem.NewTestFileSystem()
	require.NoError(t, tfs.MkdirAll("/data", 0755))
	for _, n := range names {
		require.NoError(t, tfs.WriteFile("/data/"+n, []byte(n), 0644))
	}
	return tfs
}

func openJournal(t *testing.T) *journal.Journal {
	t.Helper()
	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.jsonl"), nil)
	require.NoError(t, err)
	return j
}

func TestEngineFetchFiles(t *testing.T) {
	tfs := newDataFS(t, "a.txt", "b.md")
	engine := dirbatch.NewEngine(tfs)

	files, err := engine.FetchFiles(context.Background(), "/data", "txt")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.txt", files[0].Filename)

	_, err = engine.FetchFiles(context.Background(), "/nowhere", "")
	assert.True(t, errors.Is(err, core.ErrNotADirectory))
}

func TestEngineBulkRename(t *testing.T) {
	ctx := context.Background()

	t.Run("renames and journals", func(t *testing.T) {
		tfs := newDataFS(t, "a.txt", "ab.txt", "b.txt")
		j := openJournal(t)
		engine := dirbatch.NewEngine(tfs, dirbatch.WithJournal(j))

		result, err := engine.BulkRename(ctx, "/data", "a", "x", "")
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.True(t, tfs.Exists("/data/x.txt"))
		assert.True(t, tfs.Exists("/data/xb.txt"))
		assert.True(t, tfs.Exists("/data/b.txt"))

		entries, err := journal.Read(j.Path())
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, dirbatch.CommandBulkRename, entries[0].Command)
		assert.Equal(t, "/data", entries[0].Directory)
		assert.True(t, entries[0].Success)
		assert.Len(t, entries[0].Operations, 2)
	})

	t.Run("validation failure mutates nothing", func(t *testing.T) {
		tfs := newDataFS(t, "a.txt", "ab.txt", "b.txt")
		j := openJournal(t)
		engine := dirbatch.NewEngine(tfs, dirbatch.WithJournal(j))

		_, err := engine.BulkRename(ctx, "/data", "a", "", "")
		assert.True(t, errors.Is(err, core.ErrTargetExists))
		for _, name := range []string{"a.txt", "ab.txt", "b.txt"} {
			assert.True(t, tfs.Exists("/data/"+name))
		}

		entries, err := journal.Read(j.Path())
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("partial failure is journaled", func(t *testing.T) {
		tfs := newDataFS(t, "a1", "a2", "a3")
		tfs.FailRename("/data/a3", errors.New("device busy"))
		j := openJournal(t)
		engine := dirbatch.NewEngine(tfs, dirbatch.WithJournal(j))

		result, err := engine.BulkRename(ctx, "/data", "a", "b", "")
		var batchErr *core.BatchError
		require.True(t, errors.As(err, &batchErr))
		assert.Equal(t, 2, batchErr.Succeeded)
		assert.False(t, result.Success)

		entries, err := journal.Read(j.Path())
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.False(t, entries[0].Success)
		assert.Equal(t, core.StatusFailure, entries[0].Operations[2].Status)
		assert.Contains(t, entries[0].Operations[2].Error, "device busy")
	})
}

func TestEngineRenameFiles(t *testing.T) {
	ctx := context.Background()

	t.Run("mapping", func(t *testing.T) {
		tfs := newDataFS(t, "a", "b")
		engine := dirbatch.NewEngine(tfs)

		_, err := engine.RenameFiles(ctx, "/data", []plan.MappingRecord{
			{Old: "a", New: "alpha"},
			{Old: "b", New: ""},
		}, "")
		require.NoError(t, err)
		assert.True(t, tfs.Exists("/data/alpha"))
		assert.True(t, tfs.Exists("/data/b"))
	})

	t.Run("duplicate targets with one present source", func(t *testing.T) {
		tfs := newDataFS(t, "a")
		engine := dirbatch.NewEngine(tfs)

		_, err := engine.RenameFiles(ctx, "/data", []plan.MappingRecord{
			{Old: "a", New: "z"},
			{Old: "b", New: "z"},
		}, "")
		assert.True(t, errors.Is(err, core.ErrDuplicateTarget))
		assert.True(t, tfs.Exists("/data/a"))
	})
}

func TestEngineResolveImageConversion(t *testing.T) {
	tfs := filesystem.NewTestFileSystem()
	require.NoError(t, tfs.WriteFile("/img/photo.svg", []byte("<svg/>"), 0644))
	engine := dirbatch.NewEngine(tfs)

	target, err := engine.ResolveImageConversion(context.Background(), "/img/photo.svg", "png", "")
	require.NoError(t, err)
	assert.Equal(t, convert.Target{ImagePath: "/img/photo.svg", OutputPath: "/img/photo.png"}, target)

	_, err = engine.ResolveImageConversion(context.Background(), "/img/photo.svg", "jpeg", "")
	assert.True(t, errors.Is(err, core.ErrUnsupportedConversion))
}

func TestEngineEvents(t *testing.T) {
	tfs := newDataFS(t, "a")
	engine := dirbatch.NewEngine(tfs)

	var completed []core.RenameEvent
	engine.EventBus().Subscribe(core.EventHandlerFunc(func(ctx context.Context, event core.Event) error {
		completed = append(completed, event.Data().(core.RenameEvent))
		return nil
	}), core.EventRenameCompleted)

	_, err := engine.BulkRename(context.Background(), "/data", "a", "b", "")
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "/data/a", completed[0].Source)
	assert.Equal(t, "/data/b", completed[0].Target)
}

func TestNewEngineFromConfig(t *testing.T) {
	journalPath := filepath.Join(t.TempDir(), "state", "journal.jsonl")
	cfg := config.DefaultConfig()
	cfg.Journal.Enabled = true
	cfg.Journal.Path = journalPath
	cfg.Execution.RecheckBeforeRename = false

	tfs := newDataFS(t, "a")
	engine, err := dirbatch.NewEngineFromConfig(tfs, cfg, nil)
	require.NoError(t, err)

	p, err := engine.PlanBulkRename(context.Background(), "/data", "a", "b", "")
	require.NoError(t, err)
	// Without the re-check the executor renames over a target that appeared late.
	require.NoError(t, tfs.WriteFile("/data/b", []byte("late"), 0644))

	result, err := engine.Execute(context.Background(), dirbatch.CommandBulkRename, p)
	require.NoError(t, err)
	assert.True(t, result.Success)

	_, err = os.Stat(journalPath)
	assert.NoError(t, err)
}

func TestEngineRealFS(t *testing.T) {
	tempDir := t.TempDir()
	for _, name := range []string{"draft-1.md", "draft-2.md", "keep.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, name), []byte(name), 0644))
	}
	engine := dirbatch.NewEngine(filesystem.NewOSFileSystem())

	_, err := engine.BulkRename(context.Background(), tempDir, "draft", "final", "md")
	require.NoError(t, err)

	files, err := engine.FetchFiles(context.Background(), tempDir, "")
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, f.Filename)
	}
	assert.Equal(t, []string{"final-1.md", "final-2.md", "keep.txt"}, names)

	_, err = engine.BulkRename(context.Background(), tempDir, "final", "../escape", "")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(tempDir, "..escape-1.md"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(tempDir), "escape-1.md"))
	assert.True(t, os.IsNotExist(err))
}
