package execution_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dirbatch/pkg/dirbatch/core"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/execution"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/filesystem"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/listing"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/plan"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/validation"
)

var data = listing.Directory{Path: "/data"}

func newDataFS(t *testing.T, names ...string) *filesystem.TestFileSystem {
	t.Helper()
	tfs := filesystem.NewTestFileSystem()
	require.NoError(t, tfs.MkdirAll("/data", 0755))
	for _, n := range names {
		require.NoError(t, tfs.WriteFile("/data/"+n, []byte(n), 0644))
	}
	return tfs
}

func validPlan(t *testing.T, fsys filesystem.ReadFS, dir listing.Directory, search, replace string) *plan.RenamePlan {
	t.Helper()
	p, err := plan.BuildPattern(fsys, dir, search, replace, "")
	require.NoError(t, err)
	require.NoError(t, plan.Validate(context.Background(), fsys, p))
	return p
}

type eventRecorder struct {
	mu     sync.Mutex
	events map[string][]core.Event
}

func recordEvents(bus core.EventBus, types ...string) *eventRecorder {
	rec := &eventRecorder{events: make(map[string][]core.Event)}
	bus.Subscribe(core.EventHandlerFunc(func(ctx context.Context, event core.Event) error {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.events[event.Type()] = append(rec.events[event.Type()], event)
		return nil
	}), types...)
	return rec
}

func (r *eventRecorder) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events[eventType])
}

func TestExecutorRun(t *testing.T) {
	ctx := context.Background()

	t.Run("renames every operation", func(t *testing.T) {
		tfs := newDataFS(t, "a.txt", "ab.txt", "b.txt")
		p := validPlan(t, tfs, data, "a", "x")

		executor := execution.NewExecutor(tfs, nil, execution.DefaultOptions())
		events := recordEvents(executor.EventBus(),
			core.EventRenameStarted, core.EventRenameCompleted, core.EventRenameFailed, core.EventBatchCompleted)

		result, err := executor.Run(ctx, p)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.NoError(t, result.Err())
		assert.Equal(t, 2, result.Succeeded())

		for _, name := range []string{"x.txt", "xb.txt", "b.txt"} {
			assert.True(t, tfs.Exists("/data/"+name), name)
		}
		assert.False(t, tfs.Exists("/data/a.txt"))
		assert.False(t, tfs.Exists("/data/ab.txt"))

		assert.Equal(t, 2, events.count(core.EventRenameStarted))
		assert.Equal(t, 2, events.count(core.EventRenameCompleted))
		assert.Equal(t, 0, events.count(core.EventRenameFailed))
		require.Equal(t, 1, events.count(core.EventBatchCompleted))

		batch := events.events[core.EventBatchCompleted][0].Data().(core.BatchEvent)
		assert.Equal(t, 2, batch.Total)
		assert.Equal(t, 2, batch.Succeeded)
		assert.Equal(t, 0, batch.Failed)
	})

	t.Run("results follow plan order", func(t *testing.T) {
		names := []string{"f0", "f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9"}
		tfs := newDataFS(t, names...)
		p := validPlan(t, tfs, data, "f", "g")

		result, err := execution.NewExecutor(tfs, nil, execution.DefaultOptions()).Run(ctx, p)
		require.NoError(t, err)
		require.Len(t, result.Operations, len(names))
		for i, opResult := range result.Operations {
			assert.Equal(t, p.Operations[i].ID, opResult.OperationID)
			assert.Equal(t, core.StatusSuccess, opResult.Status)
		}
	})

	t.Run("partial failure is not rolled back", func(t *testing.T) {
		tfs := newDataFS(t, "a1", "a2", "a3")
		p := validPlan(t, tfs, data, "a", "b")
		ioErr := errors.New("input/output error")
		tfs.FailRename("/data/a2", ioErr)

		executor := execution.NewExecutor(tfs, nil, execution.DefaultOptions())
		events := recordEvents(executor.EventBus(), core.EventRenameFailed)

		result, err := executor.Run(ctx, p)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, 2, result.Succeeded())
		require.Len(t, result.Errors, 1)

		assert.True(t, tfs.Exists("/data/b1"))
		assert.True(t, tfs.Exists("/data/b3"))
		assert.True(t, tfs.Exists("/data/a2"))
		assert.False(t, tfs.Exists("/data/b2"))

		assert.Equal(t, core.StatusFailure, result.Operations[1].Status)
		batchErr := result.Err()
		assert.True(t, errors.Is(batchErr, core.ErrRenameIO))
		assert.True(t, errors.Is(batchErr, ioErr))

		var be *core.BatchError
		require.True(t, errors.As(batchErr, &be))
		assert.Equal(t, 2, be.Succeeded)
		assert.Equal(t, 3, be.Total)
		require.Len(t, be.Failures, 1)
		assert.Equal(t, "/data/a2", be.Failures[0].Source)
		assert.Equal(t, "/data/b2", be.Failures[0].Target)
		assert.Equal(t, 1, events.count(core.EventRenameFailed))
	})

	t.Run("unvalidated plan", func(t *testing.T) {
		tfs := newDataFS(t, "a")
		p, err := plan.BuildPattern(tfs, data, "a", "b", "")
		require.NoError(t, err)

		_, err = execution.NewExecutor(tfs, nil, execution.DefaultOptions()).Run(ctx, p)
		assert.ErrorIs(t, err, execution.ErrNotValidated)
		assert.True(t, tfs.Exists("/data/a"))
	})

	t.Run("cancelled before start", func(t *testing.T) {
		tfs := newDataFS(t, "a")
		p := validPlan(t, tfs, data, "a", "b")

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		result, err := execution.NewExecutor(tfs, nil, execution.DefaultOptions()).Run(cctx, p)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, result)
		assert.True(t, tfs.Exists("/data/a"))
		assert.False(t, tfs.Exists("/data/b"))
	})

	t.Run("empty plan", func(t *testing.T) {
		tfs := newDataFS(t, "a")
		p := validPlan(t, tfs, data, "zzz", "b")

		result, err := execution.NewExecutor(tfs, nil, execution.DefaultOptions()).Run(ctx, p)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Empty(t, result.Operations)
	})
}

func TestExecutorRecheck(t *testing.T) {
	ctx := context.Background()

	t.Run("target created after validation", func(t *testing.T) {
		tfs := newDataFS(t, "a", "c")
		p := validPlan(t, tfs, data, "a", "b")
		require.NoError(t, tfs.WriteFile("/data/b", []byte("intruder"), 0644))

		result, err := execution.NewExecutor(tfs, nil, execution.DefaultOptions()).Run(ctx, p)
		require.NoError(t, err)
		require.False(t, result.Success)
		assert.True(t, errors.Is(result.Errors[0], core.ErrTargetExists))

		content, err := tfs.Stat("/data/b")
		require.NoError(t, err)
		assert.Equal(t, int64(len("intruder")), content.Size())
		assert.True(t, tfs.Exists("/data/a"))
	})

	t.Run("source changed after validation", func(t *testing.T) {
		tfs := newDataFS(t, "a")
		p := validPlan(t, tfs, data, "a", "b")
		require.NoError(t, tfs.WriteFile("/data/a", []byte("rewritten"), 0644))

		result, err := execution.NewExecutor(tfs, nil, execution.DefaultOptions()).Run(ctx, p)
		require.NoError(t, err)
		require.False(t, result.Success)
		assert.True(t, errors.Is(result.Errors[0], validation.ErrSourceChanged))
		assert.True(t, errors.Is(result.Errors[0], core.ErrRenameIO))
		assert.False(t, tfs.Exists("/data/b"))
	})

	t.Run("disabled recheck renames over the new target", func(t *testing.T) {
		tfs := newDataFS(t, "a")
		p := validPlan(t, tfs, data, "a", "b")
		require.NoError(t, tfs.WriteFile("/data/b", []byte("intruder"), 0644))

		result, err := execution.NewExecutor(tfs, nil, execution.Options{}).Run(ctx, p)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.False(t, tfs.Exists("/data/a"))
	})
}

func TestExecutorRealFS(t *testing.T) {
	tempDir := t.TempDir()
	for _, name := range []string{"IMG_001.jpg", "IMG_002.jpg", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, name), []byte(name), 0644))
	}

	osfs := filesystem.NewOSFileSystem()
	dir, err := listing.ResolveDirectory(osfs, tempDir)
	require.NoError(t, err)
	p := validPlan(t, osfs, dir, "IMG_", "holiday-")

	result, err := execution.NewExecutor(osfs, nil, execution.DefaultOptions()).Run(context.Background(), p)
	require.NoError(t, err)
	require.NoError(t, result.Err())

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{"holiday-001.jpg", "holiday-002.jpg", "notes.txt"}, names)
}
