package validation_test

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dirbatch/pkg/dirbatch/filesystem"
	"github.com/arthur-debert/dirbatch/pkg/dirbatch/validation"
)

func TestSnapshot(t *testing.T) {
	t.Run("unchanged source verifies", func(t *testing.T) {
		tfs := filesystem.NewTestFileSystem()
		require.NoError(t, tfs.WriteFile("/data/a.txt", []byte("abc"), 0644))

		snap, err := validation.Take(tfs, "/data/a.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(3), snap.Size)
		assert.NoError(t, snap.Verify(tfs))
	})

	t.Run("missing source cannot be snapshotted", func(t *testing.T) {
		tfs := filesystem.NewTestFileSystem()
		_, err := validation.Take(tfs, "/data/missing")
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})

	t.Run("removed source", func(t *testing.T) {
		tfs := filesystem.NewTestFileSystem()
		require.NoError(t, tfs.WriteFile("/data/a.txt", []byte("abc"), 0644))
		snap, err := validation.Take(tfs, "/data/a.txt")
		require.NoError(t, err)

		require.NoError(t, tfs.Rename("/data/a.txt", "/data/elsewhere.txt"))
		err = snap.Verify(tfs)
		assert.True(t, errors.Is(err, validation.ErrSourceChanged))
		assert.True(t, errors.Is(err, fs.ErrNotExist))
	})

	t.Run("rewritten source", func(t *testing.T) {
		tfs := filesystem.NewTestFileSystem()
		require.NoError(t, tfs.WriteFile("/data/a.txt", []byte("abc"), 0644))
		snap, err := validation.Take(tfs, "/data/a.txt")
		require.NoError(t, err)

		require.NoError(t, tfs.WriteFile("/data/a.txt", []byte("abcdef"), 0644))
		err = snap.Verify(tfs)
		var changed *validation.ChangedError
		require.True(t, errors.As(err, &changed))
		assert.Contains(t, changed.Reason, "size changed")
	})

	t.Run("replaced by directory", func(t *testing.T) {
		tfs := filesystem.NewTestFileSystem()
		require.NoError(t, tfs.WriteFile("/data/a", nil, 0644))
		snap, err := validation.Take(tfs, "/data/a")
		require.NoError(t, err)

		require.NoError(t, tfs.MkdirAll("/data/a", 0755))
		err = snap.Verify(tfs)
		assert.True(t, errors.Is(err, validation.ErrSourceChanged))
	})

	t.Run("touched source", func(t *testing.T) {
		tfs := filesystem.NewTestFileSystem()
		require.NoError(t, tfs.WriteFile("/data/a.txt", []byte("abc"), 0644))
		snap, err := validation.Take(tfs, "/data/a.txt")
		require.NoError(t, err)

		time.Sleep(2 * time.Millisecond)
		require.NoError(t, tfs.WriteFile("/data/a.txt", []byte("xyz"), 0644))
		err = snap.Verify(tfs)
		var changed *validation.ChangedError
		require.True(t, errors.As(err, &changed))
		assert.Equal(t, "modification time changed", changed.Reason)
	})
}
