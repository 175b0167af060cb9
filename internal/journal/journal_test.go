package journal

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/dinghy6/sabnzbd-scripts/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moved(src, dst string) types.Operation {
	return types.Operation{SourcePath: src, TargetPath: dst, Action: types.ActionMove, Status: types.StatusSuccess}
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	m := New(t.TempDir())

	require.NoError(t, m.Record(ctx, moved("/dl/a.mkv", "/lib/UFC 300/a.mkv")))

	replaced := moved("/dl/b.mkv", "/lib/UFC 301/b.mkv")
	replaced.Action = types.ActionReplace
	replaced.ReplacedPath = "/lib/UFC 301/old.mkv"
	require.NoError(t, m.Record(ctx, replaced))

	// ignored
	dry := moved("/dl/c.mkv", "/lib/c.mkv")
	dry.DryRun = true
	require.NoError(t, m.Record(ctx, dry))
	require.NoError(t, m.Record(ctx, types.Operation{SourcePath: "/dl/d.mkv", Status: types.StatusFailed}))
	require.NoError(t, m.Record(ctx, types.Operation{SourcePath: "/dl/e.mkv", Status: types.StatusSuccess, Action: types.ActionNone}))

	entries, err := m.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "/dl/a.mkv", entries[0].SourcePath)
	assert.Equal(t, m.RunID(), entries[0].RunID)
	assert.NotEmpty(t, entries[0].ID)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
	assert.Equal(t, "/lib/UFC 301/old.mkv", entries[1].ReplacedPath)
	assert.False(t, entries[1].Timestamp.IsZero())
}

func TestLastRun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first := New(dir)
	require.NoError(t, first.Record(ctx, moved("/dl/a.mkv", "/lib/a.mkv")))

	second := New(dir)
	require.NoError(t, second.Record(ctx, moved("/dl/b.mkv", "/lib/b.mkv")))
	require.NoError(t, second.Record(ctx, moved("/dl/c.mkv", "/lib/c.mkv")))

	run, err := first.LastRun(ctx)
	require.NoError(t, err)
	require.Len(t, run, 2)
	assert.Equal(t, "/dl/c.mkv", run[0].SourcePath, "newest first")
	assert.Equal(t, "/dl/b.mkv", run[1].SourcePath)

	require.NoError(t, first.Forget(ctx, run[0].ID, run[1].ID))
	run, err = first.LastRun(ctx)
	require.NoError(t, err)
	require.Len(t, run, 1)
	assert.Equal(t, "/dl/a.mkv", run[0].SourcePath)
}

func TestLastRun_Empty(t *testing.T) {
	_, err := New(t.TempDir()).LastRun(context.Background())
	assert.True(t, errors.As(err, &types.ErrJournalEmpty{}))
}

func TestClean(t *testing.T) {
	ctx := context.Background()
	m := New(t.TempDir())
	require.NoError(t, m.Clean(ctx), "cleaning a missing journal is fine")

	require.NoError(t, m.Record(ctx, moved("/dl/a.mkv", "/lib/a.mkv")))
	assert.FileExists(t, m.Path())

	require.NoError(t, m.Clean(ctx))
	entries, err := m.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCorruptJournal(t *testing.T) {
	m := New(t.TempDir())
	require.NoError(t, os.WriteFile(m.Path(), []byte("{not json"), 0644))

	_, err := m.ListAll(context.Background())
	assert.Error(t, err)
	assert.Error(t, m.Record(context.Background(), moved("/dl/a.mkv", "/lib/a.mkv")))
}
