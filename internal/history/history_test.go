// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gate-engine/pkg/types"
)

func TestRecordAndRecent(t *testing.T) {
	root := t.TempDir()

	store, err := Open(root)
	require.NoError(t, err)
	defer store.Close()

	store.Record(types.PhaseBaseline, types.PhaseChangedOnly, "advance", "ok", "")
	store.Record(types.PhaseChangedOnly, types.PhaseChangedOnly, "advance", "blocked", "mypy: 5 -> 9")
	store.Record(types.PhaseChangedOnly, types.PhaseStrict, "set-phase", "override", "guards bypassed")

	entries, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	assert.Equal(t, "set-phase", entries[0].Command)
	assert.Equal(t, "override", entries[0].Outcome)
	assert.Equal(t, 3, entries[0].ToPhase)
	assert.Equal(t, "advance", entries[2].Command)
	assert.False(t, entries[0].At.IsZero())
}

func TestRecentLimit(t *testing.T) {
	root := t.TempDir()

	store, err := Open(root)
	require.NoError(t, err)
	defer store.Close()

	for i := 0; i < 5; i++ {
		store.Record(types.PhaseBaseline, types.PhaseChangedOnly, "advance", "ok", "")
	}

	entries, err := store.Recent(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestOpenCreatesDatabaseFile(t *testing.T) {
	root := t.TempDir()

	store, err := Open(root)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(filepath.Join(root, ".quality", "history.db"))
	assert.NoError(t, err)
}

func TestRecentEmpty(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	entries, err := store.Recent(0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
