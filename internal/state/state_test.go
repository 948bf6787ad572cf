// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/gate-engine/pkg/types"
)

func sampleConfig() *types.QualityConfig {
	return &types.QualityConfig{
		QualityGates: types.QualityGates{
			CurrentPhase: 1,
			Coverage:     types.CoverageThresholds{Minimum: 60, Target: 80},
		},
		Project: types.ProjectInfo{Type: "backend", Languages: []string{"python"}, BackendPath: "."},
		Tools: types.ToolsConfig{
			Backend: map[string]types.ToolSetting{
				"black": {Enabled: types.ToggleAuto},
				"mypy":  {Enabled: types.ToggleOff},
			},
		},
		GeneratedAt: "2026-08-29T10:00:00Z",
	}
}

func TestConfigRoundTrip(t *testing.T) {
	root := t.TempDir()
	cfg := sampleConfig()

	require.NoError(t, SaveConfig(root, cfg))
	got, err := LoadConfig(root)
	require.NoError(t, err)

	assert.Equal(t, cfg, got)
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.ErrorIs(t, err, ErrNoConfig)
}

func TestLoadConfigPhaseOutOfRange(t *testing.T) {
	root := t.TempDir()
	content := "quality_gates:\n  current_phase: 7\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFile), []byte(content), 0o644))

	_, err := LoadConfig(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

// User-added top-level keys must survive regeneration.
func TestSaveConfigPreservesUnmanagedKeys(t *testing.T) {
	root := t.TempDir()
	content := `quality_gates:
  current_phase: 0
notes: |
  Team decision 2026-08-12: keep mypy off until the ORM upgrade lands.
ci_owner: platform-team
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFile), []byte(content), 0o644))

	require.NoError(t, SaveConfig(root, sampleConfig()))

	data, err := os.ReadFile(filepath.Join(root, ConfigFile))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "platform-team", doc["ci_owner"])
	assert.Contains(t, doc["notes"], "Team decision")

	// Managed keys come from the new config, not the old file.
	gates := doc["quality_gates"].(map[string]any)
	assert.Equal(t, 1, gates["current_phase"])
}

func TestSaveConfigIdempotent(t *testing.T) {
	root := t.TempDir()
	cfg := sampleConfig()

	require.NoError(t, SaveConfig(root, cfg))
	first, err := os.ReadFile(filepath.Join(root, ConfigFile))
	require.NoError(t, err)

	require.NoError(t, SaveConfig(root, cfg))
	second, err := os.ReadFile(filepath.Join(root, ConfigFile))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestBaselineRoundTrip(t *testing.T) {
	root := t.TempDir()
	snap := &types.BaselineSnapshot{
		Counts:     map[string]int{"eslint": 12, "mypy": 3},
		CapturedAt: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
	}

	require.NoError(t, SaveBaseline(root, snap))
	got, err := LoadBaseline(root)
	require.NoError(t, err)

	assert.Equal(t, snap, got)
}

func TestLoadBaselineMissing(t *testing.T) {
	_, err := LoadBaseline(t.TempDir())
	assert.ErrorIs(t, err, ErrNoBaseline)
}

func TestLockContention(t *testing.T) {
	root := t.TempDir()

	lock, err := AcquireLock(root)
	require.NoError(t, err)
	defer lock.Release()

	_, err = AcquireLock(root)
	require.Error(t, err)

	var locked *LockedError
	require.True(t, errors.As(err, &locked))
	require.NotNil(t, locked.Info)
	assert.Equal(t, os.Getpid(), locked.Info.PID)
}

func TestLockReleaseAllowsReacquire(t *testing.T) {
	root := t.TempDir()

	lock, err := AcquireLock(root)
	require.NoError(t, err)
	require.NoError(t, lock.Release())

	again, err := AcquireLock(root)
	require.NoError(t, err)
	assert.NoError(t, again.Release())

	// Release is safe to call twice.
	assert.NoError(t, lock.Release())
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.toml")

	require.NoError(t, os.WriteFile(path, []byte("old = true\n"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("new = true\n"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new = true\n", string(data))

	// No temp files left behind after the rename.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.toml", entries[0].Name())
}
