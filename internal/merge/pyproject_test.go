// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const existingPyproject = `[build-system]
requires = ["setuptools>=68"]
build-backend = "setuptools.build_meta"

[project]
name = "svc"
version = "1.2.3"

[tool.black]
line-length = 88

[tool.pytest.ini_options]
testpaths = ["svc/tests"]
addopts = "-q --cov=svc --cov-report=term"
markers = ["db: needs a database"]

[tool.poetry]
packages = [{include = "svc"}]
`

const templatePyproject = `[tool.black]
line-length = 100
target-version = ["py311"]

[tool.isort]
profile = "black"

[tool.pytest.ini_options]
minversion = "7.0"
testpaths = ["tests"]
addopts = "-ra --strict-markers"
markers = ["slow: marks tests as slow"]
`

// loadTOML decodes a TOML file into a generic tree for assertions.
func loadTOML(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, toml.Unmarshal(data, &doc))
	return doc
}

func writePyproject(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pyproject.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPyprojectDefaultModePreservesExisting(t *testing.T) {
	path := writePyproject(t, existingPyproject)

	require.NoError(t, Pyproject(path, templatePyproject, false))
	got := loadTOML(t, path)

	// Identity tables survive untouched.
	assert.Equal(t, map[string]any{
		"requires":      []any{"setuptools>=68"},
		"build-backend": "setuptools.build_meta",
	}, got["build-system"])
	assert.Equal(t, map[string]any{"name": "svc", "version": "1.2.3"}, got["project"])

	tool := got["tool"].(map[string]any)

	// Existing tool leaves win; missing tools and keys are added.
	black := tool["black"].(map[string]any)
	assert.Equal(t, int64(88), black["line-length"])
	assert.Equal(t, []any{"py311"}, black["target-version"])
	assert.Equal(t, map[string]any{"profile": "black"}, tool["isort"])

	// User pytest settings survive in default mode.
	ini := tool["pytest"].(map[string]any)["ini_options"].(map[string]any)
	assert.Equal(t, []any{"svc/tests"}, ini["testpaths"])
	assert.Equal(t, "-q --cov=svc --cov-report=term", ini["addopts"])

	// Non-standard tools are never touched.
	assert.Contains(t, tool, "poetry")

	// The atomic write leaves no temp residue next to the file.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestPyprojectOverwriteMode(t *testing.T) {
	path := writePyproject(t, existingPyproject)

	require.NoError(t, Pyproject(path, templatePyproject, true))
	got := loadTOML(t, path)

	// Identity tables still survive untouched in overwrite mode.
	assert.Equal(t, map[string]any{"name": "svc", "version": "1.2.3"}, got["project"])
	assert.Contains(t, got, "build-system")

	tool := got["tool"].(map[string]any)

	// Standardizable tools are replaced with template versions.
	assert.Equal(t, map[string]any{
		"line-length":    int64(100),
		"target-version": []any{"py311"},
	}, tool["black"])

	// pytest merges selectively: template standards plus user structure
	// and coverage settings.
	ini := tool["pytest"].(map[string]any)["ini_options"].(map[string]any)
	assert.Equal(t, "7.0", ini["minversion"])
	assert.Equal(t, []any{"svc/tests"}, ini["testpaths"])
	assert.Equal(t, "-ra --strict-markers --cov=svc --cov-report=term", ini["addopts"])
	assert.Equal(t, []any{"slow: marks tests as slow", "db: needs a database"}, ini["markers"])

	// Unlisted tools (poetry) survive overwrite mode.
	assert.Contains(t, tool, "poetry")
}

func TestPyprojectMissingFileCreatesToolTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pyproject.toml")

	require.NoError(t, Pyproject(path, templatePyproject, false))
	got := loadTOML(t, path)

	assert.NotContains(t, got, "build-system")
	assert.Contains(t, got["tool"].(map[string]any), "black")
}

func TestPyprojectInvalidTOML(t *testing.T) {
	path := writePyproject(t, "[tool.black\nbroken")

	err := Pyproject(path, templatePyproject, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}

func TestCoverageArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "equals form",
			args: []string{"-q", "--cov=svc", "--cov-report=term"},
			want: []string{"--cov=svc", "--cov-report=term"},
		},
		{
			name: "bare cov with value token",
			args: []string{"--cov", "src", "-ra"},
			want: []string{"--cov", "src"},
		},
		{
			name: "no coverage args",
			args: []string{"-ra", "--strict-markers"},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coverageArgs(tt.args))
		})
	}
}
