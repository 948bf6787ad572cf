// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const existingPackageJSON = `{
  "name": "app",
  "version": "0.4.0",
  "scripts": {
    "lint": "my-custom-linter",
    "deploy": "scp dist/ prod:"
  },
  "dependencies": {"react": "^18.2.0"}
}`

var generatedScripts = map[string]string{
	"lint":          "npx eslint .",
	"format":        "npx prettier --write .",
	"quality:check": "npx eslint . && npx tsc --noEmit",
}

func writePackageJSON(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "package.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestPackageScriptsDefaultMode(t *testing.T) {
	path := writePackageJSON(t, existingPackageJSON)

	require.NoError(t, PackageScripts(path, generatedScripts, false))
	got := loadJSON(t, path)

	scripts := got["scripts"].(map[string]any)
	// Existing scripts survive, including a conflicting managed name.
	assert.Equal(t, "my-custom-linter", scripts["lint"])
	assert.Equal(t, "scp dist/ prod:", scripts["deploy"])
	// Missing managed scripts are added.
	assert.Equal(t, "npx prettier --write .", scripts["format"])
	assert.Equal(t, "npx eslint . && npx tsc --noEmit", scripts["quality:check"])

	// Non-scripts keys are untouched.
	assert.Equal(t, "app", got["name"])
	assert.Equal(t, "0.4.0", got["version"])
	assert.Equal(t, map[string]any{"react": "^18.2.0"}, got["dependencies"])

	// The atomic write leaves no temp residue next to the file.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestPackageScriptsOverwriteMode(t *testing.T) {
	path := writePackageJSON(t, existingPackageJSON)

	require.NoError(t, PackageScripts(path, generatedScripts, true))
	got := loadJSON(t, path)

	scripts := got["scripts"].(map[string]any)
	// Managed names are replaced; user scripts survive.
	assert.Equal(t, "npx eslint .", scripts["lint"])
	assert.Equal(t, "scp dist/ prod:", scripts["deploy"])
}

func TestPackageScriptsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")

	err := PackageScripts(path, generatedScripts, false)
	assert.Error(t, err)
}

func TestPackageScriptsNoScriptsBlock(t *testing.T) {
	path := writePackageJSON(t, `{"name": "bare"}`)

	require.NoError(t, PackageScripts(path, generatedScripts, false))
	got := loadJSON(t, path)

	scripts := got["scripts"].(map[string]any)
	assert.Len(t, scripts, len(generatedScripts))
}
