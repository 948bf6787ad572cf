// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package detect classifies a project directory from its marker files.
// Classification is a pure function of directory contents: no network, no
// subprocess execution, and no writes. Unknown layouts classify as generic
// rather than erroring.
package detect

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/pdiddy/gate-engine/pkg/types"
)

// frontendFrameworks maps package.json dependency names to the framework
// they indicate.
var frontendFrameworks = map[string]string{
	"react":         "react",
	"vue":           "vue",
	"svelte":        "svelte",
	"next":          "next",
	"nuxt":          "nuxt",
	"@angular/core": "angular",
}

// backendFrameworks maps Python dependency names to the framework they
// indicate.
var backendFrameworks = map[string]string{
	"fastapi": "fastapi",
	"flask":   "flask",
	"django":  "django",
}

// Classify inspects root and returns its technology profile. It never
// returns an error: unreadable or unparseable marker files simply do not
// contribute signals, and a directory with no markers classifies as
// generic.
func Classify(root string) types.Classification {
	c := types.Classification{Type: types.ProjectGeneric}

	languages := map[string]bool{}
	frameworks := map[string]bool{}

	// Frontend: a nested frontend/ directory wins over a root-level
	// package.json so that fullstack layouts resolve both sides.
	for _, dir := range []string{"frontend", "."} {
		pkgPath := filepath.Join(root, dir, "package.json")
		if _, err := os.Stat(pkgPath); err != nil {
			continue
		}
		c.HasFrontend = true
		c.FrontendPath = dir
		languages["javascript"] = true

		deps := packageJSONDeps(pkgPath)
		if deps["typescript"] {
			languages["typescript"] = true
		}
		for dep, fw := range frontendFrameworks {
			if deps[dep] {
				frameworks[fw] = true
			}
		}
		break
	}
	if !c.HasFrontend {
		// A bare src/ tree with js/ts files is a weaker frontend signal.
		if hasSourceFiles(filepath.Join(root, "src"), ".js", ".jsx", ".ts", ".tsx") {
			c.HasFrontend = true
			c.FrontendPath = "."
			languages["javascript"] = true
		}
	}

	// Backend: nested backend/ directory first, then root-level markers.
	for _, dir := range []string{"backend", "."} {
		deps, found := pythonDeps(filepath.Join(root, dir))
		if !found {
			continue
		}
		c.HasBackend = true
		c.BackendPath = dir
		languages["python"] = true

		c.BackendDeps = deps
		for _, dep := range deps {
			if fw, ok := backendFrameworks[dep]; ok {
				frameworks[fw] = true
			}
		}
		break
	}

	switch {
	case c.HasFrontend && c.HasBackend:
		c.Type = types.ProjectFullstack
	case c.HasFrontend:
		c.Type = types.ProjectFrontend
	case c.HasBackend:
		c.Type = types.ProjectBackend
	}

	c.Languages = sortedKeys(languages)
	c.Frameworks = sortedKeys(frameworks)
	return c
}

// packageJSONDeps returns the union of dependencies and devDependencies
// names from a package.json file. Parse failures yield an empty set.
func packageJSONDeps(path string) map[string]bool {
	deps := map[string]bool{}

	data, err := os.ReadFile(path)
	if err != nil {
		return deps
	}

	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return deps
	}

	for name := range pkg.Dependencies {
		deps[name] = true
	}
	for name := range pkg.DevDependencies {
		deps[name] = true
	}
	return deps
}

// pythonDeps looks for Python project markers in dir and returns the
// declared dependency names, lowercased and sorted. The second return
// value reports whether any marker file was found at all (a project with
// markers but no dependencies is still a Python project).
func pythonDeps(dir string) ([]string, bool) {
	found := false
	names := map[string]bool{}

	if data, err := os.ReadFile(filepath.Join(dir, "requirements.txt")); err == nil {
		found = true
		scanner := bufio.NewScanner(strings.NewReader(string(data)))
		for scanner.Scan() {
			if name := requirementName(scanner.Text()); name != "" {
				names[name] = true
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml")); err == nil {
		found = true
		var doc struct {
			Project struct {
				Dependencies []string `toml:"dependencies"`
			} `toml:"project"`
		}
		if err := toml.Unmarshal(data, &doc); err == nil {
			for _, spec := range doc.Project.Dependencies {
				if name := requirementName(spec); name != "" {
					names[name] = true
				}
			}
		}
	}

	if !found {
		if _, err := os.Stat(filepath.Join(dir, "setup.py")); err == nil {
			found = true
		}
	}

	return sortedKeys(names), found
}

// requirementName extracts the bare package name from a requirement
// specifier line ("fastapi>=0.110.0", "uvicorn[standard]==0.29").
// Comment and option lines return "".
func requirementName(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
		return ""
	}
	end := strings.IndexFunc(line, func(r rune) bool {
		return strings.ContainsRune("><=!~[; ", r)
	})
	if end >= 0 {
		line = line[:end]
	}
	return strings.ToLower(line)
}

// hasSourceFiles reports whether dir directly contains a file with one of
// the given extensions. Only the top level is scanned; this is a marker
// check, not a source walk.
func hasSourceFiles(dir string, exts ...string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		for _, ext := range exts {
			if strings.HasSuffix(e.Name(), ext) {
				return true
			}
		}
	}
	return false
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
