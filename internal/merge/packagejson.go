// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pdiddy/gate-engine/internal/state"
)

// managedScripts are the package.json script names gate-engine owns. In
// overwrite mode only these keys are replaced; user scripts with other
// names are never touched in either mode.
var managedScripts = map[string]bool{
	"lint":          true,
	"lint:fix":      true,
	"format":        true,
	"format:check":  true,
	"typecheck":     true,
	"test:coverage": true,
	"quality:check": true,
	"quality:fix":   true,
}

// PackageScripts merges the given script entries into the scripts block of
// the package.json at path. Default mode adds missing scripts only;
// overwriteTools additionally replaces managed script names with the
// generated values. All keys outside the scripts block are preserved
// untouched. A missing package.json is an error: the caller decides
// whether a frontend without one is acceptable.
func PackageScripts(path string, scripts map[string]string, overwriteTools bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var pkg map[string]any
	if err := json.Unmarshal(data, &pkg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	existing := map[string]any{}
	if raw, ok := pkg["scripts"].(map[string]any); ok {
		existing = raw
	}

	template := make(map[string]any, len(scripts))
	for k, v := range scripts {
		template[k] = v
	}

	pkg["scripts"] = Trees(existing, template, func(path []string) Policy {
		if overwriteTools && len(path) == 1 && managedScripts[path[0]] {
			return Overwrite
		}
		return AddMissing
	})

	return writeJSON(path, pkg)
}

// writeJSON marshals doc with two-space indentation and writes it
// atomically. Key order follows encoding/json map sorting; package.json
// consumers do not care about ordering.
func writeJSON(path string, doc map[string]any) error {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	out = append(out, '\n')
	return state.WriteFileAtomic(path, out, 0o644)
}

// SortedScriptNames returns the managed script names in stable order, for
// status output.
func SortedScriptNames() []string {
	names := make([]string, 0, len(managedScripts))
	for n := range managedScripts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
