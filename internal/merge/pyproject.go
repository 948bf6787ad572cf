// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/pdiddy/gate-engine/internal/state"
)

// overwritableTools are the [tool.*] tables replaced wholesale under
// overwrite mode. Matching is by prefix so "coverage" covers
// [tool.coverage.run] style sub-tables parsed as nested maps.
var overwritableTools = []string{"black", "isort", "mypy", "coverage", "flake8", "ruff"}

// Pyproject merges the template TOML text into the pyproject.toml at
// path. The [build-system] and [project] tables of the existing file are
// preserved in both modes; they identify the package and are never
// gate-engine's to rewrite. Default mode adds missing keys under [tool]
// only. Overwrite mode replaces the named standardizable tool tables and
// merges [tool.pytest.ini_options] selectively, keeping the user's
// project-structure settings and coverage targets.
func Pyproject(path, templateText string, overwriteTools bool) error {
	existing := map[string]any{}
	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, &existing); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	template := map[string]any{}
	if err := toml.Unmarshal([]byte(templateText), &template); err != nil {
		return fmt.Errorf("parsing pyproject template: %w", err)
	}

	merged := mergePyproject(existing, template, overwriteTools)

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(merged); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return state.WriteFileAtomic(path, buf.Bytes(), 0o644)
}

func mergePyproject(existing, template map[string]any, overwriteTools bool) map[string]any {
	merged := map[string]any{}

	// Identity tables come from the existing file, always.
	for _, key := range []string{"build-system", "project"} {
		if v, ok := existing[key]; ok {
			merged[key] = v
		}
	}

	existingTool, _ := existing["tool"].(map[string]any)
	templateTool, _ := template["tool"].(map[string]any)

	if overwriteTools {
		merged["tool"] = overwriteToolTables(existingTool, templateTool)
	} else {
		merged["tool"] = Trees(existingTool, templateTool, func([]string) Policy {
			return AddMissing
		})
	}

	// Any other user top-level table survives untouched.
	for key, v := range existing {
		if _, ok := merged[key]; !ok && key != "tool" {
			merged[key] = v
		}
	}

	if tool, ok := merged["tool"].(map[string]any); ok && len(tool) == 0 {
		delete(merged, "tool")
	}
	return merged
}

func overwriteToolTables(existing, template map[string]any) map[string]any {
	out := make(map[string]any, len(existing)+len(template))
	for k, v := range existing {
		out[k] = v
	}

	for name, cfg := range template {
		switch {
		case name == "pytest":
			existingPytest, _ := out[name].(map[string]any)
			templatePytest, _ := cfg.(map[string]any)
			out[name] = mergePytest(existingPytest, templatePytest)
		case isOverwritable(name):
			out[name] = cfg
		default:
			if _, ok := out[name]; !ok {
				out[name] = cfg
			}
		}
	}
	return out
}

func isOverwritable(name string) bool {
	for _, t := range overwritableTools {
		if strings.HasPrefix(name, t) {
			return true
		}
	}
	return false
}

// mergePytest combines [tool.pytest.ini_options] tables. Template
// standards win for minversion and the base addopts; the user keeps
// project-structure settings (testpaths, python_*), any --cov* addopts
// arguments, and custom markers.
func mergePytest(existing, template map[string]any) map[string]any {
	existingIni, _ := existing["ini_options"].(map[string]any)
	templateIni, _ := template["ini_options"].(map[string]any)
	if existingIni == nil && templateIni == nil {
		return template
	}

	merged := map[string]any{}

	if v, ok := templateIni["minversion"]; ok {
		merged["minversion"] = v
	}

	for _, key := range []string{"testpaths", "python_files", "python_classes", "python_functions"} {
		if v, ok := existingIni[key]; ok {
			merged[key] = v
		} else if v, ok := templateIni[key]; ok {
			merged[key] = v
		}
	}

	if addopts := mergeAddopts(existingIni["addopts"], templateIni["addopts"]); addopts != "" {
		merged["addopts"] = addopts
	}
	if markers := mergeMarkers(existingIni["markers"], templateIni["markers"]); len(markers) > 0 {
		merged["markers"] = markers
	}

	for key, v := range existingIni {
		if _, ok := merged[key]; !ok {
			merged[key] = v
		}
	}
	for key, v := range templateIni {
		if _, ok := merged[key]; !ok {
			merged[key] = v
		}
	}

	return map[string]any{"ini_options": merged}
}

// mergeAddopts keeps template args as the standard and appends the user's
// coverage arguments (--cov and friends carry the project's coverage
// target and must survive standardization).
func mergeAddopts(existingVal, templateVal any) string {
	existingArgs := splitArgs(existingVal)
	templateArgs := splitArgs(templateVal)

	if len(existingArgs) == 0 {
		return strings.Join(templateArgs, " ")
	}

	userCoverage := coverageArgs(existingArgs)

	seen := map[string]bool{}
	var out []string
	for _, arg := range append(templateArgs, userCoverage...) {
		if !seen[arg] {
			out = append(out, arg)
			seen[arg] = true
		}
	}
	return strings.Join(out, " ")
}

// coverageArgs extracts --cov* arguments, including a bare "--cov" value
// argument ("--cov src" as two tokens).
func coverageArgs(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--cov") {
			continue
		}
		out = append(out, arg)
		if arg == "--cov" && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			out = append(out, args[i])
		}
	}
	return out
}

// splitArgs normalizes an addopts value (string or array of strings) into
// individual tokens.
func splitArgs(v any) []string {
	switch val := v.(type) {
	case string:
		return strings.Fields(val)
	case []any:
		var parts []string
		for _, item := range val {
			if s, ok := item.(string); ok {
				parts = append(parts, strings.Fields(s)...)
			}
		}
		return parts
	default:
		return nil
	}
}

// mergeMarkers unions marker lists by marker name (the part before the
// colon), template standards first, then the user's domain markers.
func mergeMarkers(existingVal, templateVal any) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range [][]string{stringList(templateVal), stringList(existingVal)} {
		for _, marker := range v {
			name := strings.TrimSpace(strings.SplitN(marker, ":", 2)[0])
			if !seen[name] {
				out = append(out, marker)
				seen[name] = true
			}
		}
	}
	return out
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
