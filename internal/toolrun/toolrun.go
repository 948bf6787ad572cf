// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package toolrun invokes the project's quality tools as subprocesses and
// reduces their output to per-tool error counts. The tools themselves are
// opaque externals; only their output and exit status matter here.
package toolrun

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/gate-engine/pkg/types"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	// Output runs name with args in dir and returns combined stdout and
	// stderr. Several tools (black, isort) report their findings on
	// stderr, so counting must see both streams. A non-zero exit is not
	// an error here: linters exit non-zero exactly when they find
	// problems.
	Output(dir, name string, args ...string) (string, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Output(dir, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return "", err
	}
	return buf.String(), nil
}

// Tool describes one quality tool: how to invoke it and how to count
// errors in its output.
type Tool struct {
	// Name identifies the tool in snapshots and diagnostics.
	Name string

	// Side is "frontend" or "backend".
	Side string

	// Bin is the binary looked up on PATH.
	Bin string

	// Args are the count-mode arguments.
	Args []string

	// Count reduces the tool's combined output to an error count.
	Count func(out string) int
}

// Catalog lists the tools gate-engine counts for baseline and regression
// checks. Formatters run in check mode so counting never mutates files.
var Catalog = []Tool{
	{
		Name: "eslint", Side: "frontend", Bin: "npx",
		Args:  []string{"eslint", "--format", "json", "."},
		Count: countESLintJSON,
	},
	{
		Name: "tsc", Side: "frontend", Bin: "npx",
		Args:  []string{"tsc", "--noEmit", "--pretty", "false"},
		Count: lineCounter("error TS"),
	},
	{
		Name: "black", Side: "backend", Bin: "black",
		Args:  []string{"--check", "."},
		Count: lineCounter("would reformat"),
	},
	{
		Name: "isort", Side: "backend", Bin: "isort",
		Args:  []string{"--check-only", "--profile", "black", "."},
		Count: lineCounter("ERROR:"),
	},
	{
		Name: "flake8", Side: "backend", Bin: "flake8",
		Args:  []string{"--count", "."},
		Count: countFlake8,
	},
	{
		Name: "mypy", Side: "backend", Bin: "mypy",
		Args:  []string{"."},
		Count: lineCounter(": error:"),
	},
}

// Runner executes the applicable tools for a classification and collects
// error counts.
type Runner struct {
	exec executor
	root string
}

// NewRunner returns a Runner operating on the project at root.
func NewRunner(root string) *Runner {
	return &Runner{exec: &osExecutor{}, root: root}
}

// Counts runs every catalog tool applicable to the classification and
// enabled in cfg, writing per-tool status to w. A tool whose binary is
// missing is skipped with a warning and left out of the result; its
// absence from a snapshot records that it was not runnable.
func (r *Runner) Counts(c types.Classification, cfg *types.QualityConfig, w io.Writer) (map[string]int, error) {
	counts := make(map[string]int)

	for _, tool := range Catalog {
		dir, ok := r.toolDir(tool, c)
		if !ok {
			continue
		}
		if !enabled(cfg, tool) {
			fmt.Fprintf(w, "skipped:  %s (disabled)\n", tool.Name)
			continue
		}
		if _, err := r.exec.LookPath(tool.Bin); err != nil {
			fmt.Fprintf(w, "warning:  %s not found on PATH, skipping\n", tool.Bin)
			continue
		}

		out, err := r.exec.Output(dir, tool.Bin, tool.Args...)
		if err != nil {
			return nil, fmt.Errorf("running %s: %w", tool.Name, err)
		}

		n := tool.Count(out)
		counts[tool.Name] = n
		fmt.Fprintf(w, "counted:  %-8s %d error(s)\n", tool.Name, n)
	}

	return counts, nil
}

// toolDir resolves the working directory for a tool, or reports that the
// tool does not apply to this project.
func (r *Runner) toolDir(tool Tool, c types.Classification) (string, bool) {
	switch tool.Side {
	case "frontend":
		if !c.HasFrontend {
			return "", false
		}
		return filepath.Join(r.root, c.FrontendPath), true
	case "backend":
		if !c.HasBackend {
			return "", false
		}
		return filepath.Join(r.root, c.BackendPath), true
	default:
		return "", false
	}
}

// enabled applies the tri-state toggle: auto and true run the tool, false
// skips it. Tools absent from the config default to auto.
func enabled(cfg *types.QualityConfig, tool Tool) bool {
	if cfg == nil {
		return true
	}
	setting, ok := cfg.ToolSetting(tool.Side, tool.Name)
	if !ok {
		return true
	}
	return setting.Enabled != types.ToggleOff
}

// countESLintJSON sums errorCount over eslint's JSON formatter output.
// npx may interleave its own warnings around the JSON array, so the array
// is located before decoding.
func countESLintJSON(out string) int {
	start := strings.Index(out, "[")
	end := strings.LastIndex(out, "]")
	if start < 0 || end < start {
		return 0
	}
	var files []struct {
		ErrorCount int `json:"errorCount"`
	}
	if err := json.Unmarshal([]byte(out[start:end+1]), &files); err != nil {
		return 0
	}
	total := 0
	for _, f := range files {
		total += f.ErrorCount
	}
	return total
}

// countFlake8 reads the trailing total that --count appends.
func countFlake8(out string) int {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if n, err := strconv.Atoi(line); err == nil {
			return n
		}
		break
	}
	return 0
}

// lineCounter returns a counter that counts lines containing substr.
func lineCounter(substr string) func(string) int {
	return func(out string) int {
		count := 0
		for _, line := range strings.Split(out, "\n") {
			if strings.Contains(line, substr) {
				count++
			}
		}
		return count
	}
}
