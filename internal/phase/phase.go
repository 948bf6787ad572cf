// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package phase implements the quality-gate state machine: four phases
// with guarded advancement, explicit overrides, and rollback. State only
// mutates after its guard passes, and every successful mutation triggers
// a re-render so on-disk artifacts always reflect the declared phase.
package phase

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/gate-engine/internal/state"
	"github.com/pdiddy/gate-engine/pkg/types"
)

// ErrAtMaxPhase is returned by Advance when already at the strict phase.
var ErrAtMaxPhase = errors.New("already at the strict phase")

// ErrAtMinPhase is returned by Rollback when already at the baseline phase.
var ErrAtMinPhase = errors.New("already at the baseline phase")

// RegressionError reports tools whose current error counts exceed the
// baseline. The phase is left unchanged when it occurs.
type RegressionError struct {
	Regressions []types.Regression
}

func (e *RegressionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "regression detected in %d tool(s):", len(e.Regressions))
	for _, r := range e.Regressions {
		fmt.Fprintf(&b, "\n  %s: %d -> %d (+%d)", r.Tool, r.Baseline, r.Current, r.Delta())
	}
	return b.String()
}

// CountFunc produces current per-tool error counts for the project.
type CountFunc func(c types.Classification, cfg *types.QualityConfig, w io.Writer) (map[string]int, error)

// RenderFunc re-renders all artifacts for the config's current phase.
type RenderFunc func(c types.Classification, cfg *types.QualityConfig) error

// Recorder appends transition events to the audit log. Implementations
// must be best-effort: a recording failure never blocks a transition.
type Recorder interface {
	Record(from, to types.Phase, command, outcome, note string)
}

// Manager drives phase transitions for one project. Count and Render are
// injected so the CLI wires the tool runner and generator while tests use
// fakes.
type Manager struct {
	Root           string
	Classification types.Classification
	Config         *types.QualityConfig
	Out            io.Writer

	Count   CountFunc
	Render  RenderFunc
	History Recorder
}

// advanceCriteria is the prose guidance printed when entering a phase
// whose exit has no mechanical guard. Transitions 1->2 and 2->3 are
// human-judgment gates: the criteria are advisory, not enforced.
var advanceCriteria = map[types.Phase]string{
	types.PhaseChangedOnly: "advance to ratchet when changed-file checks have been green for a sprint",
	types.PhaseRatchet:     "advance to strict when most legacy issues are resolved and coverage meets the target",
}

// Advance moves to the next phase if its guard passes. The 0->1 guard
// requires a baseline snapshot and a clean regression check; later
// transitions have no mechanical precondition. On guard failure the
// phase is unchanged and the error lists each regressed tool.
func (m *Manager) Advance() error {
	cur := m.Config.Phase()
	if cur >= types.MaxPhase {
		return ErrAtMaxPhase
	}
	next := cur + 1

	if cur == types.PhaseBaseline {
		if err := m.checkAgainstBaseline(); err != nil {
			m.record(cur, cur, "advance", "blocked", err.Error())
			return err
		}
	}

	m.Config.QualityGates.CurrentPhase = int(next)
	if err := m.Render(m.Classification, m.Config); err != nil {
		return err
	}
	m.record(cur, next, "advance", "ok", "")

	fmt.Fprintf(m.Out, "advanced: phase %s -> %s\n", cur, next)
	if hint, ok := advanceCriteria[next]; ok {
		fmt.Fprintf(m.Out, "next:     %s\n", hint)
	}
	return nil
}

// SetPhase jumps directly to phase n, bypassing all guards. The override
// is logged explicitly so the audit trail distinguishes it from a
// guarded advance.
func (m *Manager) SetPhase(n int) error {
	if !types.Phase(n).Valid() {
		return fmt.Errorf("phase %d out of range 0-%d", n, types.MaxPhase)
	}
	cur := m.Config.Phase()
	next := types.Phase(n)

	m.Config.QualityGates.CurrentPhase = n
	if err := m.Render(m.Classification, m.Config); err != nil {
		return err
	}
	m.record(cur, next, "set-phase", "override", "guards bypassed")

	fmt.Fprintf(m.Out, "override: phase %s -> %s (guards bypassed)\n", cur, next)
	return nil
}

// Rollback moves one phase down, floor 0.
func (m *Manager) Rollback() error {
	cur := m.Config.Phase()
	if cur <= types.PhaseBaseline {
		return ErrAtMinPhase
	}
	next := cur - 1

	m.Config.QualityGates.CurrentPhase = int(next)
	if err := m.Render(m.Classification, m.Config); err != nil {
		return err
	}
	m.record(cur, next, "rollback", "ok", "")

	fmt.Fprintf(m.Out, "rolled back: phase %s -> %s\n", cur, next)
	return nil
}

// Check runs the regression check without mutating anything.
func (m *Manager) Check() error {
	if err := m.checkAgainstBaseline(); err != nil {
		return err
	}
	fmt.Fprintln(m.Out, "check: no regressions against baseline")
	return nil
}

// Baseline captures a fresh snapshot of current tool error counts. This
// is the only operation that tightens (or loosens) the regression floor.
func (m *Manager) Baseline() error {
	counts, err := m.Count(m.Classification, m.Config, m.Out)
	if err != nil {
		return err
	}

	snap := &types.BaselineSnapshot{Counts: counts, CapturedAt: time.Now().UTC()}
	if err := state.SaveBaseline(m.Root, snap); err != nil {
		return err
	}
	m.record(m.Config.Phase(), m.Config.Phase(), "baseline", "ok", fmt.Sprintf("%d tool(s) captured", len(counts)))

	fmt.Fprintf(m.Out, "baseline: captured %d tool(s) to %s\n", len(counts), state.BaselineFile)
	return nil
}

// SetTool flips a tool's tri-state toggle and re-renders so hooks and
// workflows reflect the change immediately.
func (m *Manager) SetTool(name string, enabled types.Toggle) error {
	side, ok := m.findTool(name)
	if !ok {
		return fmt.Errorf("unknown tool %q (known: %s)", name, strings.Join(m.knownTools(), ", "))
	}

	switch side {
	case "frontend":
		m.Config.Tools.Frontend[name] = types.ToolSetting{Enabled: enabled}
	case "backend":
		m.Config.Tools.Backend[name] = types.ToolSetting{Enabled: enabled}
	}

	if err := m.Render(m.Classification, m.Config); err != nil {
		return err
	}
	cur := m.Config.Phase()
	m.record(cur, cur, "toggle", "ok", fmt.Sprintf("%s=%s", name, enabled))

	fmt.Fprintf(m.Out, "toggled:  %s.%s = %s\n", side, name, enabled)
	return nil
}

func (m *Manager) findTool(name string) (string, bool) {
	if _, ok := m.Config.Tools.Frontend[name]; ok {
		return "frontend", true
	}
	if _, ok := m.Config.Tools.Backend[name]; ok {
		return "backend", true
	}
	return "", false
}

func (m *Manager) knownTools() []string {
	var names []string
	for n := range m.Config.Tools.Frontend {
		names = append(names, n)
	}
	for n := range m.Config.Tools.Backend {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// checkAgainstBaseline loads the snapshot, counts current errors, and
// fails if any tool got worse. Improvements do not tighten the snapshot
// here; only an explicit re-baseline does that.
func (m *Manager) checkAgainstBaseline() error {
	baseline, err := state.LoadBaseline(m.Root)
	if err != nil {
		return err
	}

	counts, err := m.Count(m.Classification, m.Config, m.Out)
	if err != nil {
		return err
	}

	if regressions := baseline.Compare(counts); len(regressions) > 0 {
		return &RegressionError{Regressions: regressions}
	}
	return nil
}

func (m *Manager) record(from, to types.Phase, command, outcome, note string) {
	if m.History != nil {
		m.History.Record(from, to, command, outcome, note)
	}
}
