// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gate-engine/internal/detect"
	"github.com/pdiddy/gate-engine/internal/history"
	"github.com/pdiddy/gate-engine/internal/phase"
	"github.com/pdiddy/gate-engine/internal/render"
	"github.com/pdiddy/gate-engine/internal/state"
	"github.com/pdiddy/gate-engine/internal/toolrun"
	"github.com/pdiddy/gate-engine/pkg/types"
)

var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "Inspect and advance the quality-gate phase",
	Long: `Phase manages the four-step enforcement progression. Advancing out of
phase 0 requires a recorded baseline and a clean regression check; higher
transitions are human-judgment gates. set-phase bypasses all guards and is
logged as an explicit override. Every transition re-renders the generated
artifacts so hooks and workflows always match the declared phase.`,
}

// --- status ---

var phaseStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current phase, baseline, and tool toggles",
	RunE:  runPhaseStatus,
}

func runPhaseStatus(cmd *cobra.Command, args []string) error {
	root := projectDir(cmd)

	cfg, err := state.LoadConfig(root)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	fmt.Printf("Phase:     %s\n", cfg.Phase())
	fmt.Printf("Project:   %s\n", cfg.Project.Type)
	fmt.Printf("Generated: %s\n", cfg.GeneratedAt)

	if snap, err := state.LoadBaseline(root); err == nil {
		fmt.Printf("Baseline:  %d tool(s), captured %s\n", len(snap.Counts), snap.CapturedAt.Format("2006-01-02 15:04"))
	} else {
		fmt.Println("Baseline:  (none)")
	}

	printToggles("frontend", cfg.Tools.Frontend)
	printToggles("backend", cfg.Tools.Backend)
	return nil
}

func printToggles(side string, tools map[string]types.ToolSetting) {
	if len(tools) == 0 {
		return
	}
	names := make([]string, 0, len(tools))
	for n := range tools {
		names = append(names, n)
	}
	sort.Strings(names)

	fmt.Printf("Tools (%s):\n", side)
	for _, n := range names {
		fmt.Printf("  %-10s %s\n", n, tools[n].Enabled)
	}
}

// --- init ---

var phaseInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize phase tracking at phase 0",
	RunE:  runPhaseInit,
}

func runPhaseInit(cmd *cobra.Command, args []string) error {
	root := projectDir(cmd)

	if _, err := state.LoadConfig(root); err == nil {
		return fmt.Errorf("%s already exists; use \"gate-engine generate\" to re-render", state.ConfigFile)
	} else if !errors.Is(err, state.ErrNoConfig) {
		return err
	}

	c := detect.Classify(root)
	if c.IsGeneric() {
		return fmt.Errorf("no supported project markers found in %s", root)
	}

	lock, err := state.AcquireLock(root)
	if err != nil {
		return err
	}
	defer lock.Release()

	g := render.New(root, os.Stdout)
	g.TemplatesDir = templatesDir(cmd)
	if err := g.Generate(c, &types.QualityConfig{}); err != nil {
		return err
	}

	fmt.Println("initialized at phase 0 (baseline); capture a baseline with \"gate-engine phase baseline\"")
	return nil
}

// --- transitions ---

var phaseAdvanceCmd = &cobra.Command{
	Use:   "advance",
	Short: "Advance to the next phase if its guard passes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(m *phase.Manager) error {
			return m.Advance()
		})
	},
}

var phaseSetCmd = &cobra.Command{
	Use:   "set-phase N",
	Short: "Jump directly to phase N, bypassing guards",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid phase %q: %w", args[0], err)
		}
		return withManager(cmd, func(m *phase.Manager) error {
			return m.SetPhase(n)
		})
	},
}

var phaseRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Move one phase down (floor 0)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(m *phase.Manager) error {
			return m.Rollback()
		})
	},
}

// --- baseline and check ---

var phaseBaselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Capture a fresh baseline snapshot of tool error counts",
	Long: `Baseline runs every applicable quality tool, counts its errors, and
writes the snapshot to .quality-baseline.json. The snapshot is the
non-regression floor for phase advancement and only changes through this
command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(m *phase.Manager) error {
			return m.Baseline()
		})
	},
}

var phaseCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the regression check without changing state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(m *phase.Manager) error {
			return m.Check()
		})
	},
}

// --- tool toggles ---

var phaseEnableCmd = &cobra.Command{
	Use:   "enable TOOL",
	Short: "Force a tool on and re-render",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(m *phase.Manager) error {
			return m.SetTool(args[0], types.ToggleOn)
		})
	},
}

var phaseDisableCmd = &cobra.Command{
	Use:   "disable TOOL",
	Short: "Force a tool off and re-render",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(m *phase.Manager) error {
			return m.SetTool(args[0], types.ToggleOff)
		})
	},
}

// --- history ---

var phaseHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the phase transition audit log",
	RunE:  runPhaseHistory,
}

func runPhaseHistory(cmd *cobra.Command, args []string) error {
	root := projectDir(cmd)
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := history.Open(root)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No transitions recorded.")
		return nil
	}

	fmt.Printf("%-20s  %-10s  %-9s  %-5s  %s\n", "When", "Command", "Outcome", "Phase", "Note")
	for _, e := range entries {
		fmt.Printf("%-20s  %-10s  %-9s  %d->%d   %s\n",
			e.At.Format("2006-01-02 15:04:05"), e.Command, e.Outcome, e.FromPhase, e.ToPhase, e.Note)
	}
	return nil
}

// --- wiring ---

// withManager loads state, takes the project lock, and hands a fully
// wired Manager to fn. The config is saved and the lock released when fn
// succeeds; the audit log is attached best-effort.
func withManager(cmd *cobra.Command, fn func(*phase.Manager) error) error {
	root := projectDir(cmd)

	cfg, err := state.LoadConfig(root)
	if err != nil {
		return err
	}

	lock, err := state.AcquireLock(root)
	if err != nil {
		return err
	}
	defer lock.Release()

	c := detect.Classify(root)
	runner := toolrun.NewRunner(root)

	g := render.New(root, os.Stdout)
	g.TemplatesDir = templatesDir(cmd)

	m := &phase.Manager{
		Root:           root,
		Classification: c,
		Config:         cfg,
		Out:            os.Stdout,
		Count:          runner.Counts,
		Render:         g.Generate,
	}

	if store, err := history.Open(root); err == nil {
		defer store.Close()
		m.History = store
	} else {
		fmt.Fprintf(os.Stderr, "warning: audit log unavailable: %v\n", err)
	}

	return fn(m)
}

func init() {
	phaseStatusCmd.Flags().Bool("json", false, "output status as JSON")
	phaseHistoryCmd.Flags().Int("limit", 20, "maximum entries to show")

	phaseInitCmd.Flags().String("templates", "", "directory of template overrides")
	for _, c := range []*cobra.Command{phaseAdvanceCmd, phaseSetCmd, phaseRollbackCmd, phaseBaselineCmd, phaseCheckCmd, phaseEnableCmd, phaseDisableCmd} {
		c.Flags().String("templates", "", "directory of template overrides")
	}

	phaseCmd.AddCommand(phaseStatusCmd)
	phaseCmd.AddCommand(phaseInitCmd)
	phaseCmd.AddCommand(phaseAdvanceCmd)
	phaseCmd.AddCommand(phaseSetCmd)
	phaseCmd.AddCommand(phaseRollbackCmd)
	phaseCmd.AddCommand(phaseBaselineCmd)
	phaseCmd.AddCommand(phaseCheckCmd)
	phaseCmd.AddCommand(phaseEnableCmd)
	phaseCmd.AddCommand(phaseDisableCmd)
	phaseCmd.AddCommand(phaseHistoryCmd)

	rootCmd.AddCommand(phaseCmd)
}
