// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gate-engine/internal/detect"
	"github.com/pdiddy/gate-engine/internal/render"
	"github.com/pdiddy/gate-engine/internal/state"
	"github.com/pdiddy/gate-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"update"},
	Short:   "Render all quality artifacts for the current phase",
	Long: `Generate classifies the project, then renders every quality artifact for
the declared phase: .quality-config.yaml, .pre-commit-config.yaml, the CI
workflow, package.json scripts, and pyproject.toml tool tables.

Existing user content is preserved: config keys outside the managed set,
unknown npm scripts, and the pyproject [build-system] and [project] tables
are never touched. Pass --overwrite-tools to re-standardize the managed
tool sections.`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	root := projectDir(cmd)

	c := detect.Classify(root)
	if c.IsGeneric() {
		return fmt.Errorf("no supported project markers found in %s (looked for package.json, pyproject.toml, requirements.txt)", root)
	}

	lock, err := state.AcquireLock(root)
	if err != nil {
		return err
	}
	defer lock.Release()

	cfg, err := state.LoadConfig(root)
	if errors.Is(err, state.ErrNoConfig) {
		cfg = &types.QualityConfig{}
		fmt.Fprintf(os.Stderr, "initializing %s at phase 0\n", state.ConfigFile)
	} else if err != nil {
		return err
	}

	g := render.New(root, os.Stdout)
	g.TemplatesDir = templatesDir(cmd)
	g.OverwriteTools, _ = cmd.Flags().GetBool("overwrite-tools")

	return g.Generate(c, cfg)
}

func init() {
	generateCmd.Flags().Bool("overwrite-tools", false, "replace managed tool configs with the generated versions")
	generateCmd.Flags().String("templates", "", "directory of template overrides (default: built-in templates)")

	rootCmd.AddCommand(generateCmd)
}
