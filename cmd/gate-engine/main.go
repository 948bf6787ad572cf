// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the gate-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the gate-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "gate-engine",
	Short: "Graduated quality-gate management for polyglot projects",
	Long: `gate-engine detects a project's technology stack, generates phase-aware
quality configuration (pre-commit hooks, CI workflows, linter settings), and
manages a four-phase enforcement progression:

  0 baseline      record current error counts, enforce nothing
  1 changed-only  enforce checks on changed files
  2 ratchet       enforce project-wide, allow existing debt, never regress
  3 strict        enforce everything, everywhere

Phase state lives in .quality-config.yaml next to the code it governs.
Advancing out of the baseline phase is guarded by a regression check
against a recorded snapshot of tool error counts.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./gate-engine.yaml or ~/.config/gate-engine/config.yaml)")
	rootCmd.PersistentFlags().StringP("dir", "C", ".", "project directory to operate on")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("gate-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "gate-engine"))
		}
	}

	viper.SetEnvPrefix("GATE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// projectDir resolves the --dir flag for a command.
func projectDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		return "."
	}
	return dir
}

// templatesDir resolves the templates override: flag first, then the
// viper config/env fallback.
func templatesDir(cmd *cobra.Command) string {
	if dir, _ := cmd.Flags().GetString("templates"); dir != "" {
		return dir
	}
	return viper.GetString("templates_dir")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
