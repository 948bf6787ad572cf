// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gate-engine/internal/detect"
	"github.com/pdiddy/gate-engine/pkg/types"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Classify the project's technology stack",
	Long: `Detect inspects the project directory for marker files (package.json,
pyproject.toml, requirements.txt, frontend/, backend/, src/) and prints the
resulting classification. Detection is read-only and never fails: a
directory with no recognized markers classifies as generic.`,
	RunE: runDetect,
}

func runDetect(cmd *cobra.Command, args []string) error {
	c := detect.Classify(projectDir(cmd))

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}

	printClassification(c)
	return nil
}

func printClassification(c types.Classification) {
	fmt.Printf("Type:       %s\n", c.Type)
	fmt.Printf("Languages:  %s\n", orNone(c.Languages))
	fmt.Printf("Frameworks: %s\n", orNone(c.Frameworks))
	if c.HasFrontend {
		fmt.Printf("Frontend:   %s\n", c.FrontendPath)
	}
	if c.HasBackend {
		fmt.Printf("Backend:    %s\n", c.BackendPath)
	}
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

func init() {
	detectCmd.Flags().Bool("json", false, "output the classification as JSON")

	rootCmd.AddCommand(detectCmd)
}
