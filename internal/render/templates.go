// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

//go:embed templates/*.tmpl
var builtinTemplates embed.FS

// Template file names recognized by the loader.
const (
	TemplatePreCommit = "pre-commit.yaml.tmpl"
	TemplateWorkflow  = "workflow.yml.tmpl"
	TemplatePyproject = "pyproject.toml.tmpl"
)

// loadTemplate returns the template text for name. A template in
// templatesDir takes precedence; when it is absent the embedded default is
// used and a warning is written to w. Setup therefore degrades rather
// than failing when a templates directory is missing or incomplete.
func loadTemplate(templatesDir, name string, w io.Writer) (string, error) {
	if templatesDir != "" {
		data, err := os.ReadFile(filepath.Join(templatesDir, name))
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("reading template %s: %w", name, err)
		}
		fmt.Fprintf(w, "warning: template %s not found in %s, using built-in default\n", name, templatesDir)
	}

	data, err := builtinTemplates.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("loading built-in template %s: %w", name, err)
	}
	return string(data), nil
}
