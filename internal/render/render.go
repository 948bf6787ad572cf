// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/gate-engine/internal/detect"
	"github.com/pdiddy/gate-engine/internal/merge"
	"github.com/pdiddy/gate-engine/internal/state"
	"github.com/pdiddy/gate-engine/internal/toolrun"
	"github.com/pdiddy/gate-engine/pkg/types"
)

// Output file locations relative to the project root.
const (
	PreCommitFile = ".pre-commit-config.yaml"
	WorkflowFile  = ".github/workflows/quality-gates.yml"
)

// Default tool-chain versions substituted into templates.
const (
	defaultNodeVersion   = "20"
	defaultPythonVersion = "3.11"
)

// Default coverage thresholds seeded into a fresh quality config.
const (
	defaultCoverageMinimum = 60
	defaultCoverageTarget  = 80
)

// Generator renders every quality artifact for one (classification, phase)
// pair. Rendering is idempotent: re-running with the same inputs produces
// byte-identical files except for the generated_at timestamp.
type Generator struct {
	// Root is the project directory written into.
	Root string

	// TemplatesDir optionally overrides the built-in templates.
	TemplatesDir string

	// OverwriteTools switches package.json and pyproject.toml merging from
	// add-missing to overwrite for the managed tool entries.
	OverwriteTools bool

	// Out receives per-file status lines.
	Out io.Writer

	// Now is the clock, overridable in tests.
	Now func() time.Time
}

// New returns a Generator for the project at root with status on out.
func New(root string, out io.Writer) *Generator {
	return &Generator{Root: root, Out: out, Now: time.Now}
}

// Generate renders all artifacts for the classification at cfg's current
// phase and persists cfg itself. cfg is updated in place: the project
// mirror, tool defaults, and timestamp are refreshed before saving.
func (g *Generator) Generate(c types.Classification, cfg *types.QualityConfig) error {
	g.refreshConfig(c, cfg)

	if err := state.SaveConfig(g.Root, cfg); err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "rendered: %s\n", state.ConfigFile)

	ctx := g.templateContext(c, cfg)

	if err := g.renderFile(TemplatePreCommit, PreCommitFile, ctx); err != nil {
		return err
	}
	if err := g.renderFile(TemplateWorkflow, WorkflowFile, ctx); err != nil {
		return err
	}

	if c.HasFrontend {
		if err := g.mergePackageScripts(c); err != nil {
			return err
		}
	}
	if c.HasBackend {
		if err := g.mergePyproject(c, ctx); err != nil {
			return err
		}
	}

	return nil
}

// refreshConfig mirrors the classification into cfg, seeds defaults for
// thresholds and tool toggles, and stamps the generation time. Existing
// non-auto toggles are kept: they are user decisions.
func (g *Generator) refreshConfig(c types.Classification, cfg *types.QualityConfig) {
	cfg.Project = types.ProjectInfo{
		Type:         string(c.Type),
		Languages:    c.Languages,
		Frameworks:   c.Frameworks,
		FrontendPath: c.FrontendPath,
		BackendPath:  c.BackendPath,
	}

	if cfg.QualityGates.Coverage.Minimum == 0 {
		cfg.QualityGates.Coverage.Minimum = defaultCoverageMinimum
	}
	if cfg.QualityGates.Coverage.Target == 0 {
		cfg.QualityGates.Coverage.Target = defaultCoverageTarget
	}

	for _, tool := range toolrun.Catalog {
		switch {
		case tool.Side == "frontend" && c.HasFrontend:
			if cfg.Tools.Frontend == nil {
				cfg.Tools.Frontend = map[string]types.ToolSetting{}
			}
			if _, ok := cfg.Tools.Frontend[tool.Name]; !ok {
				cfg.Tools.Frontend[tool.Name] = types.ToolSetting{Enabled: types.ToggleAuto}
			}
		case tool.Side == "backend" && c.HasBackend:
			if cfg.Tools.Backend == nil {
				cfg.Tools.Backend = map[string]types.ToolSetting{}
			}
			if _, ok := cfg.Tools.Backend[tool.Name]; !ok {
				cfg.Tools.Backend[tool.Name] = types.ToolSetting{Enabled: types.ToggleAuto}
			}
		}
	}

	cfg.GeneratedAt = g.Now().UTC().Format(time.RFC3339)
}

// templateContext builds the render context shared by all templates.
func (g *Generator) templateContext(c types.Classification, cfg *types.QualityConfig) Context {
	phase := cfg.Phase()

	coverageMin := cfg.QualityGates.Coverage.Minimum
	if phase >= types.PhaseStrict {
		coverageMin = cfg.QualityGates.Coverage.Target
	}

	return Context{
		Phase:       phase,
		HasFrontend: c.HasFrontend,
		HasBackend:  c.HasBackend,
		Vars: map[string]string{
			"PROJECT_TYPE":    string(c.Type),
			"FRONTEND_PATH":   c.FrontendPath,
			"BACKEND_PATH":    c.BackendPath,
			"FRONTEND_PREFIX": pathPrefix(c.FrontendPath),
			"BACKEND_PREFIX":  pathPrefix(c.BackendPath),
			"NODE_VERSION":    defaultNodeVersion,
			"PYTHON_VERSION":  defaultPythonVersion,
			"COVERAGE_MIN":    strconv.Itoa(coverageMin),
			"MYPY_STUBS":      strings.Join(detect.StubPackages(c.BackendDeps), ", "),
		},
	}
}

// renderFile renders one template to its output path.
func (g *Generator) renderFile(templateName, outPath string, ctx Context) error {
	text, err := loadTemplate(g.TemplatesDir, templateName, g.Out)
	if err != nil {
		return err
	}

	full := filepath.Join(g.Root, outPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(outPath), err)
	}
	if err := os.WriteFile(full, []byte(Render(text, ctx)), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	fmt.Fprintf(g.Out, "rendered: %s\n", outPath)
	return nil
}

func (g *Generator) mergePackageScripts(c types.Classification) error {
	pkgPath := filepath.Join(g.Root, c.FrontendPath, "package.json")
	if _, err := os.Stat(pkgPath); err != nil {
		fmt.Fprintf(g.Out, "skipped:  package.json (not found at %s)\n", c.FrontendPath)
		return nil
	}

	if err := merge.PackageScripts(pkgPath, packageScripts(), g.OverwriteTools); err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "merged:   %s\n", filepath.Join(c.FrontendPath, "package.json"))
	return nil
}

func (g *Generator) mergePyproject(c types.Classification, ctx Context) error {
	text, err := loadTemplate(g.TemplatesDir, TemplatePyproject, g.Out)
	if err != nil {
		return err
	}

	path := filepath.Join(g.Root, c.BackendPath, "pyproject.toml")
	if err := merge.Pyproject(path, Render(text, ctx), g.OverwriteTools); err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "merged:   %s\n", filepath.Join(c.BackendPath, "pyproject.toml"))
	return nil
}

// packageScripts are the npm script entries merged into package.json.
func packageScripts() map[string]string {
	return map[string]string{
		"lint":          "eslint .",
		"lint:fix":      "eslint --fix .",
		"format":        "prettier --write .",
		"format:check":  "prettier --check .",
		"typecheck":     "tsc --noEmit",
		"test:coverage": "npm test -- --coverage",
		"quality:check": "npm run lint && npm run format:check && npm run typecheck",
		"quality:fix":   "npm run lint:fix && npm run format",
	}
}

// pathPrefix converts a project-relative directory into a file-pattern
// prefix: "." becomes "" and "backend" becomes "backend/".
func pathPrefix(dir string) string {
	if dir == "" || dir == "." {
		return ""
	}
	return dir + "/"
}
