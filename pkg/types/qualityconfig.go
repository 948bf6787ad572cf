// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Toggle is a tri-state enablement flag for a quality tool. "auto" defers
// to the generator's phase-aware defaults; "true" and "false" force the
// tool on or off regardless of phase.
type Toggle string

const (
	ToggleAuto Toggle = "auto"
	ToggleOn   Toggle = "true"
	ToggleOff  Toggle = "false"
)

// ValidToggle reports whether s is one of the three recognized states.
func ValidToggle(s Toggle) bool {
	return s == ToggleAuto || s == ToggleOn || s == ToggleOff
}

// ToolSetting holds the per-tool configuration stored under tools.<side>.<tool>.
type ToolSetting struct {
	Enabled Toggle `yaml:"enabled" json:"enabled"`
}

// CoverageThresholds holds test-coverage percentages enforced at higher phases.
type CoverageThresholds struct {
	// Minimum is the floor enforced from the ratchet phase onward.
	Minimum int `yaml:"minimum" json:"minimum"`

	// Target is the goal enforced at the strict phase.
	Target int `yaml:"target" json:"target"`
}

// QualityGates holds the phase state and thresholds.
type QualityGates struct {
	CurrentPhase int                `yaml:"current_phase" json:"current_phase"`
	Coverage     CoverageThresholds `yaml:"coverage" json:"coverage"`
}

// ProjectInfo mirrors the detected classification into the config file for
// display. It is overwritten on every regeneration and never read back as
// authoritative.
type ProjectInfo struct {
	Type         string   `yaml:"type" json:"type"`
	Languages    []string `yaml:"languages,omitempty" json:"languages,omitempty"`
	Frameworks   []string `yaml:"frameworks,omitempty" json:"frameworks,omitempty"`
	FrontendPath string   `yaml:"frontend_path,omitempty" json:"frontend_path,omitempty"`
	BackendPath  string   `yaml:"backend_path,omitempty" json:"backend_path,omitempty"`
}

// ToolsConfig groups per-tool enablement flags by project side.
type ToolsConfig struct {
	Frontend map[string]ToolSetting `yaml:"frontend,omitempty" json:"frontend,omitempty"`
	Backend  map[string]ToolSetting `yaml:"backend,omitempty" json:"backend,omitempty"`
}

// QualityConfig is the schema of .quality-config.yaml, the single durable
// source of truth for the current phase and tool enablement. Keys outside
// this schema that a user adds to the file are preserved across
// regeneration.
type QualityConfig struct {
	QualityGates QualityGates `yaml:"quality_gates" json:"quality_gates"`
	Project      ProjectInfo  `yaml:"project" json:"project"`
	Tools        ToolsConfig  `yaml:"tools" json:"tools"`

	// GeneratedAt is the RFC3339 timestamp of the last regeneration. It is
	// the only field expected to differ between back-to-back renders.
	GeneratedAt string `yaml:"generated_at" json:"generated_at"`
}

// Phase returns the current phase as a typed value.
func (c *QualityConfig) Phase() Phase {
	return Phase(c.QualityGates.CurrentPhase)
}

// ToolSetting looks up a tool flag by side and name. The second return
// value reports whether the tool is known.
func (c *QualityConfig) ToolSetting(side, tool string) (ToolSetting, bool) {
	var m map[string]ToolSetting
	switch side {
	case "frontend":
		m = c.Tools.Frontend
	case "backend":
		m = c.Tools.Backend
	default:
		return ToolSetting{}, false
	}
	s, ok := m[tool]
	return s, ok
}
