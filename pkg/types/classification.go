// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for gate-engine: project
// classifications, the quality-config schema, baseline snapshots, and
// phase constants.
package types

// ProjectType classifies the overall shape of a project directory.
type ProjectType string

const (
	ProjectFrontend  ProjectType = "frontend"
	ProjectBackend   ProjectType = "backend"
	ProjectFullstack ProjectType = "fullstack"
	ProjectGeneric   ProjectType = "generic"
)

// Classification is the detected technology profile of a project. It is
// recomputed from the filesystem on every invocation and never persisted
// as authoritative; the copy inside .quality-config.yaml is display-only.
type Classification struct {
	// Type is the overall project shape.
	Type ProjectType `json:"type" yaml:"type"`

	// Languages lists detected languages, sorted (e.g. "javascript",
	// "python", "typescript").
	Languages []string `json:"languages" yaml:"languages"`

	// Frameworks lists detected frameworks, sorted (e.g. "fastapi", "react").
	Frameworks []string `json:"frameworks" yaml:"frameworks"`

	// HasFrontend reports whether a JavaScript/TypeScript surface was found.
	HasFrontend bool `json:"has_frontend" yaml:"has_frontend"`

	// HasBackend reports whether a Python surface was found.
	HasBackend bool `json:"has_backend" yaml:"has_backend"`

	// FrontendPath is the directory holding package.json, relative to the
	// project root ("." for root-level projects). Empty when HasFrontend
	// is false.
	FrontendPath string `json:"frontend_path,omitempty" yaml:"frontend_path,omitempty"`

	// BackendPath is the directory holding the Python project, relative to
	// the project root. Empty when HasBackend is false.
	BackendPath string `json:"backend_path,omitempty" yaml:"backend_path,omitempty"`

	// BackendDeps lists backend dependency names found in requirements.txt
	// or pyproject.toml, lowercased and sorted. Used for framework display
	// and MyPy stub resolution.
	BackendDeps []string `json:"-" yaml:"-"`
}

// IsGeneric reports whether no supported technology markers were found.
func (c Classification) IsGeneric() bool {
	return c.Type == ProjectGeneric
}
