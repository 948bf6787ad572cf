// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Phase is one of four graduated enforcement levels. Higher phases run
// quality tooling more broadly and more strictly.
type Phase int

const (
	// PhaseBaseline records current error counts without enforcing anything.
	PhaseBaseline Phase = 0

	// PhaseChangedOnly enforces quality checks on changed files only.
	PhaseChangedOnly Phase = 1

	// PhaseRatchet enforces project-wide checks but allows existing debt,
	// letting metrics improve and never silently regress.
	PhaseRatchet Phase = 2

	// PhaseStrict enforces all checks project-wide with no debt allowance.
	PhaseStrict Phase = 3
)

// MaxPhase is the highest valid phase.
const MaxPhase = PhaseStrict

// Valid reports whether p is within the 0-3 range.
func (p Phase) Valid() bool {
	return p >= PhaseBaseline && p <= MaxPhase
}

func (p Phase) String() string {
	switch p {
	case PhaseBaseline:
		return "0 (baseline)"
	case PhaseChangedOnly:
		return "1 (changed-only)"
	case PhaseRatchet:
		return "2 (ratchet)"
	case PhaseStrict:
		return "3 (strict)"
	default:
		return fmt.Sprintf("%d (invalid)", int(p))
	}
}

// Name returns the short phase name without the numeric prefix.
func (p Phase) Name() string {
	switch p {
	case PhaseBaseline:
		return "baseline"
	case PhaseChangedOnly:
		return "changed-only"
	case PhaseRatchet:
		return "ratchet"
	case PhaseStrict:
		return "strict"
	default:
		return "invalid"
	}
}
