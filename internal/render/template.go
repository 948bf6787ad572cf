// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render generates phase-aware configuration artifacts from
// templates: pre-commit hooks, CI workflows, and the quality-config file.
// Templates carry {{KEY}} placeholders and named conditional regions
// ({{#IF_X}}...{{/IF_X}}); rendering strips or keeps each region and then
// substitutes placeholders literally.
package render

import (
	"strconv"
	"strings"

	"github.com/pdiddy/gate-engine/pkg/types"
)

// Context carries the predicates and variables a template render needs.
type Context struct {
	Phase       types.Phase
	HasFrontend bool
	HasBackend  bool

	// Vars maps placeholder names to their literal replacements.
	Vars map[string]string
}

const (
	regionOpen  = "{{#IF_"
	regionClose = "{{/IF_"
	markerEnd   = "}}"
)

// Render processes template text against ctx: conditional regions are kept
// or removed first, then placeholders are substituted. Rendering is
// idempotent for a fixed context. Unknown placeholders are left intact;
// an unclosed region leaves its marker in place rather than eating the
// rest of the document.
func Render(template string, ctx Context) string {
	out := stripRegions(template, ctx)
	for key, value := range ctx.Vars {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}

// stripRegions walks the template removing conditional markers. Kept
// regions lose only their markers (and the marker's trailing newline);
// dropped regions lose their entire contents.
func stripRegions(s string, ctx Context) string {
	var b strings.Builder
	for {
		open := strings.Index(s, regionOpen)
		if open < 0 {
			b.WriteString(s)
			break
		}

		nameEnd := strings.Index(s[open:], markerEnd)
		if nameEnd < 0 {
			b.WriteString(s)
			break
		}
		name := s[open+len(regionOpen) : open+nameEnd]
		openEnd := open + nameEnd + len(markerEnd)

		closeMarker := regionClose + name + markerEnd
		closeIdx := strings.Index(s[openEnd:], closeMarker)
		if closeIdx < 0 {
			// Unclosed region: emit through the open marker untouched.
			b.WriteString(s[:openEnd])
			s = s[openEnd:]
			continue
		}
		closeStart := openEnd + closeIdx
		closeEnd := closeStart + len(closeMarker)

		b.WriteString(s[:open])
		if keepRegion(name, ctx) {
			// Recurse so nested regions inside a kept block are evaluated.
			body := skipNewline(s[openEnd:closeStart])
			b.WriteString(stripRegions(body, ctx))
			s = skipNewline(s[closeEnd:])
		} else {
			s = skipNewline(s[closeEnd:])
		}
	}
	return b.String()
}

// skipNewline drops a single leading newline left behind by a removed
// marker so stripped templates do not accumulate blank lines.
func skipNewline(s string) string {
	return strings.TrimPrefix(s, "\n")
}

// keepRegion evaluates a region name against the context. HAS_FRONTEND and
// HAS_BACKEND test the classification; PHASE_N is an exact match and
// PHASE_N_OR_HIGHER an inclusive lower bound. Unrecognized names keep
// their content so a newer template degrades gracefully under an older
// binary.
func keepRegion(name string, ctx Context) bool {
	switch name {
	case "HAS_FRONTEND":
		return ctx.HasFrontend
	case "HAS_BACKEND":
		return ctx.HasBackend
	}

	if rest, ok := strings.CutPrefix(name, "PHASE_"); ok {
		if numStr, isRange := strings.CutSuffix(rest, "_OR_HIGHER"); isRange {
			if n, err := strconv.Atoi(numStr); err == nil {
				return int(ctx.Phase) >= n
			}
			return true
		}
		if n, err := strconv.Atoi(rest); err == nil {
			return int(ctx.Phase) == n
		}
	}

	return true
}
