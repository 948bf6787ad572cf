// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"sort"
	"time"
)

// BaselineSnapshot records tool error counts at a point in time. It is the
// non-regression floor for phase advancement: immutable once written except
// by an explicit re-baseline.
type BaselineSnapshot struct {
	// Counts maps tool name to total error count at capture time. A tool
	// absent from the map was not runnable when the snapshot was taken.
	Counts map[string]int `json:"counts"`

	// CapturedAt is when the snapshot was taken.
	CapturedAt time.Time `json:"captured_at"`
}

// Regression describes one tool whose current error count exceeds its
// baseline count.
type Regression struct {
	Tool     string `json:"tool"`
	Baseline int    `json:"baseline"`
	Current  int    `json:"current"`
}

// Delta returns how many errors were added relative to the baseline.
func (r Regression) Delta() int {
	return r.Current - r.Baseline
}

// Compare checks current counts against the snapshot and returns one
// Regression per tool that got worse. Tools present on only one side are
// ignored; improvements never tighten the snapshot here (that happens only
// on explicit re-baseline).
func (b *BaselineSnapshot) Compare(current map[string]int) []Regression {
	var regressions []Regression
	for tool, base := range b.Counts {
		cur, ok := current[tool]
		if !ok {
			continue
		}
		if cur > base {
			regressions = append(regressions, Regression{Tool: tool, Baseline: base, Current: cur})
		}
	}
	sort.Slice(regressions, func(i, j int) bool { return regressions[i].Tool < regressions[j].Tool })
	return regressions
}
