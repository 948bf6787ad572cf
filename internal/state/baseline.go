// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/gate-engine/pkg/types"
)

// BaselineFile is the baseline snapshot file name in the project root.
const BaselineFile = ".quality-baseline.json"

// ErrNoBaseline is returned when no baseline snapshot has been captured.
var ErrNoBaseline = errors.New("no baseline snapshot found (run \"gate-engine phase baseline\" first)")

// LoadBaseline reads .quality-baseline.json from root.
func LoadBaseline(root string) (*types.BaselineSnapshot, error) {
	data, err := os.ReadFile(filepath.Join(root, BaselineFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoBaseline
		}
		return nil, fmt.Errorf("reading %s: %w", BaselineFile, err)
	}

	var snap types.BaselineSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", BaselineFile, err)
	}
	return &snap, nil
}

// SaveBaseline writes the snapshot atomically. This is the only write
// path for the regression floor; regression checks never modify it.
func SaveBaseline(root string, snap *types.BaselineSnapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling baseline: %w", err)
	}
	data = append(data, '\n')
	return WriteFileAtomic(filepath.Join(root, BaselineFile), data, 0o644)
}
