// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package state persists gate-engine's durable entities: the quality
// config YAML, the baseline snapshot JSON, and the advisory lock that
// makes concurrent invocations fail loudly instead of racing.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/gate-engine/pkg/types"
)

const (
	// ConfigFile is the quality-config file name in the project root.
	ConfigFile = ".quality-config.yaml"
)

// ErrNoConfig is returned when the project has no quality config yet.
var ErrNoConfig = errors.New("no quality config found (run \"gate-engine generate\" first)")

// managedKeys are the top-level YAML keys gate-engine owns. Everything
// else a user adds to .quality-config.yaml is preserved across saves.
var managedKeys = map[string]bool{
	"quality_gates": true,
	"project":       true,
	"tools":         true,
	"generated_at":  true,
}

// LoadConfig reads and validates .quality-config.yaml from root.
func LoadConfig(root string) (*types.QualityConfig, error) {
	data, err := os.ReadFile(filepath.Join(root, ConfigFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoConfig
		}
		return nil, fmt.Errorf("reading %s: %w", ConfigFile, err)
	}

	var cfg types.QualityConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigFile, err)
	}

	if !types.Phase(cfg.QualityGates.CurrentPhase).Valid() {
		return nil, fmt.Errorf("%s: current_phase %d out of range 0-%d",
			ConfigFile, cfg.QualityGates.CurrentPhase, types.MaxPhase)
	}
	return &cfg, nil
}

// SaveConfig writes cfg to .quality-config.yaml in root. Managed keys are
// rewritten from cfg; top-level keys a user added by hand round-trip
// untouched. The write is atomic (temp file plus rename).
func SaveConfig(root string, cfg *types.QualityConfig) error {
	generated, err := marshalMapping(cfg)
	if err != nil {
		return fmt.Errorf("marshaling quality config: %w", err)
	}

	path := filepath.Join(root, ConfigFile)
	if existing, err := loadMapping(path); err == nil {
		appendUnmanaged(generated, existing)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", ConfigFile, err)
	}

	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{generated}}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling quality config: %w", err)
	}
	return WriteFileAtomic(path, out, 0o644)
}

// marshalMapping converts cfg into a YAML mapping node, preserving the
// struct's field order.
func marshalMapping(cfg *types.QualityConfig) (*yaml.Node, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("quality config did not marshal to a mapping")
	}
	return doc.Content[0], nil
}

// loadMapping parses the existing config file into its top-level mapping
// node. Non-mapping documents are treated as absent.
func loadMapping(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, os.ErrNotExist
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, os.ErrNotExist
	}
	return doc.Content[0], nil
}

// appendUnmanaged copies top-level entries outside the managed set from
// the existing mapping onto the generated one, keeping their original
// value nodes (and therefore their formatting and comments).
func appendUnmanaged(generated, existing *yaml.Node) {
	for i := 0; i+1 < len(existing.Content); i += 2 {
		key := existing.Content[i]
		if managedKeys[key.Value] {
			continue
		}
		generated.Content = append(generated.Content, key, existing.Content[i+1])
	}
}

// WriteFileAtomic writes data to a temp file in path's directory and
// renames it into place. Writers of user-owned files (pyproject.toml,
// package.json) share it so a crash mid-write cannot leave a truncated
// file behind.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("setting mode on %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
