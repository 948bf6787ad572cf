// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge combines generated tool configuration with existing
// project files (package.json, pyproject.toml) without destroying user
// content. The core is a recursive key-union over two key-value trees
// driven by a per-key-path policy.
package merge

// Policy decides what happens when the template supplies a value for a
// key path.
type Policy int

const (
	// Keep leaves the existing value untouched and adds nothing new at
	// this path.
	Keep Policy = iota

	// AddMissing adds template keys the existing tree lacks and recurses
	// into sub-trees, never replacing an existing leaf.
	AddMissing

	// Overwrite replaces the existing value with the template value.
	Overwrite
)

// PolicyFunc returns the policy for a key path (root-to-leaf key names).
type PolicyFunc func(path []string) Policy

// Trees merges template into existing under policy and returns the merged
// tree. Neither input map is modified. For a path where both sides hold a
// map the merge recurses; where either side holds a leaf the policy
// decides which value survives. Existing keys absent from the template
// always survive.
func Trees(existing, template map[string]any, policy PolicyFunc) map[string]any {
	return mergeLevel(existing, template, nil, policy)
}

func mergeLevel(existing, template map[string]any, path []string, policy PolicyFunc) map[string]any {
	merged := make(map[string]any, len(existing)+len(template))
	for k, v := range existing {
		merged[k] = v
	}

	for key, tmplVal := range template {
		keyPath := make([]string, len(path)+1)
		copy(keyPath, path)
		keyPath[len(path)] = key

		curVal, exists := merged[key]
		if !exists {
			if policy(keyPath) != Keep {
				merged[key] = tmplVal
			}
			continue
		}

		curMap, curIsMap := curVal.(map[string]any)
		tmplMap, tmplIsMap := tmplVal.(map[string]any)
		if curIsMap && tmplIsMap {
			merged[key] = mergeLevel(curMap, tmplMap, keyPath, policy)
			continue
		}

		if policy(keyPath) == Overwrite {
			merged[key] = tmplVal
		}
		// Keep and AddMissing both preserve the existing leaf.
	}

	return merged
}
