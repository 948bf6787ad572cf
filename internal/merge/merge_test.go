// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func addMissingPolicy([]string) Policy { return AddMissing }

func TestTrees(t *testing.T) {
	tests := []struct {
		name     string
		existing map[string]any
		template map[string]any
		policy   PolicyFunc
		want     map[string]any
	}{
		{
			name:     "add missing keys",
			existing: map[string]any{"a": 1},
			template: map[string]any{"a": 2, "b": 3},
			policy:   addMissingPolicy,
			want:     map[string]any{"a": 1, "b": 3},
		},
		{
			name: "recurse into shared sub-trees",
			existing: map[string]any{
				"tool": map[string]any{"black": map[string]any{"line-length": 88}},
			},
			template: map[string]any{
				"tool": map[string]any{
					"black": map[string]any{"line-length": 100, "target-version": "py311"},
					"isort": map[string]any{"profile": "black"},
				},
			},
			policy: addMissingPolicy,
			want: map[string]any{
				"tool": map[string]any{
					"black": map[string]any{"line-length": 88, "target-version": "py311"},
					"isort": map[string]any{"profile": "black"},
				},
			},
		},
		{
			name:     "overwrite replaces leaves on matching path",
			existing: map[string]any{"scripts": map[string]any{"lint": "old", "deploy": "mine"}},
			template: map[string]any{"scripts": map[string]any{"lint": "new"}},
			policy: func(path []string) Policy {
				if len(path) == 2 && path[1] == "lint" {
					return Overwrite
				}
				return AddMissing
			},
			want: map[string]any{"scripts": map[string]any{"lint": "new", "deploy": "mine"}},
		},
		{
			name:     "keep policy blocks additions",
			existing: map[string]any{"a": 1},
			template: map[string]any{"b": 2},
			policy:   func([]string) Policy { return Keep },
			want:     map[string]any{"a": 1},
		},
		{
			name:     "type mismatch preserves existing leaf",
			existing: map[string]any{"markers": "a string"},
			template: map[string]any{"markers": map[string]any{"x": 1}},
			policy:   addMissingPolicy,
			want:     map[string]any{"markers": "a string"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Trees(tt.existing, tt.template, tt.policy)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTreesDoesNotMutateInputs(t *testing.T) {
	existing := map[string]any{"a": map[string]any{"x": 1}}
	template := map[string]any{"a": map[string]any{"y": 2}}

	Trees(existing, template, addMissingPolicy)

	assert.Equal(t, map[string]any{"a": map[string]any{"x": 1}}, existing)
	assert.Equal(t, map[string]any{"a": map[string]any{"y": 2}}, template)
}
