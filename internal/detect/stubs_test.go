// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStubPackages(t *testing.T) {
	tests := []struct {
		name string
		deps []string
		want []string
	}{
		{
			name: "known packages map to stubs",
			deps: []string{"requests", "pyyaml"},
			want: []string{"types-PyYAML", "types-requests"},
		},
		{
			name: "unknown packages contribute nothing",
			deps: []string{"fastapi", "numpy", "some-internal-lib"},
			want: nil,
		},
		{
			name: "duplicates collapse",
			deps: []string{"psycopg2", "psycopg2-binary"},
			want: []string{"types-psycopg2"},
		},
		{
			name: "empty input",
			deps: nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StubPackages(tt.deps))
		})
	}
}
