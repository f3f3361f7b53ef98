package diffkeys

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name          string
		source        []string
		target        []string
		wantMissing   []string
		wantRedundant []string
	}{
		{
			name:        "nested key missing in target",
			source:      []string{"a", "b.c"},
			target:      []string{"a"},
			wantMissing: []string{"b.c"},
		},
		{
			name:          "redundant key in target",
			source:        []string{"a"},
			target:        []string{"a", "old"},
			wantRedundant: []string{"old"},
		},
		{
			name:   "in sync regardless of order",
			source: []string{"a", "b", "c"},
			target: []string{"c", "a", "b"},
		},
		{
			name:          "disjoint sets",
			source:        []string{"x", "y"},
			target:        []string{"p", "q"},
			wantMissing:   []string{"x", "y"},
			wantRedundant: []string{"p", "q"},
		},
		{
			name:        "missing preserves source order",
			source:      []string{"z", "m", "a"},
			target:      nil,
			wantMissing: []string{"z", "m", "a"},
		},
		{
			name:        "duplicates counted once",
			source:      []string{"a", "a", "b"},
			target:      []string{"b"},
			wantMissing: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.source, tt.target)
			if diff := cmp.Diff(tt.wantMissing, got.Missing); diff != "" {
				t.Errorf("Missing mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantRedundant, got.Redundant); diff != "" {
				t.Errorf("Redundant mismatch (-want +got):\n%s", diff)
			}
			wantSync := len(tt.wantMissing) == 0 && len(tt.wantRedundant) == 0
			if got.InSync() != wantSync {
				t.Errorf("InSync() = %v, want %v", got.InSync(), wantSync)
			}
		})
	}
}
