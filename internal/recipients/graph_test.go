package recipients

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateGraph(t *testing.T) {
	tests := []struct {
		name       string
		cats       []Category
		wantErr    bool
		cycles     int
		unknown    map[string][]string
		duplicates []string
	}{
		{
			name: "school grade class student chain",
			cats: []Category{
				{Key: "school"},
				{Key: "grade", DependsOn: []string{"school"}},
				{Key: "class", DependsOn: []string{"grade"}},
				{Key: "student", DependsOn: []string{"class"}},
			},
		},
		{
			name: "declared out of order",
			cats: []Category{
				{Key: "class", DependsOn: []string{"school"}},
				{Key: "school"},
			},
		},
		{
			name: "two node cycle",
			cats: []Category{
				{Key: "a", DependsOn: []string{"b"}},
				{Key: "b", DependsOn: []string{"a"}},
			},
			wantErr: true,
			cycles:  1,
		},
		{
			name:    "self dependency",
			cats:    []Category{{Key: "a", DependsOn: []string{"a"}}},
			wantErr: true,
			cycles:  1,
		},
		{
			name: "cycle through secondary dependency",
			cats: []Category{
				{Key: "a"},
				{Key: "b", DependsOn: []string{"a", "c"}},
				{Key: "c", DependsOn: []string{"b"}},
			},
			wantErr: true,
			cycles:  1,
		},
		{
			name:    "unknown parent",
			cats:    []Category{{Key: "class", DependsOn: []string{"school"}}},
			wantErr: true,
			unknown: map[string][]string{"class": {"school"}},
		},
		{
			name:       "duplicate key",
			cats:       []Category{{Key: "a"}, {Key: "a"}},
			wantErr:    true,
			duplicates: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGraph(tt.cats)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)

			var gerr *GraphError
			require.True(t, errors.As(err, &gerr))
			assert.Len(t, gerr.Cycles, tt.cycles)
			if tt.unknown != nil {
				assert.Equal(t, tt.unknown, gerr.Unknown)
			}
			assert.Equal(t, tt.duplicates, gerr.Duplicates)
		})
	}
}

func TestGraphError_Message(t *testing.T) {
	err := ValidateGraph([]Category{
		{Key: "a", DependsOn: []string{"b"}},
		{Key: "b", DependsOn: []string{"a", "zzz"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `category "b" depends on unknown zzz`)
	assert.Contains(t, err.Error(), "dependency cycle: a → b → a")
}

func TestTopoOrder(t *testing.T) {
	order := TopoOrder([]Category{
		{Key: "student", DependsOn: []string{"class"}},
		{Key: "class", DependsOn: []string{"school"}},
		{Key: "school"},
	})
	assert.Equal(t, []string{"school", "class", "student"}, order)
}
