package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbalake/internal/domain"
)

func TestResolveDAG(t *testing.T) {
	tests := []struct {
		name      string
		models    []domain.Model
		wantTiers int
		wantErr   string
	}{
		{
			name:      "empty",
			models:    nil,
			wantTiers: 0,
		},
		{
			name: "single model source dep only",
			models: []domain.Model{
				{Schema: "main", Name: "a", DependsOn: []string{"raw.src"}},
			},
			wantTiers: 1,
		},
		{
			name: "linear chain",
			models: []domain.Model{
				{Schema: "main", Name: "a"},
				{Schema: "main", Name: "b", DependsOn: []string{"main.a"}},
				{Schema: "main", Name: "c", DependsOn: []string{"main.b"}},
			},
			wantTiers: 3,
		},
		{
			name: "diamond",
			models: []domain.Model{
				{Schema: "main", Name: "a"},
				{Schema: "main", Name: "b", DependsOn: []string{"main.a"}},
				{Schema: "main", Name: "c", DependsOn: []string{"main.a"}},
				{Schema: "main", Name: "d", DependsOn: []string{"main.b", "main.c"}},
			},
			wantTiers: 3,
		},
		{
			name: "cycle",
			models: []domain.Model{
				{Schema: "main", Name: "a", DependsOn: []string{"main.b"}},
				{Schema: "main", Name: "b", DependsOn: []string{"main.a"}},
			},
			wantErr: "cycle detected",
		},
		{
			name: "self dependency",
			models: []domain.Model{
				{Schema: "main", Name: "a", DependsOn: []string{"main.a"}},
			},
			wantErr: "self dependency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiers, err := ResolveDAG(tt.models)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, tiers, tt.wantTiers)
		})
	}
}

func TestResolveDAGProjectOrder(t *testing.T) {
	project, err := LoadProject()
	require.NoError(t, err)

	tiers, err := ResolveDAG(project.Models)
	require.NoError(t, err)
	require.Len(t, tiers, 3)

	tierNames := make([][]string, len(tiers))
	for i, tier := range tiers {
		for _, node := range tier {
			tierNames[i] = append(tierNames[i], node.Model.Name)
		}
	}

	assert.ElementsMatch(t, []string{"players_cleaned", "player_stats_cleaned"}, tierNames[0])
	assert.Equal(t, []string{"player_stats_enriched"}, tierNames[1])
	assert.Equal(t, []string{"top_scorers_by_season"}, tierNames[2])
}
