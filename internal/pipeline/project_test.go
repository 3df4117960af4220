package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbalake/internal/domain"
)

func TestLoadProject(t *testing.T) {
	project, err := LoadProject()
	require.NoError(t, err)

	assert.Equal(t, "nbalake", project.Name)
	assert.Equal(t, "main", project.TargetSchema)

	require.Len(t, project.Sources, 2)
	assert.Equal(t, "raw.players", project.Sources[0].Relation())
	assert.Equal(t, "raw.player_stats", project.Sources[1].Relation())

	require.Len(t, project.Models, 4)
	byName := make(map[string]*domain.Model, len(project.Models))
	for i := range project.Models {
		byName[project.Models[i].Name] = &project.Models[i]
	}

	for _, name := range []string{
		"players_cleaned", "player_stats_cleaned",
		"player_stats_enriched", "top_scorers_by_season",
	} {
		m, ok := byName[name]
		require.True(t, ok, "missing model %s", name)
		assert.NotEmpty(t, m.SQL, "model %s has no SQL", name)
		assert.Equal(t, "main", m.Schema)
	}

	// The dimension carries the uniqueness precondition as a test.
	players := byName["players_cleaned"]
	testTypes := make([]string, 0, len(players.Tests))
	for _, test := range players.Tests {
		testTypes = append(testTypes, test.TestType)
	}
	assert.ElementsMatch(t, []string{domain.TestTypeNotNull, domain.TestTypeUnique}, testTypes)

	enriched := byName["player_stats_enriched"]
	assert.ElementsMatch(t,
		[]string{"main.players_cleaned", "main.player_stats_cleaned"},
		enriched.DependsOn)
}

func TestBuildTestValidation(t *testing.T) {
	tests := []struct {
		name    string
		spec    testSpec
		wantErr string
	}{
		{
			name:    "not_null without column",
			spec:    testSpec{Type: domain.TestTypeNotNull},
			wantErr: "requires a column",
		},
		{
			name:    "relationships incomplete",
			spec:    testSpec{Type: domain.TestTypeRelationships, Column: "id"},
			wantErr: "relationships test requires",
		},
		{
			name:    "custom_sql without sql",
			spec:    testSpec{Type: domain.TestTypeCustomSQL, Name: "x"},
			wantErr: "requires sql",
		},
		{
			name:    "custom_sql without name",
			spec:    testSpec{Type: domain.TestTypeCustomSQL, SQL: "SELECT 1"},
			wantErr: "requires a name",
		},
		{
			name:    "unknown type",
			spec:    testSpec{Type: "sometimes_null", Column: "id"},
			wantErr: "unknown test type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildTest(tt.spec, "m")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildTestDefaultName(t *testing.T) {
	test, err := buildTest(testSpec{Type: domain.TestTypeUnique, Column: "player_id"}, "m")
	require.NoError(t, err)
	assert.Equal(t, "unique_player_id", test.Name)
}
