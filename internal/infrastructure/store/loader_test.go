package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draft-scout-api/internal/domain/entity"
)

func writeJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

// fullLeague builds a teams file satisfying the 32-team, 8-division shape.
func fullLeague() map[string]any {
	divisions := []string{
		"AFC East", "AFC North", "AFC South", "AFC West",
		"NFC East", "NFC North", "NFC South", "NFC West",
	}
	var teams []map[string]any
	for i := 0; i < entity.TeamCount; i++ {
		teams = append(teams, map[string]any{
			"team_code": fmt.Sprintf("T%02d", i),
			"team_name": fmt.Sprintf("Team %d", i),
			"division":  divisions[i%len(divisions)],
			"draft_capital": map[string]any{
				"round_1": map[string]any{"pick": i + 1},
			},
		})
	}
	return map[string]any{"teams": teams}
}

func TestLoadValidCorpus(t *testing.T) {
	dir := t.TempDir()
	prospectsPath := writeJSON(t, dir, "prospects.json", map[string]any{
		"prospects": []map[string]any{
			{
				"id": "p1-pre", "player_id": "p1", "name": "Marcus Webb",
				"position": "QB", "temporal_tag": "pre_season",
			},
			{
				"id": "p1-combine", "player_id": "p1", "name": "Marcus Webb",
				"position": "QB", "temporal_tag": "post_combine",
			},
		},
	})
	teamsPath := writeJSON(t, dir, "teams.json", fullLeague())

	s, err := Load(prospectsPath, teamsPath)
	require.NoError(t, err)

	assert.Equal(t, 2, s.CountProspects())
	assert.Equal(t, entity.TeamCount, s.CountTeams())
	assert.Equal(t, "p1-combine", s.LatestSnapshot("p1").ID)
}

func TestLoadRejectsDuplicateSnapshot(t *testing.T) {
	dir := t.TempDir()
	prospectsPath := writeJSON(t, dir, "prospects.json", map[string]any{
		"prospects": []map[string]any{
			{"id": "a", "player_id": "p1", "name": "Marcus Webb", "position": "QB", "temporal_tag": "pre_season"},
			{"id": "b", "player_id": "p1", "name": "Marcus Webb", "position": "QB", "temporal_tag": "pre_season"},
		},
	})
	teamsPath := writeJSON(t, dir, "teams.json", fullLeague())

	_, err := Load(prospectsPath, teamsPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate snapshot")
}

func TestLoadDefaultsPlayerIDAndSnapshot(t *testing.T) {
	prospects, err := loadProspectsFromFixture(t, []map[string]any{
		{"id": "solo", "name": "Jalen Rutherford", "position": "QB"},
	})
	require.NoError(t, err)
	require.Len(t, prospects, 1)

	assert.Equal(t, "solo", prospects[0].PlayerID)
	assert.Equal(t, entity.SnapshotPreSeason, prospects[0].Snapshot)
}

func TestLoadRejectsMissingID(t *testing.T) {
	_, err := loadProspectsFromFixture(t, []map[string]any{
		{"name": "No Identifier", "position": "QB"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no id")
}

func loadProspectsFromFixture(t *testing.T, records []map[string]any) ([]*entity.Prospect, error) {
	t.Helper()
	path := writeJSON(t, t.TempDir(), "prospects.json", map[string]any{"prospects": records})
	return loadProspects(path)
}

func TestLoadRejectsWrongTeamCount(t *testing.T) {
	dir := t.TempDir()
	prospectsPath := writeJSON(t, dir, "prospects.json", map[string]any{"prospects": []any{}})

	league := fullLeague()
	league["teams"] = league["teams"].([]map[string]any)[:31]
	teamsPath := writeJSON(t, dir, "teams.json", league)

	_, err := Load(prospectsPath, teamsPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want 32")
}

func TestParseDraftCapital(t *testing.T) {
	capital := map[string]draftRound{
		"round_1": {Pick: json.RawMessage(`19`)},
		"round_3": {Pick: json.RawMessage(`"84, 92"`)},
		"round_5": {Pick: json.RawMessage(`"NONE"`)},
	}

	picks := parseDraftCapital(capital)

	require.Len(t, picks, 3)
	assert.Equal(t, entity.DraftPick{Round: 1, Slot: 19}, picks[0])
	assert.Equal(t, entity.DraftPick{Round: 3, Slot: 84}, picks[1])
	assert.Equal(t, entity.DraftPick{Round: 3, Slot: 92}, picks[2])
}

func TestParsePickSlots(t *testing.T) {
	assert.Equal(t, []int{13}, parsePickSlots(json.RawMessage(`13`)))
	assert.Equal(t, []int{13, 29}, parsePickSlots(json.RawMessage(`"13, 29"`)))
	assert.Nil(t, parsePickSlots(json.RawMessage(`"NONE"`)))
	assert.Nil(t, parsePickSlots(nil))
}
