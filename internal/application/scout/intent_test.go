package scout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draft-scout-api/internal/config"
	"draft-scout-api/internal/domain/entity"
	"draft-scout-api/internal/infrastructure/store"
)

func testScoutConfig() *config.ScoutConfig {
	return &config.ScoutConfig{
		Ranking: config.RankingConfig{
			SemanticWeight:    0.5,
			StatisticalWeight: 0.5,
			ConsensusWeight:   1,
			OverfetchFactor:   4,
		},
		Vocabulary: map[string]int{
			"elite":   25,
			"top":     50,
			"sleeper": 150,
		},
		DefaultLimit:       5,
		MaxLimit:           10,
		ContextBudgetChars: 8000,
		HistoryMaxTurns:    40,
		PromptHistoryTurns: 10,
	}
}

func newTestInterpreter(t *testing.T, prospects []*entity.Prospect) *Interpreter {
	t.Helper()
	return NewInterpreter(store.New(prospects, nil), testScoutConfig())
}

func TestParsePositionGroup(t *testing.T) {
	it := newTestInterpreter(t, nil)

	intent := it.Parse("top 5 quarterback prospects")

	assert.Equal(t, KindPositionGroup, intent.Kind)
	assert.Equal(t, "QB", intent.Position)
	assert.Equal(t, 5, intent.Limit)
	assert.Zero(t, intent.MaxRank)
}

func TestParsePositionVocabulary(t *testing.T) {
	it := newTestInterpreter(t, nil)

	cases := map[string]string{
		"best edge rushers in the class": "EDGE",
		"who is the best corner":         "CB",
		"underrated wideouts":            "WR",
		"top 3 safeties":                 "S",
		"interior offensive line help":   "IOL",
		"best available OT":              "OT",
	}
	for query, want := range cases {
		intent := it.Parse(query)
		assert.Equal(t, want, intent.Position, "query %q", query)
	}
}

func TestParseTopNBeyondLimitBecomesRankBand(t *testing.T) {
	it := newTestInterpreter(t, nil)

	intent := it.Parse("top 50 prospects overall")

	assert.Equal(t, 50, intent.MaxRank)
	assert.Equal(t, 5, intent.Limit)
}

func TestParseRoundBands(t *testing.T) {
	it := newTestInterpreter(t, nil)

	intent := it.Parse("first round edge rushers")
	assert.Equal(t, 1, intent.MinRank)
	assert.Equal(t, 32, intent.MaxRank)

	intent = it.Parse("who goes in round 3")
	assert.Equal(t, 65, intent.MinRank)
	assert.Equal(t, 96, intent.MaxRank)

	intent = it.Parse("day 3 sleepers at running back")
	assert.Equal(t, 97, intent.MinRank)
}

func TestParseQualitativeVocabulary(t *testing.T) {
	it := newTestInterpreter(t, nil)

	intent := it.Parse("elite cornerbacks")

	assert.Equal(t, "CB", intent.Position)
	assert.Equal(t, 25, intent.MaxRank)
}

func TestParseStatFloors(t *testing.T) {
	it := newTestInterpreter(t, nil)

	intent := it.Parse("running backs with at least 1000 rushing yards")

	assert.Equal(t, "RB", intent.Position)
	assert.Equal(t, 1000.0, intent.StatFloors["rushing_yards"])
	assert.True(t, intent.HasFilters())
	assert.NotContains(t, intent.SemanticText, "1000")
}

func TestParseTeamIntent(t *testing.T) {
	it := newTestInterpreter(t, nil)

	intent := it.Parse("what do the Tampa Bay Buccaneers need")

	assert.Equal(t, KindTeam, intent.Kind)
	assert.Equal(t, "TB", intent.Team)
}

func TestParseSnapshotPin(t *testing.T) {
	it := newTestInterpreter(t, nil)

	intent := it.Parse("quarterback rankings after the combine")
	assert.Equal(t, entity.SnapshotPostCombine, intent.Snapshot)

	intent = it.Parse("how did he look at the senior bowl")
	assert.Equal(t, entity.SnapshotPostSeniorBowl, intent.Snapshot)
}

func TestParsePlayerAndComparison(t *testing.T) {
	prospects := []*entity.Prospect{
		{ID: "p1", PlayerID: "p1", Name: "Marcus Webb", Position: "QB", Snapshot: entity.SnapshotPreSeason},
		{ID: "p2", PlayerID: "p2", Name: "Jalen Rutherford", Position: "QB", Snapshot: entity.SnapshotPreSeason},
	}
	it := newTestInterpreter(t, prospects)

	intent := it.Parse("tell me about Marcus Webb")
	assert.Equal(t, KindPlayer, intent.Kind)
	require.Len(t, intent.PlayerNames, 1)
	assert.Equal(t, "Marcus Webb", intent.PlayerNames[0])

	intent = it.Parse("Marcus Webb vs Jalen Rutherford")
	assert.Equal(t, KindComparison, intent.Kind)
	assert.Len(t, intent.PlayerNames, 2)
}

func TestParseUnstructuredQueryDegradesToSemantic(t *testing.T) {
	it := newTestInterpreter(t, nil)

	intent := it.Parse("who fits a wide zone scheme with plus athleticism")

	assert.False(t, intent.HasFilters())
	assert.NotEmpty(t, intent.SemanticText)
	assert.Equal(t, 5, intent.Limit)
}

func TestParseKeepsResidualSemanticText(t *testing.T) {
	it := newTestInterpreter(t, nil)

	intent := it.Parse("top 5 quarterback prospects with quick release")

	assert.Contains(t, intent.SemanticText, "quick release")
	assert.NotContains(t, intent.SemanticText, "quarterback")
}

func TestParseNeverReturnsZeroLimit(t *testing.T) {
	it := newTestInterpreter(t, nil)

	assert.Equal(t, 5, it.Parse("").Limit)
	assert.Equal(t, 5, it.Parse("   ").Limit)
}
