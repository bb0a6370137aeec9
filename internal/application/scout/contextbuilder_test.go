package scout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draft-scout-api/internal/config"
	"draft-scout-api/internal/domain/entity"
)

func newTestBuilder(budget, historyTurns int) *ContextBuilder {
	return NewContextBuilder(&config.ScoutConfig{
		ContextBudgetChars: budget,
		PromptHistoryTurns: historyTurns,
	})
}

func rankedFixture() []RankedResult {
	return []RankedResult{
		{
			Prospect: &entity.Prospect{
				ID:        "p1-combine",
				PlayerID:  "p1",
				Name:      "Marcus Webb",
				Position:  "QB",
				School:    "Oregon",
				ClassYear: "2026",
				Snapshot:  entity.SnapshotPostCombine,
				Rankings:  map[string]int{"big_board": 4, "mock_consensus": 6},
				Stats: entity.StatMap{
					"passing_yards": fptr(3841),
					"forty_time":    nil,
				},
				NarrativeText: "Quick release, layered touch to all three levels.",
			},
			RankPosition: 1,
		},
		{
			Prospect: &entity.Prospect{
				ID:        "p2-combine",
				PlayerID:  "p2",
				Name:      "Jalen Rutherford",
				Position:  "QB",
				School:    "Auburn",
				ClassYear: "2026",
				Snapshot:  entity.SnapshotPostCombine,
				Stats:     entity.StatMap{},
			},
			RankPosition: 2,
		},
	}
}

func TestBuildEmitsOnlyRecordFacts(t *testing.T) {
	b := newTestBuilder(8000, 10)

	prompt := b.Build(rankedFixture(), nil, nil)

	assert.Contains(t, prompt.System, "Marcus Webb | QB | Oregon")
	assert.Contains(t, prompt.System, "passing_yards=3841")
	assert.Contains(t, prompt.System, "big_board #4")
	assert.Contains(t, prompt.System, "(consensus 5)")
	assert.Contains(t, prompt.System, "Quick release")
	require.Equal(t, []string{"p1-combine", "p2-combine"}, prompt.UsedRecords)
	assert.Zero(t, prompt.DroppedRecords)
}

func TestBuildMarksMissingCoverageExplicitly(t *testing.T) {
	b := newTestBuilder(8000, 10)

	prompt := b.Build(rankedFixture(), nil, nil)

	assert.Contains(t, prompt.System, "forty_time=no coverage")
	assert.Contains(t, prompt.System, "Rankings: unranked")
	assert.Contains(t, prompt.System, "Stats: none tracked")
}

func TestBuildDropsWholeRecordsAtBudget(t *testing.T) {
	results := rankedFixture()
	first := formatProspect(results[0])

	// Budget fits the first record but not the second.
	b := newTestBuilder(len(first)+10, 10)

	prompt := b.Build(results, nil, nil)

	require.Equal(t, []string{"p1-combine"}, prompt.UsedRecords)
	assert.Equal(t, 1, prompt.DroppedRecords)
	assert.NotContains(t, prompt.System, "Jalen Rutherford")
	// The kept record must be intact, never cut mid-entry.
	assert.Contains(t, prompt.System, first)
}

func TestBuildEmptyResultsStatesNothingMatched(t *testing.T) {
	b := newTestBuilder(8000, 10)

	prompt := b.Build(nil, nil, nil)

	assert.Contains(t, prompt.System, "No prospect records matched the query.")
	assert.Empty(t, prompt.UsedRecords)
}

func TestBuildIncludesTeamBeforeProspects(t *testing.T) {
	b := newTestBuilder(8000, 10)
	team := &entity.Team{
		ID:       "TB",
		Name:     "Tampa Bay Buccaneers",
		Division: "NFC South",
		DraftCapital: []entity.DraftPick{
			{Round: 1, Slot: 19},
		},
		PositionalNeeds: []entity.PositionalNeed{
			{Position: "EDGE", Priority: 1, Context: "aging rotation"},
		},
		RosterNotes: "Secondary locked up long term.",
	}

	prompt := b.Build(rankedFixture(), []*entity.Team{team}, nil)

	assert.Contains(t, prompt.System, "[TEAM] Tampa Bay Buccaneers (TB)")
	assert.Contains(t, prompt.System, "round 1 pick 19")
	assert.Contains(t, prompt.System, "EDGE (aging rotation)")
	teamIdx := strings.Index(prompt.System, "[TEAM]")
	prospectIdx := strings.Index(prompt.System, "Marcus Webb")
	assert.Less(t, teamIdx, prospectIdx)
	require.Equal(t, []string{"TEAM:TB", "p1-combine", "p2-combine"}, prompt.UsedRecords)
	assert.Zero(t, prompt.DroppedRecords)
}

func TestBuildTrimsHistoryWindow(t *testing.T) {
	b := newTestBuilder(8000, 2)

	history := []entity.Turn{
		entity.NewTurn(entity.RoleUser, "first question"),
		entity.NewTurn(entity.RoleAssistant, "first answer"),
		entity.NewTurn(entity.RoleUser, "second question"),
		entity.NewTurn(entity.RoleAssistant, "second answer"),
	}

	prompt := b.Build(nil, nil, history)

	require.Len(t, prompt.History, 2)
	assert.Equal(t, "second question", prompt.History[0].Content)
	assert.Equal(t, "second answer", prompt.History[1].Content)
}

func TestBuildSystemCarriesGroundingPolicy(t *testing.T) {
	b := newTestBuilder(8000, 10)

	prompt := b.Build(rankedFixture(), nil, nil)

	assert.Contains(t, prompt.System, "ONLY the scouting data block")
	assert.Contains(t, prompt.System, "=== SCOUTING DATA ===")
}
