package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draft-scout-api/internal/domain/entity"
)

func snapshotRecord(id, playerID, position string, tag entity.SnapshotTag) *entity.Prospect {
	return &entity.Prospect{
		ID:       id,
		PlayerID: playerID,
		Name:     "Player " + playerID,
		Position: position,
		Snapshot: tag,
	}
}

func TestLatestSnapshotFollowsCycleOrder(t *testing.T) {
	s := New([]*entity.Prospect{
		snapshotRecord("p1-combine", "p1", "QB", entity.SnapshotPostCombine),
		snapshotRecord("p1-pre", "p1", "QB", entity.SnapshotPreSeason),
		snapshotRecord("p1-sb", "p1", "QB", entity.SnapshotPostSeniorBowl),
	}, nil)

	latest := s.LatestSnapshot("p1")
	require.NotNil(t, latest)
	assert.Equal(t, "p1-combine", latest.ID)

	assert.True(t, s.IsLatestSnapshot(s.GetProspect("p1-combine")))
	assert.False(t, s.IsLatestSnapshot(s.GetProspect("p1-pre")))
}

func TestLatestSnapshotUnknownPlayer(t *testing.T) {
	s := New(nil, nil)
	assert.Nil(t, s.LatestSnapshot("ghost"))
}

func TestProspectsByPosition(t *testing.T) {
	s := New([]*entity.Prospect{
		snapshotRecord("qb1", "qb1", "QB", entity.SnapshotPreSeason),
		snapshotRecord("qb2", "qb2", "QB", entity.SnapshotPreSeason),
		snapshotRecord("wr1", "wr1", "WR", entity.SnapshotPreSeason),
	}, nil)

	assert.Len(t, s.ProspectsByPosition("QB"), 2)
	assert.Len(t, s.ProspectsByPosition("WR"), 1)
	assert.Empty(t, s.ProspectsByPosition("K"))
}

func TestFilterProspectsIsDeterministic(t *testing.T) {
	s := New([]*entity.Prospect{
		snapshotRecord("c", "c", "QB", entity.SnapshotPreSeason),
		snapshotRecord("a", "a", "QB", entity.SnapshotPreSeason),
		snapshotRecord("b", "b", "WR", entity.SnapshotPreSeason),
	}, nil)

	out := s.FilterProspects(func(p *entity.Prospect) bool { return p.Position == "QB" })
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "c", out[1].ID)
}

func TestGetTeamResolvesAliases(t *testing.T) {
	s := New(nil, []*entity.Team{
		{ID: "TB", Name: "Tampa Bay Buccaneers"},
	})

	for _, name := range []string{"TB", "tb", "bucs", "buccaneers", "Tampa Bay"} {
		team := s.GetTeam(name)
		require.NotNil(t, team, "alias %q", name)
		assert.Equal(t, "TB", team.ID)
	}
	assert.Nil(t, s.GetTeam("the moon"))
}

func TestCounts(t *testing.T) {
	s := New(
		[]*entity.Prospect{snapshotRecord("a", "a", "QB", entity.SnapshotPreSeason)},
		[]*entity.Team{{ID: "TB"}},
	)
	assert.Equal(t, 1, s.CountProspects())
	assert.Equal(t, 1, s.CountTeams())
}
