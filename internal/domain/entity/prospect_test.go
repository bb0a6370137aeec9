package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fptr(v float64) *float64 { return &v }

func TestConsensusRank(t *testing.T) {
	p := &Prospect{Rankings: map[string]int{"big_board": 4, "mock_consensus": 7}}
	rank, ok := p.ConsensusRank()
	assert.True(t, ok)
	assert.Equal(t, 5.5, rank)

	unranked := &Prospect{}
	_, ok = unranked.ConsensusRank()
	assert.False(t, ok)
}

func TestStatMapCoverage(t *testing.T) {
	stats := StatMap{
		"passing_yards": fptr(3841),
		"forty_time":    nil,
	}

	v, ok := stats.Get("passing_yards")
	assert.True(t, ok)
	assert.Equal(t, 3841.0, v)

	_, ok = stats.Get("forty_time")
	assert.False(t, ok, "nil value means no coverage")

	_, ok = stats.Get("sacks")
	assert.False(t, ok, "missing key means not tracked")

	assert.True(t, stats.Covered())
	assert.False(t, StatMap{"forty_time": nil}.Covered())
	assert.False(t, StatMap{}.Covered())
}

func TestMatchesName(t *testing.T) {
	p := &Prospect{Name: "Marcus Webb"}

	assert.True(t, p.MatchesName("Marcus Webb"))
	assert.True(t, p.MatchesName("marcus webb"))
	assert.True(t, p.MatchesName("Webb"))
	assert.False(t, p.MatchesName("Marcus Webster"))
	assert.False(t, p.MatchesName(""))
}

func TestSnapshotTagOrder(t *testing.T) {
	assert.Less(t, SnapshotPreSeason.Order(), SnapshotPostSeniorBowl.Order())
	assert.Less(t, SnapshotPostSeniorBowl.Order(), SnapshotPostCombine.Order())
	assert.Zero(t, SnapshotTag("made_up").Order())
}

func TestSnapshotTagValid(t *testing.T) {
	assert.True(t, SnapshotPostCombine.Valid())
	assert.False(t, SnapshotTag("draft_day").Valid())
	assert.False(t, SnapshotTag("").Valid())
}
