// Package entity defines the domain model.
package entity

import (
	"strings"
)

// SnapshotTag identifies a point in the draft cycle for a prospect record.
// The same player may carry one record per tag, never two under one tag.
type SnapshotTag string

const (
	SnapshotPreSeason      SnapshotTag = "pre_season"
	SnapshotPostSeniorBowl SnapshotTag = "post_senior_bowl"
	SnapshotPostCombine    SnapshotTag = "post_combine"
)

var snapshotOrder = map[SnapshotTag]int{
	SnapshotPreSeason:      1,
	SnapshotPostSeniorBowl: 2,
	SnapshotPostCombine:    3,
}

// Order returns the position of the tag in the draft cycle; unknown tags
// sort before all known ones.
func (t SnapshotTag) Order() int {
	return snapshotOrder[t]
}

// Valid reports whether the tag is one of the known cycle points.
func (t SnapshotTag) Valid() bool {
	_, ok := snapshotOrder[t]
	return ok
}

// StatMap maps stat name to value. A nil value means the stat is tracked
// for the player's position but had no coverage, which is distinct from a
// stat that is simply not tracked (missing key).
type StatMap map[string]*float64

// Get returns the stat value and whether coverage exists.
func (s StatMap) Get(name string) (float64, bool) {
	v, ok := s[name]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// Covered reports whether any stat in the map has coverage.
func (s StatMap) Covered() bool {
	for _, v := range s {
		if v != nil {
			return true
		}
	}
	return false
}

// Prospect is one snapshot of a draft prospect.
type Prospect struct {
	ID        string      `json:"id"`
	PlayerID  string      `json:"player_id"`
	Name      string      `json:"name"`
	Position  string      `json:"position"`
	School    string      `json:"school"`
	ClassYear string      `json:"class_year"`
	Snapshot  SnapshotTag `json:"temporal_tag"`

	// Stats is sparse; see StatMap for the coverage convention.
	Stats StatMap `json:"stats"`

	// Rankings maps ranking source to an integer rank (lower is better).
	// Between zero and five sources are populated.
	Rankings map[string]int `json:"rankings"`

	// NarrativeText is the precomputed scouting description used as the
	// embedding input.
	NarrativeText string `json:"narrative_text"`
}

// ConsensusRank averages the populated source ranks. ok is false when no
// source has ranked the player.
func (p *Prospect) ConsensusRank() (float64, bool) {
	if len(p.Rankings) == 0 {
		return 0, false
	}
	var sum int
	for _, r := range p.Rankings {
		sum += r
	}
	return float64(sum) / float64(len(p.Rankings)), true
}

// MatchesName reports whether the prospect's name matches the query name,
// either exactly or with every query word present in the stored name.
func (p *Prospect) MatchesName(name string) bool {
	stored := strings.Fields(strings.ToLower(p.Name))
	query := strings.Fields(strings.ToLower(name))
	if len(query) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(stored))
	for _, w := range stored {
		set[w] = struct{}{}
	}
	for _, w := range query {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}
