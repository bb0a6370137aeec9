// Package store provides the in-memory prospect and team store. It is
// populated once at startup and read-only afterwards, so concurrent
// readers need no locking.
package store

import (
	"sort"

	"draft-scout-api/internal/domain/entity"
)

// Store holds the loaded corpus.
type Store struct {
	prospects  map[string]*entity.Prospect
	byPlayer   map[string][]*entity.Prospect
	byPosition map[string][]*entity.Prospect
	teams      map[string]*entity.Team
}

// New builds a store from loaded records. Snapshot lists per player are
// kept sorted oldest to newest.
func New(prospects []*entity.Prospect, teams []*entity.Team) *Store {
	s := &Store{
		prospects:  make(map[string]*entity.Prospect, len(prospects)),
		byPlayer:   make(map[string][]*entity.Prospect),
		byPosition: make(map[string][]*entity.Prospect),
		teams:      make(map[string]*entity.Team, len(teams)),
	}
	for _, p := range prospects {
		s.prospects[p.ID] = p
		s.byPlayer[p.PlayerID] = append(s.byPlayer[p.PlayerID], p)
		s.byPosition[p.Position] = append(s.byPosition[p.Position], p)
	}
	for _, snaps := range s.byPlayer {
		sort.Slice(snaps, func(i, j int) bool {
			return snaps[i].Snapshot.Order() < snaps[j].Snapshot.Order()
		})
	}
	for _, t := range teams {
		s.teams[t.ID] = t
	}
	return s
}

// GetProspect returns the record for id, or nil.
func (s *Store) GetProspect(id string) *entity.Prospect {
	return s.prospects[id]
}

// ProspectsByPosition returns all snapshots at a position.
func (s *Store) ProspectsByPosition(position string) []*entity.Prospect {
	return s.byPosition[position]
}

// FilterProspects returns all records matching pred, in ID order for
// deterministic output.
func (s *Store) FilterProspects(pred func(*entity.Prospect) bool) []*entity.Prospect {
	var out []*entity.Prospect
	for _, p := range s.prospects {
		if pred(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LatestSnapshot returns the most recent record for a player, or nil.
func (s *Store) LatestSnapshot(playerID string) *entity.Prospect {
	snaps := s.byPlayer[playerID]
	if len(snaps) == 0 {
		return nil
	}
	return snaps[len(snaps)-1]
}

// IsLatestSnapshot reports whether p is its player's newest record.
func (s *Store) IsLatestSnapshot(p *entity.Prospect) bool {
	latest := s.LatestSnapshot(p.PlayerID)
	return latest != nil && latest.ID == p.ID
}

// GetTeam resolves a team by abbreviation, nickname, or city name.
func (s *Store) GetTeam(name string) *entity.Team {
	code, ok := entity.ResolveTeamAlias(name)
	if !ok {
		return nil
	}
	return s.teams[code]
}

// Teams returns all teams in ID order.
func (s *Store) Teams() []*entity.Team {
	out := make([]*entity.Team, 0, len(s.teams))
	for _, t := range s.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CountProspects returns the number of prospect records.
func (s *Store) CountProspects() int {
	return len(s.prospects)
}

// CountTeams returns the number of teams.
func (s *Store) CountTeams() int {
	return len(s.teams)
}
