package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"draft-scout-api/internal/domain/entity"
)

// prospectsFile is the on-disk shape of the prospect corpus.
type prospectsFile struct {
	Prospects []*entity.Prospect `json:"prospects"`
}

// teamsFile mirrors the scraped team-needs JSON, whose draft capital is
// keyed by round with picks that may be a number, "13, 29", or "NONE".
type teamsFile struct {
	Teams []teamRecord `json:"teams"`
}

type teamRecord struct {
	TeamCode        string                  `json:"team_code"`
	TeamName        string                  `json:"team_name"`
	Division        string                  `json:"division"`
	DraftCapital    map[string]draftRound   `json:"draft_capital"`
	PositionalNeeds []entity.PositionalNeed `json:"positional_needs"`
	RosterNotes     string                  `json:"roster_notes"`
}

type draftRound struct {
	Pick json.RawMessage `json:"pick"`
}

// Load reads both corpus files and validates the league invariants.
func Load(prospectsPath, teamsPath string) (*Store, error) {
	prospects, err := loadProspects(prospectsPath)
	if err != nil {
		return nil, err
	}
	teams, err := loadTeams(teamsPath)
	if err != nil {
		return nil, err
	}
	return New(prospects, teams), nil
}

func loadProspects(path string) ([]*entity.Prospect, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prospects file: %w", err)
	}
	var f prospectsFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse prospects file %s: %w", path, err)
	}

	// One record per (player, snapshot) pair.
	seen := make(map[string]string, len(f.Prospects))
	for _, p := range f.Prospects {
		if p.ID == "" {
			return nil, fmt.Errorf("prospect %q has no id", p.Name)
		}
		if p.PlayerID == "" {
			p.PlayerID = p.ID
		}
		if !p.Snapshot.Valid() {
			p.Snapshot = entity.SnapshotPreSeason
		}
		key := p.PlayerID + "/" + string(p.Snapshot)
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate snapshot %s for player %s (records %s, %s)",
				p.Snapshot, p.PlayerID, prev, p.ID)
		}
		seen[key] = p.ID
	}
	return f.Prospects, nil
}

func loadTeams(path string) ([]*entity.Team, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read teams file: %w", err)
	}
	var f teamsFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse teams file %s: %w", path, err)
	}

	teams := make([]*entity.Team, 0, len(f.Teams))
	divisions := make(map[string]struct{})
	for _, rec := range f.Teams {
		if rec.TeamCode == "" {
			return nil, fmt.Errorf("team %q has no code", rec.TeamName)
		}
		t := &entity.Team{
			ID:              strings.ToUpper(rec.TeamCode),
			Name:            rec.TeamName,
			Division:        rec.Division,
			PositionalNeeds: rec.PositionalNeeds,
			RosterNotes:     rec.RosterNotes,
		}
		t.DraftCapital = parseDraftCapital(rec.DraftCapital)
		divisions[t.Division] = struct{}{}
		teams = append(teams, t)
	}

	if len(teams) != entity.TeamCount {
		return nil, fmt.Errorf("teams file has %d teams, want %d", len(teams), entity.TeamCount)
	}
	if len(divisions) != entity.DivisionCount {
		return nil, fmt.Errorf("teams file spans %d divisions, want %d", len(divisions), entity.DivisionCount)
	}
	return teams, nil
}

// parseDraftCapital flattens round-keyed picks into ordered slots.
func parseDraftCapital(rounds map[string]draftRound) []entity.DraftPick {
	var picks []entity.DraftPick
	for key, r := range rounds {
		round := parseRoundKey(key)
		if round == 0 {
			continue
		}
		for _, slot := range parsePickSlots(r.Pick) {
			picks = append(picks, entity.DraftPick{Round: round, Slot: slot})
		}
	}
	sort.Slice(picks, func(i, j int) bool { return picks[i].Slot < picks[j].Slot })
	return picks
}

func parseRoundKey(key string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(key, "round_"))
	if err != nil {
		return 0
	}
	return n
}

// parsePickSlots handles the pick field's three shapes: a JSON number,
// a comma-separated string, or "NONE".
func parsePickSlots(raw json.RawMessage) []int {
	if len(raw) == 0 {
		return nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return []int{n}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue // "NONE" and friends
		}
		out = append(out, v)
	}
	return out
}
