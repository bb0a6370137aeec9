package entity

import "strings"

// DivisionCount and TeamCount pin the league shape the store validates
// against at load time.
const (
	TeamCount     = 32
	DivisionCount = 8
)

// DraftPick is one slot of a team's draft capital.
type DraftPick struct {
	Round int `json:"round"`
	Slot  int `json:"slot"` // overall pick number
}

// PositionalNeed is one entry of a team's need list, most urgent first.
type PositionalNeed struct {
	Position string `json:"position"`
	Priority int    `json:"priority"`
	Context  string `json:"context"`
}

// Team is one NFL franchise's draft outlook.
type Team struct {
	ID              string           `json:"id"` // abbreviation, e.g. "TB"
	Name            string           `json:"name"`
	Division        string           `json:"division"`
	DraftCapital    []DraftPick      `json:"draft_capital"`
	PositionalNeeds []PositionalNeed `json:"positional_needs"`
	RosterNotes     string           `json:"roster_notes"`
}

// FirstPick returns the team's earliest pick, ok=false with no capital.
func (t *Team) FirstPick() (DraftPick, bool) {
	if len(t.DraftCapital) == 0 {
		return DraftPick{}, false
	}
	best := t.DraftCapital[0]
	for _, p := range t.DraftCapital[1:] {
		if p.Slot < best.Slot {
			best = p
		}
	}
	return best, true
}

// teamAliases maps lowercase nicknames, cities, and shorthand to team
// abbreviations.
var teamAliases = map[string]string{
	// AFC East
	"bills": "BUF", "buffalo": "BUF",
	"dolphins": "MIA", "miami": "MIA",
	"patriots": "NE", "new england": "NE", "pats": "NE",
	"jets": "NYJ", "new york jets": "NYJ",

	// AFC North
	"ravens": "BAL", "baltimore": "BAL",
	"bengals": "CIN", "cincinnati": "CIN",
	"browns": "CLE", "cleveland": "CLE",
	"steelers": "PIT", "pittsburgh": "PIT",

	// AFC South
	"texans": "HOU", "houston": "HOU",
	"colts": "IND", "indianapolis": "IND", "indy": "IND",
	"jaguars": "JAX", "jacksonville": "JAX", "jags": "JAX",
	"titans": "TEN", "tennessee": "TEN",

	// AFC West
	"broncos": "DEN", "denver": "DEN",
	"chiefs": "KC", "kansas city": "KC",
	"raiders": "LV", "las vegas": "LV", "vegas": "LV",
	"chargers": "LAC", "los angeles chargers": "LAC", "la chargers": "LAC",

	// NFC East
	"cowboys": "DAL", "dallas": "DAL",
	"giants": "NYG", "new york giants": "NYG",
	"eagles": "PHI", "philadelphia": "PHI", "philly": "PHI",
	"commanders": "WAS", "washington": "WAS",

	// NFC North
	"bears": "CHI", "chicago": "CHI",
	"lions": "DET", "detroit": "DET",
	"packers": "GB", "green bay": "GB",
	"vikings": "MIN", "minnesota": "MIN",

	// NFC South
	"falcons": "ATL", "atlanta": "ATL",
	"panthers": "CAR", "carolina": "CAR",
	"saints": "NO", "new orleans": "NO",
	"buccaneers": "TB", "tampa bay": "TB", "tampa": "TB", "bucs": "TB",

	// NFC West
	"cardinals": "ARI", "arizona": "ARI",
	"rams": "LAR", "los angeles rams": "LAR", "la rams": "LAR",
	"seahawks": "SEA", "seattle": "SEA",
	"49ers": "SF", "niners": "SF", "san francisco": "SF",
}

// ResolveTeamAlias maps a team name, nickname, or abbreviation to the
// canonical abbreviation. ok is false when nothing matches.
func ResolveTeamAlias(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", false
	}
	upper := strings.ToUpper(trimmed)
	for _, code := range teamAliases {
		if code == upper {
			return code, true
		}
	}
	lower := strings.ToLower(trimmed)
	if code, ok := teamAliases[lower]; ok {
		return code, true
	}
	// Word-boundary pass so "the Tampa Bay front office" still resolves
	// while "windy city" does not hit "indy".
	padded := " " + foldWords(lower) + " "
	for alias, code := range teamAliases {
		if strings.Contains(padded, " "+alias+" ") {
			return code, true
		}
	}
	return "", false
}

// foldWords reduces text to space-separated lowercase words so aliases
// match on word boundaries only.
func foldWords(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
