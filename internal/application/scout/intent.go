package scout

import (
	"regexp"
	"strconv"
	"strings"

	"draft-scout-api/internal/config"
	"draft-scout-api/internal/domain/entity"
	"draft-scout-api/internal/infrastructure/store"
)

// positionVocab maps query phrasing to canonical position tokens. Longer
// phrases are matched before their substrings.
var positionVocab = []struct {
	phrase   string
	position string
}{
	{"interior offensive line", "IOL"},
	{"offensive tackle", "OT"},
	{"defensive tackle", "DT"},
	{"nose tackle", "DT"},
	{"edge rusher", "EDGE"},
	{"pass rusher", "EDGE"},
	{"defensive end", "EDGE"},
	{"wide receiver", "WR"},
	{"running back", "RB"},
	{"tight end", "TE"},
	{"quarterback", "QB"},
	{"linebacker", "LB"},
	{"cornerback", "CB"},
	{"wideout", "WR"},
	{"receiver", "WR"},
	{"halfback", "RB"},
	{"safety", "S"},
	{"safeties", "S"},
	{"corner", "CB"},
	{"center", "IOL"},
	{"guard", "IOL"},
	{"tackle", "OT"},
	{"edge", "EDGE"},
	{"qb", "QB"},
	{"rb", "RB"},
	{"wr", "WR"},
	{"te", "TE"},
	{"ot", "OT"},
	{"iol", "IOL"},
	{"dt", "DT"},
	{"lb", "LB"},
	{"cb", "CB"},
	{"de", "EDGE"},
}

// statVocab maps query phrasing to the corpus stat keys a floor can
// apply to.
var statVocab = []struct {
	phrase string
	stat   string
}{
	{"passing yards", "passing_yards"},
	{"rushing yards", "rushing_yards"},
	{"receiving yards", "receiving_yards"},
	{"receptions", "receptions"},
	{"touchdowns", "touchdowns"},
	{"sacks", "sacks"},
	{"interceptions", "interceptions"},
	{"tackles", "tackles"},
}

var comparisonWords = []string{
	"vs", "versus", "compare", "comparison", "better", "or",
}

var roundWords = map[string]int{
	"first": 1, "1st": 1,
	"second": 2, "2nd": 2,
	"third": 3, "3rd": 3,
	"fourth": 4, "4th": 4,
	"fifth": 5, "5th": 5,
	"sixth": 6, "6th": 6,
	"seventh": 7, "7th": 7,
}

var (
	topNRe      = regexp.MustCompile(`\btop (\d+)\b`)
	roundNumRe  = regexp.MustCompile(`\bround (\d)\b`)
	dayRe       = regexp.MustCompile(`\bday (1|2|3|one|two|three)\b`)
	statFloorRe = regexp.MustCompile(`\b(?:over|at least|more than) (\d+(?:\.\d+)?) ([a-z][a-z ]*)`)
)

// Interpreter turns free-text queries into structured intents. It never
// fails: unparseable input degrades to pure semantic search.
type Interpreter struct {
	store        *store.Store
	vocab        map[string]int
	defaultLimit int
	maxLimit     int
}

// NewInterpreter creates an interpreter. vocab maps qualitative words
// ("elite", "sleeper") to consensus-rank thresholds.
func NewInterpreter(st *store.Store, cfg *config.ScoutConfig) *Interpreter {
	return &Interpreter{
		store:        st,
		vocab:        cfg.Vocabulary,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
	}
}

// Parse extracts structure from a raw query. Unrecognized text is kept
// as semantic search input, never dropped.
func (it *Interpreter) Parse(raw string) *Intent {
	intent := &Intent{
		Kind:     KindPositionGroup,
		Limit:    it.defaultLimit,
		RawQuery: raw,
	}

	norm := normalize(raw)
	residual := norm

	positions := matchPositions(norm)
	if len(positions) > 0 {
		intent.Position = positions[0]
		for _, p := range positions {
			residual = removePhrases(residual, phrasesFor(p))
		}
	}

	if code, ok := entity.ResolveTeamAlias(norm); ok {
		intent.Team = code
		intent.Kind = KindTeam
	}

	residual = it.parseRankBands(intent, residual)
	residual = parseStatFloors(intent, residual)
	residual = parseSnapshot(intent, residual)

	intent.PlayerNames = it.matchPlayerNames(norm)
	switch {
	case len(intent.PlayerNames) >= 2 && hasComparisonWord(norm):
		intent.Kind = KindComparison
		// Comparing two players overrides a single-group filter.
		if len(positions) >= 2 {
			intent.Position = ""
		}
	case len(intent.PlayerNames) == 1:
		intent.Kind = KindPlayer
	}

	if intent.Limit <= 0 {
		intent.Limit = it.defaultLimit
	}
	if it.maxLimit > 0 && intent.Limit > it.maxLimit {
		intent.Limit = it.maxLimit
	}

	residual = strings.Join(strings.Fields(residual), " ")
	if residual == "" {
		residual = norm
	}
	intent.SemanticText = residual

	return intent
}

// parseRankBands extracts "top N", round and day phrasing, and the
// configured qualitative vocabulary. Returns the residual text.
func (it *Interpreter) parseRankBands(intent *Intent, text string) string {
	if m := topNRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n > 0 && (it.maxLimit <= 0 || n <= it.maxLimit) {
			intent.Limit = n
		} else {
			intent.MaxRank = n
		}
		text = strings.Replace(text, m[0], " ", 1)
	}

	if round := matchRound(text); round > 0 {
		intent.MinRank = 32*(round-1) + 1
		intent.MaxRank = 32 * round
		text = roundNumRe.ReplaceAllString(text, " ")
		for word := range roundWords {
			text = removePhrases(text, []string{word + " round", "round " + word})
		}
	}

	if m := dayRe.FindStringSubmatch(text); m != nil {
		switch m[1] {
		case "1", "one":
			intent.MinRank, intent.MaxRank = 1, 32
		case "2", "two":
			intent.MinRank, intent.MaxRank = 33, 96
		case "3", "three":
			intent.MinRank, intent.MaxRank = 97, 250
		}
		text = strings.Replace(text, m[0], " ", 1)
	}

	for word, threshold := range it.vocab {
		if !containsWord(text, word) {
			continue
		}
		if intent.MaxRank == 0 || threshold < intent.MaxRank {
			intent.MaxRank = threshold
		}
		text = removePhrases(text, []string{word})
	}

	return text
}

// parseStatFloors extracts "over N <stat>" style minimums for known
// stat phrases. Returns the residual text.
func parseStatFloors(intent *Intent, text string) string {
	for _, m := range statFloorRe.FindAllStringSubmatch(text, -1) {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		for _, v := range statVocab {
			if m[2] != v.phrase && !strings.HasPrefix(m[2], v.phrase+" ") {
				continue
			}
			if intent.StatFloors == nil {
				intent.StatFloors = make(map[string]float64)
			}
			intent.StatFloors[v.stat] = value
			matched := strings.TrimSuffix(m[0], m[2]) + v.phrase
			text = strings.Replace(text, matched, " ", 1)
			break
		}
	}
	return strings.Join(strings.Fields(text), " ")
}

func matchRound(text string) int {
	if m := roundNumRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n >= 1 && n <= 7 {
			return n
		}
	}
	for word, round := range roundWords {
		if containsWord(text, word+" round") || containsWord(text, "round "+word) {
			return round
		}
	}
	return 0
}

func parseSnapshot(intent *Intent, text string) string {
	switch {
	case containsWord(text, "senior bowl"):
		intent.Snapshot = entity.SnapshotPostSeniorBowl
		return removePhrases(text, []string{"post senior bowl", "senior bowl"})
	case containsWord(text, "combine"):
		intent.Snapshot = entity.SnapshotPostCombine
		return removePhrases(text, []string{"post combine", "combine"})
	case containsWord(text, "preseason") || containsWord(text, "pre season"):
		intent.Snapshot = entity.SnapshotPreSeason
		return removePhrases(text, []string{"preseason", "pre season"})
	}
	return text
}

// matchPlayerNames finds corpus player names mentioned in the query:
// the full name anywhere, or a distinctive last name as a word.
func (it *Interpreter) matchPlayerNames(norm string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, p := range it.store.FilterProspects(func(*entity.Prospect) bool { return true }) {
		if _, dup := seen[p.PlayerID]; dup {
			continue
		}
		full := normalize(p.Name)
		matched := containsWord(norm, full)
		if !matched {
			if last := lastWord(full); len(last) >= 4 {
				matched = containsWord(norm, last)
			}
		}
		if matched {
			seen[p.PlayerID] = struct{}{}
			names = append(names, p.Name)
		}
	}
	return names
}

func matchPositions(norm string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, v := range positionVocab {
		if !containsWord(norm, v.phrase) && !containsWord(norm, v.phrase+"s") {
			continue
		}
		if _, dup := seen[v.position]; dup {
			continue
		}
		seen[v.position] = struct{}{}
		out = append(out, v.position)
	}
	return out
}

func phrasesFor(position string) []string {
	var out []string
	for _, v := range positionVocab {
		if v.position == position {
			out = append(out, v.phrase, v.phrase+"s")
		}
	}
	return out
}

func hasComparisonWord(norm string) bool {
	for _, w := range comparisonWords {
		if containsWord(norm, w) {
			return true
		}
	}
	return false
}

// normalize lowercases and strips punctuation so phrase matching works
// on word boundaries.
func normalize(s string) string {
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

func containsWord(text, phrase string) bool {
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}

func removePhrases(text string, phrases []string) string {
	padded := " " + text + " "
	for _, p := range phrases {
		padded = strings.ReplaceAll(padded, " "+p+" ", " ")
	}
	return strings.Join(strings.Fields(padded), " ")
}

func lastWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
