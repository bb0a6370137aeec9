package scout

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"draft-scout-api/internal/config"
	"draft-scout-api/internal/domain/entity"
)

// systemPolicy is the fixed grounding instruction. Every fact the model
// may use must appear in the data block that follows it.
const systemPolicy = `You are an NFL draft scouting assistant. Answer using ONLY the scouting data block below.
Rules:
- Cite statistics and rankings verbatim as they appear in the data block.
- Where a stat is marked "no coverage", say the data is unavailable. Never estimate or infer a value.
- Do not mention any player, team, statistic or ranking that is not in the data block.
- If the data block reports that nothing matched, say so plainly and suggest broadening the question.`

// Prompt is the assembled model input.
type Prompt struct {
	// System carries the policy text plus the serialized data block.
	System string
	// History is the trailing conversation window to replay.
	History []entity.Turn
	// UsedRecords lists the record IDs serialized into the block; team
	// records carry a "TEAM:" prefix.
	UsedRecords []string
	// DroppedRecords counts results cut to fit the budget.
	DroppedRecords int
}

// ContextBuilder serializes ranked results into a bounded, grounded
// prompt. Every emitted fact maps to a record field; nothing is derived.
type ContextBuilder struct {
	budget       int
	historyTurns int
}

// NewContextBuilder creates a builder with the configured character
// budget and history window.
func NewContextBuilder(cfg *config.ScoutConfig) *ContextBuilder {
	return &ContextBuilder{
		budget:       cfg.ContextBudgetChars,
		historyTurns: cfg.PromptHistoryTurns,
	}
}

// Build assembles the prompt. When the data block would exceed the
// budget, whole lowest-ranked records are dropped; a record is never
// truncated mid-entry.
func (b *ContextBuilder) Build(results []RankedResult, teams []*entity.Team, history []entity.Turn) *Prompt {
	prompt := &Prompt{History: trimHistory(history, b.historyTurns)}

	var block strings.Builder
	used := 0

	for _, t := range teams {
		entry := formatTeam(t)
		if b.budget > 0 && used+len(entry) > b.budget {
			break
		}
		block.WriteString(entry)
		used += len(entry)
		prompt.UsedRecords = append(prompt.UsedRecords, "TEAM:"+t.ID)
	}

	for i, res := range results {
		entry := formatProspect(res)
		if b.budget > 0 && used+len(entry) > b.budget {
			prompt.DroppedRecords = len(results) - i
			break
		}
		block.WriteString(entry)
		used += len(entry)
		prompt.UsedRecords = append(prompt.UsedRecords, res.Prospect.ID)
	}

	if block.Len() == 0 {
		block.WriteString("No prospect records matched the query.\n")
	}

	prompt.System = systemPolicy + "\n\n=== SCOUTING DATA ===\n" + block.String()
	return prompt
}

// formatProspect serializes one record. Stats and rankings are emitted
// in sorted key order; a nil stat value is written as "no coverage" so
// missing data is explicit rather than silently absent.
func formatProspect(res RankedResult) string {
	p := res.Prospect

	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s | %s | %s | class of %s | snapshot: %s\n",
		res.RankPosition, p.Name, p.Position, p.School, p.ClassYear, p.Snapshot)

	if len(p.Rankings) == 0 {
		b.WriteString("    Rankings: unranked\n")
	} else {
		sources := make([]string, 0, len(p.Rankings))
		for src := range p.Rankings {
			sources = append(sources, src)
		}
		sort.Strings(sources)
		parts := make([]string, 0, len(sources))
		for _, src := range sources {
			parts = append(parts, fmt.Sprintf("%s #%d", src, p.Rankings[src]))
		}
		line := "    Rankings: " + strings.Join(parts, ", ")
		if consensus, ok := p.ConsensusRank(); ok {
			line += fmt.Sprintf(" (consensus %s)", strconv.FormatFloat(consensus, 'f', -1, 64))
		}
		b.WriteString(line + "\n")
	}

	if len(p.Stats) == 0 {
		b.WriteString("    Stats: none tracked\n")
	} else {
		names := make([]string, 0, len(p.Stats))
		for name := range p.Stats {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			if v, ok := p.Stats.Get(name); ok {
				parts = append(parts, fmt.Sprintf("%s=%s", name, strconv.FormatFloat(v, 'f', -1, 64)))
			} else {
				parts = append(parts, name+"=no coverage")
			}
		}
		b.WriteString("    Stats: " + strings.Join(parts, ", ") + "\n")
	}

	if p.NarrativeText != "" {
		b.WriteString("    Scouting notes: " + p.NarrativeText + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

// formatTeam serializes one team record.
func formatTeam(t *entity.Team) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[TEAM] %s (%s) | division: %s\n", t.Name, t.ID, t.Division)

	if len(t.DraftCapital) == 0 {
		b.WriteString("    Draft capital: none\n")
	} else {
		parts := make([]string, 0, len(t.DraftCapital))
		for _, pick := range t.DraftCapital {
			parts = append(parts, fmt.Sprintf("round %d pick %d", pick.Round, pick.Slot))
		}
		b.WriteString("    Draft capital: " + strings.Join(parts, ", ") + "\n")
	}

	if len(t.PositionalNeeds) > 0 {
		parts := make([]string, 0, len(t.PositionalNeeds))
		for _, need := range t.PositionalNeeds {
			part := need.Position
			if need.Context != "" {
				part += " (" + need.Context + ")"
			}
			parts = append(parts, part)
		}
		b.WriteString("    Needs (most urgent first): " + strings.Join(parts, ", ") + "\n")
	}

	if t.RosterNotes != "" {
		b.WriteString("    Roster notes: " + t.RosterNotes + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func trimHistory(history []entity.Turn, n int) []entity.Turn {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
