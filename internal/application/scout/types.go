// Package scout implements the prospect question-answering pipeline:
// query interpretation, hybrid retrieval, context assembly and session
// management.
package scout

import (
	"context"

	"draft-scout-api/internal/domain/entity"
)

// IntentKind classifies what a query is asking about.
type IntentKind string

const (
	KindPlayer        IntentKind = "player"
	KindPositionGroup IntentKind = "position_group"
	KindTeam          IntentKind = "team"
	KindComparison    IntentKind = "comparison"
)

// Intent is the structured reading of one query. It lives for a single
// request and is never persisted.
type Intent struct {
	Kind IntentKind

	// Position is a hard filter when set (canonical token, e.g. "EDGE").
	Position string
	// Team is the resolved team abbreviation when the query names one.
	Team string
	// PlayerNames holds corpus names recognized in the query.
	PlayerNames []string

	// MinRank/MaxRank bound a consensus-rank band. Zero means unset.
	// Bands are soft: they boost scores, they never exclude.
	MinRank int
	MaxRank int

	// StatFloors maps stat name to a minimum value the query asked for.
	// Floors are soft: meeting them boosts, missing them never excludes.
	StatFloors map[string]float64

	// Snapshot pins a draft-cycle point when the query asks for one.
	Snapshot entity.SnapshotTag

	Limit        int
	SemanticText string
	RawQuery     string
}

// HasFilters reports whether any structured constraint was extracted.
// Without filters the retriever runs in pure semantic mode.
func (i *Intent) HasFilters() bool {
	return i.Position != "" || i.Team != "" || len(i.PlayerNames) > 0 ||
		i.MinRank > 0 || i.MaxRank > 0 || len(i.StatFloors) > 0 ||
		i.Snapshot != ""
}

// RankedResult is one scored candidate, ordered best first.
type RankedResult struct {
	Prospect         *entity.Prospect
	SemanticScore    float64
	StatisticalScore float64
	CombinedScore    float64
	RankPosition     int
}

// Diagnostics describes how one query was answered.
type Diagnostics struct {
	IntentKind         IntentKind `json:"intent_kind"`
	Position           string     `json:"position,omitempty"`
	Team               string     `json:"team,omitempty"`
	CandidatesFetched  int        `json:"candidates_fetched"`
	CandidatesReturned int        `json:"candidates_returned"`
	AdvisoryFallback   bool       `json:"advisory_fallback"`
	PureSemantic       bool       `json:"pure_semantic"`
}

// Answer is the pipeline output for one query.
type Answer struct {
	ResponseText string      `json:"response_text"`
	UsedRecords  []string    `json:"used_records"`
	Diagnostics  Diagnostics `json:"diagnostics"`
}

// Embedder embeds a single query text.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Completer generates an answer from the system prompt, prior turns and
// the user message.
type Completer interface {
	Complete(ctx context.Context, system string, history []entity.Turn, user string) (string, error)
}

// TurnStore persists conversation turns per session.
type TurnStore interface {
	Append(ctx context.Context, sessionID string, turns ...entity.Turn) error
	History(ctx context.Context, sessionID string) ([]entity.Turn, error)
	Reset(ctx context.Context, sessionID string) error
}
