package scout

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"draft-scout-api/internal/domain/entity"
	"draft-scout-api/internal/infrastructure/store"
	"draft-scout-api/pkg/logger"
)

// teamFitWindow bounds the consensus-rank window around a team's first
// pick when suggesting draft fits: a player ranked well above the pick
// will be gone, one ranked far below is a reach.
const (
	teamFitReachAbove = 10
	teamFitDropBelow  = 40
	teamFitMaxRecords = 5
)

// Service is the pipeline entry point for the serving layer.
type Service struct {
	interpreter *Interpreter
	retriever   *Retriever
	builder     *ContextBuilder
	sessions    *SessionManager
	completer   Completer
	store       *store.Store
}

// NewService wires the pipeline stages together.
func NewService(interpreter *Interpreter, retriever *Retriever, builder *ContextBuilder, sessions *SessionManager, completer Completer, st *store.Store) *Service {
	return &Service{
		interpreter: interpreter,
		retriever:   retriever,
		builder:     builder,
		sessions:    sessions,
		completer:   completer,
		store:       st,
	}
}

// AnswerQuery runs interpret → retrieve → assemble → complete and
// appends the exchange to the session once the full answer exists.
func (s *Service) AnswerQuery(ctx context.Context, sessionID, query string) (*Answer, error) {
	ctx, span := tracer.Start(ctx, "scout.AnswerQuery",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	intent := s.interpreter.Parse(query)
	span.SetAttributes(attribute.String("intent.kind", string(intent.Kind)))

	results, diag, err := s.retriever.Retrieve(ctx, intent)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var teams []*entity.Team
	if intent.Team != "" {
		if team := s.store.GetTeam(intent.Team); team != nil {
			teams = append(teams, team)
			results = appendTeamFits(results, s.teamFitProspects(team))
		}
	}

	history, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		// A lost history degrades the answer, it does not block it.
		logger.Warn(ctx, "failed to load session history", "session_id", sessionID, "error", err)
		history = nil
	}

	prompt := s.builder.Build(results, teams, history)

	responseText, err := s.completer.Complete(ctx, prompt.System, prompt.History, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %v", ErrCompletion, err)
	}

	if err := s.sessions.AppendExchange(ctx, sessionID, query, responseText); err != nil {
		logger.Warn(ctx, "failed to append session turns", "session_id", sessionID, "error", err)
	}

	return &Answer{
		ResponseText: responseText,
		UsedRecords:  prompt.UsedRecords,
		Diagnostics:  *diag,
	}, nil
}

// ResetSession clears a session's history.
func (s *Service) ResetSession(ctx context.Context, sessionID string) error {
	ctx, span := tracer.Start(ctx, "scout.ResetSession",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	return s.sessions.Reset(ctx, sessionID)
}

// History exposes a session's turns to the serving layer.
func (s *Service) History(ctx context.Context, sessionID string) ([]entity.Turn, error) {
	return s.sessions.History(ctx, sessionID)
}

// CorpusCounts reports loaded corpus sizes for the status endpoint.
func (s *Service) CorpusCounts() (prospects, teams int) {
	return s.store.CountProspects(), s.store.CountTeams()
}

// teamFitProspects returns latest-snapshot prospects at the team's need
// positions whose consensus rank falls in a realistic window around the
// team's first pick, best rank first.
func (s *Service) teamFitProspects(team *entity.Team) []*entity.Prospect {
	pick, ok := team.FirstPick()
	if !ok {
		return nil
	}
	minRank := float64(pick.Slot - teamFitReachAbove)
	maxRank := float64(pick.Slot + teamFitDropBelow)

	needs := make(map[string]struct{}, len(team.PositionalNeeds))
	for _, need := range team.PositionalNeeds {
		needs[need.Position] = struct{}{}
	}

	fits := s.store.FilterProspects(func(p *entity.Prospect) bool {
		if !s.store.IsLatestSnapshot(p) {
			return false
		}
		if _, needed := needs[p.Position]; !needed {
			return false
		}
		rank, ranked := p.ConsensusRank()
		return ranked && rank >= minRank && rank <= maxRank
	})

	sort.SliceStable(fits, func(i, j int) bool {
		ri, _ := fits[i].ConsensusRank()
		rj, _ := fits[j].ConsensusRank()
		if ri != rj {
			return ri < rj
		}
		return fits[i].ID < fits[j].ID
	})

	if len(fits) > teamFitMaxRecords {
		fits = fits[:teamFitMaxRecords]
	}
	return fits
}

// appendTeamFits adds team-fit prospects after the retrieved results,
// skipping records already present.
func appendTeamFits(results []RankedResult, fits []*entity.Prospect) []RankedResult {
	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		seen[r.Prospect.ID] = struct{}{}
	}
	next := len(results) + 1
	for _, p := range fits {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		results = append(results, RankedResult{
			Prospect:     p,
			RankPosition: next,
		})
		next++
	}
	return results
}
