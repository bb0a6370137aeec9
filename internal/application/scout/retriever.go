package scout

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"draft-scout-api/internal/config"
	"draft-scout-api/internal/domain/entity"
	"draft-scout-api/internal/infrastructure/store"
	"draft-scout-api/pkg/metrics"
)

var tracer = otel.Tracer("scout")

const (
	defaultOverfetchFactor = 4
	searchRetryBackoff     = 200 * time.Millisecond
)

// Retriever runs the hybrid retrieval stage: semantic search, hard
// filters, statistical re-rank. Read-only, no side effects.
type Retriever struct {
	embedder Embedder
	index    VectorIndex
	store    *store.Store
	scorer   *Scorer
	cfg      *config.ScoutConfig
}

// NewRetriever creates a retriever.
func NewRetriever(embedder Embedder, index VectorIndex, st *store.Store, scorer *Scorer, cfg *config.ScoutConfig) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		store:    st,
		scorer:   scorer,
		cfg:      cfg,
	}
}

// Retrieve returns up to intent.Limit ranked results. An empty corpus or
// an unreachable index yields ErrNoData; a valid query matching nothing
// yields an empty slice and no error.
func (r *Retriever) Retrieve(ctx context.Context, intent *Intent) ([]RankedResult, *Diagnostics, error) {
	ctx, span := tracer.Start(ctx, "scout.Retrieve",
		trace.WithAttributes(
			attribute.String("intent.kind", string(intent.Kind)),
			attribute.String("intent.position", intent.Position),
			attribute.Int("intent.limit", intent.Limit),
		))
	defer span.End()

	start := time.Now()
	diag := &Diagnostics{
		IntentKind:   intent.Kind,
		Position:     intent.Position,
		Team:         intent.Team,
		PureSemantic: !intent.HasFilters(),
	}

	results, err := r.retrieve(ctx, intent, diag)

	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
	}
	metrics.RetrievalTotal.WithLabelValues(string(intent.Kind), status).Inc()
	metrics.RetrievalDuration.WithLabelValues(string(intent.Kind)).
		Observe(time.Since(start).Seconds())

	return results, diag, err
}

func (r *Retriever) retrieve(ctx context.Context, intent *Intent, diag *Diagnostics) ([]RankedResult, error) {
	if r.store.CountProspects() == 0 {
		return nil, ErrNoData
	}

	text := intent.SemanticText
	if text == "" {
		text = intent.RawQuery
	}
	vector, err := r.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	factor := r.cfg.Ranking.OverfetchFactor
	if factor <= 0 {
		factor = defaultOverfetchFactor
	}
	params := &VectorSearchParams{
		QueryVector: vector,
		TopK:        intent.Limit * factor,
		Position:    intent.Position,
		Snapshot:    string(intent.Snapshot),
	}

	hits, err := r.search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	metrics.RetrievalCandidates.WithLabelValues("fetched").Observe(float64(len(hits)))
	diag.CandidatesFetched = len(hits)

	// Over-specific filters must not produce an empty answer; re-run
	// unfiltered and let the dropped filters act as boosts.
	advisory := false
	if len(hits) == 0 && (params.Position != "" || params.Snapshot != "") {
		advisory = true
		diag.AdvisoryFallback = true
		unfiltered := *params
		unfiltered.Position = ""
		unfiltered.Snapshot = ""
		hits, err = r.search(ctx, &unfiltered)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoData, err)
		}
		diag.CandidatesFetched = len(hits)
	}

	candidates := r.score(hits, intent, advisory)
	metrics.RetrievalCandidates.WithLabelValues("filtered").Observe(float64(len(candidates)))

	sortResults(candidates)

	if len(candidates) > intent.Limit {
		candidates = candidates[:intent.Limit]
	}
	for i := range candidates {
		candidates[i].RankPosition = i + 1
	}

	metrics.RetrievalCandidates.WithLabelValues("returned").Observe(float64(len(candidates)))
	diag.CandidatesReturned = len(candidates)
	return candidates, nil
}

// search queries the index, retrying once on transient failure.
func (r *Retriever) search(ctx context.Context, params *VectorSearchParams) ([]*VectorHit, error) {
	hits, err := r.index.Search(ctx, params)
	if err == nil {
		return hits, nil
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(searchRetryBackoff):
	}
	return r.index.Search(ctx, params)
}

// score joins hits with store records and computes per-candidate scores.
// Without a pinned snapshot, a player's snapshots collapse to the best
// scoring one so one prospect cannot fill several slots.
func (r *Retriever) score(hits []*VectorHit, intent *Intent, advisory bool) []RankedResult {
	pureSemantic := !intent.HasFilters()

	byPlayer := make(map[string]int)
	var out []RankedResult
	for _, hit := range hits {
		p := r.store.GetProspect(hit.ID)
		if p == nil {
			continue
		}

		semantic := normalizeSimilarity(hit.Similarity)
		statistical := r.scorer.StatisticalScore(p, intent, advisory)
		combined := r.scorer.Combine(semantic, statistical)
		if pureSemantic {
			combined = semantic
		}

		result := RankedResult{
			Prospect:         p,
			SemanticScore:    hit.Similarity,
			StatisticalScore: statistical,
			CombinedScore:    combined,
		}

		if intent.Snapshot == "" {
			if i, seen := byPlayer[p.PlayerID]; seen {
				if combined > out[i].CombinedScore {
					out[i] = result
				}
				continue
			}
			byPlayer[p.PlayerID] = len(out)
		}
		out = append(out, result)
	}
	return out
}

// sortResults orders by combined score descending; ties break by
// consensus rank ascending, then record ID, for determinism.
func sortResults(results []RankedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].CombinedScore != results[j].CombinedScore {
			return results[i].CombinedScore > results[j].CombinedScore
		}
		ri, rj := tieBreakRank(results[i].Prospect), tieBreakRank(results[j].Prospect)
		if ri != rj {
			return ri < rj
		}
		return results[i].Prospect.ID < results[j].Prospect.ID
	})
}

func tieBreakRank(p *entity.Prospect) float64 {
	rank, ok := p.ConsensusRank()
	if !ok {
		return worstRank + 1
	}
	return rank
}
