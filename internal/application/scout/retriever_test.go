package scout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draft-scout-api/internal/config"
	"draft-scout-api/internal/domain/entity"
	"draft-scout-api/internal/infrastructure/store"
)

func fptr(v float64) *float64 { return &v }

// fakeEmbedder returns a constant vector.
type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// fakeIndex serves hits from a fixture, honoring the position and
// snapshot filters the way the real index expression would.
type fakeIndex struct {
	hits    []*VectorHit
	byID    map[string]*entity.Prospect
	err     error
	failN   int
	queries int
}

func (f *fakeIndex) Search(ctx context.Context, params *VectorSearchParams) ([]*VectorHit, error) {
	f.queries++
	if f.err != nil {
		if f.failN == 0 || f.queries <= f.failN {
			return nil, f.err
		}
	}

	var out []*VectorHit
	for _, h := range f.hits {
		p := f.byID[h.ID]
		if p == nil {
			continue
		}
		if params.Position != "" && p.Position != params.Position {
			continue
		}
		if params.Snapshot != "" && string(p.Snapshot) != params.Snapshot {
			continue
		}
		out = append(out, h)
		if params.TopK > 0 && len(out) >= params.TopK {
			break
		}
	}
	return out, nil
}

func prospect(id, pos string, consensus int, sim StatMapOpt) *entity.Prospect {
	p := &entity.Prospect{
		ID:       id,
		PlayerID: id,
		Name:     "Player " + id,
		Position: pos,
		Snapshot: entity.SnapshotPostCombine,
		Stats:    entity.StatMap{},
	}
	if consensus > 0 {
		p.Rankings = map[string]int{"big_board": consensus}
	}
	if sim != nil {
		sim(p)
	}
	return p
}

type StatMapOpt func(*entity.Prospect)

func withStats(stats entity.StatMap) StatMapOpt {
	return func(p *entity.Prospect) { p.Stats = stats }
}

type retrieverFixture struct {
	retriever *Retriever
	index     *fakeIndex
	embedder  *fakeEmbedder
	store     *store.Store
}

func newRetrieverFixture(t *testing.T, prospects []*entity.Prospect, sims map[string]float64, cfg *config.ScoutConfig) *retrieverFixture {
	t.Helper()
	if cfg == nil {
		cfg = testScoutConfig()
	}

	st := store.New(prospects, nil)
	byID := make(map[string]*entity.Prospect)
	var hits []*VectorHit
	for _, p := range prospects {
		byID[p.ID] = p
		sim, ok := sims[p.ID]
		if !ok {
			sim = 0.5
		}
		hits = append(hits, &VectorHit{ID: p.ID, Similarity: sim})
	}

	index := &fakeIndex{hits: hits, byID: byID}
	embedder := &fakeEmbedder{}
	scorer := NewScorer(st, cfg.Ranking)
	return &retrieverFixture{
		retriever: NewRetriever(embedder, index, st, scorer, cfg),
		index:     index,
		embedder:  embedder,
		store:     st,
	}
}

func TestRetrievePureSemanticOrdering(t *testing.T) {
	prospects := []*entity.Prospect{
		prospect("a", "QB", 3, nil),
		prospect("b", "WR", 1, nil),
		prospect("c", "RB", 2, nil),
	}
	fx := newRetrieverFixture(t, prospects, map[string]float64{
		"a": 0.2, "b": 0.9, "c": 0.6,
	}, nil)

	intent := &Intent{Kind: KindPositionGroup, Limit: 3, RawQuery: "best scheme fits", SemanticText: "best scheme fits"}
	require.False(t, intent.HasFilters())

	results, diag, err := fx.retriever.Retrieve(context.Background(), intent)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.True(t, diag.PureSemantic)

	// No filters: strictly by semantic score, consensus must not reorder.
	assert.Equal(t, "b", results[0].Prospect.ID)
	assert.Equal(t, "c", results[1].Prospect.ID)
	assert.Equal(t, "a", results[2].Prospect.ID)
}

func TestRetrieveHardPositionFilter(t *testing.T) {
	prospects := []*entity.Prospect{
		prospect("qb1", "QB", 10, nil),
		prospect("qb2", "QB", 20, nil),
		prospect("wr1", "WR", 1, nil),
	}
	fx := newRetrieverFixture(t, prospects, nil, nil)

	intent := &Intent{Kind: KindPositionGroup, Position: "QB", Limit: 5, RawQuery: "quarterbacks"}

	results, diag, err := fx.retriever.Retrieve(context.Background(), intent)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.False(t, diag.AdvisoryFallback)
	for _, r := range results {
		assert.Equal(t, "QB", r.Prospect.Position)
	}
}

func TestRetrieveAdvisoryFallbackOnOverSpecificFilter(t *testing.T) {
	prospects := []*entity.Prospect{
		prospect("wr1", "WR", 5, nil),
		prospect("rb1", "RB", 9, nil),
	}
	fx := newRetrieverFixture(t, prospects, nil, nil)

	// No kickers in the corpus: the hard filter matches nothing.
	intent := &Intent{Kind: KindPositionGroup, Position: "K", Limit: 5, RawQuery: "kickers"}

	results, diag, err := fx.retriever.Retrieve(context.Background(), intent)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
	assert.True(t, diag.AdvisoryFallback)
}

func TestRetrieveDeterministicOrdering(t *testing.T) {
	prospects := []*entity.Prospect{
		prospect("qb1", "QB", 4, nil),
		prospect("qb2", "QB", 2, nil),
		prospect("qb3", "QB", 0, nil),
		prospect("qb4", "QB", 2, nil),
	}
	fx := newRetrieverFixture(t, prospects, nil, nil)

	intent := &Intent{Kind: KindPositionGroup, Position: "QB", Limit: 4, RawQuery: "quarterbacks"}

	first, _, err := fx.retriever.Retrieve(context.Background(), intent)
	require.NoError(t, err)
	second, _, err := fx.retriever.Retrieve(context.Background(), intent)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Prospect.ID, second[i].Prospect.ID)
	}

	// Equal combined scores tie-break by consensus then ID: qb2 and qb4
	// share a rank, so qb2 must come first.
	pos2 := indexOf(first, "qb2")
	pos4 := indexOf(first, "qb4")
	require.GreaterOrEqual(t, pos2, 0)
	require.GreaterOrEqual(t, pos4, 0)
	assert.Less(t, pos2, pos4)
}

func TestRetrieveTopFiveQuarterbacks(t *testing.T) {
	// Eight QBs with distinct consensus ranks and identical semantic
	// similarity: the top five by rank must come back in rank order.
	ranks := []int{40, 12, 7, 55, 3, 21, 68, 33}
	var prospects []*entity.Prospect
	for i, rank := range ranks {
		prospects = append(prospects, prospect(string(rune('a'+i)), "QB", rank, nil))
	}
	sims := make(map[string]float64)
	for _, p := range prospects {
		sims[p.ID] = 0.8
	}
	fx := newRetrieverFixture(t, prospects, sims, nil)

	intent := &Intent{Kind: KindPositionGroup, Position: "QB", Limit: 5, RawQuery: "top 5 quarterback prospects"}

	results, _, err := fx.retriever.Retrieve(context.Background(), intent)
	require.NoError(t, err)
	require.Len(t, results, 5)

	wantOrder := []int{3, 7, 12, 21, 33}
	for i, r := range results {
		rank, ok := r.Prospect.ConsensusRank()
		require.True(t, ok)
		assert.Equal(t, float64(wantOrder[i]), rank)
		assert.Equal(t, i+1, r.RankPosition)
	}
}

func TestRetrieveNamedPlayerOutranksSemanticRival(t *testing.T) {
	named := prospect("p-webb", "QB", 120, nil)
	named.Name = "Marcus Webb"
	rival := prospect("p-rival", "QB", 1, nil)

	fx := newRetrieverFixture(t, []*entity.Prospect{named, rival}, map[string]float64{
		"p-webb": 0.95, "p-rival": 0.80,
	}, nil)

	intent := &Intent{
		Kind:        KindPlayer,
		PlayerNames: []string{"Marcus Webb"},
		Limit:       2,
		RawQuery:    "tell me about Marcus Webb",
	}

	results, _, err := fx.retriever.Retrieve(context.Background(), intent)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "p-webb", results[0].Prospect.ID)
}

func TestRetrieveMissingStatsFallBackToNeutral(t *testing.T) {
	// Cornerbacks tracked for interceptions with no coverage anywhere:
	// scoring must stay neutral, not drop candidates.
	prospects := []*entity.Prospect{
		prospect("cb1", "CB", 15, withStats(entity.StatMap{"interceptions": nil})),
		prospect("cb2", "CB", 40, withStats(entity.StatMap{"interceptions": nil})),
	}
	fx := newRetrieverFixture(t, prospects, map[string]float64{
		"cb1": 0.9, "cb2": 0.7,
	}, nil)

	intent := &Intent{Kind: KindPositionGroup, Position: "CB", Limit: 5, RawQuery: "cornerbacks with elite coverage stats"}

	results, _, err := fx.retriever.Retrieve(context.Background(), intent)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestRetrieveEmptyStoreIsNoData(t *testing.T) {
	fx := newRetrieverFixture(t, nil, nil, nil)

	intent := &Intent{Kind: KindPositionGroup, Limit: 5, RawQuery: "anything"}

	_, _, err := fx.retriever.Retrieve(context.Background(), intent)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Zero(t, fx.embedder.calls)
}

func TestRetrieveIndexErrorIsNoDataAfterRetry(t *testing.T) {
	prospects := []*entity.Prospect{prospect("a", "QB", 1, nil)}
	fx := newRetrieverFixture(t, prospects, nil, nil)
	fx.index.err = errors.New("connection refused")

	intent := &Intent{Kind: KindPositionGroup, Limit: 5, RawQuery: "quarterbacks"}

	_, _, err := fx.retriever.Retrieve(context.Background(), intent)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, 2, fx.index.queries)
}

func TestRetrieveIndexRecoversOnRetry(t *testing.T) {
	prospects := []*entity.Prospect{prospect("a", "QB", 1, nil)}
	fx := newRetrieverFixture(t, prospects, nil, nil)
	fx.index.err = errors.New("transient")
	fx.index.failN = 1

	intent := &Intent{Kind: KindPositionGroup, Limit: 5, RawQuery: "quarterbacks"}

	results, _, err := fx.retriever.Retrieve(context.Background(), intent)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestRetrieveCollapsesSnapshotsPerPlayer(t *testing.T) {
	early := prospect("p1-pre", "QB", 10, nil)
	early.PlayerID = "p1"
	early.Snapshot = entity.SnapshotPreSeason
	late := prospect("p1-combine", "QB", 8, nil)
	late.PlayerID = "p1"
	late.Snapshot = entity.SnapshotPostCombine

	fx := newRetrieverFixture(t, []*entity.Prospect{early, late}, nil, nil)

	intent := &Intent{Kind: KindPositionGroup, Position: "QB", Limit: 5, RawQuery: "quarterbacks"}

	results, _, err := fx.retriever.Retrieve(context.Background(), intent)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "p1-combine", results[0].Prospect.ID)
}

func TestRetrievePinnedSnapshotReturnsPinnedRecord(t *testing.T) {
	early := prospect("p1-pre", "QB", 10, nil)
	early.PlayerID = "p1"
	early.Snapshot = entity.SnapshotPreSeason
	late := prospect("p1-combine", "QB", 8, nil)
	late.PlayerID = "p1"
	late.Snapshot = entity.SnapshotPostCombine

	fx := newRetrieverFixture(t, []*entity.Prospect{early, late}, nil, nil)

	intent := &Intent{
		Kind:     KindPositionGroup,
		Position: "QB",
		Snapshot: entity.SnapshotPreSeason,
		Limit:    5,
		RawQuery: "preseason quarterbacks",
	}

	results, _, err := fx.retriever.Retrieve(context.Background(), intent)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "p1-pre", results[0].Prospect.ID)
}

func indexOf(results []RankedResult, id string) int {
	for i, r := range results {
		if r.Prospect.ID == id {
			return i
		}
	}
	return -1
}
