package milvus

import (
	"context"
	"fmt"

	"draft-scout-api/internal/application/scout"
)

// ScoutVectorIndex adapts the repository to the retriever's vector port.
type ScoutVectorIndex struct {
	repo *Repository
}

// NewScoutVectorIndex creates the adapter.
func NewScoutVectorIndex(repo *Repository) *ScoutVectorIndex {
	return &ScoutVectorIndex{repo: repo}
}

var _ scout.VectorIndex = (*ScoutVectorIndex)(nil)

// Search runs the nearest-neighbor query and converts scores to cosine
// similarity hits.
func (a *ScoutVectorIndex) Search(ctx context.Context, params *scout.VectorSearchParams) ([]*scout.VectorHit, error) {
	if a == nil || a.repo == nil {
		return nil, fmt.Errorf("vector index not configured")
	}
	if params == nil {
		return nil, nil
	}

	out, err := a.repo.SearchProspects(ctx, &SearchParams{
		QueryVector: params.QueryVector,
		TopK:        params.TopK,
		Position:    params.Position,
		SnapshotTag: params.Snapshot,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]*scout.VectorHit, 0, len(out))
	for _, r := range out {
		if r == nil {
			continue
		}
		hits = append(hits, &scout.VectorHit{
			ID:         r.ID,
			Similarity: float64(r.Score),
		})
	}
	return hits, nil
}
