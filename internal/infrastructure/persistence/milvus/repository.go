package milvus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"draft-scout-api/pkg/metrics"
)

// Repository provides prospect profile search and ingestion.
type Repository struct {
	client *Client
}

// NewRepository creates a repository over the client.
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

// SearchParams describes one vector search.
type SearchParams struct {
	QueryVector []float32
	TopK        int
	// Position, when set, becomes a filter expression on the index.
	Position string
	// SnapshotTag, when set, restricts results to one cycle point.
	SnapshotTag string
}

// SearchResult is one nearest-neighbor hit. Score is the COSINE distance
// as returned by Milvus.
type SearchResult struct {
	ID          string
	Score       float32
	PlayerID    string
	Position    string
	SnapshotTag string
	TextContent string
}

// CreateCollection creates a collection from schema.
func (r *Repository) CreateCollection(ctx context.Context, schema *entity.Schema) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateCollection",
		trace.WithAttributes(attribute.String("collection", schema.CollectionName)))
	defer span.End()

	collName := r.client.CollectionName(schema.CollectionName)
	schema.CollectionName = collName

	err := r.client.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// CreateIndex creates the HNSW index on the vector field.
func (r *Repository) CreateIndex(ctx context.Context, collection string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateIndex",
		trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	collName := r.client.CollectionName(collection)

	idx, err := entity.NewIndexHNSW(
		entity.COSINE,
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// SearchProspects runs a nearest-neighbor search over prospect profiles.
func (r *Repository) SearchProspects(ctx context.Context, params *SearchParams) ([]*SearchResult, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.SearchProspects",
		trace.WithAttributes(
			attribute.Int("top_k", params.TopK),
			attribute.String("position", params.Position),
		))
	defer span.End()

	collName := r.client.CollectionName(CollectionProspectProfiles)

	var exprs []string
	if p := strings.TrimSpace(params.Position); p != "" {
		exprs = append(exprs, fmt.Sprintf(`position == "%s"`, p))
	}
	if t := strings.TrimSpace(params.SnapshotTag); t != "" {
		exprs = append(exprs, fmt.Sprintf(`snapshot_tag == "%s"`, t))
	}
	filter := strings.Join(exprs, " && ")

	sp, err := entity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	start := time.Now()
	results, err := r.client.milvus.Search(ctx,
		collName,
		nil,
		filter,
		[]string{"id", "player_id", "position", "snapshot_tag", "text_content"},
		[]entity.Vector{entity.FloatVector(params.QueryVector)},
		"vector",
		entity.COSINE,
		params.TopK,
		sp,
	)
	metrics.VectorSearchDuration.WithLabelValues(CollectionProspectProfiles).
		Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var searchResults []*SearchResult
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			sr := &SearchResult{
				Score: result.Scores[i],
			}

			if idCol, ok := result.Fields.GetColumn("id").(*entity.ColumnVarChar); ok {
				sr.ID = idCol.Data()[i]
			}
			if playerCol, ok := result.Fields.GetColumn("player_id").(*entity.ColumnVarChar); ok {
				sr.PlayerID = playerCol.Data()[i]
			}
			if posCol, ok := result.Fields.GetColumn("position").(*entity.ColumnVarChar); ok {
				sr.Position = posCol.Data()[i]
			}
			if tagCol, ok := result.Fields.GetColumn("snapshot_tag").(*entity.ColumnVarChar); ok {
				sr.SnapshotTag = tagCol.Data()[i]
			}
			if textCol, ok := result.Fields.GetColumn("text_content").(*entity.ColumnVarChar); ok {
				sr.TextContent = textCol.Data()[i]
			}

			searchResults = append(searchResults, sr)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(searchResults)))
	return searchResults, nil
}

// InsertProspects writes prospect profile rows.
func (r *Repository) InsertProspects(ctx context.Context, profiles []*ProspectProfile) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.InsertProspects",
		trace.WithAttributes(attribute.Int("count", len(profiles))))
	defer span.End()

	if len(profiles) == 0 {
		return nil
	}

	collName := r.client.CollectionName(CollectionProspectProfiles)

	ids := make([]string, len(profiles))
	vectors := make([][]float32, len(profiles))
	playerIDs := make([]string, len(profiles))
	positions := make([]string, len(profiles))
	snapshotTags := make([]string, len(profiles))
	textContents := make([]string, len(profiles))

	for i, p := range profiles {
		ids[i] = p.ID
		vectors[i] = p.Vector
		playerIDs[i] = p.PlayerID
		positions[i] = p.Position
		snapshotTags[i] = p.SnapshotTag
		textContents[i] = p.TextContent
	}

	idCol := entity.NewColumnVarChar("id", ids)
	vectorCol := entity.NewColumnFloatVector("vector", VectorDimension, vectors)
	playerCol := entity.NewColumnVarChar("player_id", playerIDs)
	posCol := entity.NewColumnVarChar("position", positions)
	tagCol := entity.NewColumnVarChar("snapshot_tag", snapshotTags)
	textCol := entity.NewColumnVarChar("text_content", textContents)

	_, err := r.client.milvus.Insert(ctx, collName, "",
		idCol, vectorCol, playerCol, posCol, tagCol, textCol)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert prospects: %w", err)
	}

	return nil
}

// EnsureProspectsCollection creates the collection and index when missing
// and loads it. It never drops or rebuilds.
func (r *Repository) EnsureProspectsCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}

	exists, err := r.client.HasCollection(ctx, CollectionProspectProfiles)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.CreateCollection(ctx, ProspectProfilesSchema()); err != nil {
			return err
		}
		// Index creation failure on a fresh collection is left to ops.
		_ = r.CreateIndex(ctx, CollectionProspectProfiles)
	}

	return r.client.LoadCollection(ctx, CollectionProspectProfiles)
}
