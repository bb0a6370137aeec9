package milvus

import (
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionProspectProfiles holds one embedded narrative per
	// prospect snapshot.
	CollectionProspectProfiles = "prospect_profiles"

	// VectorDimension is the embedding dimension.
	VectorDimension = 1024
)

// ProspectProfilesSchema describes the prospect profile collection.
func ProspectProfilesSchema() *entity.Schema {
	return &entity.Schema{
		CollectionName: CollectionProspectProfiles,
		Description:    "Prospect scouting narratives for semantic search",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": "1024",
				},
			},
			{
				Name:     "player_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "position",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "16",
				},
			},
			{
				Name:     "snapshot_tag",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "32",
				},
			},
			{
				Name:     "text_content",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
		},
	}
}

// ProspectProfile is the stored row shape.
type ProspectProfile struct {
	ID          string    `json:"id"`
	Vector      []float32 `json:"vector"`
	PlayerID    string    `json:"player_id"`
	Position    string    `json:"position"`
	SnapshotTag string    `json:"snapshot_tag"`
	TextContent string    `json:"text_content"`
}
