// Package main is the one-time corpus ingestion job: it loads the
// prospect corpus, ensures the vector collection and writes embedded
// narratives into Milvus. Run before the API serves traffic.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"draft-scout-api/internal/config"
	"draft-scout-api/internal/domain/entity"
	"draft-scout-api/internal/infrastructure/embedding"
	"draft-scout-api/internal/infrastructure/persistence/milvus"
	"draft-scout-api/internal/infrastructure/store"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting corpus bootstrap...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	corpus, err := store.Load(cfg.Data.ProspectsFile, cfg.Data.TeamsFile)
	if err != nil {
		log.Fatalf("failed to load corpus: %v", err)
	}
	fmt.Printf("Loaded %d prospect records and %d teams.\n",
		corpus.CountProspects(), corpus.CountTeams())

	milvusClient, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		log.Fatalf("failed to connect to milvus: %v", err)
	}
	defer milvusClient.Close()

	repo := milvus.NewRepository(milvusClient)
	if err := repo.EnsureProspectsCollection(ctx); err != nil {
		log.Fatalf("failed to ensure collection: %v", err)
	}

	embedder, err := embedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		log.Fatalf("failed to create embedder: %v", err)
	}
	embedClient := embedding.NewClient(embedder, nil, &cfg.Embedding)

	prospects := corpus.FilterProspects(func(*entity.Prospect) bool { return true })

	batch := cfg.Embedding.BatchSize
	if batch <= 0 {
		batch = 32
	}

	inserted := 0
	for start := 0; start < len(prospects); start += batch {
		end := start + batch
		if end > len(prospects) {
			end = len(prospects)
		}
		chunk := prospects[start:end]

		texts := make([]string, len(chunk))
		for i, p := range chunk {
			texts[i] = p.NarrativeText
		}

		vectors, err := embedClient.EmbedTexts(ctx, texts)
		if err != nil {
			log.Fatalf("failed to embed batch at %d: %v", start, err)
		}
		if len(vectors) != len(chunk) {
			log.Fatalf("embedding batch at %d returned %d vectors, want %d",
				start, len(vectors), len(chunk))
		}

		profiles := make([]*milvus.ProspectProfile, len(chunk))
		for i, p := range chunk {
			profiles[i] = &milvus.ProspectProfile{
				ID:          p.ID,
				Vector:      vectors[i],
				PlayerID:    p.PlayerID,
				Position:    p.Position,
				SnapshotTag: string(p.Snapshot),
				TextContent: p.NarrativeText,
			}
		}

		if err := repo.InsertProspects(ctx, profiles); err != nil {
			log.Fatalf("failed to insert batch at %d: %v", start, err)
		}
		inserted += len(profiles)
		fmt.Printf("Indexed %d/%d records...\n", inserted, len(prospects))
	}

	fmt.Println("Bootstrap completed successfully.")
}
