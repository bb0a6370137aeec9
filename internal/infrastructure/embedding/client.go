package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/embedding"

	"draft-scout-api/internal/config"
	"draft-scout-api/internal/infrastructure/persistence/redis"
)

// Client embeds texts through an Eino embedder, caching query vectors in
// Redis. Corpus ingestion bypasses the cache via EmbedTexts.
type Client struct {
	embedder  embedding.Embedder
	cache     *redis.Cache
	model     string
	batchSize int
	cacheTTL  time.Duration
}

// NewClient creates an embedding client. cache may be nil, in which case
// every call hits the model.
func NewClient(embedder embedding.Embedder, cache *redis.Cache, cfg *config.EmbeddingConfig) *Client {
	return &Client{
		embedder:  embedder,
		cache:     cache,
		model:     cfg.Model,
		batchSize: batchSizeOrDefault(cfg.BatchSize),
		cacheTTL:  cfg.CacheTTL,
	}
}

func batchSizeOrDefault(n int) int {
	if n <= 0 {
		return 32
	}
	return n
}

func (c *Client) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embedding:%s:%s", c.model, hex.EncodeToString(sum[:]))
}

// EmbedQuery embeds a single query text, serving repeats from cache.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if c.cache == nil {
		return c.embedOne(ctx, text)
	}

	raw, err := c.cache.GetOrLoadSafe(ctx, c.cacheKey(text), c.cacheTTL, func() (interface{}, error) {
		vec, err := c.embedOne(ctx, text)
		if err != nil {
			return nil, err
		}
		return vec, nil
	})
	if err != nil {
		return nil, err
	}

	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		return nil, fmt.Errorf("failed to decode cached embedding: %w", err)
	}
	return vec, nil
}

// EmbedTexts embeds a batch of texts, splitting into model-sized chunks.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var all [][]float32
	for i := 0; i < len(texts); i += c.batchSize {
		end := i + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		vecs, err := c.embedder.EmbedStrings(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		for _, v := range vecs {
			all = append(all, toFloat32(v))
		}
	}

	return all, nil
}

func (c *Client) embedOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedding returned %d vectors, want 1", len(vecs))
	}
	return toFloat32(vecs[0]), nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
