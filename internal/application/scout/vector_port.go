package scout

import "context"

// VectorIndex is the retriever's minimal dependency on the vector store.
// The infrastructure layer provides the implementation.
type VectorIndex interface {
	Search(ctx context.Context, params *VectorSearchParams) ([]*VectorHit, error)
}

// VectorSearchParams describes one nearest-neighbor query.
type VectorSearchParams struct {
	QueryVector []float32
	TopK        int
	Position    string
	Snapshot    string
}

// VectorHit is one nearest-neighbor result. Similarity is cosine
// similarity, higher is closer.
type VectorHit struct {
	ID         string
	Similarity float64
}
