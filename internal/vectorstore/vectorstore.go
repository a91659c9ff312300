package vectorstore

import "context"

// Record is one stored chunk: its vector, its text, and provenance metadata.
type Record struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata map[string]interface{}
}

// Match is one retrieval result, most similar first when ranked.
type Match struct {
	Text  string
	Score float64
}

// Index is a persistent nearest-neighbor store. All vectors in one index
// share a dimension and an embedding model; that contract is enforced by
// configuration, not checked at runtime.
type Index interface {
	Exists(ctx context.Context) (bool, error)
	Create(ctx context.Context, dimension int, metric string) error
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float32, k int) ([]Match, error)
}
