package embedding

import "context"

// Embedder converts texts into fixed-dimension vectors. An index and its
// queries must share one Embedder; mixing models silently corrupts
// similarity ranking, so the model choice lives in configuration.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}
