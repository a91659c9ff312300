package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/newschat-ai/newschat/internal/vectorstore"
)

// Index is an in-memory cosine-similarity store for tests and local runs.
type Index struct {
	mu      sync.RWMutex
	created bool
	records []vectorstore.Record
}

func NewIndex() *Index {
	return &Index{}
}

func (i *Index) Exists(_ context.Context) (bool, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.created, nil
}

func (i *Index) Create(_ context.Context, dimension int, _ string) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.created = true
	return nil
}

func (i *Index) Upsert(_ context.Context, records []vectorstore.Record) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.records = append(i.records, records...)
	return nil
}

func (i *Index) Query(_ context.Context, vector []float32, k int) ([]vectorstore.Match, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	type scored struct {
		idx   int
		score float64
	}
	scoreds := make([]scored, 0, len(i.records))
	for idx, rec := range i.records {
		scoreds = append(scoreds, scored{idx: idx, score: cosine(vector, rec.Vector)})
	}
	// stable on the insertion index so equal scores rank deterministically
	sort.SliceStable(scoreds, func(a, b int) bool { return scoreds[a].score > scoreds[b].score })

	if k > len(scoreds) {
		k = len(scoreds)
	}
	matches := make([]vectorstore.Match, 0, k)
	for _, sc := range scoreds[:k] {
		matches = append(matches, vectorstore.Match{
			Text:  i.records[sc.idx].Text,
			Score: sc.score,
		})
	}
	return matches, nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		na += ai * ai
		nb += bi * bi
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
