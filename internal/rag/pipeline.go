package rag

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log"
	"strings"

	"github.com/newschat-ai/newschat/internal/embedding"
	"github.com/newschat-ai/newschat/internal/ingest"
	"github.com/newschat-ai/newschat/internal/llm"
	"github.com/newschat-ai/newschat/internal/session"
	"github.com/newschat-ai/newschat/internal/vectorstore"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 5

// embedBatchSize bounds how many chunk texts go into one embedding request.
const embedBatchSize = 100

// Ingestor produces indexable chunks from the configured feed.
type Ingestor interface {
	Ingest(ctx context.Context, limit int) ([]ingest.Chunk, error)
}

// Pipeline is the retrieval-augmented answer pipeline: question in,
// generated answer out. All collaborators are injected so tests can
// substitute fakes.
type Pipeline struct {
	sessions session.Store
	embedder embedding.Embedder
	index    vectorstore.Index
	llm      llm.Provider
	ingestor Ingestor
	topK     int
	metric   string
	logger   *log.Logger
}

func NewPipeline(sessions session.Store, embedder embedding.Embedder, index vectorstore.Index, provider llm.Provider, ingestor Ingestor, topK int, metric string) *Pipeline {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if metric == "" {
		metric = "cosine"
	}
	return &Pipeline{
		sessions: sessions,
		embedder: embedder,
		index:    index,
		llm:      provider,
		ingestor: ingestor,
		topK:     topK,
		metric:   metric,
		logger:   log.New(log.Writer(), "[RAG] ", log.LstdFlags),
	}
}

// Answer generates a reply to question using the session's recent history
// and the most similar indexed chunks. Any stage failure aborts this one
// answer; nothing is synthesized locally when generation fails.
func (p *Pipeline) Answer(ctx context.Context, question, sessionID string) (string, error) {
	msgs, err := p.sessions.List(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("reading history for session %s: %w", sessionID, err)
	}
	history := FormatHistory(msgs)

	retrieved, err := p.Retrieve(ctx, question, p.topK)
	if err != nil {
		return "", fmt.Errorf("retrieving context: %w", err)
	}

	answer, err := p.llm.Generate(ctx, buildPrompt(history, retrieved, question))
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return answer, nil
}

// Retrieve embeds text and returns the k most similar chunk texts joined in
// rank order, a blank line between chunks. An empty or underfilled index
// returns whatever is available, down to the empty string.
func (p *Pipeline) Retrieve(ctx context.Context, text string, k int) (string, error) {
	vecs, err := p.embedder.Embed(ctx, []string{text})
	if err != nil {
		return "", fmt.Errorf("embedding query: %w", err)
	}
	if len(vecs) != 1 {
		return "", fmt.Errorf("expected 1 query vector, got %d", len(vecs))
	}

	matches, err := p.index.Query(ctx, vecs[0], k)
	if err != nil {
		return "", err
	}

	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, m.Text)
	}
	return strings.Join(texts, "\n\n"), nil
}

// Ingest runs one feed ingestion, embeds the chunks, and upserts them into
// the index. It returns the chunks so callers can report what was indexed.
func (p *Pipeline) Ingest(ctx context.Context, limit int) ([]ingest.Chunk, error) {
	chunks, err := p.ingestor.Ingest(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		p.logger.Printf("feed produced no chunks")
		return nil, nil
	}

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		vecs, err := p.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding chunks %d-%d: %w", start, end, err)
		}
		if len(vecs) != len(batch) {
			return nil, fmt.Errorf("expected %d vectors, got %d", len(batch), len(vecs))
		}

		records := make([]vectorstore.Record, len(batch))
		for i, c := range batch {
			records[i] = vectorstore.Record{
				ID:     chunkID(c),
				Vector: vecs[i],
				Text:   c.Text,
				Metadata: map[string]interface{}{
					"title":        c.Meta.Title,
					"link":         c.Meta.Link,
					"published":    c.Meta.Published,
					"chunk_index":  c.Meta.ChunkIndex,
					"total_chunks": c.Meta.TotalChunks,
				},
			}
		}
		if err := p.index.Upsert(ctx, records); err != nil {
			return nil, fmt.Errorf("upserting chunks %d-%d: %w", start, end, err)
		}
	}

	p.logger.Printf("indexed %d chunks", len(chunks))
	return chunks, nil
}

// EnsureIndexReady creates and populates the index when it does not exist
// yet; an existing index is left untouched, even if the feed has changed
// since it was built. The check-then-create is not atomic: two cold starts
// racing here can both try to create the index.
func (p *Pipeline) EnsureIndexReady(ctx context.Context, feedLimit int) error {
	exists, err := p.index.Exists(ctx)
	if err != nil {
		return fmt.Errorf("checking index: %w", err)
	}
	if exists {
		return nil
	}

	p.logger.Printf("index not found, creating (dimension %d, metric %s)", p.embedder.Dimension(), p.metric)
	if err := p.index.Create(ctx, p.embedder.Dimension(), p.metric); err != nil {
		return fmt.Errorf("creating index: %w", err)
	}
	if _, err := p.Ingest(ctx, feedLimit); err != nil {
		return fmt.Errorf("populating index: %w", err)
	}
	return nil
}

func chunkID(c ingest.Chunk) string {
	sum := sha1.Sum([]byte(c.Meta.Link))
	return fmt.Sprintf("%s#%03d", hex.EncodeToString(sum[:]), c.Meta.ChunkIndex)
}
