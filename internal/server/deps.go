package server

import (
	"context"
	"fmt"

	"github.com/newschat-ai/newschat/config"
	"github.com/newschat-ai/newschat/internal/embedding"
	"github.com/newschat-ai/newschat/internal/embedding/jina"
	"github.com/newschat-ai/newschat/internal/ingest"
	chromedp_fetch "github.com/newschat-ai/newschat/internal/ingest/chromedp"
	"github.com/newschat-ai/newschat/internal/llm"
	"github.com/newschat-ai/newschat/internal/llm/gemini"
	"github.com/newschat-ai/newschat/internal/rag"
	"github.com/newschat-ai/newschat/internal/session"
	"github.com/newschat-ai/newschat/internal/vectorstore"
	"github.com/newschat-ai/newschat/internal/vectorstore/memory"
	"github.com/newschat-ai/newschat/internal/vectorstore/pinecone"
)

// countingIngestor reports how many chunks each ingestion run produced.
type countingIngestor struct {
	inner *ingest.Ingestor
}

func (ci countingIngestor) Ingest(ctx context.Context, limit int) ([]ingest.Chunk, error) {
	chunks, err := ci.inner.Ingest(ctx, limit)
	if err != nil {
		return nil, err
	}
	ingestedChunks.Add(float64(len(chunks)))
	return chunks, nil
}

// BuildPipeline constructs the answer pipeline from configuration. All
// service handles are created here, once, and passed in by reference.
func BuildPipeline(cfg *config.Config, sessions session.Store) (*rag.Pipeline, error) {
	var fetcher ingest.Fetcher
	switch cfg.Feed.Fetcher {
	case "chromedp":
		fetcher = chromedp_fetch.Fetcher{Timeout: cfg.Feed.FetchTimeout}
	default:
		fetcher = ingest.NewHTTPFetcher(cfg.Feed.FetchTimeout)
	}

	var extractor ingest.Extractor
	if cfg.Feed.ContentSelector != "" {
		extractor = ingest.SelectorExtractor{Selector: cfg.Feed.ContentSelector}
	} else {
		extractor = ingest.ReadabilityExtractor{}
	}

	ingestor := countingIngestor{ingest.NewIngestor(cfg.Feed.URL, cfg.Feed.MaxChars, fetcher, extractor)}

	var embedder embedding.Embedder
	switch cfg.Embedding.Provider {
	case "jina":
		embedder = jina.NewClient(cfg.Embedding.APIKey, cfg.Embedding.BaseURL, cfg.Embedding.Model, cfg.Embedding.Dimension, cfg.Embedding.Timeout)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.Embedding.Provider)
	}

	var index vectorstore.Index
	switch cfg.VectorStore.Provider {
	case "pinecone":
		index = pinecone.NewClient(pinecone.Config{
			APIKey:    cfg.VectorStore.APIKey,
			BaseURL:   cfg.VectorStore.BaseURL,
			IndexName: cfg.VectorStore.IndexName,
			Cloud:     cfg.VectorStore.Cloud,
			Region:    cfg.VectorStore.Region,
			Timeout:   cfg.VectorStore.Timeout,
		})
	case "memory":
		index = memory.NewIndex()
	default:
		return nil, fmt.Errorf("unsupported vectorstore provider %q", cfg.VectorStore.Provider)
	}

	var provider llm.Provider
	switch cfg.LLM.Provider {
	case "gemini":
		provider = gemini.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.Temperature, cfg.LLM.MaxRetries, cfg.LLM.Timeout)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLM.Provider)
	}

	return rag.NewPipeline(sessions, embedder, index, provider, ingestor, cfg.Retrieval.TopK, cfg.VectorStore.Metric), nil
}
