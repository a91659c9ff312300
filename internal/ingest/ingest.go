package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mmcdole/gofeed"
)

// DefaultFeedLimit caps how many feed entries one ingestion run processes.
const DefaultFeedLimit = 100

// Metadata records a chunk's provenance. ChunkIndex is 1-based.
type Metadata struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Published   string `json:"published"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

// Chunk is an immutable piece of a structured article document.
type Chunk struct {
	Text string
	Meta Metadata
}

// Ingestor turns an RSS feed into indexable chunks.
type Ingestor struct {
	feedURL   string
	maxChars  int
	fetcher   Fetcher
	extractor Extractor
	splitter  *Splitter
	parser    *gofeed.Parser
	logger    *log.Logger
}

func NewIngestor(feedURL string, maxChars int, fetcher Fetcher, extractor Extractor) *Ingestor {
	return &Ingestor{
		feedURL:   feedURL,
		maxChars:  maxChars,
		fetcher:   fetcher,
		extractor: extractor,
		splitter:  NewSplitter(DefaultChunkSize, DefaultChunkOverlap),
		parser:    gofeed.NewParser(),
		logger:    log.New(log.Writer(), "[INGEST] ", log.LstdFlags),
	}
}

// Ingest fetches up to limit feed entries and returns their chunks in feed
// order, then chunk order. A failing entry is logged and skipped; the batch
// itself only fails when the feed is unreadable.
func (i *Ingestor) Ingest(ctx context.Context, limit int) ([]Chunk, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	feed, err := i.parser.ParseURLWithContext(i.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", i.feedURL, err)
	}

	items := feed.Items
	if len(items) > limit {
		items = items[:limit]
	}

	var chunks []Chunk
	for _, item := range items {
		entryChunks, err := i.processEntry(ctx, item)
		if err != nil {
			i.logger.Printf("error processing article %s: %v", item.Link, err)
			continue
		}
		chunks = append(chunks, entryChunks...)
	}
	return chunks, nil
}

func (i *Ingestor) processEntry(ctx context.Context, item *gofeed.Item) ([]Chunk, error) {
	pageHTML, err := i.fetcher.Fetch(ctx, item.Link)
	if err != nil {
		return nil, err
	}

	content, err := i.extractor.Extract(pageHTML, item.Link)
	if err != nil {
		return nil, err
	}
	if i.maxChars > 0 && len(content) > i.maxChars {
		content = content[:i.maxChars]
	}

	doc := buildDocument(item.Title, item.Published, item.Description, content)
	parts := i.splitter.Split(doc)

	chunks := make([]Chunk, 0, len(parts))
	for idx, text := range parts {
		chunks = append(chunks, Chunk{
			Text: text,
			Meta: Metadata{
				Title:       item.Title,
				Link:        item.Link,
				Published:   item.Published,
				ChunkIndex:  idx + 1,
				TotalChunks: len(parts),
			},
		})
	}
	return chunks, nil
}

// buildDocument assembles the labeled sections the index stores. Blank lines
// are dropped and every line trimmed so chunk boundaries stay predictable.
func buildDocument(title, published, summary, content string) string {
	raw := fmt.Sprintf(`ARTICLE TITLE: %s
PUBLISH DATE: %s

SUMMARY:
%s

FULL CONTENT:
%s`, title, published, summary, content)

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
