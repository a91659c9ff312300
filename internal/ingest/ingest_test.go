package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const articleSelector = "div._s30J.clearfix"

func articlePage(body string) string {
	return fmt.Sprintf(`<html><head><title>t</title></head><body>
<div class="nav">ignore me</div>
<div class="_s30J clearfix"><p>%s</p></div>
</body></html>`, body)
}

func feedXML(baseURL string, links []string) string {
	var items strings.Builder
	for i, link := range links {
		fmt.Fprintf(&items, `<item>
<title>Story %d</title>
<link>%s%s</link>
<pubDate>Mon, 02 Jan 2026 15:04:05 GMT</pubDate>
<description>Summary of story %d</description>
</item>`, i+1, baseURL, link, i+1)
	}
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Top Stories</title><link>` + baseURL + `</link>
<description>test feed</description>` + items.String() + `</channel></rss>`
}

func newFeedServer(t *testing.T, articles map[string]http.HandlerFunc, links []string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feedXML(srv.URL, links))
	})
	for path, h := range articles {
		mux.HandleFunc(path, h)
	}
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func serveArticle(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articlePage(body))
	}
}

func newTestIngestor(feedBase string) *Ingestor {
	return NewIngestor(feedBase+"/feed", 0,
		NewHTTPFetcher(10*time.Second),
		SelectorExtractor{Selector: articleSelector})
}

func TestIngestChunksAndMetadata(t *testing.T) {
	shortBody := strings.TrimSpace(strings.Repeat("Short article text. ", 10)) // ~200 chars
	longBody := strings.TrimSpace(strings.Repeat("Regional councils approved the new transit plan after weeks of debate. ", 70)) // ~5000 chars

	srv := newFeedServer(t, map[string]http.HandlerFunc{
		"/a": serveArticle(shortBody),
		"/b": serveArticle(longBody),
	}, []string{"/a", "/b"})

	chunks, err := newTestIngestor(srv.URL).Ingest(context.Background(), 100)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	var aChunks, bChunks []Chunk
	for _, c := range chunks {
		switch c.Meta.Title {
		case "Story 1":
			aChunks = append(aChunks, c)
		case "Story 2":
			bChunks = append(bChunks, c)
		default:
			t.Fatalf("unexpected title %q", c.Meta.Title)
		}
	}

	if len(aChunks) != 1 {
		t.Fatalf("expected 1 chunk for the short article, got %d", len(aChunks))
	}
	if len(bChunks) < 5 {
		t.Fatalf("expected at least 5 chunks for the long article, got %d", len(bChunks))
	}

	// feed order, then chunk order
	if chunks[0].Meta.Title != "Story 1" || chunks[len(chunks)-1].Meta.Title != "Story 2" {
		t.Fatal("chunks not in feed order")
	}
	for i, c := range bChunks {
		if c.Meta.ChunkIndex != i+1 {
			t.Fatalf("chunk index at %d: got %d want %d", i, c.Meta.ChunkIndex, i+1)
		}
		if c.Meta.TotalChunks != len(bChunks) {
			t.Fatalf("total chunks: got %d want %d", c.Meta.TotalChunks, len(bChunks))
		}
		if len(c.Text) > 1000 {
			t.Fatalf("chunk %d exceeds size bound: %d chars", i, len(c.Text))
		}
	}

	doc := aChunks[0].Text
	for _, want := range []string{"ARTICLE TITLE: Story 1", "PUBLISH DATE:", "SUMMARY:", "FULL CONTENT:"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("structured document missing %q:\n%s", want, doc)
		}
	}
	if strings.Contains(doc, "\n\n") {
		t.Fatal("structured document should not contain blank lines")
	}
	if strings.Contains(doc, "ignore me") {
		t.Fatal("content outside the article container leaked into the document")
	}
}

func TestIngestSkipsFailingEntry(t *testing.T) {
	srv := newFeedServer(t, map[string]http.HandlerFunc{
		"/ok1": serveArticle("First fine article body with enough words to index."),
		"/bad": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		"/ok2": serveArticle("Second fine article body with enough words to index."),
	}, []string{"/ok1", "/bad", "/ok2"})

	chunks, err := newTestIngestor(srv.URL).Ingest(context.Background(), 100)
	if err != nil {
		t.Fatalf("ingest should not fail on a single bad entry: %v", err)
	}

	titles := map[string]bool{}
	for _, c := range chunks {
		titles[c.Meta.Title] = true
	}
	if !titles["Story 1"] || !titles["Story 3"] {
		t.Fatalf("expected chunks for the two healthy entries, got %v", titles)
	}
	if titles["Story 2"] {
		t.Fatal("failing entry should have been skipped")
	}
}

func TestIngestSkipsEntryWithoutContainer(t *testing.T) {
	srv := newFeedServer(t, map[string]http.HandlerFunc{
		"/plain": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<html><body><div class="other">no article here</div></body></html>`)
		},
		"/ok": serveArticle("A normal article body."),
	}, []string{"/plain", "/ok"})

	chunks, err := newTestIngestor(srv.URL).Ingest(context.Background(), 100)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	for _, c := range chunks {
		if c.Meta.Title == "Story 1" {
			t.Fatal("entry without content container should have been skipped")
		}
	}
	if len(chunks) == 0 {
		t.Fatal("healthy entry should still have been ingested")
	}
}

func TestIngestHonorsLimit(t *testing.T) {
	srv := newFeedServer(t, map[string]http.HandlerFunc{
		"/a": serveArticle("Article one body."),
		"/b": serveArticle("Article two body."),
		"/c": serveArticle("Article three body."),
	}, []string{"/a", "/b", "/c"})

	chunks, err := newTestIngestor(srv.URL).Ingest(context.Background(), 2)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	for _, c := range chunks {
		if c.Meta.Title == "Story 3" {
			t.Fatal("limit should have excluded the third entry")
		}
	}
}
