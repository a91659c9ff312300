package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/newschat-ai/newschat/internal/vectorstore"
)

// Client is a minimal REST client to Pinecone: control plane for index
// lifecycle, per-index data plane for upsert and query.
type Client struct {
	apiKey     string
	baseURL    string
	indexName  string
	cloud      string
	region     string
	httpClient *http.Client

	host string // data-plane URL, resolved lazily
}

type Config struct {
	APIKey    string
	BaseURL   string
	IndexName string
	Cloud     string
	Region    string
	Timeout   time.Duration
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.pinecone.io"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		indexName:  cfg.IndexName,
		cloud:      cfg.Cloud,
		region:     cfg.Region,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type indexDescription struct {
	Name string `json:"name"`
	Host string `json:"host"`
}

func (c *Client) Exists(ctx context.Context) (bool, error) {
	var resp struct {
		Indexes []indexDescription `json:"indexes"`
	}
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/indexes", nil, &resp); err != nil {
		return false, fmt.Errorf("failed to list indexes: %w", err)
	}
	for _, idx := range resp.Indexes {
		if idx.Name == c.indexName {
			c.host = normalizeHost(idx.Host)
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) Create(ctx context.Context, dimension int, metric string) error {
	body := map[string]interface{}{
		"name":      c.indexName,
		"dimension": dimension,
		"metric":    metric,
		"spec": map[string]interface{}{
			"serverless": map[string]interface{}{
				"cloud":  c.cloud,
				"region": c.region,
			},
		},
	}
	var desc indexDescription
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/indexes", body, &desc); err != nil {
		return fmt.Errorf("failed to create index %s: %w", c.indexName, err)
	}
	c.host = normalizeHost(desc.Host)
	return nil
}

func (c *Client) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}
	host, err := c.ensureHost(ctx)
	if err != nil {
		return err
	}

	vectors := make([]map[string]interface{}, len(records))
	for i, rec := range records {
		meta := map[string]interface{}{"text": rec.Text}
		for k, v := range rec.Metadata {
			meta[k] = v
		}
		vectors[i] = map[string]interface{}{
			"id":       rec.ID,
			"values":   rec.Vector,
			"metadata": meta,
		}
	}
	body := map[string]interface{}{"vectors": vectors}
	if err := c.doJSON(ctx, http.MethodPost, host+"/vectors/upsert", body, nil); err != nil {
		return fmt.Errorf("failed to upsert %d vectors: %w", len(records), err)
	}
	return nil
}

func (c *Client) Query(ctx context.Context, vector []float32, k int) ([]vectorstore.Match, error) {
	host, err := c.ensureHost(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"vector":          vector,
		"topK":            k,
		"includeMetadata": true,
	}
	var resp struct {
		Matches []struct {
			Score    float64                `json:"score"`
			Metadata map[string]interface{} `json:"metadata"`
		} `json:"matches"`
	}
	if err := c.doJSON(ctx, http.MethodPost, host+"/query", body, &resp); err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	matches := make([]vectorstore.Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		text, _ := m.Metadata["text"].(string)
		matches = append(matches, vectorstore.Match{Text: text, Score: m.Score})
	}
	return matches, nil
}

func (c *Client) ensureHost(ctx context.Context) (string, error) {
	if c.host != "" {
		return c.host, nil
	}
	var desc indexDescription
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/indexes/"+c.indexName, nil, &desc); err != nil {
		return "", fmt.Errorf("failed to describe index %s: %w", c.indexName, err)
	}
	if desc.Host == "" {
		return "", fmt.Errorf("index %s has no host", c.indexName)
	}
	c.host = normalizeHost(desc.Host)
	return c.host, nil
}

func (c *Client) doJSON(ctx context.Context, method, url string, body, out interface{}) error {
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(data)
	} else {
		reader = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API returned status: %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// Pinecone reports data-plane hosts as bare hostnames.
func normalizeHost(host string) string {
	if host == "" || strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "https://" + host
}
