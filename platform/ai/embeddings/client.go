// Package embeddings provides a client for an external embedding API service.
package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrEmptyText is returned when there is nothing to embed.
var ErrEmptyText = errors.New("embedding text is empty")

// Client is an HTTP client for embedding API services.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config configures the embedding client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a new embedding API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type embeddingRequest struct {
	Text string `json:"text"`
}

// Embed generates an embedding vector for text.
// The service may answer {"vector": [...]}, {"embedding": [...]} or a bare array.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	bodyBytes, err := json.Marshal(embeddingRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding API returned %d: %s", resp.StatusCode, string(body))
	}

	return decodeVector(body)
}

func decodeVector(body []byte) ([]float32, error) {
	var wrapped struct {
		Vector    []float32 `json:"vector"`
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil {
		if len(wrapped.Vector) > 0 {
			return wrapped.Vector, nil
		}
		if len(wrapped.Embedding) > 0 {
			return wrapped.Embedding, nil
		}
	}

	var vector []float32
	if err := json.Unmarshal(body, &vector); err == nil && len(vector) > 0 {
		return vector, nil
	}

	return nil, fmt.Errorf("failed to decode embedding response")
}
