package similarity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// EmbedClient calls an external embedding service over HTTP. The service
// speaks the common POST /embed protocol: a list of inputs in, a list of
// float vectors out.
type EmbedClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      Cache
}

type EmbedRequest struct {
	Inputs    []string `json:"inputs"`
	Normalize bool     `json:"normalize"`
}

type EmbedResponse [][]float32

func NewEmbedClient(baseURL, apiKey string, cache Cache, timeout time.Duration) *EmbedClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if cache == nil {
		cache = NewNoopCache()
	}

	return &EmbedClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache: cache,
	}
}

// EmbedSingle embeds one text, consulting the cache first.
func (c *EmbedClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	if cached, found := c.cache.Get(text); found {
		return cached, nil
	}

	reqBody := EmbedRequest{
		Inputs:    []string{text},
		Normalize: true,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/embed", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding service returned status %d", resp.StatusCode)
	}

	var embeddings EmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddings); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding service returned no vectors")
	}

	c.cache.Set(text, embeddings[0], 0)
	return embeddings[0], nil
}
