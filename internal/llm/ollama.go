package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ollamaClient implements the Client interface for a self-hosted Ollama
// endpoint. No API key is required; the longer default timeout reflects
// local model latency.
type ollamaClient struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	timeout     time.Duration
	temperature float64
	topP        float64
	topK        int
	maxTokens   int
}

// newOllamaClient creates a new Ollama client.
func newOllamaClient(cfg ProviderConfig) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ollama base URL is required")
	}

	cfg = cfg.withDefaults(defaultLocalTimeout)

	model := cfg.Model
	if model == "" {
		model = "llama3.1"
	}

	return &ollamaClient{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		model:       model,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		topK:        cfg.TopK,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{},
	}, nil
}

func (c *ollamaClient) Name() string {
	return "ollama"
}

// ollamaResponse represents the /api/generate response envelope.
type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate issues a single non-streaming generate request.
func (c *ollamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": c.temperature,
			"top_p":       c.topP,
			"top_k":       c.topK,
			"num_predict": c.maxTokens,
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", strings.NewReader(string(jsonBody)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransportError(ctx, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var response ollamaResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", &ContentBlockedError{Reason: fmt.Sprintf("unrecognized response envelope: %v", err)}
	}

	if response.Response == "" {
		return "", &ContentBlockedError{Reason: "empty model response"}
	}

	return response.Response, nil
}
