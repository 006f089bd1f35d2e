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

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// geminiClient implements the Client interface for the Gemini API.
type geminiClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	timeout     time.Duration
	temperature float64
	topP        float64
	topK        int
	maxTokens   int
}

// newGeminiClient creates a new Gemini API client.
func newGeminiClient(cfg ProviderConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	cfg = cfg.withDefaults(defaultHostedTimeout)

	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	return &geminiClient{
		apiKey:      cfg.APIKey,
		model:       model,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		topK:        cfg.TopK,
		maxTokens:   cfg.MaxTokens,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

func (c *geminiClient) Name() string {
	return "gemini"
}

// geminiResponse represents the Gemini generateContent response envelope.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Generate issues a single generateContent request.
func (c *geminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature":     c.temperature,
			"topP":            c.topP,
			"topK":            c.topK,
			"maxOutputTokens": c.maxTokens,
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(jsonBody)))
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

	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", &ContentBlockedError{Reason: fmt.Sprintf("unrecognized response envelope: %v", err)}
	}

	// A 200 can still carry a safety rejection instead of text.
	if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
		return "", &ContentBlockedError{Reason: response.PromptFeedback.BlockReason}
	}

	if len(response.Candidates) == 0 {
		return "", &ContentBlockedError{Reason: "no candidates returned"}
	}

	candidate := response.Candidates[0]
	if candidate.FinishReason == "SAFETY" {
		return "", &ContentBlockedError{Reason: "candidate finished with SAFETY"}
	}

	if len(candidate.Content.Parts) == 0 || candidate.Content.Parts[0].Text == "" {
		return "", &ContentBlockedError{Reason: "candidate contained no text"}
	}

	return candidate.Content.Parts[0].Text, nil
}
