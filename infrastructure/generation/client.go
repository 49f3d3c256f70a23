package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"astroinsight/application/ports"

	"go.uber.org/zap"
)

// HTTPGenerator calls an external language-model service to turn prompts
// into narrative insight text. Timeouts and retries are owned by the
// orchestrator; each call here is a single attempt.
type HTTPGenerator struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPGenerator creates a generator client for the given service URL
func NewHTTPGenerator(baseURL, apiKey, model string, timeout time.Duration, logger *zap.Logger) ports.InsightGenerator {
	return &HTTPGenerator{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Content string `json:"content"`
}

// GenerateInsight sends one prompt and returns the completion text
func (g *HTTPGenerator) GenerateInsight(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: g.model, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to encode generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	res, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return "", fmt.Errorf("generator returned status %d: %s", res.StatusCode, string(snippet))
	}

	var parsed generateResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode generation response: %w", err)
	}

	g.logger.Debug("insight generated",
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("content_chars", len(parsed.Content)),
	)
	return parsed.Content, nil
}
