package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agrihope/backend/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const maxErrorBody = 512

// HTTPStatusError is returned for non-200 completion responses
type HTTPStatusError struct {
	Model      string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("openrouter %s status: %d", e.Model, e.StatusCode)
	}
	return fmt.Sprintf("openrouter %s status: %d: %s", e.Model, e.StatusCode, body)
}

// Config holds configuration for the OpenRouter client
type Config struct {
	APIKey            string
	BaseURL           string
	Referer           string
	Title             string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxTokens         int
	Temperature       *float64 // nil means 0.7; zero is a valid setting
	TopP              float64
}

// Client calls the OpenRouter chat completions API for a single model
type Client struct {
	httpClient  *http.Client
	cfg         Config
	rateLimiter *rate.Limiter
	logger      zerolog.Logger
}

// NewClient creates a new OpenRouter API client
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature == nil {
		t := defaultTemperature
		cfg.Temperature = &t
	}
	if cfg.TopP <= 0 {
		cfg.TopP = defaultTopP
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg:         cfg,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:      logger.With().Str("component", "openrouter").Logger(),
	}
}

// Configured reports whether an API key is present
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

// Generate asks one model for a completion
func (c *Client) Generate(ctx context.Context, model, systemPrompt, userMessage string) (string, error) {
	if !c.Configured() {
		return "", domain.ErrGenerationUnavailable
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	payload, err := json.Marshal(buildChatRequest(model, systemPrompt, userMessage,
		c.cfg.MaxTokens, *c.cfg.Temperature, c.cfg.TopP))
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn().
			Str("model", model).
			Int("status", resp.StatusCode).
			Msg("completion request rejected")
		return "", &HTTPStatusError{Model: model, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	text, err := extractContent(completion)
	if err != nil {
		return "", fmt.Errorf("model %s: %w", model, err)
	}

	c.logger.Debug().Str("model", model).Int("chars", len(text)).Msg("completion received")
	return text, nil
}

// doRequest executes the POST with auth and attribution headers
func (c *Client) doRequest(ctx context.Context, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		req.Header.Set("X-Title", c.cfg.Title)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openrouter request: %w", err)
	}
	return resp, nil
}
