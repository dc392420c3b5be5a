package openrouter

import (
	"errors"
	"fmt"
	"strings"
)

// Sampling parameters sent with every completion request
const (
	defaultMaxTokens   = 500
	defaultTemperature = 0.7
	defaultTopP        = 1.0
)

var (
	errEmptyCompletion = errors.New("completion has no content")
	errProviderPayload = errors.New("provider error")
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatError struct {
	Message string `json:"message"`
	Code    any    `json:"code,omitempty"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Error   *chatError   `json:"error,omitempty"`
}

// buildChatRequest maps a system prompt and user message onto the chat
// completions body
func buildChatRequest(model, systemPrompt, userMessage string, maxTokens int, temperature, topP float64) chatRequest {
	return chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}
}

// extractContent returns the first choice's text
func extractContent(resp chatResponse) (string, error) {
	if resp.Error != nil && resp.Error.Message != "" {
		return "", fmt.Errorf("%w: %s", errProviderPayload, resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errEmptyCompletion
	}
	return content, nil
}
