// Package anthropic provides an answer composer adapter using the
// Anthropic API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jkkn-ai/assist/internal/core/ports/driven"
)

// Ensure Composer implements the interface.
var _ driven.AnswerComposer = (*Composer)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultMaxTokens = 2048
	DefaultTimeout   = 120 * time.Second

	// AnthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic composer.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the model to use (default: claude-3-5-sonnet-latest).
	Model string

	// MaxTokens bounds the generated answer length (default: 2048).
	MaxTokens int

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// Prompts supplies the composition prompt templates.
	// Optional - embedded defaults are used when nil.
	Prompts driven.PromptStore
}

// Composer produces answers grounded on retrieved context using the
// Anthropic API.
type Composer struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	prompts   driven.PromptStore
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model     string            `json:"model"`
	Messages  []messagesMessage `json:"messages"`
	MaxTokens int               `json:"max_tokens"`
	System    string            `json:"system,omitempty"`
}

// messagesMessage is the Anthropic message format.
type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the Anthropic /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewComposer creates a new Anthropic answer composer.
func NewComposer(cfg Config) (*Composer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Composer{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		prompts:   cfg.Prompts,
	}, nil
}

// Compose produces answer text grounded on the supplied context.
func (c *Composer) Compose(ctx context.Context, query, contextText string) (string, error) {
	system, user := composePrompts(c.prompts, contextText, query)

	reqBody := messagesRequest{
		Model: c.model,
		Messages: []messagesMessage{
			{Role: "user", Content: user},
		},
		MaxTokens: c.maxTokens,
		System:    system,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/v1/messages",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if msgResp.Error != nil {
		return "", fmt.Errorf("anthropic error: %s", msgResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(msgResp.Content) == 0 {
		return "", fmt.Errorf("anthropic: empty response")
	}

	var b strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// ModelName returns the name of the generation model being used.
func (c *Composer) ModelName() string {
	return c.model
}

// Ping validates the service is reachable with a minimal request.
func (c *Composer) Ping(ctx context.Context) error {
	reqBody := messagesRequest{
		Model: c.model,
		Messages: []messagesMessage{
			{Role: "user", Content: "ping"},
		},
		MaxTokens: 1,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/v1/messages",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return fmt.Errorf("anthropic: failed to create ping request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("anthropic: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (c *Composer) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// Embedded fallback prompts, used when no prompt store is configured.
const (
	fallbackSystemPrompt = `You are a helpful assistant answering questions about a document collection.
Answer using ONLY the provided context. If the context does not contain the answer, say so plainly.
Be concise and factual. Do not invent information that is not in the context.`

	fallbackUserPrompt = `Context:
%s

Question: %s

Answer based only on the context above:`
)

// composePrompts resolves the system and user prompts, falling back to
// the embedded defaults when the store is nil or fails.
func composePrompts(prompts driven.PromptStore, contextText, query string) (system, user string) {
	system = fallbackSystemPrompt
	userTemplate := fallbackUserPrompt

	if prompts != nil {
		if p, err := prompts.Load(driven.PromptComposeSystem); err == nil && p != "" {
			system = p
		}
		if p, err := prompts.Load(driven.PromptComposeUser); err == nil && p != "" {
			userTemplate = p
		}
	}
	return system, fmt.Sprintf(userTemplate, contextText, query)
}
