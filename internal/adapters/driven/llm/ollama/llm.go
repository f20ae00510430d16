// Package ollama provides an answer composer adapter using a local
// Ollama instance.
package ollama

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
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Ollama composer.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the model to use (default: llama3.2).
	Model string

	// MaxTokens bounds the generated answer length (0 = model default).
	MaxTokens int

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// Prompts supplies the composition prompt templates.
	// Optional - embedded defaults are used when nil.
	Prompts driven.PromptStore
}

// Composer produces answers grounded on retrieved context using a
// local Ollama model.
type Composer struct {
	client    *http.Client
	baseURL   string
	model     string
	maxTokens int
	prompts   driven.PromptStore
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options,omitempty"`
}

// generateOptions holds model parameters.
type generateOptions struct {
	NumPredict int `json:"num_predict,omitempty"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// NewComposer creates a new Ollama answer composer.
func NewComposer(cfg Config) *Composer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Composer{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		prompts:   cfg.Prompts,
	}
}

// Compose produces answer text grounded on the supplied context.
func (c *Composer) Compose(ctx context.Context, query, contextText string) (string, error) {
	system, user := composePrompts(c.prompts, contextText, query)

	reqBody := generateRequest{
		Model:  c.model,
		Prompt: user,
		System: system,
		Stream: false,
	}
	if c.maxTokens > 0 {
		reqBody.Options = generateOptions{NumPredict: c.maxTokens}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/api/generate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("ollama error (status %d): failed to read response", resp.StatusCode)
		}
		return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if genResp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", genResp.Error)
	}

	return strings.TrimSpace(genResp.Response), nil
}

// ModelName returns the name of the generation model being used.
func (c *Composer) ModelName() string {
	return c.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (c *Composer) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("ollama: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("ollama: API returned status %d: %s", resp.StatusCode, string(body))
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
