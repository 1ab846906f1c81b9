// Package llm provides the local language model completion capability.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Completion errors.
var (
	// ErrDisabled indicates the completion capability is switched off.
	ErrDisabled = errors.New("llm disabled")
	// ErrEmptyCompletion indicates the model returned blank text.
	ErrEmptyCompletion = errors.New("empty completion")
)

// Completer produces a text completion for a prompt. Implementations must
// bound the call with a timeout; a failed attempt is not retried.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Client calls a locally hosted Ollama instance.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	temperature float64
}

// Config holds completion client configuration.
type Config struct {
	BaseURL     string // Default: http://localhost:11434
	Model       string // Default: llama3
	Temperature float64
	Timeout     time.Duration
}

// NewClient creates a new Ollama completion client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3"
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
	Text     string `json:"text"`
	Done     bool   `json:"done"`
}

// Complete generates a completion for the given prompt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: generateOptions{Temperature: c.temperature},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call llm: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm returned status %d", resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	text := genResp.Response
	if text == "" {
		text = genResp.Text
	}
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// Model returns the model identifier.
func (c *Client) Model() string {
	return c.model
}

// Disabled is a Completer that always reports the capability as off.
type Disabled struct{}

// Complete always fails with ErrDisabled.
func (Disabled) Complete(context.Context, string) (string, error) {
	return "", ErrDisabled
}

// Model returns an empty model identifier.
func (Disabled) Model() string { return "" }

// Stub is a deterministic Completer for tests.
type Stub struct {
	Response string
	Err      error
	Name     string

	// Prompts records every prompt Complete received.
	Prompts []string
}

// Complete returns the configured response or error.
func (s *Stub) Complete(_ context.Context, prompt string) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	if s.Err != nil {
		return "", s.Err
	}
	return s.Response, nil
}

// Model returns the configured model name.
func (s *Stub) Model() string {
	if s.Name == "" {
		return "stub-model"
	}
	return s.Name
}

var (
	_ Completer = (*Client)(nil)
	_ Completer = Disabled{}
	_ Completer = (*Stub)(nil)
)
