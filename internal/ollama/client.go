// Package ollama is a minimal chat client for a local Ollama server.
// One operation: send a single system+user turn with a JSON-schema
// output contract and return the model's textual reply.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/heartmarshall/quizcheck/internal/domain"
)

// DefaultBaseURL is the stock local Ollama endpoint.
const DefaultBaseURL = "http://localhost:11434"

// Client talks to <base>/api/chat. It performs no retries; retrying is
// the caller's concern.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	log        *slog.Logger
}

// New creates a Client for the given endpoint base and model identifier.
func New(baseURL, model string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "ollama"),
	}
}

// BaseURL returns the configured endpoint base.
func (c *Client) BaseURL() string { return c.baseURL }

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

type chatRequest struct {
	Model    string          `json:"model"`
	Stream   bool            `json:"stream"`
	Format   json.RawMessage `json:"format,omitempty"`
	Options  chatOptions     `json:"options"`
	Messages []message       `json:"messages"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// Chat sends one system+user turn and returns message.content from the
// reply envelope. format, when non-nil, is passed through as the
// response-format JSON schema the model is asked to honour.
func (c *Client) Chat(ctx context.Context, system, user string, format json.RawMessage, temperature float64) (string, error) {
	endpoint := c.baseURL + "/api/chat"

	body, err := json.Marshal(chatRequest{
		Model:   c.model,
		Stream:  false,
		Format:  format,
		Options: chatOptions{Temperature: temperature},
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ollama: marshal request: %w", err)
	}

	c.log.DebugContext(ctx, "ollama request",
		slog.String("model", c.model),
		slog.Int("user_bytes", len(user)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrTransport, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: %s returned status %d: %s",
			domain.ErrTransport, endpoint, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s: read body: %v", domain.ErrTransport, endpoint, err)
	}

	var envelope chatResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", fmt.Errorf("%w: decode envelope: %v", domain.ErrProtocol, err)
	}
	if envelope.Message.Content == "" {
		return "", fmt.Errorf("%w: envelope has no message.content", domain.ErrProtocol)
	}

	c.log.DebugContext(ctx, "ollama response",
		slog.String("model", c.model),
		slog.Int("content_bytes", len(envelope.Message.Content)),
		slog.Duration("took", time.Since(start)),
	)

	return envelope.Message.Content, nil
}
