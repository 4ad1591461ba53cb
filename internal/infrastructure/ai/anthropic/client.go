// Package anthropic provides the Anthropic Messages API completion provider
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vitalplate/v1/internal/infrastructure/config"
	"github.com/vitalplate/v1/internal/ports/outbound"
	"github.com/vitalplate/v1/pkg/errors"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
)

// Client implements the CompletionProvider interface against the Anthropic
// Messages API.
type Client struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
	logger    *zap.Logger
}

// NewClient creates an Anthropic client from configuration.
func NewClient(cfg *config.AIConfig, logger *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		apiKey:    cfg.AnthropicKey,
		baseURL:   baseURL,
		model:     cfg.AnthropicModel,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: timeout},
		logger:    logger.Named("anthropic-client"),
	}
}

var _ outbound.CompletionProvider = (*Client)(nil)

// Messages API structures
type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete submits a prompt and returns the first text block of the
// completion. Transport failures, non-2xx statuses and context deadlines map
// to the application error taxonomy.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", errors.NewInternalError("failed to encode completion request").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", errors.NewInternalError("failed to build completion request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return "", errors.NewProviderTimeoutError(err)
		}
		return "", errors.NewProviderUnavailableError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("completion request finished",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("anthropic api returned %d: %s", resp.StatusCode, string(payload))

		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return "", errors.NewProviderUnavailableError(err)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return "", errors.NewProviderTimeoutError(err)
		default:
			return "", errors.NewProviderUnavailableError(err)
		}
	}

	var decoded messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", errors.NewParseFailureError(err)
	}

	if len(decoded.Content) == 0 || decoded.Content[0].Text == "" {
		return "", errors.NewParseFailureError(fmt.Errorf("completion response carried no text content"))
	}

	return decoded.Content[0].Text, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}
