// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/jeranaias/bestfriend-tui/internal/apperr"
	"github.com/jeranaias/bestfriend-tui/internal/model"
	"github.com/jeranaias/bestfriend-tui/internal/persona"
)

// Fixed request settings. These are not caller-supplied.
const (
	// Model is the chat model used for every request.
	Model = openai.GPT3Dot5Turbo

	// Temperature is the sampling temperature.
	Temperature float32 = 0.7

	// MaxTokens caps the length of each reply.
	MaxTokens = 1000

	// DefaultBaseURL is the OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	// FallbackReply is returned when the API answers without content.
	FallbackReply = "Sorry, I couldn't generate a response."
)

// User-facing error messages.
const (
	MsgKeyRequired    = "OpenAI API key is required"
	MsgNotInitialized = "OpenAI client not initialized. Please set your API key."
	MsgSendFailed     = "Failed to get response from AI. Please check your API key and try again."
	MsgCancelled      = "Request cancelled."
)

// =============================================================================
// CLIENT
// =============================================================================

// Client sends chat-completion requests on behalf of the persona.
// It is safe for concurrent use.
type Client struct {
	mu          sync.RWMutex
	api         *openai.Client
	fingerprint string

	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	persona    persona.Persona
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root (tests, proxies).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimit paces request starts to perMinute. Zero disables pacing.
// Requests wait for a slot; they are never retried.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		if perMinute > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithPersona overrides the persona whose system prompt is prepended.
func WithPersona(p persona.Persona) Option {
	return func(c *Client) {
		c.persona = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient returns an uninitialized client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		persona:    persona.Default(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "cloud")
	return c
}

// Initialize binds the client to key. An empty key is a ConfigurationError
// and leaves any previous binding untouched.
func (c *Client) Initialize(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperr.Configuration(MsgKeyRequired, nil)
	}

	cfg := openai.DefaultConfig(key)
	cfg.BaseURL = c.baseURL
	cfg.HTTPClient = c.httpClient

	c.mu.Lock()
	c.api = openai.NewClientWithConfig(cfg)
	c.fingerprint = keyFingerprint(key)
	c.mu.Unlock()

	c.logger.Info("client initialized", "key_fingerprint", c.fingerprint, "base_url", c.baseURL)
	return nil
}

// IsInitialized reports whether Initialize has succeeded.
func (c *Client) IsInitialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.api != nil
}

// KeyFingerprint returns a short SHA-256 fingerprint of the bound key, or
// "none" when uninitialized.
func (c *Client) KeyFingerprint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fingerprint == "" {
		return "none"
	}
	return c.fingerprint
}

// Send asks the API for the persona's reply to history and returns its text.
// Every failure is returned as an apperr ApiError.
func (c *Client) Send(ctx context.Context, history []model.ChatTurn) (string, error) {
	c.mu.RLock()
	api, fp := c.api, c.fingerprint
	c.mu.RUnlock()

	if api == nil {
		return "", apperr.API(MsgNotInitialized, ErrNotInitialized)
	}

	log := c.logger.With("key_fingerprint", fp, "turns", len(history))

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			cause := classify(err)
			if !errors.Is(cause, ErrCancelled) && !errors.Is(cause, ErrTimeout) {
				cause = fmt.Errorf("%w: %w", ErrRateLimited, err)
			}
			log.Warn("request not started", "reason", reason(cause), "error", err)
			return "", c.apiError(cause)
		}
	}

	req := c.buildRequest(history)

	start := time.Now()
	log.Debug("API request", "model", req.Model, "messages", len(req.Messages))

	resp, err := api.CreateChatCompletion(ctx, req)
	if err != nil {
		cause := classify(err)
		log.Warn("API request failed",
			"reason", reason(cause),
			"duration", time.Since(start),
			"error", err)
		return "", c.apiError(cause)
	}

	reply := replyContent(resp)
	log.Info("API response",
		"duration", time.Since(start),
		"choices", len(resp.Choices),
		"completion_tokens", resp.Usage.CompletionTokens,
		"reply_length", len(reply))
	return reply, nil
}

func (c *Client) apiError(cause error) error {
	if errors.Is(cause, ErrCancelled) {
		return apperr.API(MsgCancelled, cause)
	}
	return apperr.API(MsgSendFailed, cause)
}

// buildRequest prepends the persona and applies the fixed settings.
func (c *Client) buildRequest(history []model.ChatTurn) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: c.persona.SystemPrompt,
	})
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    toOpenAIRole(turn.Role),
			Content: turn.Content,
		})
	}

	return openai.ChatCompletionRequest{
		Model:       Model,
		Messages:    messages,
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	}
}

// replyContent returns the first choice's content or FallbackReply.
func replyContent(resp openai.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return FallbackReply
	}
	return resp.Choices[0].Message.Content
}

func toOpenAIRole(role model.Role) string {
	switch role {
	case model.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	case model.RoleSystem:
		return openai.ChatMessageRoleSystem
	default:
		return openai.ChatMessageRoleUser
	}
}

// keyFingerprint returns the first 8 hex characters of the key's SHA-256.
func keyFingerprint(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:4])
}
