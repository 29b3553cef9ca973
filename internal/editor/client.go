// Package editor wraps the LLM scene code editor collaborator. It has two
// modes: rewriting hard-coded literals into theme-token references, and
// swapping one target's brand values into a scene.
package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	perrors "github.com/brandforge/personalizer/internal/errors"
	"github.com/brandforge/personalizer/internal/metrics"
	"github.com/brandforge/personalizer/internal/retry"
	"github.com/brandforge/personalizer/internal/theme"
)

// HTTPClient abstracts HTTP calls for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// EditResult is a successful brand application rewrite.
type EditResult struct {
	SourceCode string `json:"sourceCode"`
	Summary    string `json:"summary"`
}

// Client talks to the scene code editor service.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	retryCfg   retry.Config
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Client) { c.retryCfg = cfg }
}

// WithMetrics records call durations and failures on the given collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a new editor client.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		retryCfg:   retry.DefaultConfig(),
		logger:     logger.With().Str("component", "editor").Logger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type tokenizeRequest struct {
	SourceCode string `json:"sourceCode"`
}

type tokenizeResponse struct {
	SourceCode string `json:"sourceCode"`
}

// Tokenize rewrites hard-coded colors, fonts, and asset URLs in the scene
// source into theme-token references.
func (c *Client) Tokenize(ctx context.Context, sourceCode string) (string, error) {
	if sourceCode == "" {
		return "", fmt.Errorf("%w: source code is required", perrors.ErrInvalidInput)
	}

	var resp tokenizeResponse
	err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		return c.postJSON(ctx, "/tokenize", tokenizeRequest{SourceCode: sourceCode}, &resp)
	})
	if err != nil {
		return "", err
	}
	if resp.SourceCode == "" {
		return "", perrors.NewCollabError("editor", http.StatusOK, "tokenize returned empty source")
	}
	return resp.SourceCode, nil
}

type applyRequest struct {
	SourceCode string           `json:"sourceCode"`
	Theme      theme.BrandTheme `json:"theme"`
}

type applyResponse struct {
	SourceCode string `json:"sourceCode"`
	Summary    string `json:"summary"`
	Error      string `json:"error,omitempty"`
}

// ApplyTheme rewrites the scene source to reflect the given theme's values.
// Editor-side rejections (e.g. malformed source) come back as errors with the
// editor's own message.
func (c *Client) ApplyTheme(ctx context.Context, sourceCode string, th theme.BrandTheme) (*EditResult, error) {
	if sourceCode == "" {
		return nil, fmt.Errorf("%w: source code is required", perrors.ErrInvalidInput)
	}

	var resp applyResponse
	err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		return c.postJSON(ctx, "/apply", applyRequest{SourceCode: sourceCode, Theme: th}, &resp)
	})
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, perrors.NewCollabError("editor", http.StatusUnprocessableEntity, resp.Error)
	}
	if resp.SourceCode == "" {
		return nil, perrors.NewCollabError("editor", http.StatusOK, "apply returned empty source")
	}
	return &EditResult{SourceCode: resp.SourceCode, Summary: resp.Summary}, nil
}

// Healthy reports whether the editor service answers its health endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 400
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding editor request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating editor request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.observeDuration(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
			c.recordError("timeout")
			return fmt.Errorf("editor: %w", perrors.ErrTimeout)
		}
		c.recordError("transport")
		return &perrors.CollabError{Service: "editor", Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.recordError("http_status")
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return perrors.NewCollabError("editor", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.recordError("decode")
		return perrors.NewCollabError("editor", resp.StatusCode, "malformed response: "+err.Error())
	}
	return nil
}

func (c *Client) observeDuration(start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveCollabDuration("editor", time.Since(start).Seconds())
	}
}

func (c *Client) recordError(errType string) {
	if c.metrics != nil {
		c.metrics.RecordError("editor", errType)
	}
}

func isClientTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
