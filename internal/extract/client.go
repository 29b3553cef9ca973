// Package extract wraps the brand extraction collaborators: the browser
// scraper service and the LLM brand analyzer.
package extract

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

// Client talks to the scraper and analyzer services.
type Client struct {
	scraperURL  string
	analyzerURL string
	httpClient  HTTPClient
	retryCfg    retry.Config
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryConfig overrides the retry policy for collaborator calls.
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Client) { c.retryCfg = cfg }
}

// WithMetrics records call durations and failures on the given collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a new extraction client. timeout bounds a single
// collaborator call; retries multiply the worst case.
func NewClient(scraperURL, analyzerURL string, timeout time.Duration, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		scraperURL:  strings.TrimSuffix(scraperURL, "/"),
		analyzerURL: strings.TrimSuffix(analyzerURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		retryCfg:    retry.DefaultConfig(),
		logger:      logger.With().Str("component", "extract").Logger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type extractRequest struct {
	URL string `json:"url"`
}

// Extract captures the site at url via the scraper service. Ordinary site
// unavailability comes back as a CollabError, never a panic or raw transport
// error.
func (c *Client) Extract(ctx context.Context, url string) (*RawBrandData, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: url is required", perrors.ErrInvalidInput)
	}

	var raw RawBrandData
	err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		return c.postJSON(ctx, "scraper", c.scraperURL+"/extract", extractRequest{URL: url}, &raw)
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("url", url).Msg("extraction failed")
		return nil, err
	}

	c.logger.Debug().Str("url", url).Int("palette_size", len(raw.StyleSample.Palette)).Msg("extraction complete")
	return &raw, nil
}

// analyzeResponse is the analyzer's wire shape: a sparse theme under "brand".
type analyzeResponse struct {
	Brand *theme.PartialTheme `json:"brand"`
}

// Analyze turns raw extraction output into a partial brand theme via the
// analyzer service. Confidence scores ride along but are display-only.
func (c *Client) Analyze(ctx context.Context, raw *RawBrandData) (*theme.PartialTheme, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: raw brand data is required", perrors.ErrInvalidInput)
	}

	var resp analyzeResponse
	err := retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		return c.postJSON(ctx, "analyzer", c.analyzerURL+"/analyze", raw, &resp)
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("brand analysis failed")
		return nil, err
	}
	if resp.Brand == nil {
		return nil, perrors.NewCollabError("analyzer", http.StatusOK, "response missing brand payload")
	}
	return resp.Brand, nil
}

// Healthy reports whether the scraper service answers its health endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.scraperURL+"/healthz", nil)
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

func (c *Client) postJSON(ctx context.Context, service, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", service, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", service, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.observeDuration(service, start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
			c.recordError(service, "timeout")
			return fmt.Errorf("%s: %w", service, perrors.ErrTimeout)
		}
		c.recordError(service, "transport")
		return &perrors.CollabError{Service: service, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.recordError(service, "http_status")
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return perrors.NewCollabError(service, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.recordError(service, "decode")
		return perrors.NewCollabError(service, resp.StatusCode, "malformed response: "+err.Error())
	}
	return nil
}

func (c *Client) observeDuration(service string, start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveCollabDuration(service, time.Since(start).Seconds())
	}
}

func (c *Client) recordError(service, errType string) {
	if c.metrics != nil {
		c.metrics.RecordError(service, errType)
	}
}

func isClientTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
