package extract

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/brandforge/personalizer/internal/errors"
	"github.com/brandforge/personalizer/internal/metrics"
	"github.com/brandforge/personalizer/internal/retry"
)

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestExtract_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/extract", r.URL.Path)
		var req extractRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://acme.example", req.URL)

		json.NewEncoder(w).Encode(RawBrandData{
			Metadata:    PageMetadata{Title: "Acme"},
			HTML:        "<html></html>",
			StyleSample: StyleSample{Palette: []string{"#ff0000"}, FontFamilies: []string{"Inter"}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, 5*time.Second, zerolog.Nop(), WithRetryConfig(fastRetry()))
	raw, err := c.Extract(context.Background(), "https://acme.example")
	require.NoError(t, err)
	assert.Equal(t, "Acme", raw.Metadata.Title)
	assert.Equal(t, []string{"#ff0000"}, raw.StyleSample.Palette)
}

func TestExtract_EmptyURL(t *testing.T) {
	c := NewClient("http://localhost:0", "http://localhost:0", time.Second, zerolog.Nop())
	_, err := c.Extract(context.Background(), "  ")
	assert.ErrorIs(t, err, perrors.ErrInvalidInput)
}

func TestExtract_SiteUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "navigation failed: DNS error", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, 5*time.Second, zerolog.Nop(), WithRetryConfig(fastRetry()))
	_, err := c.Extract(context.Background(), "https://down.example")
	require.Error(t, err)

	var ce *perrors.CollabError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "scraper", ce.Service)
	assert.Equal(t, http.StatusBadGateway, ce.StatusCode)
}

func TestExtract_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(RawBrandData{Metadata: PageMetadata{Title: "Acme"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, 5*time.Second, zerolog.Nop(), WithRetryConfig(fastRetry()))
	raw, err := c.Extract(context.Background(), "https://acme.example")
	require.NoError(t, err)
	assert.Equal(t, "Acme", raw.Metadata.Title)
	assert.Equal(t, int32(2), calls.Load())
}

func TestExtract_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "invalid url", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, 5*time.Second, zerolog.Nop(), WithRetryConfig(fastRetry()))
	_, err := c.Extract(context.Background(), "https://acme.example")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestExtract_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client disconnect and
		// cancels the request context; otherwise srv.Close deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, 20*time.Millisecond, zerolog.Nop(),
		WithRetryConfig(retry.Config{MaxAttempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}))
	_, err := c.Extract(context.Background(), "https://slow.example")
	require.Error(t, err)
	assert.ErrorIs(t, err, perrors.ErrTimeout)
}

func TestAnalyze_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/analyze", r.URL.Path)
		w.Write([]byte(`{"brand":{"colors":{"primary":"#ff0000"},"confidence":{"colors":0.9}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, 5*time.Second, zerolog.Nop(), WithRetryConfig(fastRetry()))
	partial, err := c.Analyze(context.Background(), &RawBrandData{HTML: "<html></html>"})
	require.NoError(t, err)
	require.NotNil(t, partial.Colors)
	assert.Equal(t, "#ff0000", partial.Colors.Primary)
	assert.Equal(t, 0.9, partial.Confidence["colors"])
}

func TestAnalyze_MissingBrandPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, 5*time.Second, zerolog.Nop(), WithRetryConfig(fastRetry()))
	_, err := c.Analyze(context.Background(), &RawBrandData{})
	assert.Error(t, err)
}

func TestAnalyze_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"brand": not-json`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, 5*time.Second, zerolog.Nop(), WithRetryConfig(fastRetry()))
	_, err := c.Analyze(context.Background(), &RawBrandData{})
	require.Error(t, err)

	var ce *perrors.CollabError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Message, "malformed response")
}

func TestAnalyze_NilInput(t *testing.T) {
	c := NewClient("http://localhost:0", "http://localhost:0", time.Second, zerolog.Nop())
	_, err := c.Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, perrors.ErrInvalidInput)
}

func TestHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, time.Second, zerolog.Nop())
	assert.True(t, c.Healthy(context.Background()))

	srv.Close()
	assert.False(t, c.Healthy(context.Background()))
}

func TestExtract_RecordsCallDuration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(RawBrandData{Metadata: PageMetadata{Title: "Acme"}})
	}))
	defer srv.Close()

	m := metrics.New()
	c := NewClient(srv.URL, srv.URL, 5*time.Second, zerolog.Nop(),
		WithRetryConfig(fastRetry()), WithMetrics(m))
	_, err := c.Extract(context.Background(), "https://acme.example")
	require.NoError(t, err)

	body := scrapeMetrics(t, m)
	assert.Contains(t, body, `personalizer_collaborator_duration_seconds_count{service="scraper"} 1`)
}

func TestExtract_RecordsErrorMetric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid url", http.StatusBadRequest)
	}))
	defer srv.Close()

	m := metrics.New()
	c := NewClient(srv.URL, srv.URL, 5*time.Second, zerolog.Nop(),
		WithRetryConfig(fastRetry()), WithMetrics(m))
	_, err := c.Extract(context.Background(), "https://acme.example")
	require.Error(t, err)

	body := scrapeMetrics(t, m)
	assert.Contains(t, body, `personalizer_errors_total{module="scraper",type="http_status"} 1`)
}

func scrapeMetrics(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	return string(body)
}
