// Package keyword is the HTTP client of the keyword metrics service.
package keyword

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/boostube/internal/domain"
	kw "github.com/kailas-cloud/boostube/internal/domain/keyword"
	"github.com/kailas-cloud/boostube/internal/metrics"
)

// maxBodyBytes caps the response body read from the service.
const maxBodyBytes = 1 << 20

// Config holds the keyword service settings.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client issues GET <base>/api/keyword?k=<keyword>.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

// NewClient creates a keyword metrics client.
func NewClient(cfg *Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid keyword service url %q", cfg.BaseURL)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint: base.String() + "/api/keyword",
		http:     hc,
		logger:   logger,
	}, nil
}

type lookupResponse struct {
	Keyword *kw.Metric `json:"keyword"`
}

// Lookup fetches the metrics record for keyword.
// Non-2xx and network failures wrap domain.ErrTransport; a missing record or
// an undecodable body wraps domain.ErrPayloadShape.
func (c *Client) Lookup(ctx context.Context, keyword string) (kw.Metric, error) {
	q := url.Values{"k": []string{keyword}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return kw.Metric{}, fmt.Errorf("build keyword request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.KeywordRequestsTotal.WithLabelValues("error").Inc()
		return kw.Metric{}, fmt.Errorf("keyword request failed: %w: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.KeywordRequestsTotal.WithLabelValues("error").Inc()
		return kw.Metric{}, fmt.Errorf("read keyword response: %w: %w", domain.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.KeywordRequestsTotal.WithLabelValues("error").Inc()
		c.logger.Warn("Keyword service returned an error status",
			zap.Int("status", resp.StatusCode),
			zap.String("keyword", keyword),
		)
		return kw.Metric{}, fmt.Errorf("keyword service status %d: %w", resp.StatusCode, domain.ErrTransport)
	}

	var parsed lookupResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		metrics.KeywordRequestsTotal.WithLabelValues("bad_payload").Inc()
		return kw.Metric{}, fmt.Errorf("decode keyword response: %w: %w", domain.ErrPayloadShape, err)
	}
	if parsed.Keyword == nil {
		metrics.KeywordRequestsTotal.WithLabelValues("bad_payload").Inc()
		return kw.Metric{}, fmt.Errorf("keyword response has no record: %w", domain.ErrPayloadShape)
	}

	metrics.KeywordRequestsTotal.WithLabelValues("success").Inc()
	return *parsed.Keyword, nil
}
