// Package ingest fetches risk decisions from the upstream decision webhook.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/riskdesk/console/internal/metrics"
	"github.com/riskdesk/console/internal/store"
)

const (
	// DefaultLimit is the batch size requested per fetch
	DefaultLimit = 200
	// maxBodyBytes caps how much of a response body is read
	maxBodyBytes = 32 << 20
)

// StatusError reports a non-2xx webhook response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

// Client issues one GET per refresh against the decision webhook.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Client. A zero timeout leaves the transport default in place.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch returns the decisions for level, or nil if the attempt produced
// nothing usable. It never returns an error; failures are logged and counted.
func (c *Client) Fetch(ctx context.Context, level store.RiskLevel, limit, offset int) *store.RiskDecisionResponse {
	resp, err := c.FetchDecisions(ctx, level, limit, offset)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Debug("fetch_cancelled", "risk_level", level)
			return nil
		}
		slog.Warn("fetch_failed", "risk_level", level, "error", err)
		return nil
	}
	return resp
}

// FetchDecisions performs the request and returns the normalized response.
func (c *Client) FetchDecisions(ctx context.Context, level store.RiskLevel, limit, offset int) (*store.RiskDecisionResponse, error) {
	start := time.Now()
	resp, err := c.fetch(ctx, level, limit, offset)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	metrics.FetchTotal.WithLabelValues(resultLabel(err)).Inc()
	return resp, err
}

func (c *Client) fetch(ctx context.Context, level store.RiskLevel, limit, offset int) (*store.RiskDecisionResponse, error) {
	reqURL, err := c.buildURL(level, limit, offset)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}

	decisions, err := DecodeResponse(body)
	if err != nil {
		return nil, err
	}

	slog.Debug("decisions_fetched",
		"request_id", requestID,
		"risk_level", level,
		"count", decisions.Count,
		"items", len(decisions.Items),
	)
	return decisions, nil
}

// buildURL applies the three query parameters. Out-of-range inputs are
// normalized to the defaults.
func (c *Client) buildURL(level store.RiskLevel, limit, offset int) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	if !level.Valid() {
		level = store.RiskAll
	}
	if limit < 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	q := u.Query()
	q.Set("risk_level", string(level))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// resultLabel maps a fetch error to its metrics label.
func resultLabel(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.As(err, &statusErr):
		return metrics.ResultHTTPStatus
	case errors.Is(err, ErrEmptyResponse):
		return metrics.ResultEmptyResult
	case errors.Is(err, ErrDecode):
		return metrics.ResultDecode
	default:
		return metrics.ResultTransport
	}
}
