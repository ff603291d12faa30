package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/riskdesk/console/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = `{
	"ok": true,
	"query": {"risk_level": "review", "limit": 200, "offset": 0},
	"count": 1,
	"items": [{
		"order_id": 1055,
		"transaction_id": 77,
		"user_id": 9,
		"customer_name": "Asha Rao",
		"risk_score": 45,
		"risk_level": "review",
		"reasons": "new device | high cart value",
		"top_signals_json": "[{\"signal\":\"new_device\",\"value\":1,\"why\":\"first seen\"}]"
	}]
}`

func newTestServer(t *testing.T, status int, body string, seen chan<- *http.Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			seen <- r
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchDecisionsQueryParameters(t *testing.T) {
	for _, level := range store.AllRiskLevels {
		t.Run(string(level), func(t *testing.T) {
			seen := make(chan *http.Request, 1)
			srv := newTestServer(t, http.StatusOK, sampleBody, seen)

			c := NewClient(srv.URL+"/webhook/risk-decisions", 0)
			resp, err := c.FetchDecisions(context.Background(), level, 200, 0)
			require.NoError(t, err)
			require.NotNil(t, resp)

			req := <-seen
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, "/webhook/risk-decisions", req.URL.Path)
			assert.Equal(t, string(level), req.URL.Query().Get("risk_level"))
			assert.Equal(t, "200", req.URL.Query().Get("limit"))
			assert.Equal(t, "0", req.URL.Query().Get("offset"))
			assert.Equal(t, "application/json", req.Header.Get("Accept"))
			assert.NotEmpty(t, req.Header.Get("X-Request-ID"))
		})
	}
}

func TestFetchDecisionsNormalizesInputs(t *testing.T) {
	seen := make(chan *http.Request, 1)
	srv := newTestServer(t, http.StatusOK, sampleBody, seen)

	c := NewClient(srv.URL, 0)
	_, err := c.FetchDecisions(context.Background(), "bogus", -5, -1)
	require.NoError(t, err)

	q := (<-seen).URL.Query()
	assert.Equal(t, url.Values{
		"risk_level": {"all"},
		"limit":      {"200"},
		"offset":     {"0"},
	}, q)
}

func TestFetchDecisionsDecodes(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, sampleBody, nil)

	resp, err := NewClient(srv.URL, 0).FetchDecisions(context.Background(), store.RiskReview, 200, 0)
	require.NoError(t, err)

	assert.True(t, resp.OK)
	assert.Equal(t, "review", resp.Query.RiskLevel)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(1055), resp.Items[0].OrderID)
	assert.Equal(t, "Asha Rao", resp.Items[0].CustomerName)
	assert.Equal(t, 45.0, resp.Items[0].RiskScore)
}

func TestFetchDecisionsUnwrapsArray(t *testing.T) {
	plain := newTestServer(t, http.StatusOK, sampleBody, nil)
	wrapped := newTestServer(t, http.StatusOK, "["+sampleBody+"]", nil)

	a, err := NewClient(plain.URL, 0).FetchDecisions(context.Background(), store.RiskAll, 200, 0)
	require.NoError(t, err)
	b, err := NewClient(wrapped.URL, 0).FetchDecisions(context.Background(), store.RiskAll, 200, 0)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestFetchFailSoft(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"ok":false}`},
		{"not found", http.StatusNotFound, ""},
		{"malformed json", http.StatusOK, `{"ok": tru`},
		{"empty array", http.StatusOK, `[]`},
		{"null body", http.StatusOK, `null`},
		{"plain text", http.StatusOK, `Workflow was started`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.status, tt.body, nil)
			c := NewClient(srv.URL, 0)

			assert.Nil(t, c.Fetch(context.Background(), store.RiskAll, 200, 0))

			_, err := c.FetchDecisions(context.Background(), store.RiskAll, 200, 0)
			assert.Error(t, err)
		})
	}
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := NewClient(addr, 0)
	assert.Nil(t, c.Fetch(context.Background(), store.RiskAll, 200, 0))
}

func TestFetchCancelledContext(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, sampleBody, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Nil(t, NewClient(srv.URL, 0).Fetch(ctx, store.RiskAll, 200, 0))
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "success", resultLabel(nil))
	assert.Equal(t, "http_status", resultLabel(&StatusError{Code: 502}))
	assert.Equal(t, "empty", resultLabel(ErrEmptyResponse))
	_, err := DecodeResponse([]byte("{"))
	assert.Equal(t, "decode_error", resultLabel(err))
	assert.Equal(t, "transport_error", resultLabel(context.DeadlineExceeded))
}
