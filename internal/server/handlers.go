package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/riskdesk/console/internal/metrics"
	"github.com/riskdesk/console/internal/realtime"
	"github.com/riskdesk/console/internal/store"
	"github.com/riskdesk/console/internal/view"
)

type handlers struct {
	source   StateSource
	tracker  *metrics.Tracker
	hub      *realtime.Hub
	pageSize int
	started  time.Time
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status              string          `json:"status"`
	Uptime              string          `json:"uptime"`
	RiskLevel           store.RiskLevel `json:"risk_level"`
	LastUpdated         *time.Time      `json:"last_updated,omitempty"`
	LastUpdatedAgeSecs  *float64        `json:"last_updated_age_seconds,omitempty"`
	ConsecutiveFailures int             `json:"consecutive_failures"`
	Stream              *realtime.Stats `json:"stream,omitempty"`
}

// ViewResponse is the body of GET /api/v1/view.
type ViewResponse struct {
	view.Page
	RiskLevel   store.RiskLevel `json:"risk_level"`
	Loading     bool            `json:"loading"`
	Error       string          `json:"error,omitempty"`
	LastUpdated *time.Time      `json:"last_updated,omitempty"`
}

type riskLevelRequest struct {
	RiskLevel string `json:"risk_level"`
}

type intentResponse struct {
	Status    string          `json:"status"`
	RiskLevel store.RiskLevel `json:"risk_level,omitempty"`
}

// health handles GET /healthz. It always answers 200 while the process runs;
// status reports whether the feed is fresh.
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	st := h.source.State()

	resp := HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		RiskLevel: st.RiskLevel,
	}
	switch {
	case st.Error != "":
		resp.Status = "degraded"
	case st.LastUpdated.IsZero():
		resp.Status = "starting"
	}
	if !st.LastUpdated.IsZero() {
		t := st.LastUpdated
		age := time.Since(t).Seconds()
		resp.LastUpdated = &t
		resp.LastUpdatedAgeSecs = &age
	}
	if h.tracker != nil {
		resp.ConsecutiveFailures = h.tracker.Snapshot().ConsecutiveFailures
	}
	if h.hub != nil {
		stats := h.hub.Stats()
		resp.Stream = &stats
	}

	respondJSON(w, http.StatusOK, resp)
}

// getView handles GET /api/v1/view?q=&page=&sort=&desc=
func (h *handlers) getView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 0
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "page must be a non-negative integer")
			return
		}
		page = n
	}

	desc := false
	if raw := q.Get("desc"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "desc must be a boolean")
			return
		}
		desc = b
	}

	st := h.source.State()
	resp := ViewResponse{
		Page: view.Build(st.Snapshot, view.Query{
			Search:   q.Get("q"),
			Page:     page,
			PageSize: h.pageSize,
			Sort:     view.ParseSortKey(q.Get("sort")),
			Desc:     desc,
		}),
		RiskLevel: st.RiskLevel,
		Loading:   st.Loading,
		Error:     st.Error,
	}
	if !st.LastUpdated.IsZero() {
		t := st.LastUpdated
		resp.LastUpdated = &t
	}

	respondJSON(w, http.StatusOK, resp)
}

// transaction handles GET /api/v1/transactions/{orderID}
func (h *handlers) transaction(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	item, ok := view.FindByOrderID(h.source.State().Snapshot, orderID)
	if !ok {
		respondError(w, http.StatusNotFound, "transaction not found")
		return
	}

	respondJSON(w, http.StatusOK, view.NewDetail(item))
}

// refresh handles POST /api/v1/refresh
func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	h.source.Refresh()
	respondJSON(w, http.StatusAccepted, intentResponse{Status: "refresh requested"})
}

// setRiskLevel handles POST /api/v1/risk-level
func (h *handlers) setRiskLevel(w http.ResponseWriter, r *http.Request) {
	var req riskLevelRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	level, err := store.ParseRiskLevel(req.RiskLevel)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.source.SetRiskLevel(level); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusAccepted, intentResponse{Status: "risk level changed", RiskLevel: level})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		statusCode = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{Error: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}
