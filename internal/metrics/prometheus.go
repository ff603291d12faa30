package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch results used as label values.
const (
	ResultSuccess     = "success"
	ResultTransport   = "transport_error"
	ResultHTTPStatus  = "http_status"
	ResultDecode      = "decode_error"
	ResultEmptyResult = "empty"
)

var (
	// FetchTotal counts decision fetch attempts by result.
	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "riskdesk",
			Name:      "fetch_total",
			Help:      "Total decision fetch attempts by result.",
		},
		[]string{"result"},
	)

	// FetchDuration observes decision fetch latency.
	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "riskdesk",
			Name:      "fetch_duration_seconds",
			Help:      "Decision fetch duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// FetchDiscardedTotal counts completions dropped because a newer fetch was issued.
	FetchDiscardedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "riskdesk",
		Name:      "fetch_discarded_total",
		Help:      "Fetch completions discarded because a newer fetch was issued.",
	})

	// SnapshotItems tracks the number of items in the current snapshot.
	SnapshotItems = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "riskdesk",
		Name:      "snapshot_items",
		Help:      "Number of transactions in the current snapshot.",
	})

	// SnapshotTimestamp is the unix time of the last applied snapshot.
	SnapshotTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "riskdesk",
		Name:      "snapshot_timestamp_seconds",
		Help:      "Unix time at which the current snapshot was applied.",
	})

	// ActiveWebSocketClients tracks connected stream clients.
	ActiveWebSocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "riskdesk",
		Name:      "active_websocket_clients",
		Help:      "Number of currently connected WebSocket clients.",
	})
)

func init() {
	prometheus.MustRegister(
		FetchTotal,
		FetchDuration,
		FetchDiscardedTotal,
		SnapshotItems,
		SnapshotTimestamp,
		ActiveWebSocketClients,
	)
}

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
