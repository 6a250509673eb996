package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	decodeCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "attrwire",
			Subsystem: "codec",
			Name:      "decode_total",
			Help:      "Attribute list decode calls by result.",
		},
		[]string{"result"},
	)
	decodeConversions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "attrwire",
			Subsystem: "codec",
			Name:      "conversions_total",
			Help:      "Want-list entries satisfied by decode calls.",
		},
	)
	decodeViolations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "attrwire",
			Subsystem: "codec",
			Name:      "violations_total",
			Help:      "Decode calls stopped early, by reason.",
		},
		[]string{"kind"},
	)
	encodeCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "attrwire",
			Subsystem: "codec",
			Name:      "encode_total",
			Help:      "Attribute list encode calls by result.",
		},
		[]string{"result"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "attrwire",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "attrwire",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(decodeCalls, decodeConversions, decodeViolations, encodeCalls, httpRequests, httpDuration)
	})
}

// RecordDecode counts one decode call. kind is "none" for a clean stop.
func RecordDecode(complete bool, conversions int, kind string) {
	RegisterMetrics()
	result := "partial"
	if complete {
		result = "complete"
	}
	decodeCalls.WithLabelValues(result).Inc()
	decodeConversions.Add(float64(conversions))
	if kind != "none" {
		decodeViolations.WithLabelValues(kind).Inc()
	}
}

func RecordEncode(ok bool) {
	RegisterMetrics()
	result := "ok"
	if !ok {
		result = "error"
	}
	encodeCalls.WithLabelValues(result).Inc()
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}
