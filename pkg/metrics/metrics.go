// Package metrics provides Prometheus metrics for the ProofPoint client.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Gateway request metrics
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proofpoint_client_api_requests_total",
			Help: "Total number of API requests issued by the client",
		},
		[]string{"operation", "status"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "proofpoint_client_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	uploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proofpoint_client_upload_bytes_total",
			Help: "Total document bytes uploaded for verification",
		},
	)

	// Session metrics
	forcedLogoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proofpoint_client_forced_logouts_total",
			Help: "Sessions ended because the server rejected the token",
		},
	)

	verificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proofpoint_client_verifications_total",
			Help: "Verification submissions by outcome",
		},
		[]string{"outcome"},
	)

	tamperScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "proofpoint_client_tamper_score",
			Help:    "Distribution of tamper scores returned by the server",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	reportsSavedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proofpoint_client_reports_saved_total",
			Help: "Downloaded reports written to a sink",
		},
		[]string{"sink", "result"},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proofpoint_client_notifications_total",
			Help: "Notifications shown to the user by level",
		},
		[]string{"level"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest records one gateway call. status 0 means the transport
// failed before a response arrived.
func RecordAPIRequest(operation string, status int, duration time.Duration) {
	label := "transport_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	apiRequestsTotal.WithLabelValues(operation, label).Inc()
	apiRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordUpload records uploaded document bytes.
func RecordUpload(bytes int64) {
	uploadBytesTotal.Add(float64(bytes))
}

// RecordForcedLogout records a logout triggered by an unauthorized response.
func RecordForcedLogout() {
	forcedLogoutsTotal.Inc()
}

// RecordVerification records a verification outcome ("success", "error",
// "cached", "rejected").
func RecordVerification(outcome string) {
	verificationsTotal.WithLabelValues(outcome).Inc()
}

// ObserveTamperScore records a tamper score.
func ObserveTamperScore(score int) {
	tamperScores.Observe(float64(score))
}

// RecordNotification records a user-facing notification.
func RecordNotification(level string) {
	notificationsTotal.WithLabelValues(level).Inc()
}

// RecordReportSaved records a report write to the given sink.
func RecordReportSaved(sink string, success bool) {
	result := "success"
	if !success {
		result = "error"
	}
	reportsSavedTotal.WithLabelValues(sink, result).Inc()
}
