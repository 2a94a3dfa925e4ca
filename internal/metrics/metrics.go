// Package metrics provides Prometheus instrumentation for the LaTroca API.
// It exposes counters for HTTP traffic and moderation verdicts, and
// histograms for remote classifier latency.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts HTTP requests, labeled by method, route and status.
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "latroca_http_requests_total",
		Help: "Total number of HTTP requests processed",
	}, []string{"method", "route", "status"})

	// VerdictsTotal counts moderation verdicts, labeled by kind ("text",
	// "image", "lexicon") and category ("Normal", "Offensive", "Sexual",
	// "Error").
	VerdictsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "latroca_moderation_verdicts_total",
		Help: "Total number of moderation verdicts produced",
	}, []string{"kind", "category"})

	// ClassifierLatency records remote classifier call latency in seconds.
	ClassifierLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "latroca_classifier_latency_seconds",
		Help:    "Remote classifier call latency in seconds",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	// ClassifierErrors counts failed classifier calls, labeled by reason:
	// "transport", "status" or "decode".
	ClassifierErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "latroca_classifier_errors_total",
		Help: "Total number of failed remote classifier calls",
	}, []string{"reason"})

	// VerdictCacheHits counts verdict cache lookups, labeled by outcome
	// ("hit" or "miss").
	VerdictCacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "latroca_verdict_cache_lookups_total",
		Help: "Total number of moderation verdict cache lookups",
	}, []string{"outcome"})

	// NotificationsTotal counts FCM sends, labeled by result ("ok", "error").
	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "latroca_notifications_total",
		Help: "Total number of push notification sends",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		VerdictsTotal,
		ClassifierLatency,
		ClassifierErrors,
		VerdictCacheHits,
		NotificationsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
