// Package metrics exposes the bot's Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Events counts dispatched events by kind.
	Events = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repairbot_events_total",
		Help: "Total number of dispatched events by kind",
	}, []string{"kind"})

	// HandlerErrors counts events whose handler failed.
	HandlerErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "repairbot_handler_errors_total",
		Help: "Total number of failed event handlers",
	})

	// RequestsFiled counts confirmed repair requests by outcome.
	RequestsFiled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repairbot_requests_filed_total",
		Help: "Total number of confirmed repair requests by outcome",
	}, []string{"result"})

	// ArchiveUploads counts archive uploads by outcome.
	ArchiveUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repairbot_archive_uploads_total",
		Help: "Total number of archive uploads by outcome",
	}, []string{"result"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
