// Package metrics holds the Prometheus registry and counters for authcore.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values shared by the counters.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics contains the authcore counters.
type Metrics struct {
	LoginTotal         *prometheus.CounterVec
	ResetRequestsTotal *prometheus.CounterVec
	ResetCompleteTotal *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoginTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_login_total",
				Help: "Total number of login attempts by outcome",
			},
			[]string{"outcome"},
		),
		ResetRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_reset_requests_total",
				Help: "Total number of password reset requests by outcome",
			},
			[]string{"outcome"},
		),
		ResetCompleteTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_reset_completions_total",
				Help: "Total number of password reset completions by outcome",
			},
			[]string{"outcome"},
		),
		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_notifications_total",
				Help: "Total number of notifications handed to a driver by result",
			},
			[]string{"driver", "result"},
		),
	}

	reg.MustRegister(m.LoginTotal, m.ResetRequestsTotal, m.ResetCompleteTotal, m.NotificationsTotal)

	return m
}

// NewRegistry returns a private registry with Go and process collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

// Handler exposes the registry in the Prometheus text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
