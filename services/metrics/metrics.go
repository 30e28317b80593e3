// Package metrics exposes the Prometheus metrics of the api.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
)

// Outcomes of a resource operation
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds the collectors of the api, registered on their own registry.
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	broadcasts *prometheus.CounterVec
	clients    prometheus.Gauge
}

var _ core.Observer = (*Metrics)(nil)

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "resource_operations_total",
			Help: "Resource operations by resource, operation and outcome.",
		}, []string{"resource", "operation", "outcome"}),
		broadcasts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "broadcast_events_total",
			Help: "Realtime events emitted by name.",
		}, []string{"event"}),
		clients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "realtime_clients",
			Help: "Websocket clients currently connected.",
		}),
	}
}

func (m *Metrics) ObserveOperation(resource, operation string, err error) {
	m.operations.WithLabelValues(resource, operation, Outcome(err)).Inc()
}

func (m *Metrics) ObserveBroadcast(event string) {
	m.broadcasts.WithLabelValues(event).Inc()
}

// SetClients records the number of connected websocket clients.
func (m *Metrics) SetClients(n int) {
	m.clients.Set(float64(n))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Outcome classifies an operation error.
func Outcome(err error) string {
	var verr *core.ValidationError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, core.ErrNotFound):
		return OutcomeNotFound
	case errors.As(err, &verr):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
