// Package metrics exposes container activity as Prometheus metrics.
package metrics

import (
	"fmt"
	"net/http"
	"reflect"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-ioc/framework/container"
)

const namespace = "ioc"

// Metrics owns a private Prometheus registry so tests and multiple
// applications in one process do not collide on the default one.
type Metrics struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
}

// New creates the collectors and registers them.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Instances handed out by the container, per service.",
		}, []string{"service"}),
	}
	m.registry.MustRegister(m.resolutions)
	return m
}

// Attach counts every instance c hands out and publishes c's registration
// count. A Metrics serves one container: a second Attach returns the
// registry's AlreadyRegisteredError and adds no hook.
func (m *Metrics) Attach(c *container.Container) error {
	err := m.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "registrations",
		Help:      "Entries currently registered in the container.",
	}, func() float64 {
		return float64(len(c.Registrations()))
	}))
	if err != nil {
		return fmt.Errorf("metrics: attach: %w", err)
	}
	c.AfterResolving(func(id reflect.Type, _ any) {
		m.Observe(id)
	})
	return nil
}

// Observe records one resolution of id.
func (m *Metrics) Observe(id reflect.Type) {
	m.resolutions.WithLabelValues(container.TypeKey(id)).Inc()
}

// Resolutions returns the counter vector, mainly for tests.
func (m *Metrics) Resolutions() *prometheus.CounterVec { return m.resolutions }

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
