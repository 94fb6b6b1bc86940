package server

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics records dev server rebuilds on a private registry.
type metrics struct {
	registry        *prom.Registry
	rebuildDuration prom.Histogram
	rebuildOutcomes *prom.CounterVec
	reloads         prom.Counter
}

func newMetrics(hub *Hub) *metrics {
	m := &metrics{
		registry: prom.NewRegistry(),
		rebuildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "swatch",
			Name:      "rebuild_duration_seconds",
			Help:      "Duration of docs builds run by the dev server",
			Buckets:   prom.DefBuckets,
		}),
		rebuildOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "swatch",
			Name:      "rebuilds_total",
			Help:      "Docs builds by outcome",
		}, []string{"outcome"}),
		reloads: prom.NewCounter(prom.CounterOpts{
			Namespace: "swatch",
			Name:      "reloads_total",
			Help:      "Reload messages broadcast to browsers",
		}),
	}
	clients := prom.NewGaugeFunc(prom.GaugeOpts{
		Namespace: "swatch",
		Name:      "live_reload_clients",
		Help:      "Connected live-reload websocket clients",
	}, func() float64 { return float64(hub.size()) })

	m.registry.MustRegister(m.rebuildDuration, m.rebuildOutcomes, m.reloads, clients)
	return m
}

func (m *metrics) observeRebuild(d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failed"
	}
	m.rebuildDuration.Observe(d.Seconds())
	m.rebuildOutcomes.WithLabelValues(outcome).Inc()
}

// instrument wraps build so every run is observed.
func (m *metrics) instrument(build BuildFunc) BuildFunc {
	return func(clean bool) error {
		start := time.Now()
		err := build(clean)
		m.observeRebuild(time.Since(start), err)
		return err
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
