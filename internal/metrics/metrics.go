package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Исходы перехода по короткой ссылке
const (
	OutcomeRedirect     = "redirect"
	OutcomeInterstitial = "interstitial"
	OutcomeNotFound     = "not_found"
	OutcomeError        = "error"
)

// Результаты геолокации
const (
	GeoResolved = "resolved"
	GeoSkipped  = "skipped"
	GeoFailed   = "failed"
)

type Metrics struct {
	registry     *prometheus.Registry
	linksCreated prometheus.Counter
	linksDeleted prometheus.Counter
	visits       *prometheus.CounterVec
	geoLookups   *prometheus.CounterVec
	geoLatency   prometheus.Histogram
}

// New registers all collectors on a private registry so that several
// instances can coexist in tests.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		linksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shortener_links_created_total",
			Help: "Short links minted.",
		}),
		linksDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shortener_links_deleted_total",
			Help: "Short links deleted.",
		}),
		visits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shortener_visits_total",
			Help: "Visits to short links by outcome.",
		}, []string{"outcome"}),
		geoLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shortener_geo_lookups_total",
			Help: "Geolocation lookups by result.",
		}, []string{"result"}),
		geoLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shortener_geo_lookup_seconds",
			Help:    "Latency of geolocation lookups.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 5},
		}),
	}

	m.registry.MustRegister(
		m.linksCreated,
		m.linksDeleted,
		m.visits,
		m.geoLookups,
		m.geoLatency,
		collectors.NewGoCollector(),
	)
	return m
}

// Nil-safe: a nil *Metrics is a no-op sink.

func (m *Metrics) LinkCreated() {
	if m != nil {
		m.linksCreated.Inc()
	}
}

func (m *Metrics) LinkDeleted() {
	if m != nil {
		m.linksDeleted.Inc()
	}
}

func (m *Metrics) Visit(outcome string) {
	if m != nil {
		m.visits.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) GeoLookup(result string, seconds float64) {
	if m == nil {
		return
	}
	m.geoLookups.WithLabelValues(result).Inc()
	if result != GeoSkipped {
		m.geoLatency.Observe(seconds)
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
