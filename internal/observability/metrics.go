package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the service.
type Metrics struct {
	SolarRequests *prometheus.CounterVec // labels: outcome={success,error}
	RecordUpserts *prometheus.CounterVec // labels: mode={create,update,refresh,bulk}
	BulkBatchSize prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer)
}

// NewMetricsForTesting creates metrics on a private registry so parallel tests
// never collide on duplicate registration.
func NewMetricsForTesting() *Metrics {
	return newMetrics(prometheus.NewRegistry())
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SolarRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "solar_day",
			Name:      "solar_client_requests_total",
			Help:      "Total outbound requests to the solar times provider.",
		}, []string{"outcome"}),
		RecordUpserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "solar_day",
			Name:      "record_upserts_total",
			Help:      "Total solar day records written, by write mode.",
		}, []string{"mode"}),
		BulkBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "solar_day",
			Name:      "bulk_batch_size",
			Help:      "Number of records per bulk upsert.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		}),
	}

	reg.MustRegister(m.SolarRequests, m.RecordUpserts, m.BulkBatchSize)
	return m
}
