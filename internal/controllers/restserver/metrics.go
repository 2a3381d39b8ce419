package restserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/chrissnell/cuffhold/internal/hold"
)

type metrics struct {
	// records counts classified records by outcome: pass, fail or error
	records *prometheus.CounterVec

	// batchDuration tracks how long a classify request spends in the pipeline
	batchDuration prometheus.Histogram

	// batchSize tracks the number of records per request
	batchSize prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		records: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cuffhold_records_classified_total",
			Help: "Total classified records by outcome",
		}, []string{"outcome"}),
		batchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cuffhold_batch_duration_seconds",
			Help:    "Time spent classifying one request's records",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}),
		batchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cuffhold_batch_records",
			Help:    "Number of records per classify request",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000},
		}),
	}
}

func (m *metrics) observe(results []hold.Result) {
	m.batchSize.Observe(float64(len(results)))
	for _, r := range results {
		switch {
		case r.Failed():
			m.records.WithLabelValues("error").Inc()
		case r.Pass:
			m.records.WithLabelValues("pass").Inc()
		default:
			m.records.WithLabelValues("fail").Inc()
		}
	}
}
