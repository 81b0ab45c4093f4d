// Package metrics exports transaction statistics from a draft.Engine as
// Prometheus metrics.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/draft/internal/draft"
)

// Namespace is the metric namespace for every collector.
const Namespace = "draft"

// Collector implements draft.Observer by recording each finished
// transaction into Prometheus counters and histograms.
type Collector struct {
	transactions *prometheus.CounterVec
	drafts       prometheus.Histogram
	modified     prometheus.Histogram
	patches      prometheus.Counter
	duration     *prometheus.HistogramVec
}

var _ draft.Observer = (*Collector)(nil)

// NewCollector creates a collector and registers it with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "engine",
			Name:      "transactions_total",
			Help:      "Finished transactions by outcome",
		}, []string{"outcome"}),
		drafts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "engine",
			Name:      "drafts_per_transaction",
			Help:      "Drafts created per transaction",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		modified: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "engine",
			Name:      "modified_per_transaction",
			Help:      "Drafts that ended up copied per transaction",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		patches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "engine",
			Name:      "patches_total",
			Help:      "Forward patches emitted",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "engine",
			Name:      "transaction_duration_seconds",
			Help:      "Transaction wall time from scope entry to revocation",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}, []string{"outcome"}),
	}

	for _, col := range []prometheus.Collector{c.transactions, c.drafts, c.modified, c.patches, c.duration} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register draft metrics: %w", err)
		}
	}
	return c, nil
}

// TransactionFinished implements draft.Observer.
func (c *Collector) TransactionFinished(s draft.TransactionStats) {
	outcome := string(s.Outcome)
	c.transactions.WithLabelValues(outcome).Inc()
	c.drafts.Observe(float64(s.Drafts))
	c.modified.Observe(float64(s.Modified))
	c.patches.Add(float64(s.Patches))
	c.duration.WithLabelValues(outcome).Observe(s.Duration.Seconds())
}
