package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records quote activity. A nil *Metrics discards observations.
type Metrics struct {
	quotes          *prometheus.CounterVec
	quoteErrors     *prometheus.CounterVec
	quoteLatency    prometheus.Histogram
	snapshotLatency prometheus.Histogram
	lastBlock       prometheus.Gauge
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stablescope",
			Subsystem: "quote",
			Name:      "total",
			Help:      "Quotes computed, segmented by outcome.",
		}, []string{"outcome"}),
		quoteErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stablescope",
			Subsystem: "quote",
			Name:      "errors_total",
			Help:      "Failed quotes, segmented by reason.",
		}, []string{"reason"}),
		quoteLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stablescope",
			Subsystem: "quote",
			Name:      "duration_seconds",
			Help:      "Time spent computing a quote including snapshot resolution.",
			Buckets:   prometheus.DefBuckets,
		}),
		snapshotLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stablescope",
			Subsystem: "snapshot",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching a pool snapshot.",
			Buckets:   prometheus.DefBuckets,
		}),
		lastBlock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stablescope",
			Subsystem: "tracker",
			Name:      "last_block",
			Help:      "Last block sampled by the tracker.",
		}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.quotes, m.quoteErrors, m.quoteLatency, m.snapshotLatency, m.lastBlock} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// ObserveQuote records one quote. reason is ignored on success.
func (m *Metrics) ObserveQuote(err error, reason string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.quoteLatency.Observe(elapsed.Seconds())
	if err != nil {
		m.quotes.WithLabelValues("error").Inc()
		m.quoteErrors.WithLabelValues(reason).Inc()
		return
	}
	m.quotes.WithLabelValues("ok").Inc()
}

// ObserveSnapshot records a snapshot fetch.
func (m *Metrics) ObserveSnapshot(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.snapshotLatency.Observe(elapsed.Seconds())
}

// SetLastBlock records tracker progress.
func (m *Metrics) SetLastBlock(block uint64) {
	if m == nil {
		return
	}
	m.lastBlock.Set(float64(block))
}
