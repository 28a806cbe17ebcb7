package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK            = "ok"
	OutcomeSellerMissing = "seller_missing"
)

// ReadModelMetrics tracks gig read-model batches.
type ReadModelMetrics struct {
	duration *prometheus.HistogramVec
	items    *prometheus.CounterVec
}

func NewReadModelMetrics(reg prometheus.Registerer) *ReadModelMetrics {
	if reg == nil {
		return &ReadModelMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gig_read_model_build_seconds",
		Help:    "Time spent enriching a batch of gigs.",
		Buckets: prometheus.DefBuckets,
	}, []string{"view"})
	items := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gig_read_model_items_total",
		Help: "Gig views produced, by outcome.",
	}, []string{"view", "outcome"})
	reg.MustRegister(duration, items)
	return &ReadModelMetrics{duration: duration, items: items}
}

// ObserveBatch records a finished build of the named view.
func (m *ReadModelMetrics) ObserveBatch(view string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(view)).Observe(elapsed.Seconds())
}

// AddItems counts produced items with the given outcome.
func (m *ReadModelMetrics) AddItems(view, outcome string, n int) {
	if m == nil || m.items == nil || n <= 0 {
		return
	}
	m.items.WithLabelValues(normalizeLabel(view), normalizeLabel(outcome)).Add(float64(n))
}
