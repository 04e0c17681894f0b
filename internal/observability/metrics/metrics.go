// Package metrics exposes prometheus instrumentation for the resolution and
// availability flows.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConciergeMetrics exposes counters/histograms for resolution, parsing, and
// availability aggregation.
type ConciergeMetrics struct {
	resolutionsTotal *prometheus.CounterVec
	parsesTotal      *prometheus.CounterVec
	droppedSlots     prometheus.Counter
	searchLatency    *prometheus.HistogramVec
}

func NewConciergeMetrics(reg prometheus.Registerer) *ConciergeMetrics {
	m := &ConciergeMetrics{
		resolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "resolve",
			Name:      "resolutions_total",
			Help:      "Name resolutions by entity kind and confidence tier",
		}, []string{"kind", "confidence"}),
		parsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "timeparse",
			Name:      "parses_total",
			Help:      "Date/time parses by outcome (exact, range, fallback)",
		}, []string{"outcome"}),
		droppedSlots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "availability",
			Name:      "dropped_slots_total",
			Help:      "Raw slots discarded because their staff ID was not in the directory",
		}),
		searchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "concierge",
			Subsystem: "availability",
			Name:      "search_latency_seconds",
			Help:      "Latency of upstream availability searches",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.resolutionsTotal, m.parsesTotal, m.droppedSlots, m.searchLatency)
	return m
}

func (m *ConciergeMetrics) ObserveResolution(kind, confidence string) {
	if m == nil {
		return
	}
	m.resolutionsTotal.WithLabelValues(kind, confidence).Inc()
}

func (m *ConciergeMetrics) ObserveParse(outcome string) {
	if m == nil {
		return
	}
	m.parsesTotal.WithLabelValues(outcome).Inc()
}

// ObserveDroppedSlots records slots silently dropped during aggregation. The
// drop itself is intentional; the counter keeps the data loss visible.
func (m *ConciergeMetrics) ObserveDroppedSlots(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.droppedSlots.Add(float64(n))
}

func (m *ConciergeMetrics) ObserveSearchLatency(status string, seconds float64) {
	if m == nil {
		return
	}
	m.searchLatency.WithLabelValues(status).Observe(seconds)
}
