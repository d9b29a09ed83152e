// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package octree

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects loader statistics.
type Metrics struct {
	loads    *prometheus.CounterVec
	inFlight prometheus.Gauge
	bytes    prometheus.Histogram
	duration *prometheus.HistogramVec
}

// NewMetrics creates loader metrics registered with reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		loads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pcview",
			Subsystem: "octree",
			Name:      "loads_total",
			Help:      "Node loads by terminal result.",
		}, []string{"result"}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "pcview",
			Subsystem: "octree",
			Name:      "loads_in_flight",
			Help:      "Node loads currently owned by the worker.",
		}),
		bytes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pcview",
			Subsystem: "octree",
			Name:      "payload_bytes",
			Help:      "Raw size of fetched node payloads.",
			Buckets:   prometheus.ExponentialBuckets(1<<10, 4, 8),
		}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pcview",
			Subsystem: "octree",
			Name:      "load_duration_seconds",
			Help:      "Time from worker receipt to terminal response.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
	}
}

func (m *Metrics) started() {
	if m != nil {
		m.inFlight.Inc()
	}
}

func (m *Metrics) finished(kind ResponseKind, seconds float64) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	m.loads.WithLabelValues(kind.String()).Inc()
	m.duration.WithLabelValues(kind.String()).Observe(seconds)
}

func (m *Metrics) fetched(n int) {
	if m != nil {
		m.bytes.Observe(float64(n))
	}
}
