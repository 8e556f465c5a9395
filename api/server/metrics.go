// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"net/http"

	"github.com/jonboulle/clockwork"

	"github.com/luxfi/metric"
)

type serverMetrics struct {
	clock clockwork.Clock

	requests metric.CounterVec
	duration metric.GaugeVec
	inflight metric.GaugeVec
}

func newMetrics(registry metric.Registry, clock clockwork.Clock) *serverMetrics {
	metricsInstance := metric.NewWithRegistry("api", registry)
	return &serverMetrics{
		clock: clock,
		requests: metricsInstance.NewCounterVec(
			"requests",
			"number of HTTP requests",
			[]string{"method", "base"},
		),
		duration: metricsInstance.NewGaugeVec(
			"request_duration_sum",
			"time in nanoseconds spent handling HTTP requests",
			[]string{"method", "base"},
		),
		inflight: metricsInstance.NewGaugeVec(
			"requests_inflight",
			"number of HTTP requests being handled",
			[]string{"base"},
		),
	}
}

func (m *serverMetrics) wrapHandler(base string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inflight := m.inflight.WithLabelValues(base)
		inflight.Inc()
		defer inflight.Dec()

		start := m.clock.Now()
		handler.ServeHTTP(w, r)

		m.requests.WithLabelValues(r.Method, base).Inc()
		m.duration.WithLabelValues(r.Method, base).Add(float64(m.clock.Since(start)))
	})
}
