// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/metric"
)

// gatherValue sums the counter or gauge samples of the named family.
func gatherValue(t *testing.T, registry metric.Registry, name string) (float64, bool) {
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		var sum float64
		for _, m := range family.GetMetric() {
			sum += m.GetCounter().GetValue() + m.GetGauge().GetValue()
		}
		return sum, true
	}
	return 0, false
}

func TestMetricsWrapHandler(t *testing.T) {
	require := require.New(t)

	registry := metric.NewRegistry()
	clock := clockwork.NewFakeClock()
	m := newMetrics(registry, clock)

	handler := m.wrapHandler("elastic", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		clock.Advance(time.Second)
		w.WriteHeader(http.StatusTeapot)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		require.Equal(http.StatusTeapot, rec.Code)
	}

	requests, ok := gatherValue(t, registry, "api_requests")
	require.True(ok)
	require.Equal(2.0, requests)

	duration, ok := gatherValue(t, registry, "api_request_duration_sum")
	require.True(ok)
	require.Equal(float64(2*time.Second), duration)

	inflight, ok := gatherValue(t, registry, "api_requests_inflight")
	require.True(ok)
	require.Zero(inflight)
}
