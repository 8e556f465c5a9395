// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package health runs the registered health checks and reports their results
// over HTTP.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/luxfi/log"
	"github.com/luxfi/metric"
)

const (
	// AllTag is implicitly attached to every check.
	AllTag = "all"
	// ApplicationTag marks checks of the hosted ledger.
	ApplicationTag = "application"
)

var ErrDuplicateCheck = errors.New("duplicated check")

type Checker interface {
	HealthCheck(context.Context) (interface{}, error)
}

type CheckerFunc func(context.Context) (interface{}, error)

func (f CheckerFunc) HealthCheck(ctx context.Context) (interface{}, error) {
	return f(ctx)
}

// Result is the outcome of a single check.
type Result struct {
	Details   interface{}   `json:"details,omitempty"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// Reply is served by Handler.
type Reply struct {
	Checks  map[string]Result `json:"checks"`
	Healthy bool              `json:"healthy"`
}

type check struct {
	checker Checker
	tags    []string
}

type Health struct {
	log     log.Logger
	clock   clockwork.Clock
	metrics *healthMetrics

	lock   sync.RWMutex
	checks map[string]check
}

func New(logger log.Logger, registry metric.Registry, clock clockwork.Clock) *Health {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Health{
		log:     logger,
		clock:   clock,
		metrics: newMetrics("health", registry),
		checks:  make(map[string]check),
	}
}

// RegisterCheck adds a check reported under name. Every check carries
// AllTag in addition to tags.
func (h *Health) RegisterCheck(name string, checker Checker, tags ...string) error {
	h.lock.Lock()
	defer h.lock.Unlock()

	if _, ok := h.checks[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateCheck, name)
	}
	if !slices.Contains(tags, AllTag) {
		tags = append(tags, AllTag)
	}
	h.checks[name] = check{
		checker: checker,
		tags:    tags,
	}
	return nil
}

// Check runs every check carrying one of tags, or every check when no tag
// is given.
func (h *Health) Check(ctx context.Context, tags ...string) Reply {
	h.lock.RLock()
	defer h.lock.RUnlock()

	if len(tags) == 0 {
		tags = []string{AllTag}
	}

	reply := Reply{
		Checks:  make(map[string]Result),
		Healthy: true,
	}
	failing := make(map[string]int)
	for name, c := range h.checks {
		if !hasAny(c.tags, tags) {
			continue
		}

		start := h.clock.Now()
		details, err := c.checker.HealthCheck(ctx)
		result := Result{
			Details:   details,
			Timestamp: start,
			Duration:  h.clock.Since(start),
		}
		if err != nil {
			result.Error = err.Error()
			reply.Healthy = false
			for _, tag := range c.tags {
				failing[tag]++
			}
			h.log.Warn("health check failed",
				log.String("check", name),
				log.Err(err),
			)
		}
		reply.Checks[name] = result
	}

	for _, tag := range tags {
		h.metrics.failingChecks.WithLabelValues(tag).Set(float64(failing[tag]))
	}
	return reply
}

// Handler serves the result of the checks selected by the tag query
// parameters. Unhealthy replies use status 503.
func (h *Health) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reply := h.Check(r.Context(), r.URL.Query()["tag"]...)

		w.Header().Set("Content-Type", "application/json")
		if !reply.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(reply)
	})
}

func hasAny(tags []string, wanted []string) bool {
	for _, tag := range wanted {
		if slices.Contains(tags, tag) {
			return true
		}
	}
	return false
}
