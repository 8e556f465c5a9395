// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package elastic defines the interfaces shared by the elastic VM and the
// processes that host it.
package elastic

import (
	"context"
	"net/http"

	"github.com/luxfi/log"
)

// Factory creates new VM instances.
type Factory interface {
	// New creates a new VM instance with the given logger.
	New(log.Logger) (interface{}, error)
}

// HandlerProvider is implemented by VMs that serve an HTTP API. Handlers are
// keyed by the path extension below the VM's base route.
type HandlerProvider interface {
	CreateHandlers(context.Context) (map[string]http.Handler, error)
}

// HealthChecker is implemented by VMs that report their health.
type HealthChecker interface {
	HealthCheck(context.Context) (interface{}, error)
}
