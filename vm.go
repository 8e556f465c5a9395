// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package elastic

import (
	"context"

	"github.com/luxfi/database"
)

// VM is a ledger virtual machine hosted by elasticd.
type VM interface {
	HandlerProvider
	HealthChecker

	// Initialize opens the VM over db. genesisBytes describe the initial
	// state and configBytes, if not empty, override the factory config.
	Initialize(ctx context.Context, db database.Database, genesisBytes []byte, configBytes []byte) error

	// Shutdown releases the VM's database.
	Shutdown(context.Context) error

	// Version returns the VM version.
	Version(context.Context) (string, error)
}
