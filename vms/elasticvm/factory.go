// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package elasticvm

import (
	"github.com/jonboulle/clockwork"

	"github.com/luxfi/log"

	"github.com/luxfi/elastic"
	"github.com/luxfi/elastic/vms/elasticvm/config"
)

var (
	_ elastic.Factory = (*Factory)(nil)
	_ elastic.VM      = (*VM)(nil)
)

// Factory builds VMs sharing a default config. Clock defaults to the real
// clock.
type Factory struct {
	Config config.Config
	Clock  clockwork.Clock
}

// New implements elastic.Factory
func (f *Factory) New(logger log.Logger) (interface{}, error) {
	return New(logger, f.Config, f.Clock), nil
}
