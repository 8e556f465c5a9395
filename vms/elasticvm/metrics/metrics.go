// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/luxfi/metric"

	"github.com/luxfi/elastic/utils/wrappers"
	"github.com/luxfi/elastic/vms/elasticvm/fee"

	utilmetric "github.com/luxfi/elastic/utils/metric"
)

const (
	sourceLabel = "source"
	opLabel     = "op"
)

var (
	_ Metrics = (*metricsImpl)(nil)

	errNotRegistry = errors.New("registerer must be a Registry")
)

type Metrics interface {
	utilmetric.APIInterceptor

	// Mark that a transfer was committed under the given fee source.
	MarkTransfer(fee.Source)
	// Mark that the named operation was rejected.
	MarkFailed(op string)
	// Mark that a rebase expanded the supply.
	MarkRebase()
	// Mark that the fee receiver burned from its own balance.
	MarkAdminBurn()

	// Record the committed total supply.
	SetTotalSupply(*uint256.Int)
	// Record the committed burn cycle.
	SetBurnCycle(*uint256.Int)
}

func New(registerer metric.Registerer) (Metrics, error) {
	m := &metricsImpl{
		transfers: metric.NewCounterVec(
			metric.CounterOpts{
				Name: "transfers",
				Help: "Number of committed transfers by fee source",
			},
			[]string{sourceLabel},
		),
		failures: metric.NewCounterVec(
			metric.CounterOpts{
				Name: "failed_ops",
				Help: "Number of rejected ledger operations",
			},
			[]string{opLabel},
		),
		rebases: metric.NewCounter(metric.CounterOpts{
			Name: "rebases",
			Help: "Number of supply expansions",
		}),
		adminBurns: metric.NewCounter(metric.CounterOpts{
			Name: "admin_burns",
			Help: "Number of burns performed by the fee receiver",
		}),
		totalSupply: metric.NewGauge(metric.GaugeOpts{
			Name: "total_supply",
			Help: "Committed total supply in base units",
		}),
		burnCycle: metric.NewGauge(metric.GaugeOpts{
			Name: "burn_cycle",
			Help: "Volume burned since the last rebase in base units",
		}),
	}

	registry, ok := registerer.(metric.Registry)
	if !ok {
		return nil, errNotRegistry
	}
	apiRequestMetrics, err := utilmetric.NewAPIInterceptor(registry)
	errs := wrappers.Errs{Err: err}
	m.APIInterceptor = apiRequestMetrics

	errs.Add(
		registerer.Register(metric.AsCollector(m.transfers)),
		registerer.Register(metric.AsCollector(m.failures)),
		registerer.Register(metric.AsCollector(m.rebases)),
		registerer.Register(metric.AsCollector(m.adminBurns)),
		registerer.Register(metric.AsCollector(m.totalSupply)),
		registerer.Register(metric.AsCollector(m.burnCycle)),
	)
	return m, errs.Err
}

type metricsImpl struct {
	utilmetric.APIInterceptor

	transfers  metric.CounterVec
	failures   metric.CounterVec
	rebases    metric.Counter
	adminBurns metric.Counter

	totalSupply metric.Gauge
	burnCycle   metric.Gauge
}

func (m *metricsImpl) MarkTransfer(source fee.Source) {
	m.transfers.With(metric.Labels{
		sourceLabel: source.String(),
	}).Inc()
}

func (m *metricsImpl) MarkFailed(op string) {
	m.failures.With(metric.Labels{
		opLabel: op,
	}).Inc()
}

func (m *metricsImpl) MarkRebase() {
	m.rebases.Inc()
}

func (m *metricsImpl) MarkAdminBurn() {
	m.adminBurns.Inc()
}

func (m *metricsImpl) SetTotalSupply(v *uint256.Int) {
	m.totalSupply.Set(toFloat(v))
}

func (m *metricsImpl) SetBurnCycle(v *uint256.Int) {
	m.burnCycle.Set(toFloat(v))
}

// toFloat loses precision above 2^53.
func toFloat(v *uint256.Int) float64 {
	f, _ := new(big.Float).SetInt(v.ToBig()).Float64()
	return f
}
