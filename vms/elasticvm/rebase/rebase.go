// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rebase accumulates burned volume and expands the supply by a fixed
// delta whenever the accumulated volume reaches the configured threshold.
package rebase

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/luxfi/elastic/vms/elasticvm/shares"
	"github.com/luxfi/elastic/vms/elasticvm/state"

	safemath "github.com/luxfi/elastic/utils/math"
)

// Tracker is the burn cycle: the volume burned since the last rebase.
type Tracker struct {
	chain state.Chain
}

func NewTracker(chain state.Chain) *Tracker {
	return &Tracker{chain: chain}
}

// RecordBurn adds amount to the cycle and reports whether the cycle has
// reached a non-zero threshold.
func (t *Tracker) RecordBurn(amount *uint256.Int) (bool, error) {
	cycle, err := safemath.Add256(t.chain.GetActualBurnCycle(), amount)
	if err != nil {
		return false, fmt.Errorf("burn cycle: %w", err)
	}
	t.chain.SetActualBurnCycle(cycle)

	threshold := t.chain.GetBurnCycleThreshold()
	return !threshold.IsZero() && !cycle.Lt(threshold), nil
}

// ResetAfterRebase starts a new cycle at zero. Volume beyond the threshold is
// discarded.
func (t *Tracker) ResetAfterRebase() {
	t.chain.SetActualBurnCycle(new(uint256.Int))
}

// Result describes what MaybeRebase did.
type Result struct {
	Triggered bool
	Delta     *uint256.Int
	Supply    *uint256.Int
}

// Engine mints the rebase delta when the tracker signals.
type Engine struct {
	chain   state.Chain
	tracker *Tracker
	ledger  *shares.Ledger
}

func NewEngine(chain state.Chain) *Engine {
	return &Engine{
		chain:   chain,
		tracker: NewTracker(chain),
		ledger:  shares.New(chain),
	}
}

// MaybeRebase records burned volume and, if the cycle is complete, mints the
// configured delta and resets the cycle. Minting does not feed the cycle, so
// at most one rebase happens per call.
func (e *Engine) MaybeRebase(burned *uint256.Int) (Result, error) {
	triggered, err := e.tracker.RecordBurn(burned)
	if err != nil || !triggered {
		return Result{}, err
	}

	delta := e.chain.GetRebaseDelta()
	if err := e.ledger.Mint(delta); err != nil {
		return Result{}, fmt.Errorf("rebase: %w", err)
	}
	e.tracker.ResetAfterRebase()
	return Result{
		Triggered: true,
		Delta:     delta,
		Supply:    e.chain.GetTotalSupply(),
	}, nil
}
