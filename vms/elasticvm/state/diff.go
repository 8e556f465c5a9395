// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"github.com/holiman/uint256"

	"github.com/luxfi/elastic/vms/elasticvm/fee"
	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"
)

var _ Diff = (*diff)(nil)

// Diff stages modifications on top of a parent Chain. Nothing reaches the
// parent until Apply is called, so an abandoned Diff leaves no trace.
type Diff interface {
	Chain

	Apply(Chain)
}

type diff struct {
	parent Chain

	rates       *fee.Rates
	feeReceiver *ids.ShortID
	totalSupply *uint256.Int
	totalShares *uint256.Int
	threshold   *uint256.Int
	rebaseDelta *uint256.Int
	burnCycle   *uint256.Int
	totalBurn   *uint256.Int
	totalFees   *uint256.Int
	initialized bool

	modifiedShares     map[ids.ShortID]*uint256.Int
	modifiedAllowances map[allowanceKey]*uint256.Int
	modifiedCustomFees map[ids.ShortID]fee.CustomFee
	modifiedVenueFees  map[ids.ShortID]fee.VenueFee
	addedExcluded      set.Set[ids.ShortID]
	removedExcluded    set.Set[ids.ShortID]
}

// NewDiff returns an empty Diff over parent.
func NewDiff(parent Chain) Diff {
	return &diff{
		parent:             parent,
		modifiedShares:     make(map[ids.ShortID]*uint256.Int),
		modifiedAllowances: make(map[allowanceKey]*uint256.Int),
		modifiedCustomFees: make(map[ids.ShortID]fee.CustomFee),
		modifiedVenueFees:  make(map[ids.ShortID]fee.VenueFee),
		addedExcluded:      set.NewSet[ids.ShortID](0),
		removedExcluded:    set.NewSet[ids.ShortID](0),
	}
}

func (d *diff) GetCommonRates() fee.Rates {
	if d.rates != nil {
		return *d.rates
	}
	return d.parent.GetCommonRates()
}

func (d *diff) SetCommonRates(rates fee.Rates) {
	d.rates = &rates
}

func (d *diff) GetCustomFee(addr ids.ShortID) fee.CustomFee {
	if custom, ok := d.modifiedCustomFees[addr]; ok {
		return custom
	}
	return d.parent.GetCustomFee(addr)
}

func (d *diff) SetCustomFee(addr ids.ShortID, custom fee.CustomFee) {
	d.modifiedCustomFees[addr] = custom
}

func (d *diff) GetVenueFee(addr ids.ShortID) fee.VenueFee {
	if venue, ok := d.modifiedVenueFees[addr]; ok {
		return venue
	}
	return d.parent.GetVenueFee(addr)
}

func (d *diff) SetVenueFee(addr ids.ShortID, venue fee.VenueFee) {
	d.modifiedVenueFees[addr] = venue
}

func (d *diff) IsExcluded(addr ids.ShortID) bool {
	switch {
	case d.addedExcluded.Contains(addr):
		return true
	case d.removedExcluded.Contains(addr):
		return false
	default:
		return d.parent.IsExcluded(addr)
	}
}

func (d *diff) SetExcluded(addr ids.ShortID, excluded bool) {
	if excluded {
		d.addedExcluded.Add(addr)
		d.removedExcluded.Remove(addr)
	} else {
		d.removedExcluded.Add(addr)
		d.addedExcluded.Remove(addr)
	}
}

func (d *diff) GetFeeReceiver() ids.ShortID {
	if d.feeReceiver != nil {
		return *d.feeReceiver
	}
	return d.parent.GetFeeReceiver()
}

func (d *diff) SetFeeReceiver(addr ids.ShortID) {
	d.feeReceiver = &addr
}

func (d *diff) GetTotalSupply() *uint256.Int {
	if d.totalSupply != nil {
		return copyInt(d.totalSupply)
	}
	return d.parent.GetTotalSupply()
}

func (d *diff) SetTotalSupply(v *uint256.Int) {
	d.totalSupply = copyInt(v)
}

func (d *diff) GetTotalShares() *uint256.Int {
	if d.totalShares != nil {
		return copyInt(d.totalShares)
	}
	return d.parent.GetTotalShares()
}

func (d *diff) SetTotalShares(v *uint256.Int) {
	d.totalShares = copyInt(v)
}

func (d *diff) GetShares(addr ids.ShortID) *uint256.Int {
	if shares, ok := d.modifiedShares[addr]; ok {
		return copyInt(shares)
	}
	return d.parent.GetShares(addr)
}

func (d *diff) SetShares(addr ids.ShortID, shares *uint256.Int) {
	d.modifiedShares[addr] = copyInt(shares)
}

func (d *diff) GetAllowance(owner, spender ids.ShortID) *uint256.Int {
	if amount, ok := d.modifiedAllowances[allowanceKey{owner: owner, spender: spender}]; ok {
		return copyInt(amount)
	}
	return d.parent.GetAllowance(owner, spender)
}

func (d *diff) SetAllowance(owner, spender ids.ShortID, amount *uint256.Int) {
	d.modifiedAllowances[allowanceKey{owner: owner, spender: spender}] = copyInt(amount)
}

func (d *diff) GetBurnCycleThreshold() *uint256.Int {
	if d.threshold != nil {
		return copyInt(d.threshold)
	}
	return d.parent.GetBurnCycleThreshold()
}

func (d *diff) SetBurnCycleThreshold(v *uint256.Int) {
	d.threshold = copyInt(v)
}

func (d *diff) GetRebaseDelta() *uint256.Int {
	if d.rebaseDelta != nil {
		return copyInt(d.rebaseDelta)
	}
	return d.parent.GetRebaseDelta()
}

func (d *diff) SetRebaseDelta(v *uint256.Int) {
	d.rebaseDelta = copyInt(v)
}

func (d *diff) GetActualBurnCycle() *uint256.Int {
	if d.burnCycle != nil {
		return copyInt(d.burnCycle)
	}
	return d.parent.GetActualBurnCycle()
}

func (d *diff) SetActualBurnCycle(v *uint256.Int) {
	d.burnCycle = copyInt(v)
}

func (d *diff) GetTotalBurn() *uint256.Int {
	if d.totalBurn != nil {
		return copyInt(d.totalBurn)
	}
	return d.parent.GetTotalBurn()
}

func (d *diff) SetTotalBurn(v *uint256.Int) {
	d.totalBurn = copyInt(v)
}

func (d *diff) GetTotalFees() *uint256.Int {
	if d.totalFees != nil {
		return copyInt(d.totalFees)
	}
	return d.parent.GetTotalFees()
}

func (d *diff) SetTotalFees(v *uint256.Int) {
	d.totalFees = copyInt(v)
}

func (d *diff) IsInitialized() bool {
	return d.initialized || d.parent.IsInitialized()
}

func (d *diff) SetInitialized() {
	d.initialized = true
}

func (d *diff) Apply(c Chain) {
	if d.rates != nil {
		c.SetCommonRates(*d.rates)
	}
	if d.feeReceiver != nil {
		c.SetFeeReceiver(*d.feeReceiver)
	}
	if d.totalSupply != nil {
		c.SetTotalSupply(d.totalSupply)
	}
	if d.totalShares != nil {
		c.SetTotalShares(d.totalShares)
	}
	if d.threshold != nil {
		c.SetBurnCycleThreshold(d.threshold)
	}
	if d.rebaseDelta != nil {
		c.SetRebaseDelta(d.rebaseDelta)
	}
	if d.burnCycle != nil {
		c.SetActualBurnCycle(d.burnCycle)
	}
	if d.totalBurn != nil {
		c.SetTotalBurn(d.totalBurn)
	}
	if d.totalFees != nil {
		c.SetTotalFees(d.totalFees)
	}
	if d.initialized {
		c.SetInitialized()
	}
	for addr, shares := range d.modifiedShares {
		c.SetShares(addr, shares)
	}
	for key, amount := range d.modifiedAllowances {
		c.SetAllowance(key.owner, key.spender, amount)
	}
	for addr, custom := range d.modifiedCustomFees {
		c.SetCustomFee(addr, custom)
	}
	for addr, venue := range d.modifiedVenueFees {
		c.SetVenueFee(addr, venue)
	}
	for addr := range d.addedExcluded {
		c.SetExcluded(addr, true)
	}
	for addr := range d.removedExcluded {
		c.SetExcluded(addr, false)
	}
}
