// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"github.com/holiman/uint256"

	"github.com/luxfi/elastic/vms/elasticvm/fee"
	"github.com/luxfi/ids"
)

// Chain is the read/write view of the ledger shared by the committed State
// and staged Diffs. Getters return copies; setters copy their argument.
type Chain interface {
	fee.Reader

	SetCommonRates(fee.Rates)
	SetCustomFee(addr ids.ShortID, custom fee.CustomFee)
	SetVenueFee(addr ids.ShortID, venue fee.VenueFee)
	SetExcluded(addr ids.ShortID, excluded bool)

	GetFeeReceiver() ids.ShortID
	SetFeeReceiver(ids.ShortID)

	GetTotalSupply() *uint256.Int
	SetTotalSupply(*uint256.Int)
	GetTotalShares() *uint256.Int
	SetTotalShares(*uint256.Int)

	GetShares(addr ids.ShortID) *uint256.Int
	SetShares(addr ids.ShortID, shares *uint256.Int)

	GetAllowance(owner, spender ids.ShortID) *uint256.Int
	SetAllowance(owner, spender ids.ShortID, amount *uint256.Int)

	GetBurnCycleThreshold() *uint256.Int
	SetBurnCycleThreshold(*uint256.Int)
	GetRebaseDelta() *uint256.Int
	SetRebaseDelta(*uint256.Int)
	GetActualBurnCycle() *uint256.Int
	SetActualBurnCycle(*uint256.Int)

	GetTotalBurn() *uint256.Int
	SetTotalBurn(*uint256.Int)
	GetTotalFees() *uint256.Int
	SetTotalFees(*uint256.Int)

	IsInitialized() bool
	SetInitialized()
}

type allowanceKey struct {
	owner   ids.ShortID
	spender ids.ShortID
}

func copyInt(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(v)
}
