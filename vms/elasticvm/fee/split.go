// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fee

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	safemath "github.com/luxfi/elastic/utils/math"
)

var ErrFeeConfigInvalid = errors.New("fee and burn exceed transfer amount")

// Split is a gross transfer amount divided into its legs. Net + Fee + Burn
// equals the gross amount.
type Split struct {
	Net  *uint256.Int
	Fee  *uint256.Int
	Burn *uint256.Int
}

// NewSplit applies d to amount. Each leg truncates independently, so any
// rounding remainder stays in Net.
func NewSplit(amount *uint256.Int, d Decision) (Split, error) {
	feeAmt, err := safemath.Bps(amount, d.FotBps)
	if err != nil {
		return Split{}, fmt.Errorf("%w: fot %d bps", ErrFeeConfigInvalid, d.FotBps)
	}
	burnAmt, err := safemath.Bps(amount, d.BurnBps)
	if err != nil {
		return Split{}, fmt.Errorf("%w: burn %d bps", ErrFeeConfigInvalid, d.BurnBps)
	}
	deducted, err := safemath.Add256(feeAmt, burnAmt)
	if err != nil {
		return Split{}, fmt.Errorf("%w: %w", ErrFeeConfigInvalid, err)
	}
	net, err := safemath.Sub256(amount, deducted)
	if err != nil {
		return Split{}, fmt.Errorf("%w: %d+%d bps on %s",
			ErrFeeConfigInvalid, d.FotBps, d.BurnBps, amount.Dec())
	}
	return Split{
		Net:  net,
		Fee:  feeAmt,
		Burn: burnAmt,
	}, nil
}
