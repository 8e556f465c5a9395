// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fee resolves which fee-on-transfer and burn rates apply to a
// transfer and splits a gross amount into its net, fee and burn legs.
package fee

import (
	"errors"
	"fmt"

	"github.com/luxfi/ids"
)

// MaxBps is 100% expressed in basis points.
const MaxBps = 10_000

var ErrInvalidBps = errors.New("basis points exceed 10000")

// Source identifies which tier of the fee configuration produced a Decision.
type Source uint8

const (
	Common Source = iota
	Excluded
	Custom
	VenueSell
	VenueBuy
)

func (s Source) String() string {
	switch s {
	case Common:
		return "common"
	case Excluded:
		return "excluded"
	case Custom:
		return "custom"
	case VenueSell:
		return "venueSell"
	case VenueBuy:
		return "venueBuy"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Rates is a pair of fee-on-transfer and burn rates in basis points.
type Rates struct {
	FotBps  uint16 `json:"fotBps"`
	BurnBps uint16 `json:"burnBps"`
}

// CustomFee is a per-sender override. An enabled override with zero rates
// suppresses fees for the sender.
type CustomFee struct {
	Enabled bool   `json:"enabled"`
	FotBps  uint16 `json:"fotBps"`
	BurnBps uint16 `json:"burnBps"`
}

// VenueFee is a per-venue override. BuyBps applies when the venue sends and
// SellBps when it receives.
type VenueFee struct {
	Enabled bool   `json:"enabled"`
	BuyBps  uint16 `json:"buyBps"`
	SellBps uint16 `json:"sellBps"`
	BurnBps uint16 `json:"burnBps"`
}

// Reader is the read-only view of the fee configuration.
type Reader interface {
	GetCommonRates() Rates
	GetCustomFee(addr ids.ShortID) CustomFee
	GetVenueFee(addr ids.ShortID) VenueFee
	IsExcluded(addr ids.ShortID) bool
}

// Decision is the outcome of Resolve.
type Decision struct {
	Source  Source `json:"source"`
	FotBps  uint16 `json:"fotBps"`
	BurnBps uint16 `json:"burnBps"`
}

// Resolve returns the rates that apply to a transfer from sender to
// recipient. Precedence, highest first: exclusion of either endpoint, the
// sender's custom fee, the recipient as a venue (sell), the sender as a venue
// (buy), the common rates.
func Resolve(r Reader, sender, recipient ids.ShortID) Decision {
	if r.IsExcluded(sender) || r.IsExcluded(recipient) {
		return Decision{Source: Excluded}
	}
	if custom := r.GetCustomFee(sender); custom.Enabled {
		return Decision{
			Source:  Custom,
			FotBps:  custom.FotBps,
			BurnBps: custom.BurnBps,
		}
	}
	if venue := r.GetVenueFee(recipient); venue.Enabled {
		return Decision{
			Source:  VenueSell,
			FotBps:  venue.SellBps,
			BurnBps: venue.BurnBps,
		}
	}
	if venue := r.GetVenueFee(sender); venue.Enabled {
		return Decision{
			Source:  VenueBuy,
			FotBps:  venue.BuyBps,
			BurnBps: venue.BurnBps,
		}
	}
	common := r.GetCommonRates()
	return Decision{
		Source:  Common,
		FotBps:  common.FotBps,
		BurnBps: common.BurnBps,
	}
}

// VerifyBps returns ErrInvalidBps if any rate is above MaxBps.
func VerifyBps(rates ...uint16) error {
	for _, bps := range rates {
		if bps > MaxBps {
			return fmt.Errorf("%w: %d", ErrInvalidBps, bps)
		}
	}
	return nil
}
