// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/luxfi/elastic/vms/elasticvm/config"
	"github.com/luxfi/elastic/vms/elasticvm/fee"
)

var (
	_ Rules = currentRules{}
	_ Rules = legacyRules{}
)

// Rules is the swappable transfer logic. Every implementation runs over the
// same persisted state, so switching implementations between restarts keeps
// all balances and configuration.
type Rules interface {
	Name() string
	// CycleVolume returns how much of a transfer counts towards the burn
	// cycle.
	CycleVolume(fee.Split) *uint256.Int
}

// LookupRules returns the implementation registered under name.
func LookupRules(name string) (Rules, error) {
	switch name {
	case config.ImplementationV2:
		return currentRules{}, nil
	case config.ImplementationV1:
		return legacyRules{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRules, name)
	}
}

type currentRules struct{}

func (currentRules) Name() string {
	return config.ImplementationV2
}

func (currentRules) CycleVolume(s fee.Split) *uint256.Int {
	return new(uint256.Int).Set(s.Burn)
}

type legacyRules struct{}

func (legacyRules) Name() string {
	return config.ImplementationV1
}

func (legacyRules) CycleVolume(s fee.Split) *uint256.Int {
	// fee+burn is bounded by the gross amount.
	return new(uint256.Int).Add(s.Fee, s.Burn)
}
