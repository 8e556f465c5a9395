// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package genesis describes the initial ledger state.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"

	"github.com/luxfi/elastic/vms/elasticvm/fee"

	utiljson "github.com/luxfi/elastic/utils/json"
)

var (
	ErrMissingOwner     = errors.New("missing owner")
	ErrMissingAddress   = errors.New("missing ledger address")
	ErrZeroSupply       = errors.New("initial supply must be positive")
	ErrDuplicateConfig  = errors.New("address configured twice")
	ErrInvalidMigration = errors.New("invalid migration")
)

// Venue is a trading pool with direction-sensitive rates.
type Venue struct {
	Address ids.ShortID     `json:"address"`
	BuyBps  utiljson.Uint16 `json:"buyBps"`
	SellBps utiljson.Uint16 `json:"sellBps"`
	BurnBps utiljson.Uint16 `json:"burnBps"`
}

// CustomFee overrides the rates paid by one sender.
type CustomFee struct {
	Address ids.ShortID     `json:"address"`
	FotBps  utiljson.Uint16 `json:"fotBps"`
	BurnBps utiljson.Uint16 `json:"burnBps"`
}

// Migration seeds a legacy token, held by the owner, and a swap that
// exchanges it for the ledger's token.
type Migration struct {
	Swap         ids.ShortID     `json:"swap"`
	LegacyToken  ids.ShortID     `json:"legacyToken"`
	LegacySupply utiljson.Amount `json:"legacySupply"`
}

type Genesis struct {
	// Owner receives the initial supply and administers the ledger
	Owner ids.ShortID `json:"owner"`
	// Address is the ledger's own account, used for token recovery
	Address ids.ShortID `json:"address"`

	InitialSupply utiljson.Amount `json:"initialSupply"`
	FeeReceiver   ids.ShortID     `json:"feeReceiver"`
	CommonFotBps  utiljson.Uint16 `json:"commonFotBps"`
	CommonBurnBps utiljson.Uint16 `json:"commonBurnBps"`
	BurnCycle     utiljson.Amount `json:"burnCycle"`
	RebaseDelta   utiljson.Amount `json:"rebaseDelta"`

	Venues     []Venue       `json:"venues"`
	CustomFees []CustomFee   `json:"customFees"`
	Excluded   []ids.ShortID `json:"excluded"`

	// Distributor, if set, is the account the fee distributor pays out from
	Distributor ids.ShortID `json:"distributor"`
	Migration   *Migration  `json:"migration,omitempty"`
}

// Parse decodes and verifies genesis bytes.
func Parse(genesisBytes []byte) (*Genesis, error) {
	g := &Genesis{}
	if err := json.Unmarshal(genesisBytes, g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal genesis: %w", err)
	}
	return g, g.Verify()
}

func (g *Genesis) Bytes() ([]byte, error) {
	return json.MarshalIndent(g, "", "\t")
}

func (g *Genesis) Verify() error {
	switch {
	case g.Owner == ids.ShortEmpty:
		return ErrMissingOwner
	case g.Address == ids.ShortEmpty:
		return ErrMissingAddress
	case g.InitialSupply.IsZero():
		return ErrZeroSupply
	}

	if err := fee.VerifyBps(uint16(g.CommonFotBps), uint16(g.CommonBurnBps)); err != nil {
		return fmt.Errorf("common rates: %w", err)
	}

	venues := set.NewSet[ids.ShortID](len(g.Venues))
	for _, v := range g.Venues {
		if venues.Contains(v.Address) {
			return fmt.Errorf("%w: venue %s", ErrDuplicateConfig, v.Address)
		}
		venues.Add(v.Address)
		if err := fee.VerifyBps(uint16(v.BuyBps), uint16(v.SellBps), uint16(v.BurnBps)); err != nil {
			return fmt.Errorf("venue %s: %w", v.Address, err)
		}
	}

	custom := set.NewSet[ids.ShortID](len(g.CustomFees))
	for _, c := range g.CustomFees {
		if custom.Contains(c.Address) {
			return fmt.Errorf("%w: custom fee %s", ErrDuplicateConfig, c.Address)
		}
		custom.Add(c.Address)
		if err := fee.VerifyBps(uint16(c.FotBps), uint16(c.BurnBps)); err != nil {
			return fmt.Errorf("custom fee %s: %w", c.Address, err)
		}
	}

	if m := g.Migration; m != nil {
		switch {
		case m.Swap == ids.ShortEmpty || m.LegacyToken == ids.ShortEmpty:
			return fmt.Errorf("%w: missing address", ErrInvalidMigration)
		case m.LegacyToken == g.Address:
			return fmt.Errorf("%w: legacy token is the ledger", ErrInvalidMigration)
		case m.LegacySupply.IsZero():
			return fmt.Errorf("%w: zero legacy supply", ErrInvalidMigration)
		}
	}
	return nil
}
