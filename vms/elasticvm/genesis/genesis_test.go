// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"

	"github.com/luxfi/elastic/vms/elasticvm/fee"

	utiljson "github.com/luxfi/elastic/utils/json"
)

func validGenesis() *Genesis {
	return &Genesis{
		Owner:         ids.GenerateTestShortID(),
		Address:       ids.GenerateTestShortID(),
		InitialSupply: utiljson.NewAmount(uint256.NewInt(12_000_000)),
		FeeReceiver:   ids.GenerateTestShortID(),
		CommonFotBps:  200,
		CommonBurnBps: 300,
		BurnCycle:     utiljson.NewAmount(uint256.NewInt(5_000)),
		RebaseDelta:   utiljson.NewAmount(uint256.NewInt(4_000)),
		Venues: []Venue{{
			Address: ids.GenerateTestShortID(),
			BuyBps:  100,
			SellBps: 400,
			BurnBps: 50,
		}},
		CustomFees: []CustomFee{{
			Address: ids.GenerateTestShortID(),
			FotBps:  10,
		}},
		Excluded:    []ids.ShortID{ids.GenerateTestShortID()},
		Distributor: ids.GenerateTestShortID(),
		Migration: &Migration{
			Swap:         ids.GenerateTestShortID(),
			LegacyToken:  ids.GenerateTestShortID(),
			LegacySupply: utiljson.NewAmount(uint256.NewInt(1_000)),
		},
	}
}

func TestGenesisRoundTrip(t *testing.T) {
	require := require.New(t)

	g := validGenesis()
	genesisBytes, err := g.Bytes()
	require.NoError(err)

	parsed, err := Parse(genesisBytes)
	require.NoError(err)
	require.Equal(g, parsed)
}

func TestGenesisVerify(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*Genesis)
		expectedErr error
	}{
		{
			name:   "valid",
			modify: func(*Genesis) {},
		},
		{
			name: "missing owner",
			modify: func(g *Genesis) {
				g.Owner = ids.ShortEmpty
			},
			expectedErr: ErrMissingOwner,
		},
		{
			name: "missing address",
			modify: func(g *Genesis) {
				g.Address = ids.ShortEmpty
			},
			expectedErr: ErrMissingAddress,
		},
		{
			name: "zero supply",
			modify: func(g *Genesis) {
				g.InitialSupply = utiljson.Amount{}
			},
			expectedErr: ErrZeroSupply,
		},
		{
			name: "common rate above 100%",
			modify: func(g *Genesis) {
				g.CommonBurnBps = fee.MaxBps + 1
			},
			expectedErr: fee.ErrInvalidBps,
		},
		{
			name: "venue rate above 100%",
			modify: func(g *Genesis) {
				g.Venues[0].SellBps = fee.MaxBps + 1
			},
			expectedErr: fee.ErrInvalidBps,
		},
		{
			name: "duplicate venue",
			modify: func(g *Genesis) {
				g.Venues = append(g.Venues, g.Venues[0])
			},
			expectedErr: ErrDuplicateConfig,
		},
		{
			name: "duplicate custom fee",
			modify: func(g *Genesis) {
				g.CustomFees = append(g.CustomFees, g.CustomFees[0])
			},
			expectedErr: ErrDuplicateConfig,
		},
		{
			name: "no migration",
			modify: func(g *Genesis) {
				g.Migration = nil
			},
		},
		{
			name: "migration without swap",
			modify: func(g *Genesis) {
				g.Migration.Swap = ids.ShortEmpty
			},
			expectedErr: ErrInvalidMigration,
		},
		{
			name: "migration from the ledger itself",
			modify: func(g *Genesis) {
				g.Migration.LegacyToken = g.Address
			},
			expectedErr: ErrInvalidMigration,
		},
		{
			name: "migration without legacy supply",
			modify: func(g *Genesis) {
				g.Migration.LegacySupply = utiljson.Amount{}
			},
			expectedErr: ErrInvalidMigration,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := validGenesis()
			test.modify(g)
			require.ErrorIs(t, g.Verify(), test.expectedErr)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte(`{"initialSupply":"not a number"}`))
	require.Error(t, err)
}
