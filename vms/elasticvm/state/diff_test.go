// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/elastic/vms/elasticvm/fee"
	"github.com/luxfi/ids"
)

func TestDiffReadsThrough(t *testing.T) {
	require := require.New(t)

	s, err := New(memdb.New())
	require.NoError(err)

	addr := ids.GenerateTestShortID()
	s.SetShares(addr, uint256.NewInt(7))
	s.SetTotalSupply(uint256.NewInt(100))
	s.SetExcluded(addr, true)

	d := NewDiff(s)
	require.Equal(uint256.NewInt(7), d.GetShares(addr))
	require.Equal(uint256.NewInt(100), d.GetTotalSupply())
	require.True(d.IsExcluded(addr))
}

func TestDiffIsolation(t *testing.T) {
	require := require.New(t)

	s, err := New(memdb.New())
	require.NoError(err)

	var (
		alice = ids.GenerateTestShortID()
		bob   = ids.GenerateTestShortID()
	)
	s.SetShares(alice, uint256.NewInt(10))
	s.SetExcluded(bob, true)

	d := NewDiff(s)
	d.SetShares(alice, uint256.NewInt(3))
	d.SetShares(bob, uint256.NewInt(7))
	d.SetExcluded(bob, false)
	d.SetExcluded(alice, true)
	d.SetTotalSupply(uint256.NewInt(42))
	d.SetCommonRates(fee.Rates{FotBps: 1})
	d.SetInitialized()

	require.Equal(uint256.NewInt(3), d.GetShares(alice))
	require.False(d.IsExcluded(bob))
	require.True(d.IsExcluded(alice))
	require.True(d.IsInitialized())

	// The parent is untouched until Apply.
	require.Equal(uint256.NewInt(10), s.GetShares(alice))
	require.True(s.GetShares(bob).IsZero())
	require.True(s.IsExcluded(bob))
	require.False(s.IsExcluded(alice))
	require.True(s.GetTotalSupply().IsZero())
	require.False(s.IsInitialized())

	d.Apply(s)
	require.Equal(uint256.NewInt(3), s.GetShares(alice))
	require.Equal(uint256.NewInt(7), s.GetShares(bob))
	require.False(s.IsExcluded(bob))
	require.True(s.IsExcluded(alice))
	require.Equal(uint256.NewInt(42), s.GetTotalSupply())
	require.Equal(fee.Rates{FotBps: 1}, s.GetCommonRates())
	require.True(s.IsInitialized())
	require.Equal(2, s.NumHolders())
}

func TestDiffOnDiff(t *testing.T) {
	require := require.New(t)

	s, err := New(memdb.New())
	require.NoError(err)

	owner := ids.GenerateTestShortID()
	spender := ids.GenerateTestShortID()

	outer := NewDiff(s)
	outer.SetAllowance(owner, spender, uint256.NewInt(5))

	inner := NewDiff(outer)
	require.Equal(uint256.NewInt(5), inner.GetAllowance(owner, spender))
	inner.SetAllowance(owner, spender, uint256.NewInt(2))
	inner.Apply(outer)
	outer.Apply(s)

	require.Equal(uint256.NewInt(2), s.GetAllowance(owner, spender))
}
