// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package distributor

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/elastic/vms/elasticvm/owner"
	"github.com/luxfi/elastic/vms/elasticvm/token"
)

var errBurnRefused = errors.New("burn refused")

// plainToken hides the Burner implementation of the wrapped token.
type plainToken struct {
	token.Token
}

// refusingToken is a Burner whose burns always fail.
type refusingToken struct {
	token.Token
}

func (refusingToken) Burn(ids.ShortID, *uint256.Int) error {
	return errBurnRefused
}

type fixture struct {
	db          database.Database
	owner       ids.ShortID
	address     ids.ShortID
	tokenAddr   ids.ShortID
	tok         *token.Basic
	tokens      *token.Registry
	distributor *Distributor
}

func newFixture(t *testing.T) *fixture {
	require := require.New(t)

	f := &fixture{
		db:        memdb.New(),
		owner:     ids.GenerateTestShortID(),
		address:   ids.GenerateTestShortID(),
		tokenAddr: ids.GenerateTestShortID(),
		tokens:    token.NewRegistry(),
	}
	f.tok = token.NewBasic(f.owner, uint256.NewInt(1_000_000))
	require.NoError(f.tokens.Register(f.tokenAddr, f.tok))

	auth, err := owner.New(log.NewNoOpLogger(), memdb.New(), f.owner)
	require.NoError(err)
	f.distributor, err = New(log.NewNoOpLogger(), f.db, auth, f.tokens, f.address)
	require.NoError(err)
	return f
}

func TestSeed(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	require.False(f.distributor.Initialized())
	require.Equal(Recipients{}, f.distributor.Recipients())
	require.Equal(ids.ShortEmpty, f.distributor.Token())

	first := Recipients{
		Token:            f.tokenAddr,
		LiquidVault:      ids.GenerateTestShortID(),
		Secondary:        ids.GenerateTestShortID(),
		LiquidVaultShare: 60,
		BurnPercentage:   10,
	}
	require.ErrorIs(f.distributor.Seed(ids.GenerateTestShortID(), first), owner.ErrUnauthorized)
	require.False(f.distributor.Initialized())

	require.NoError(f.distributor.Seed(f.owner, first))
	require.True(f.distributor.Initialized())
	require.Equal(first, f.distributor.Recipients())
	require.Equal(f.tokenAddr, f.distributor.Token())

	// Seeding may be repeated.
	second := Recipients{
		Token:            ids.GenerateTestShortID(),
		LiquidVault:      ids.GenerateTestShortID(),
		Secondary:        ids.GenerateTestShortID(),
		LiquidVaultShare: 70,
		BurnPercentage:   5,
	}
	require.NoError(f.distributor.Seed(f.owner, second))
	require.Equal(second, f.distributor.Recipients())

	invalid := second
	invalid.BurnPercentage = 31
	require.ErrorIs(f.distributor.Seed(f.owner, invalid), ErrInvalidPercentage)
	require.Equal(second, f.distributor.Recipients())

	noVault := second
	noVault.LiquidVault = ids.ShortEmpty
	require.ErrorIs(f.distributor.Seed(f.owner, noVault), ErrEmptyRecipient)

	noSecondary := second
	noSecondary.Secondary = ids.ShortEmpty
	require.ErrorIs(f.distributor.Seed(f.owner, noSecondary), ErrEmptyRecipient)

	// Without a remainder the secondary recipient is never paid.
	noSecondary.LiquidVaultShare = 95
	require.NoError(f.distributor.Seed(f.owner, noSecondary))
	require.NoError(f.distributor.Seed(f.owner, second))

	// The configuration survives a reload.
	auth, err := owner.New(log.NewNoOpLogger(), memdb.New(), f.owner)
	require.NoError(err)
	reloaded, err := New(log.NewNoOpLogger(), f.db, auth, f.tokens, f.address)
	require.NoError(err)
	require.True(reloaded.Initialized())
	require.Equal(second, reloaded.Recipients())
}

func TestDistributeFees(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	_, err := f.distributor.DistributeFees()
	require.ErrorIs(err, ErrNotSeeded)

	r := Recipients{
		Token:            f.tokenAddr,
		LiquidVault:      ids.GenerateTestShortID(),
		Secondary:        ids.GenerateTestShortID(),
		LiquidVaultShare: 60,
		BurnPercentage:   10,
	}
	require.NoError(f.distributor.Seed(f.owner, r))

	// Nothing collected yet.
	payout, err := f.distributor.DistributeFees()
	require.NoError(err)
	require.True(payout.Vault.IsZero())
	require.True(payout.Secondary.IsZero())

	require.NoError(f.tok.Transfer(f.owner, f.address, uint256.NewInt(10_001)))
	payout, err = f.distributor.DistributeFees()
	require.NoError(err)

	require.Equal(uint256.NewInt(6_000), payout.Vault)
	require.Equal(uint256.NewInt(1_000), payout.Burned)
	require.Equal(uint256.NewInt(3_001), payout.Secondary)
	require.Equal(uint256.NewInt(6_000), f.tok.BalanceOf(r.LiquidVault))
	require.Equal(uint256.NewInt(3_001), f.tok.BalanceOf(r.Secondary))
	require.True(f.tok.BalanceOf(f.address).IsZero())
	require.Equal(uint256.NewInt(1_000_000-1_000), f.tok.TotalSupply())
}

func TestDistributeFeesRequiresBurner(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	plainAddr := ids.GenerateTestShortID()
	require.NoError(f.tokens.Register(plainAddr, plainToken{Token: f.tok}))
	require.NoError(f.tok.Transfer(f.owner, f.address, uint256.NewInt(100)))

	require.NoError(f.distributor.Seed(f.owner, Recipients{
		Token:            plainAddr,
		LiquidVault:      ids.GenerateTestShortID(),
		Secondary:        ids.GenerateTestShortID(),
		LiquidVaultShare: 50,
		BurnPercentage:   10,
	}))
	_, err := f.distributor.DistributeFees()
	require.ErrorIs(err, token.ErrBurnUnsupported)

	require.NoError(f.distributor.Seed(f.owner, Recipients{
		Token:     ids.GenerateTestShortID(),
		Secondary: ids.GenerateTestShortID(),
	}))
	_, err = f.distributor.DistributeFees()
	require.ErrorIs(err, token.ErrUnknownToken)
}

func TestDistributeFeesRefusedBurnPaysNothing(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	refusingAddr := ids.GenerateTestShortID()
	require.NoError(f.tokens.Register(refusingAddr, refusingToken{Token: f.tok}))
	require.NoError(f.tok.Transfer(f.owner, f.address, uint256.NewInt(100)))

	r := Recipients{
		Token:            refusingAddr,
		LiquidVault:      ids.GenerateTestShortID(),
		Secondary:        ids.GenerateTestShortID(),
		LiquidVaultShare: 50,
		BurnPercentage:   10,
	}
	require.NoError(f.distributor.Seed(f.owner, r))

	_, err := f.distributor.DistributeFees()
	require.ErrorIs(err, errBurnRefused)
	require.Equal(uint256.NewInt(100), f.tok.BalanceOf(f.address))
	require.True(f.tok.BalanceOf(r.LiquidVault).IsZero())
	require.True(f.tok.BalanceOf(r.Secondary).IsZero())
	require.Equal(uint256.NewInt(1_000_000), f.tok.TotalSupply())
}

// shortBurner burns one unit more than asked, as a share-based token may
// when it rounds the remaining balance down.
type shortBurner struct {
	*token.Basic
}

func (s shortBurner) Burn(caller ids.ShortID, amount *uint256.Int) error {
	return s.Basic.Burn(caller, new(uint256.Int).AddUint64(amount, 1))
}

func TestDistributeFeesCapsSecondaryAtRemainder(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	roundingAddr := ids.GenerateTestShortID()
	require.NoError(f.tokens.Register(roundingAddr, shortBurner{Basic: f.tok}))
	require.NoError(f.tok.Transfer(f.owner, f.address, uint256.NewInt(100)))

	r := Recipients{
		Token:            roundingAddr,
		LiquidVault:      ids.GenerateTestShortID(),
		Secondary:        ids.GenerateTestShortID(),
		LiquidVaultShare: 50,
		BurnPercentage:   10,
	}
	require.NoError(f.distributor.Seed(f.owner, r))

	payout, err := f.distributor.DistributeFees()
	require.NoError(err)
	require.Equal(uint256.NewInt(50), payout.Vault)
	require.Equal(uint256.NewInt(39), payout.Secondary)
	require.True(f.tok.BalanceOf(f.address).IsZero())
}
