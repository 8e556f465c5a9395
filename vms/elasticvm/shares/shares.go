// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package shares converts between token amounts and the internal share units
// that balances are stored in.
//
// A holder's balance is shares * totalSupply / totalShares. Changing
// totalSupply alone re-values every holder at once, which is how a rebase
// reaches all holders without touching any of them.
package shares

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/luxfi/elastic/vms/elasticvm/state"
	"github.com/luxfi/ids"

	safemath "github.com/luxfi/elastic/utils/math"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrZeroSupply          = errors.New("supply must be positive")
)

// Ledger performs share accounting over a state.Chain.
type Ledger struct {
	chain state.Chain
}

func New(chain state.Chain) *Ledger {
	return &Ledger{chain: chain}
}

// GenesisShares returns the total share count for an initial supply: the
// largest multiple of supply that fits in 256 bits, so that every token
// starts out worth a whole number of shares.
func GenesisShares(supply *uint256.Int) (*uint256.Int, error) {
	if supply.IsZero() {
		return nil, ErrZeroSupply
	}
	maxShares := safemath.MaxUint256()
	remainder := new(uint256.Int).Mod(maxShares, supply)
	return maxShares.Sub(maxShares, remainder), nil
}

// Genesis assigns a fresh supply and all of its shares to holder. Any
// previous supply is overwritten.
func (l *Ledger) Genesis(holder ids.ShortID, supply *uint256.Int) error {
	totalShares, err := GenesisShares(supply)
	if err != nil {
		return err
	}
	l.chain.SetTotalSupply(supply)
	l.chain.SetTotalShares(totalShares)
	l.chain.SetShares(holder, totalShares)
	return nil
}

// ToShares converts a token amount to shares at the current rate, rounding
// down.
func (l *Ledger) ToShares(tokens *uint256.Int) (*uint256.Int, error) {
	if tokens.IsZero() {
		return new(uint256.Int), nil
	}
	supply := l.chain.GetTotalSupply()
	if supply.IsZero() {
		return nil, fmt.Errorf("%w: no supply to convert %s tokens", ErrInsufficientBalance, tokens.Dec())
	}
	return safemath.MulDiv256(tokens, l.chain.GetTotalShares(), supply)
}

// ToTokens converts shares to a token amount at the current rate, rounding
// down.
func (l *Ledger) ToTokens(shares *uint256.Int) (*uint256.Int, error) {
	totalShares := l.chain.GetTotalShares()
	if shares.IsZero() || totalShares.IsZero() {
		return new(uint256.Int), nil
	}
	return safemath.MulDiv256(shares, l.chain.GetTotalSupply(), totalShares)
}

// BalanceOf returns the token balance of addr.
func (l *Ledger) BalanceOf(addr ids.ShortID) *uint256.Int {
	// shares <= totalShares, so the quotient never exceeds totalSupply.
	balance, err := l.ToTokens(l.chain.GetShares(addr))
	if err != nil {
		return new(uint256.Int)
	}
	return balance
}

// Move transfers the shares worth tokens from one holder to another.
func (l *Ledger) Move(from, to ids.ShortID, tokens *uint256.Int) error {
	shareAmt, err := l.debit(from, tokens)
	if err != nil {
		return err
	}
	toShares, err := safemath.Add256(l.chain.GetShares(to), shareAmt)
	if err != nil {
		return fmt.Errorf("crediting %s: %w", to, err)
	}
	l.chain.SetShares(to, toShares)
	return nil
}

// Burn destroys the shares worth tokens held by from and removes tokens from
// the supply. Shares and supply shrink together, so the share rate of every
// other holder is unchanged.
func (l *Ledger) Burn(from ids.ShortID, tokens *uint256.Int) error {
	shareAmt, err := l.debit(from, tokens)
	if err != nil {
		return err
	}
	totalShares, err := safemath.Sub256(l.chain.GetTotalShares(), shareAmt)
	if err != nil {
		return fmt.Errorf("removing burned shares: %w", err)
	}
	supply := l.chain.GetTotalSupply()
	l.chain.SetTotalShares(totalShares)
	l.chain.SetTotalSupply(supply.Sub(supply, tokens))
	return nil
}

// Mint adds tokens to the supply without touching any shares.
func (l *Ledger) Mint(tokens *uint256.Int) error {
	supply, err := safemath.Add256(l.chain.GetTotalSupply(), tokens)
	if err != nil {
		return fmt.Errorf("minting %s: %w", tokens.Dec(), err)
	}
	l.chain.SetTotalSupply(supply)
	return nil
}

// debit removes the shares worth tokens from addr and returns them.
func (l *Ledger) debit(addr ids.ShortID, tokens *uint256.Int) (*uint256.Int, error) {
	if supply := l.chain.GetTotalSupply(); tokens.Gt(supply) {
		return nil, fmt.Errorf("%w: %s exceeds the %s supply", ErrInsufficientBalance, tokens.Dec(), supply.Dec())
	}
	shareAmt, err := l.ToShares(tokens)
	if err != nil {
		return nil, err
	}
	held := l.chain.GetShares(addr)
	if held.Lt(shareAmt) {
		return nil, fmt.Errorf("%w: %s holds %s tokens, needs %s",
			ErrInsufficientBalance, addr, l.BalanceOf(addr).Dec(), tokens.Dec())
	}
	l.chain.SetShares(addr, held.Sub(held, shareAmt))
	return shareAmt, nil
}
