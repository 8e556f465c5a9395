// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/luxfi/ids"

	safemath "github.com/luxfi/elastic/utils/math"
)

var (
	_ Token  = (*Basic)(nil)
	_ Burner = (*Basic)(nil)

	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

type allowanceKey struct {
	owner   ids.ShortID
	spender ids.ShortID
}

// Basic is a fixed-supply token with absolute balances and no fees. It
// models plain tokens that the ledger may hold or migrate from.
type Basic struct {
	lock       sync.RWMutex
	supply     *uint256.Int
	balances   map[ids.ShortID]*uint256.Int
	allowances map[allowanceKey]*uint256.Int
}

// NewBasic mints supply to holder.
func NewBasic(holder ids.ShortID, supply *uint256.Int) *Basic {
	b := &Basic{
		supply:     new(uint256.Int).Set(supply),
		balances:   make(map[ids.ShortID]*uint256.Int),
		allowances: make(map[allowanceKey]*uint256.Int),
	}
	if !supply.IsZero() {
		b.balances[holder] = new(uint256.Int).Set(supply)
	}
	return b
}

func (b *Basic) TotalSupply() *uint256.Int {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return new(uint256.Int).Set(b.supply)
}

func (b *Basic) BalanceOf(addr ids.ShortID) *uint256.Int {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.balanceOf(addr)
}

func (b *Basic) Allowance(owner, spender ids.ShortID) *uint256.Int {
	b.lock.RLock()
	defer b.lock.RUnlock()

	if amount, ok := b.allowances[allowanceKey{owner: owner, spender: spender}]; ok {
		return new(uint256.Int).Set(amount)
	}
	return new(uint256.Int)
}

func (b *Basic) Transfer(caller, to ids.ShortID, amount *uint256.Int) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.move(caller, to, amount)
}

func (b *Basic) TransferFrom(caller, from, to ids.ShortID, amount *uint256.Int) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	key := allowanceKey{owner: from, spender: caller}
	allowance, ok := b.allowances[key]
	if !ok || allowance.Lt(amount) {
		return fmt.Errorf("%w: %s may spend %s of %s", ErrInsufficientAllowance, caller, b.allowanceOf(key).Dec(), from)
	}
	if err := b.move(from, to, amount); err != nil {
		return err
	}
	if !allowance.Eq(safemath.MaxUint256()) {
		allowance.Sub(allowance, amount)
	}
	return nil
}

func (b *Basic) Approve(caller, spender ids.ShortID, amount *uint256.Int) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.allowances[allowanceKey{owner: caller, spender: spender}] = new(uint256.Int).Set(amount)
	return nil
}

// Burn destroys amount of caller's balance.
func (b *Basic) Burn(caller ids.ShortID, amount *uint256.Int) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	balance := b.balanceOf(caller)
	if balance.Lt(amount) {
		return fmt.Errorf("%w: %s holds %s, burning %s", ErrInsufficientBalance, caller, balance.Dec(), amount.Dec())
	}
	b.balances[caller] = balance.Sub(balance, amount)
	b.supply.Sub(b.supply, amount)
	return nil
}

func (b *Basic) move(from, to ids.ShortID, amount *uint256.Int) error {
	fromBalance := b.balanceOf(from)
	if fromBalance.Lt(amount) {
		return fmt.Errorf("%w: %s holds %s, sending %s", ErrInsufficientBalance, from, fromBalance.Dec(), amount.Dec())
	}
	b.balances[from] = fromBalance.Sub(fromBalance, amount)
	toBalance := b.balanceOf(to)
	b.balances[to] = toBalance.Add(toBalance, amount)
	return nil
}

func (b *Basic) balanceOf(addr ids.ShortID) *uint256.Int {
	if balance, ok := b.balances[addr]; ok {
		return new(uint256.Int).Set(balance)
	}
	return new(uint256.Int)
}

func (b *Basic) allowanceOf(key allowanceKey) *uint256.Int {
	if amount, ok := b.allowances[key]; ok {
		return amount
	}
	return new(uint256.Int)
}
