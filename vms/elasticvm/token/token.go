// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package token defines the fungible token surface shared by the elastic
// ledger and the tokens it interacts with.
package token

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"
)

var (
	ErrUnknownToken    = errors.New("unknown token")
	ErrDuplicateToken  = errors.New("token already registered")
	ErrBurnUnsupported = errors.New("token does not support burning")
)

// Token is a fungible token with allowances. A nil error is success.
type Token interface {
	TotalSupply() *uint256.Int
	BalanceOf(addr ids.ShortID) *uint256.Int
	Allowance(owner, spender ids.ShortID) *uint256.Int

	Transfer(caller, to ids.ShortID, amount *uint256.Int) error
	TransferFrom(caller, from, to ids.ShortID, amount *uint256.Int) error
	Approve(caller, spender ids.ShortID, amount *uint256.Int) error
}

// Burner is implemented by tokens that let a caller destroy its own balance.
type Burner interface {
	Burn(caller ids.ShortID, amount *uint256.Int) error
}

// Registry resolves token addresses.
type Registry struct {
	lock   sync.RWMutex
	tokens map[ids.ShortID]Token
}

func NewRegistry() *Registry {
	return &Registry{
		tokens: make(map[ids.ShortID]Token),
	}
}

// Register makes tok resolvable at addr.
func (r *Registry) Register(addr ids.ShortID, tok Token) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.tokens[addr]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateToken, addr)
	}
	r.tokens[addr] = tok
	return nil
}

// Get returns the token registered at addr.
func (r *Registry) Get(addr ids.ShortID) (Token, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	tok, ok := r.tokens[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, addr)
	}
	return tok, nil
}

// Addresses returns every registered address.
func (r *Registry) Addresses() set.Set[ids.ShortID] {
	r.lock.RLock()
	defer r.lock.RUnlock()

	addrs := set.NewSet[ids.ShortID](len(r.tokens))
	for addr := range r.tokens {
		addrs.Add(addr)
	}
	return addrs
}
