// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package swap migrates holders of a legacy token to its replacement.
package swap

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/elastic/vms/elasticvm/token"
)

var (
	ErrNothingToSwap         = errors.New("nothing to swap")
	ErrInsufficientInventory = errors.New("not enough new tokens held by swap")
)

// Swap exchanges old tokens for new ones 1:1. The new tokens must already
// be held at the swap address. If the new token charges transfer fees the
// swap address should be excluded from them.
type Swap struct {
	log      log.Logger
	tokens   *token.Registry
	address  ids.ShortID
	oldToken ids.ShortID
	newToken ids.ShortID

	lock sync.Mutex
}

func New(
	logger log.Logger,
	tokens *token.Registry,
	address ids.ShortID,
	oldToken ids.ShortID,
	newToken ids.ShortID,
) *Swap {
	return &Swap{
		log:      logger,
		tokens:   tokens,
		address:  address,
		oldToken: oldToken,
		newToken: newToken,
	}
}

func (s *Swap) Address() ids.ShortID {
	return s.address
}

func (s *Swap) OldToken() ids.ShortID {
	return s.oldToken
}

func (s *Swap) NewToken() ids.ShortID {
	return s.newToken
}

// Inventory returns the new tokens available for swapping.
func (s *Swap) Inventory() (*uint256.Int, error) {
	newTok, err := s.tokens.Get(s.newToken)
	if err != nil {
		return nil, err
	}
	return newTok.BalanceOf(s.address), nil
}

// Swap pulls the caller's whole old token balance into the swap address
// and pays out the same amount of the new token. The caller must have
// approved the swap address on the old token.
func (s *Swap) Swap(caller ids.ShortID) (*uint256.Int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	oldTok, err := s.tokens.Get(s.oldToken)
	if err != nil {
		return nil, err
	}
	newTok, err := s.tokens.Get(s.newToken)
	if err != nil {
		return nil, err
	}

	amount := oldTok.BalanceOf(caller)
	if amount.IsZero() {
		return nil, fmt.Errorf("%w: %s", ErrNothingToSwap, caller)
	}
	inventory := newTok.BalanceOf(s.address)
	if inventory.Lt(amount) {
		return nil, fmt.Errorf("%w: have %s, need %s",
			ErrInsufficientInventory,
			inventory.Dec(),
			amount.Dec(),
		)
	}

	if err := oldTok.TransferFrom(s.address, caller, s.address, amount); err != nil {
		return nil, err
	}
	if err := newTok.Transfer(s.address, caller, amount); err != nil {
		return nil, fmt.Errorf("failed to pay out new tokens: %w", err)
	}

	s.log.Info("tokens swapped",
		log.Stringer("account", caller),
		log.String("amount", amount.Dec()),
	)
	return amount, nil
}
