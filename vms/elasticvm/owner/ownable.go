// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package owner provides single-owner access control.
package owner

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
)

var (
	ErrUnauthorized       = errors.New("caller is not authorized")
	ErrInvalidDestination = errors.New("zero address not allowed")

	ownerKey = []byte("owner")
)

// Authorizer answers whether a caller may perform administrative actions.
type Authorizer interface {
	IsAuthorized(caller ids.ShortID) bool
}

// Ownable is a persisted single owner. The empty address means ownership
// has been renounced and nobody is authorized.
type Ownable struct {
	log log.Logger
	db  database.Database

	lock  sync.RWMutex
	owner ids.ShortID
}

// New loads the owner stored in db, or stores initial if db has none.
func New(logger log.Logger, db database.Database, initial ids.ShortID) (*Ownable, error) {
	o := &Ownable{
		log: logger,
		db:  db,
	}

	ownerBytes, err := db.Get(ownerKey)
	switch {
	case err == nil:
		o.owner, err = ids.ToShortID(ownerBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse owner: %w", err)
		}
		return o, nil
	case errors.Is(err, database.ErrNotFound):
		return o, o.set(initial)
	default:
		return nil, fmt.Errorf("failed to load owner: %w", err)
	}
}

// Owner returns the current owner.
func (o *Ownable) Owner() ids.ShortID {
	o.lock.RLock()
	defer o.lock.RUnlock()

	return o.owner
}

func (o *Ownable) IsAuthorized(caller ids.ShortID) bool {
	o.lock.RLock()
	defer o.lock.RUnlock()

	return o.owner != ids.ShortEmpty && caller == o.owner
}

// TransferOwnership hands ownership to newOwner.
func (o *Ownable) TransferOwnership(caller, newOwner ids.ShortID) error {
	if newOwner == ids.ShortEmpty {
		return ErrInvalidDestination
	}

	o.lock.Lock()
	defer o.lock.Unlock()

	if o.owner == ids.ShortEmpty || caller != o.owner {
		return ErrUnauthorized
	}
	previous := o.owner
	if err := o.set(newOwner); err != nil {
		return err
	}
	o.log.Info("ownership transferred",
		log.Stringer("previousOwner", previous),
		log.Stringer("newOwner", newOwner),
	)
	return nil
}

// RenounceOwnership leaves the owner empty. It cannot be undone.
func (o *Ownable) RenounceOwnership(caller ids.ShortID) error {
	o.lock.Lock()
	defer o.lock.Unlock()

	if o.owner == ids.ShortEmpty || caller != o.owner {
		return ErrUnauthorized
	}
	if err := o.set(ids.ShortEmpty); err != nil {
		return err
	}
	o.log.Info("ownership renounced",
		log.Stringer("previousOwner", caller),
	)
	return nil
}

func (o *Ownable) set(owner ids.ShortID) error {
	if err := o.db.Put(ownerKey, owner[:]); err != nil {
		return fmt.Errorf("failed to store owner: %w", err)
	}
	o.owner = owner
	return nil
}
