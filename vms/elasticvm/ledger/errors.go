// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"errors"

	"github.com/luxfi/elastic/vms/elasticvm/fee"
	"github.com/luxfi/elastic/vms/elasticvm/owner"
	"github.com/luxfi/elastic/vms/elasticvm/shares"
	"github.com/luxfi/elastic/vms/elasticvm/token"
)

var (
	ErrInsufficientBalance   = shares.ErrInsufficientBalance
	ErrUnauthorized          = owner.ErrUnauthorized
	ErrInvalidDestination    = owner.ErrInvalidDestination
	ErrFeeConfigInvalid      = fee.ErrFeeConfigInvalid
	ErrInvalidFee            = fee.ErrInvalidBps
	ErrUnknownToken          = token.ErrUnknownToken
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrAlreadyInitialized    = errors.New("already initialized")
	ErrNotInitialized        = errors.New("not initialized")
	ErrUnknownRules          = errors.New("unknown implementation")
)
