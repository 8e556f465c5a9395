// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package json provides JSON serialization utilities for numeric types.
package json

import (
	"errors"
	"strconv"

	"github.com/holiman/uint256"
)

const Null = "null"

var errNilAmount = errors.New("nil amount")

func unquote(b []byte) string {
	str := string(b)
	if len(str) >= 2 {
		if lastIndex := len(str) - 1; str[0] == '"' && str[lastIndex] == '"' {
			str = str[1:lastIndex]
		}
	}
	return str
}

// Uint16 is a uint16 that can be JSON marshaled as a string.
type Uint16 uint16

func (u Uint16) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(u), 10) + `"`), nil
}

func (u *Uint16) UnmarshalJSON(b []byte) error {
	if string(b) == Null {
		return nil
	}
	val, err := strconv.ParseUint(unquote(b), 10, 16)
	*u = Uint16(val)
	return err
}

// Uint64 is a uint64 that can be JSON marshaled as a string.
type Uint64 uint64

func (u Uint64) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(u), 10) + `"`), nil
}

func (u *Uint64) UnmarshalJSON(b []byte) error {
	if string(b) == Null {
		return nil
	}
	val, err := strconv.ParseUint(unquote(b), 10, 64)
	*u = Uint64(val)
	return err
}

// Amount is a 256-bit token amount that is JSON marshaled as a decimal
// string. The zero value marshals as "0".
type Amount struct {
	uint256.Int
}

// NewAmount copies v into an Amount. A nil v yields zero.
func NewAmount(v *uint256.Int) Amount {
	var a Amount
	if v != nil {
		a.Int.Set(v)
	}
	return a
}

// Uint256 returns a copy of the wrapped value.
func (a *Amount) Uint256() *uint256.Int {
	return new(uint256.Int).Set(&a.Int)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.Int.Dec() + `"`), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	if a == nil {
		return errNilAmount
	}
	if string(b) == Null {
		return nil
	}
	return a.Int.SetFromDecimal(unquote(b))
}
