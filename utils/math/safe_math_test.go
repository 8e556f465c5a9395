// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package math

import (
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	require := require.New(t)

	sum, err := Add[uint16](10000, 5000)
	require.NoError(err)
	require.Equal(uint16(15000), sum)

	_, err = Add[uint16](math.MaxUint16, 1)
	require.ErrorIs(err, ErrOverflow)
}

func TestSub(t *testing.T) {
	require := require.New(t)

	got, err := Sub[uint64](5, 3)
	require.NoError(err)
	require.Equal(uint64(2), got)

	_, err = Sub[uint64](3, 5)
	require.ErrorIs(err, ErrUnderflow)
}

func TestAdd256(t *testing.T) {
	require := require.New(t)

	sum, err := Add256(uint256.NewInt(1), uint256.NewInt(2))
	require.NoError(err)
	require.Equal(uint64(3), sum.Uint64())

	_, err = Add256(MaxUint256(), uint256.NewInt(1))
	require.ErrorIs(err, ErrOverflow)
}

func TestSub256(t *testing.T) {
	require := require.New(t)

	a := uint256.NewInt(7)
	diff, err := Sub256(a, uint256.NewInt(2))
	require.NoError(err)
	require.Equal(uint64(5), diff.Uint64())
	require.Equal(uint64(7), a.Uint64(), "operands must not be mutated")

	_, err = Sub256(uint256.NewInt(2), uint256.NewInt(3))
	require.ErrorIs(err, ErrUnderflow)
}

func TestMulDiv256(t *testing.T) {
	tests := []struct {
		name        string
		a, b, d     *uint256.Int
		want        *uint256.Int
		expectedErr error
	}{
		{
			name: "truncates",
			a:    uint256.NewInt(10),
			b:    uint256.NewInt(10),
			d:    uint256.NewInt(3),
			want: uint256.NewInt(33),
		},
		{
			name: "wide intermediate",
			a:    MaxUint256(),
			b:    uint256.NewInt(3),
			d:    uint256.NewInt(3),
			want: MaxUint256(),
		},
		{
			name:        "quotient overflow",
			a:           MaxUint256(),
			b:           uint256.NewInt(2),
			d:           uint256.NewInt(1),
			expectedErr: ErrOverflow,
		},
		{
			name:        "zero divisor",
			a:           uint256.NewInt(1),
			b:           uint256.NewInt(1),
			d:           new(uint256.Int),
			expectedErr: ErrDivisionByZero,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			got, err := MulDiv256(tt.a, tt.b, tt.d)
			require.ErrorIs(err, tt.expectedErr)
			if tt.expectedErr != nil {
				return
			}
			require.Equal(tt.want, got)
		})
	}
}

func TestBps(t *testing.T) {
	tests := []struct {
		amount *uint256.Int
		bps    uint16
		want   *uint256.Int
	}{
		{amount: uint256.NewInt(1000), bps: 500, want: uint256.NewInt(50)},
		{amount: uint256.NewInt(1000), bps: 250, want: uint256.NewInt(25)},
		{amount: uint256.NewInt(39), bps: 250, want: uint256.NewInt(0)},
		{amount: MaxUint256(), bps: 10000, want: MaxUint256()},
	}
	for _, tt := range tests {
		got, err := Bps(tt.amount, tt.bps)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}

	_, err := Bps(MaxUint256(), 10001)
	require.ErrorIs(t, err, ErrOverflow)
}
