// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package snapshot encodes the full committed ledger into a deterministic
// binary form for export and offline inspection.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/holiman/uint256"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
	"github.com/luxfi/ids"

	"github.com/luxfi/elastic/vms/elasticvm/state"
)

const CodecVersion = 0

var (
	Codec codec.Manager

	ErrShareMismatch = errors.New("holder shares do not sum to total shares")
)

func init() {
	Codec = codec.NewManager(math.MaxInt)
	lc := linearcodec.NewDefault()

	err := errors.Join(
		lc.RegisterType(&Snapshot{}),
		Codec.RegisterCodec(CodecVersion, lc),
	)
	if err != nil {
		panic(err)
	}
}

// Amount is a big-endian 256-bit value.
type Amount [32]byte

func NewAmount(v *uint256.Int) Amount {
	return v.Bytes32()
}

func (a Amount) Uint256() *uint256.Int {
	return new(uint256.Int).SetBytes32(a[:])
}

type Holder struct {
	Address ids.ShortID `serialize:"true"`
	Shares  Amount      `serialize:"true"`
}

type Allowance struct {
	Owner   ids.ShortID `serialize:"true"`
	Spender ids.ShortID `serialize:"true"`
	Amount  Amount      `serialize:"true"`
}

type CustomFee struct {
	Address ids.ShortID `serialize:"true"`
	Enabled bool        `serialize:"true"`
	FotBps  uint16      `serialize:"true"`
	BurnBps uint16      `serialize:"true"`
}

type VenueFee struct {
	Address ids.ShortID `serialize:"true"`
	Enabled bool        `serialize:"true"`
	BuyBps  uint16      `serialize:"true"`
	SellBps uint16      `serialize:"true"`
	BurnBps uint16      `serialize:"true"`
}

// Snapshot is the committed ledger. Every list is sorted by address.
type Snapshot struct {
	Address     ids.ShortID `serialize:"true"`
	Rules       string      `serialize:"true"`
	Initialized bool        `serialize:"true"`

	FeeReceiver   ids.ShortID `serialize:"true"`
	CommonFotBps  uint16      `serialize:"true"`
	CommonBurnBps uint16      `serialize:"true"`

	TotalSupply        Amount `serialize:"true"`
	TotalShares        Amount `serialize:"true"`
	BurnCycleThreshold Amount `serialize:"true"`
	RebaseDelta        Amount `serialize:"true"`
	ActualBurnCycle    Amount `serialize:"true"`
	TotalBurn          Amount `serialize:"true"`
	TotalFees          Amount `serialize:"true"`

	Holders    []Holder      `serialize:"true"`
	Allowances []Allowance   `serialize:"true"`
	CustomFees []CustomFee   `serialize:"true"`
	VenueFees  []VenueFee    `serialize:"true"`
	Excluded   []ids.ShortID `serialize:"true"`
}

// New captures s. The caller must prevent concurrent writes to s.
func New(address ids.ShortID, rules string, s *state.State) *Snapshot {
	rates := s.GetCommonRates()
	snap := &Snapshot{
		Address:            address,
		Rules:              rules,
		Initialized:        s.IsInitialized(),
		FeeReceiver:        s.GetFeeReceiver(),
		CommonFotBps:       rates.FotBps,
		CommonBurnBps:      rates.BurnBps,
		TotalSupply:        NewAmount(s.GetTotalSupply()),
		TotalShares:        NewAmount(s.GetTotalShares()),
		BurnCycleThreshold: NewAmount(s.GetBurnCycleThreshold()),
		RebaseDelta:        NewAmount(s.GetRebaseDelta()),
		ActualBurnCycle:    NewAmount(s.GetActualBurnCycle()),
		TotalBurn:          NewAmount(s.GetTotalBurn()),
		TotalFees:          NewAmount(s.GetTotalFees()),
		Holders:            make([]Holder, 0, s.NumHolders()),
	}

	s.ForEachHolder(func(addr ids.ShortID, shares *uint256.Int) bool {
		snap.Holders = append(snap.Holders, Holder{
			Address: addr,
			Shares:  NewAmount(shares),
		})
		return true
	})

	s.ForEachAllowance(func(owner, spender ids.ShortID, amount *uint256.Int) bool {
		snap.Allowances = append(snap.Allowances, Allowance{
			Owner:   owner,
			Spender: spender,
			Amount:  NewAmount(amount),
		})
		return true
	})
	slices.SortFunc(snap.Allowances, func(a, b Allowance) int {
		if c := compare(a.Owner, b.Owner); c != 0 {
			return c
		}
		return compare(a.Spender, b.Spender)
	})

	for addr, c := range s.CustomFees() {
		snap.CustomFees = append(snap.CustomFees, CustomFee{
			Address: addr,
			Enabled: c.Enabled,
			FotBps:  c.FotBps,
			BurnBps: c.BurnBps,
		})
	}
	slices.SortFunc(snap.CustomFees, func(a, b CustomFee) int {
		return compare(a.Address, b.Address)
	})

	for addr, v := range s.VenueFees() {
		snap.VenueFees = append(snap.VenueFees, VenueFee{
			Address: addr,
			Enabled: v.Enabled,
			BuyBps:  v.BuyBps,
			SellBps: v.SellBps,
			BurnBps: v.BurnBps,
		})
	}
	slices.SortFunc(snap.VenueFees, func(a, b VenueFee) int {
		return compare(a.Address, b.Address)
	})

	snap.Excluded = s.ExcludedAccounts()
	slices.SortFunc(snap.Excluded, compare)
	return snap
}

// Parse decodes snapshot bytes.
func Parse(b []byte) (*Snapshot, error) {
	snap := &Snapshot{}
	if _, err := Codec.Unmarshal(b, snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return snap, nil
}

func (s *Snapshot) Bytes() ([]byte, error) {
	return Codec.Marshal(CodecVersion, s)
}

// Verify checks that the holders account for every share.
func (s *Snapshot) Verify() error {
	sum := new(uint256.Int)
	for _, h := range s.Holders {
		if _, overflow := sum.AddOverflow(sum, h.Shares.Uint256()); overflow {
			return fmt.Errorf("%w: overflow at %s", ErrShareMismatch, h.Address)
		}
	}
	if total := s.TotalShares.Uint256(); !sum.Eq(total) {
		return fmt.Errorf("%w: holders own %s of %s", ErrShareMismatch, sum.Dec(), total.Dec())
	}
	return nil
}

// BalanceOf returns the token balance of addr as of the snapshot.
func (s *Snapshot) BalanceOf(addr ids.ShortID) *uint256.Int {
	i, found := slices.BinarySearchFunc(s.Holders, addr, func(h Holder, target ids.ShortID) int {
		return compare(h.Address, target)
	})
	totalShares := s.TotalShares.Uint256()
	if !found || totalShares.IsZero() {
		return new(uint256.Int)
	}
	balance, overflow := new(uint256.Int).MulDivOverflow(s.Holders[i].Shares.Uint256(), s.TotalSupply.Uint256(), totalShares)
	if overflow {
		return new(uint256.Int)
	}
	return balance
}

func compare(a, b ids.ShortID) int {
	return bytes.Compare(a[:], b[:])
}
