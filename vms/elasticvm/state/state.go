// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state holds the persisted ledger: shares, allowances, supply
// counters and the fee configuration.
package state

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/google/btree"
	"github.com/holiman/uint256"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"

	"github.com/luxfi/elastic/vms/elasticvm/fee"
)

const holderTreeDegree = 32

var (
	_ Chain = (*State)(nil)

	singletonPrefix = []byte("singleton")
	sharesPrefix    = []byte("shares")
	allowancePrefix = []byte("allowance")
	customFeePrefix = []byte("customFee")
	venueFeePrefix  = []byte("venueFee")
	excludedPrefix  = []byte("excluded")

	ratesKey       = []byte("rates")
	feeReceiverKey = []byte("feeReceiver")
	totalSupplyKey = []byte("totalSupply")
	totalSharesKey = []byte("totalShares")
	thresholdKey   = []byte("burnCycleThreshold")
	rebaseDeltaKey = []byte("rebaseDelta")
	burnCycleKey   = []byte("actualBurnCycle")
	totalBurnKey   = []byte("totalBurn")
	totalFeesKey   = []byte("totalFees")
	initializedKey = []byte("initialized")

	initializedValue = []byte{1}

	errCorruptRecord = errors.New("corrupt state record")
)

// State is the committed ledger. Reads are served from memory; writes are
// buffered until Commit flushes them to the database atomically.
//
// State is not safe for concurrent use. The ledger serializes access.
type State struct {
	baseDB *versiondb.Database

	singletonDB database.Database
	sharesDB    database.Database
	allowanceDB database.Database
	customFeeDB database.Database
	venueFeeDB  database.Database
	excludedDB  database.Database

	rates       fee.Rates
	feeReceiver ids.ShortID
	totalSupply *uint256.Int
	totalShares *uint256.Int
	threshold   *uint256.Int
	rebaseDelta *uint256.Int
	burnCycle   *uint256.Int
	totalBurn   *uint256.Int
	totalFees   *uint256.Int
	initialized bool

	shares     map[ids.ShortID]*uint256.Int
	holders    *btree.BTreeG[ids.ShortID]
	allowances map[allowanceKey]*uint256.Int
	customFees map[ids.ShortID]fee.CustomFee
	venueFees  map[ids.ShortID]fee.VenueFee
	excluded   set.Set[ids.ShortID]

	singletonsDirty    bool
	modifiedShares     set.Set[ids.ShortID]
	modifiedAllowances map[allowanceKey]struct{}
	modifiedCustomFees set.Set[ids.ShortID]
	modifiedVenueFees  set.Set[ids.ShortID]
	modifiedExcluded   set.Set[ids.ShortID]
}

func lessShortID(a, b ids.ShortID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

// New loads the ledger stored in db. An empty db yields an uninitialized
// ledger with zero supply.
func New(db database.Database) (*State, error) {
	baseDB := versiondb.New(db)
	s := &State{
		baseDB:      baseDB,
		singletonDB: prefixdb.New(singletonPrefix, baseDB),
		sharesDB:    prefixdb.New(sharesPrefix, baseDB),
		allowanceDB: prefixdb.New(allowancePrefix, baseDB),
		customFeeDB: prefixdb.New(customFeePrefix, baseDB),
		venueFeeDB:  prefixdb.New(venueFeePrefix, baseDB),
		excludedDB:  prefixdb.New(excludedPrefix, baseDB),
	}
	s.reset()
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// reset drops every in-memory value and pending modification.
func (s *State) reset() {
	s.rates = fee.Rates{}
	s.feeReceiver = ids.ShortEmpty
	s.totalSupply = new(uint256.Int)
	s.totalShares = new(uint256.Int)
	s.threshold = new(uint256.Int)
	s.rebaseDelta = new(uint256.Int)
	s.burnCycle = new(uint256.Int)
	s.totalBurn = new(uint256.Int)
	s.totalFees = new(uint256.Int)
	s.initialized = false

	s.shares = make(map[ids.ShortID]*uint256.Int)
	s.holders = btree.NewG(holderTreeDegree, lessShortID)
	s.allowances = make(map[allowanceKey]*uint256.Int)
	s.customFees = make(map[ids.ShortID]fee.CustomFee)
	s.venueFees = make(map[ids.ShortID]fee.VenueFee)
	s.excluded = set.NewSet[ids.ShortID](0)

	s.singletonsDirty = false
	s.modifiedShares = set.NewSet[ids.ShortID](0)
	s.modifiedAllowances = make(map[allowanceKey]struct{})
	s.modifiedCustomFees = set.NewSet[ids.ShortID](0)
	s.modifiedVenueFees = set.NewSet[ids.ShortID](0)
	s.modifiedExcluded = set.NewSet[ids.ShortID](0)
}

func (s *State) load() error {
	if err := s.loadSingletons(); err != nil {
		return fmt.Errorf("failed to load singletons: %w", err)
	}
	if err := s.loadShares(); err != nil {
		return fmt.Errorf("failed to load shares: %w", err)
	}
	if err := s.loadAllowances(); err != nil {
		return fmt.Errorf("failed to load allowances: %w", err)
	}
	if err := s.loadFees(); err != nil {
		return fmt.Errorf("failed to load fees: %w", err)
	}
	return nil
}

func (s *State) loadSingletons() error {
	initialized, err := s.singletonDB.Has(initializedKey)
	if err != nil {
		return err
	}
	s.initialized = initialized

	ratesBytes, err := s.singletonDB.Get(ratesKey)
	switch {
	case err == nil:
		s.rates, err = parseRates(ratesBytes)
		if err != nil {
			return fmt.Errorf("%w: rates: %w", errCorruptRecord, err)
		}
	case !errors.Is(err, database.ErrNotFound):
		return err
	}

	receiverBytes, err := s.singletonDB.Get(feeReceiverKey)
	switch {
	case err == nil:
		s.feeReceiver, err = parseShortID(receiverBytes)
		if err != nil {
			return fmt.Errorf("%w: fee receiver: %w", errCorruptRecord, err)
		}
	case !errors.Is(err, database.ErrNotFound):
		return err
	}

	for key, dst := range map[string]*uint256.Int{
		string(totalSupplyKey): s.totalSupply,
		string(totalSharesKey): s.totalShares,
		string(thresholdKey):   s.threshold,
		string(rebaseDeltaKey): s.rebaseDelta,
		string(burnCycleKey):   s.burnCycle,
		string(totalBurnKey):   s.totalBurn,
		string(totalFeesKey):   s.totalFees,
	} {
		valueBytes, err := s.singletonDB.Get([]byte(key))
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		value, err := parseUint256(valueBytes)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", errCorruptRecord, key, err)
		}
		dst.Set(value)
	}
	return nil
}

func (s *State) loadShares() error {
	it := s.sharesDB.NewIterator()
	defer it.Release()

	for it.Next() {
		addr, err := parseShortID(it.Key())
		if err != nil {
			return fmt.Errorf("%w: holder key: %w", errCorruptRecord, err)
		}
		shares, err := parseUint256(it.Value())
		if err != nil {
			return fmt.Errorf("%w: shares of %s: %w", errCorruptRecord, addr, err)
		}
		s.shares[addr] = shares
		s.holders.ReplaceOrInsert(addr)
	}
	return it.Error()
}

func (s *State) loadAllowances() error {
	it := s.allowanceDB.NewIterator()
	defer it.Release()

	for it.Next() {
		key, err := parseAllowanceDBKey(it.Key())
		if err != nil {
			return fmt.Errorf("%w: allowance key: %w", errCorruptRecord, err)
		}
		amount, err := parseUint256(it.Value())
		if err != nil {
			return fmt.Errorf("%w: allowance: %w", errCorruptRecord, err)
		}
		s.allowances[key] = amount
	}
	return it.Error()
}

func (s *State) loadFees() error {
	customIt := s.customFeeDB.NewIterator()
	defer customIt.Release()
	for customIt.Next() {
		addr, err := parseShortID(customIt.Key())
		if err != nil {
			return fmt.Errorf("%w: custom fee key: %w", errCorruptRecord, err)
		}
		custom, err := parseCustomFee(customIt.Value())
		if err != nil {
			return fmt.Errorf("%w: custom fee of %s: %w", errCorruptRecord, addr, err)
		}
		s.customFees[addr] = custom
	}
	if err := customIt.Error(); err != nil {
		return err
	}

	venueIt := s.venueFeeDB.NewIterator()
	defer venueIt.Release()
	for venueIt.Next() {
		addr, err := parseShortID(venueIt.Key())
		if err != nil {
			return fmt.Errorf("%w: venue key: %w", errCorruptRecord, err)
		}
		venue, err := parseVenueFee(venueIt.Value())
		if err != nil {
			return fmt.Errorf("%w: venue fee of %s: %w", errCorruptRecord, addr, err)
		}
		s.venueFees[addr] = venue
	}
	if err := venueIt.Error(); err != nil {
		return err
	}

	excludedIt := s.excludedDB.NewIterator()
	defer excludedIt.Release()
	for excludedIt.Next() {
		addr, err := parseShortID(excludedIt.Key())
		if err != nil {
			return fmt.Errorf("%w: excluded key: %w", errCorruptRecord, err)
		}
		s.excluded.Add(addr)
	}
	return excludedIt.Error()
}

func (s *State) GetCommonRates() fee.Rates {
	return s.rates
}

func (s *State) SetCommonRates(rates fee.Rates) {
	s.rates = rates
	s.singletonsDirty = true
}

func (s *State) GetCustomFee(addr ids.ShortID) fee.CustomFee {
	return s.customFees[addr]
}

func (s *State) SetCustomFee(addr ids.ShortID, custom fee.CustomFee) {
	s.customFees[addr] = custom
	s.modifiedCustomFees.Add(addr)
}

func (s *State) GetVenueFee(addr ids.ShortID) fee.VenueFee {
	return s.venueFees[addr]
}

func (s *State) SetVenueFee(addr ids.ShortID, venue fee.VenueFee) {
	s.venueFees[addr] = venue
	s.modifiedVenueFees.Add(addr)
}

func (s *State) IsExcluded(addr ids.ShortID) bool {
	return s.excluded.Contains(addr)
}

func (s *State) SetExcluded(addr ids.ShortID, excluded bool) {
	if excluded {
		s.excluded.Add(addr)
	} else {
		s.excluded.Remove(addr)
	}
	s.modifiedExcluded.Add(addr)
}

func (s *State) GetFeeReceiver() ids.ShortID {
	return s.feeReceiver
}

func (s *State) SetFeeReceiver(addr ids.ShortID) {
	s.feeReceiver = addr
	s.singletonsDirty = true
}

func (s *State) GetTotalSupply() *uint256.Int {
	return copyInt(s.totalSupply)
}

func (s *State) SetTotalSupply(v *uint256.Int) {
	s.totalSupply = copyInt(v)
	s.singletonsDirty = true
}

func (s *State) GetTotalShares() *uint256.Int {
	return copyInt(s.totalShares)
}

func (s *State) SetTotalShares(v *uint256.Int) {
	s.totalShares = copyInt(v)
	s.singletonsDirty = true
}

func (s *State) GetShares(addr ids.ShortID) *uint256.Int {
	return copyInt(s.shares[addr])
}

func (s *State) SetShares(addr ids.ShortID, shares *uint256.Int) {
	if shares.IsZero() {
		delete(s.shares, addr)
		s.holders.Delete(addr)
	} else {
		s.shares[addr] = copyInt(shares)
		s.holders.ReplaceOrInsert(addr)
	}
	s.modifiedShares.Add(addr)
}

func (s *State) GetAllowance(owner, spender ids.ShortID) *uint256.Int {
	return copyInt(s.allowances[allowanceKey{owner: owner, spender: spender}])
}

func (s *State) SetAllowance(owner, spender ids.ShortID, amount *uint256.Int) {
	key := allowanceKey{owner: owner, spender: spender}
	if amount.IsZero() {
		delete(s.allowances, key)
	} else {
		s.allowances[key] = copyInt(amount)
	}
	s.modifiedAllowances[key] = struct{}{}
}

func (s *State) GetBurnCycleThreshold() *uint256.Int {
	return copyInt(s.threshold)
}

func (s *State) SetBurnCycleThreshold(v *uint256.Int) {
	s.threshold = copyInt(v)
	s.singletonsDirty = true
}

func (s *State) GetRebaseDelta() *uint256.Int {
	return copyInt(s.rebaseDelta)
}

func (s *State) SetRebaseDelta(v *uint256.Int) {
	s.rebaseDelta = copyInt(v)
	s.singletonsDirty = true
}

func (s *State) GetActualBurnCycle() *uint256.Int {
	return copyInt(s.burnCycle)
}

func (s *State) SetActualBurnCycle(v *uint256.Int) {
	s.burnCycle = copyInt(v)
	s.singletonsDirty = true
}

func (s *State) GetTotalBurn() *uint256.Int {
	return copyInt(s.totalBurn)
}

func (s *State) SetTotalBurn(v *uint256.Int) {
	s.totalBurn = copyInt(v)
	s.singletonsDirty = true
}

func (s *State) GetTotalFees() *uint256.Int {
	return copyInt(s.totalFees)
}

func (s *State) SetTotalFees(v *uint256.Int) {
	s.totalFees = copyInt(v)
	s.singletonsDirty = true
}

func (s *State) IsInitialized() bool {
	return s.initialized
}

func (s *State) SetInitialized() {
	s.initialized = true
	s.singletonsDirty = true
}

// NumHolders returns the number of addresses with non-zero shares.
func (s *State) NumHolders() int {
	return s.holders.Len()
}

// ForEachHolder calls f for every address holding shares in ascending
// address order until f returns false.
func (s *State) ForEachHolder(f func(addr ids.ShortID, shares *uint256.Int) bool) {
	s.holders.Ascend(func(addr ids.ShortID) bool {
		return f(addr, copyInt(s.shares[addr]))
	})
}

// ForEachAllowance calls f for every non-zero allowance until f returns
// false. Order is unspecified.
func (s *State) ForEachAllowance(f func(owner, spender ids.ShortID, amount *uint256.Int) bool) {
	for key, amount := range s.allowances {
		if !f(key.owner, key.spender, copyInt(amount)) {
			return
		}
	}
}

// CustomFees returns a copy of every configured custom fee.
func (s *State) CustomFees() map[ids.ShortID]fee.CustomFee {
	out := make(map[ids.ShortID]fee.CustomFee, len(s.customFees))
	for addr, custom := range s.customFees {
		out[addr] = custom
	}
	return out
}

// VenueFees returns a copy of every configured venue fee.
func (s *State) VenueFees() map[ids.ShortID]fee.VenueFee {
	out := make(map[ids.ShortID]fee.VenueFee, len(s.venueFees))
	for addr, venue := range s.venueFees {
		out[addr] = venue
	}
	return out
}

// ExcludedAccounts returns the excluded addresses.
func (s *State) ExcludedAccounts() []ids.ShortID {
	return s.excluded.List()
}

// Commit writes every modification since the last Commit to the database.
// If the write fails, the in-memory ledger is reloaded from the last
// successful Commit.
func (s *State) Commit() error {
	err := s.write()
	if err == nil {
		err = s.baseDB.Commit()
	}
	if err == nil {
		return nil
	}

	s.baseDB.Abort()
	s.reset()
	if loadErr := s.load(); loadErr != nil {
		return errors.Join(err, fmt.Errorf("failed to reload state: %w", loadErr))
	}
	return err
}

func (s *State) write() error {
	if err := s.writeSingletons(); err != nil {
		return fmt.Errorf("failed to write singletons: %w", err)
	}
	if err := s.writeShares(); err != nil {
		return fmt.Errorf("failed to write shares: %w", err)
	}
	if err := s.writeAllowances(); err != nil {
		return fmt.Errorf("failed to write allowances: %w", err)
	}
	if err := s.writeFees(); err != nil {
		return fmt.Errorf("failed to write fees: %w", err)
	}
	return nil
}

func (s *State) writeSingletons() error {
	if !s.singletonsDirty {
		return nil
	}
	if s.initialized {
		if err := s.singletonDB.Put(initializedKey, initializedValue); err != nil {
			return err
		}
	}
	if err := s.singletonDB.Put(ratesKey, marshalRates(s.rates)); err != nil {
		return err
	}
	if err := s.singletonDB.Put(feeReceiverKey, s.feeReceiver[:]); err != nil {
		return err
	}
	for key, value := range map[string]*uint256.Int{
		string(totalSupplyKey): s.totalSupply,
		string(totalSharesKey): s.totalShares,
		string(thresholdKey):   s.threshold,
		string(rebaseDeltaKey): s.rebaseDelta,
		string(burnCycleKey):   s.burnCycle,
		string(totalBurnKey):   s.totalBurn,
		string(totalFeesKey):   s.totalFees,
	} {
		if err := s.singletonDB.Put([]byte(key), marshalUint256(value)); err != nil {
			return err
		}
	}
	s.singletonsDirty = false
	return nil
}

func (s *State) writeShares() error {
	for addr := range s.modifiedShares {
		var err error
		if shares, ok := s.shares[addr]; ok {
			err = s.sharesDB.Put(addr[:], marshalUint256(shares))
		} else {
			err = s.sharesDB.Delete(addr[:])
		}
		if err != nil {
			return err
		}
	}
	s.modifiedShares.Clear()
	return nil
}

func (s *State) writeAllowances() error {
	for key := range s.modifiedAllowances {
		var err error
		if amount, ok := s.allowances[key]; ok {
			err = s.allowanceDB.Put(allowanceDBKey(key), marshalUint256(amount))
		} else {
			err = s.allowanceDB.Delete(allowanceDBKey(key))
		}
		if err != nil {
			return err
		}
	}
	clear(s.modifiedAllowances)
	return nil
}

func (s *State) writeFees() error {
	for addr := range s.modifiedCustomFees {
		if err := s.customFeeDB.Put(addr[:], marshalCustomFee(s.customFees[addr])); err != nil {
			return err
		}
	}
	s.modifiedCustomFees.Clear()

	for addr := range s.modifiedVenueFees {
		if err := s.venueFeeDB.Put(addr[:], marshalVenueFee(s.venueFees[addr])); err != nil {
			return err
		}
	}
	s.modifiedVenueFees.Clear()

	for addr := range s.modifiedExcluded {
		var err error
		if s.excluded.Contains(addr) {
			err = s.excludedDB.Put(addr[:], initializedValue)
		} else {
			err = s.excludedDB.Delete(addr[:])
		}
		if err != nil {
			return err
		}
	}
	s.modifiedExcluded.Clear()
	return nil
}

// Close discards uncommitted writes and closes the versioned database.
func (s *State) Close() error {
	return s.baseDB.Close()
}
