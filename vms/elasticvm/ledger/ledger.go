// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger is the elastic token: every transfer resolves its fees,
// moves the net amount, pays the fee receiver, burns supply and feeds the
// burn cycle that drives rebases, as a single atomic operation.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/jonboulle/clockwork"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/elastic/vms/elasticvm/fee"
	"github.com/luxfi/elastic/vms/elasticvm/genesis"
	"github.com/luxfi/elastic/vms/elasticvm/metrics"
	"github.com/luxfi/elastic/vms/elasticvm/owner"
	"github.com/luxfi/elastic/vms/elasticvm/rebase"
	"github.com/luxfi/elastic/vms/elasticvm/shares"
	"github.com/luxfi/elastic/vms/elasticvm/snapshot"
	"github.com/luxfi/elastic/vms/elasticvm/state"
	"github.com/luxfi/elastic/vms/elasticvm/token"

	safemath "github.com/luxfi/elastic/utils/math"
)

var (
	_ token.Token  = (*Ledger)(nil)
	_ token.Burner = (*Ledger)(nil)

	errMissingState = errors.New("missing state")
)

// Params are the collaborators of a Ledger. Clock and Sink are optional.
type Params struct {
	Log        log.Logger
	State      *state.State
	Authorizer owner.Authorizer
	Rules      Rules
	Metrics    metrics.Metrics
	Clock      clockwork.Clock
	Sink       EventSink
	// Tokens resolves foreign tokens for recovery. The ledger registers
	// itself under Address.
	Tokens  *token.Registry
	Address ids.ShortID
}

// Receipt describes a transfer. Split.Fee is zero when no fee receiver is
// configured, in which case the fee stays with the sender.
type Receipt struct {
	Decision fee.Decision
	Split    fee.Split
	Rebase   rebase.Result
}

type Ledger struct {
	log     log.Logger
	auth    owner.Authorizer
	rules   Rules
	metrics metrics.Metrics
	clock   clockwork.Clock
	sink    EventSink
	tokens  *token.Registry
	address ids.ShortID

	// lock serializes writers. Readers share it.
	lock  sync.RWMutex
	state *state.State
}

func New(p Params) (*Ledger, error) {
	if p.State == nil {
		return nil, errMissingState
	}
	if p.Clock == nil {
		p.Clock = clockwork.NewRealClock()
	}
	if p.Sink == nil {
		p.Sink = noopSink{}
	}
	if p.Tokens == nil {
		p.Tokens = token.NewRegistry()
	}
	l := &Ledger{
		log:     p.Log,
		auth:    p.Authorizer,
		rules:   p.Rules,
		metrics: p.Metrics,
		clock:   p.Clock,
		sink:    p.Sink,
		tokens:  p.Tokens,
		address: p.Address,
		state:   p.State,
	}
	if err := p.Tokens.Register(p.Address, l); err != nil {
		return nil, err
	}
	l.metrics.SetTotalSupply(p.State.GetTotalSupply())
	l.metrics.SetBurnCycle(p.State.GetActualBurnCycle())
	return l, nil
}

// Init assigns the genesis supply and configuration. It succeeds once per
// database.
func (l *Ledger) Init(caller ids.ShortID, g *genesis.Genesis) error {
	if err := g.Verify(); err != nil {
		return fmt.Errorf("invalid genesis: %w", err)
	}
	return l.admin(caller, "init", func(d state.Diff) ([]Event, error) {
		if d.IsInitialized() {
			return nil, ErrAlreadyInitialized
		}

		supply := g.InitialSupply.Uint256()
		if err := shares.New(d).Genesis(g.Owner, supply); err != nil {
			return nil, err
		}
		d.SetFeeReceiver(g.FeeReceiver)
		d.SetCommonRates(fee.Rates{
			FotBps:  uint16(g.CommonFotBps),
			BurnBps: uint16(g.CommonBurnBps),
		})
		d.SetBurnCycleThreshold(g.BurnCycle.Uint256())
		d.SetRebaseDelta(g.RebaseDelta.Uint256())
		for _, v := range g.Venues {
			d.SetVenueFee(v.Address, fee.VenueFee{
				Enabled: true,
				BuyBps:  uint16(v.BuyBps),
				SellBps: uint16(v.SellBps),
				BurnBps: uint16(v.BurnBps),
			})
		}
		for _, c := range g.CustomFees {
			d.SetCustomFee(c.Address, fee.CustomFee{
				Enabled: true,
				FotBps:  uint16(c.FotBps),
				BurnBps: uint16(c.BurnBps),
			})
		}
		for _, addr := range g.Excluded {
			d.SetExcluded(addr, true)
		}
		d.SetInitialized()

		l.log.Info("ledger initialized",
			log.Stringer("owner", g.Owner),
			log.String("supply", supply.Dec()),
			log.String("rules", l.rules.Name()),
		)
		return []Event{{
			Type:   TransferEvent,
			To:     g.Owner,
			Amount: supply,
		}}, nil
	})
}

// ====== Token ======

func (l *Ledger) TotalSupply() *uint256.Int {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.state.GetTotalSupply()
}

func (l *Ledger) BalanceOf(addr ids.ShortID) *uint256.Int {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return shares.New(l.state).BalanceOf(addr)
}

func (l *Ledger) Allowance(owner, spender ids.ShortID) *uint256.Int {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.state.GetAllowance(owner, spender)
}

// Transfer sends amount from caller to the recipient, net of fees and burn.
func (l *Ledger) Transfer(caller, to ids.ShortID, amount *uint256.Int) error {
	_, err := l.TransferWithReceipt(caller, to, amount)
	return err
}

// TransferWithReceipt is Transfer returning how the amount was split.
func (l *Ledger) TransferWithReceipt(caller, to ids.ShortID, amount *uint256.Int) (Receipt, error) {
	return l.transferWith("transfer", func(d state.Diff) (Receipt, []Event, error) {
		return l.transfer(d, caller, to, amount)
	})
}

// TransferFrom spends caller's allowance on from. An allowance of
// MaxUint256 is never decremented.
func (l *Ledger) TransferFrom(caller, from, to ids.ShortID, amount *uint256.Int) error {
	_, err := l.transferWith("transferFrom", func(d state.Diff) (Receipt, []Event, error) {
		if balance := shares.New(d).BalanceOf(from); balance.Lt(amount) {
			return Receipt{}, nil, fmt.Errorf("%w: %s holds %s, sending %s",
				ErrInsufficientBalance, from, balance.Dec(), amount.Dec())
		}
		allowance := d.GetAllowance(from, caller)
		if allowance.Lt(amount) {
			return Receipt{}, nil, fmt.Errorf("%w: %s may spend %s of %s, requested %s",
				ErrInsufficientAllowance, caller, allowance.Dec(), from, amount.Dec())
		}
		receipt, events, err := l.transfer(d, from, to, amount)
		if err != nil {
			return Receipt{}, nil, err
		}
		if !allowance.Eq(safemath.MaxUint256()) {
			d.SetAllowance(from, caller, allowance.Sub(allowance, amount))
		}
		return receipt, events, nil
	})
	return err
}

func (l *Ledger) Approve(caller, spender ids.ShortID, amount *uint256.Int) error {
	if spender == ids.ShortEmpty {
		return ErrInvalidDestination
	}
	return l.write("approve", func(d state.Diff) ([]Event, error) {
		d.SetAllowance(caller, spender, amount)
		return []Event{{
			Type:   ApprovalEvent,
			From:   caller,
			To:     spender,
			Amount: new(uint256.Int).Set(amount),
		}}, nil
	})
}

// Burn destroys amount from the fee receiver's own balance. Only the fee
// receiver may call it, and the burn does not count towards the burn cycle.
func (l *Ledger) Burn(caller ids.ShortID, amount *uint256.Int) error {
	err := l.write("burn", func(d state.Diff) ([]Event, error) {
		if receiver := d.GetFeeReceiver(); receiver == ids.ShortEmpty || caller != receiver {
			return nil, fmt.Errorf("%w: %s is not the fee receiver", ErrUnauthorized, caller)
		}
		if err := shares.New(d).Burn(caller, amount); err != nil {
			return nil, err
		}
		if err := addTotal(d.GetTotalBurn, d.SetTotalBurn, amount); err != nil {
			return nil, err
		}
		return []Event{{
			Type:   BurnEvent,
			From:   caller,
			Amount: new(uint256.Int).Set(amount),
		}}, nil
	})
	if err != nil {
		return err
	}

	l.metrics.MarkAdminBurn()
	l.log.Info("fee receiver burned",
		log.Stringer("receiver", caller),
		log.String("amount", amount.Dec()),
	)
	return nil
}

// QuoteTransfer previews a transfer without changing any state.
func (l *Ledger) QuoteTransfer(from, to ids.ShortID, amount *uint256.Int) (Receipt, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	receipt, _, err := l.transfer(state.NewDiff(l.state), from, to, amount)
	return receipt, err
}

// ====== Introspection ======

func (l *Ledger) Address() ids.ShortID {
	return l.address
}

func (l *Ledger) Rules() string {
	return l.rules.Name()
}

func (l *Ledger) IsInitialized() bool {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.state.IsInitialized()
}

func (l *Ledger) FeeReceiver() ids.ShortID {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.state.GetFeeReceiver()
}

func (l *Ledger) CommonRates() fee.Rates {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.state.GetCommonRates()
}

// CustomFee returns the override stored for addr, enabled or not.
func (l *Ledger) CustomFee(addr ids.ShortID) fee.CustomFee {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.state.GetCustomFee(addr)
}

// VenueFee returns the venue rates stored for addr, enabled or not.
func (l *Ledger) VenueFee(addr ids.ShortID) fee.VenueFee {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.state.GetVenueFee(addr)
}

// CustomFees returns the enabled per-sender overrides.
func (l *Ledger) CustomFees() map[ids.ShortID]fee.CustomFee {
	l.lock.RLock()
	defer l.lock.RUnlock()

	custom := l.state.CustomFees()
	for addr, c := range custom {
		if !c.Enabled {
			delete(custom, addr)
		}
	}
	return custom
}

// DexFOT returns the enabled venue overrides.
func (l *Ledger) DexFOT() map[ids.ShortID]fee.VenueFee {
	l.lock.RLock()
	defer l.lock.RUnlock()

	venues := l.state.VenueFees()
	for addr, v := range venues {
		if !v.Enabled {
			delete(venues, addr)
		}
	}
	return venues
}

func (l *Ledger) IsExcluded(addr ids.ShortID) bool {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.state.IsExcluded(addr)
}

func (l *Ledger) ExcludedAccounts() []ids.ShortID {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.state.ExcludedAccounts()
}

func (l *Ledger) BurnCycleThreshold() *uint256.Int {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.state.GetBurnCycleThreshold()
}

func (l *Ledger) RebaseDelta() *uint256.Int {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.state.GetRebaseDelta()
}

// ActualBurnCycle is the volume counted since the last rebase.
func (l *Ledger) ActualBurnCycle() *uint256.Int {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.state.GetActualBurnCycle()
}

func (l *Ledger) TotalBurn() *uint256.Int {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.state.GetTotalBurn()
}

func (l *Ledger) TotalFees() *uint256.Int {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.state.GetTotalFees()
}

func (l *Ledger) TotalBurnWithFees() *uint256.Int {
	l.lock.RLock()
	defer l.lock.RUnlock()

	// Both totals are bounded by the amounts ever transferred.
	return new(uint256.Int).Add(l.state.GetTotalBurn(), l.state.GetTotalFees())
}

func (l *Ledger) NumHolders() int {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.state.NumHolders()
}

// Snapshot captures the committed state.
func (l *Ledger) Snapshot() *snapshot.Snapshot {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return snapshot.New(l.address, l.rules.Name(), l.state)
}

// ====== Internals ======

// transfer runs the transfer state machine on d.
func (l *Ledger) transfer(d state.Diff, from, to ids.ShortID, amount *uint256.Int) (Receipt, []Event, error) {
	if to == ids.ShortEmpty {
		return Receipt{}, nil, ErrInvalidDestination
	}
	ledger := shares.New(d)
	if balance := ledger.BalanceOf(from); balance.Lt(amount) {
		return Receipt{}, nil, fmt.Errorf("%w: %s holds %s, sending %s",
			ErrInsufficientBalance, from, balance.Dec(), amount.Dec())
	}

	decision := fee.Resolve(d, from, to)
	split, err := fee.NewSplit(amount, decision)
	if err != nil {
		return Receipt{}, nil, err
	}

	if err := ledger.Move(from, to, split.Net); err != nil {
		return Receipt{}, nil, err
	}
	events := []Event{{
		Type:   TransferEvent,
		From:   from,
		To:     to,
		Amount: split.Net,
	}}

	if !split.Fee.IsZero() {
		receiver := d.GetFeeReceiver()
		if receiver == ids.ShortEmpty {
			split.Fee = new(uint256.Int)
		} else {
			if err := ledger.Move(from, receiver, split.Fee); err != nil {
				return Receipt{}, nil, err
			}
			if err := addTotal(d.GetTotalFees, d.SetTotalFees, split.Fee); err != nil {
				return Receipt{}, nil, err
			}
			events = append(events, Event{
				Type:   TransferEvent,
				From:   from,
				To:     receiver,
				Amount: split.Fee,
			})
		}
	}

	if !split.Burn.IsZero() {
		if err := ledger.Burn(from, split.Burn); err != nil {
			return Receipt{}, nil, err
		}
		if err := addTotal(d.GetTotalBurn, d.SetTotalBurn, split.Burn); err != nil {
			return Receipt{}, nil, err
		}
		events = append(events, Event{
			Type:   BurnEvent,
			From:   from,
			Amount: split.Burn,
		})
	}

	receipt := Receipt{
		Decision: decision,
		Split:    split,
	}
	if volume := l.rules.CycleVolume(split); !volume.IsZero() {
		receipt.Rebase, err = rebase.NewEngine(d).MaybeRebase(volume)
		if err != nil {
			return Receipt{}, nil, err
		}
		if receipt.Rebase.Triggered {
			events = append(events, Event{
				Type:   RebaseEvent,
				Amount: receipt.Rebase.Delta,
				Supply: receipt.Rebase.Supply,
			})
		}
	}
	return receipt, events, nil
}

func (l *Ledger) transferWith(op string, f func(d state.Diff) (Receipt, []Event, error)) (Receipt, error) {
	var receipt Receipt
	err := l.write(op, func(d state.Diff) ([]Event, error) {
		var (
			events []Event
			err    error
		)
		receipt, events, err = f(d)
		return events, err
	})
	if err != nil {
		return Receipt{}, err
	}

	l.metrics.MarkTransfer(receipt.Decision.Source)
	l.log.Debug("transfer committed",
		log.Stringer("source", receipt.Decision.Source),
		log.String("net", receipt.Split.Net.Dec()),
		log.String("fee", receipt.Split.Fee.Dec()),
		log.String("burn", receipt.Split.Burn.Dec()),
	)
	if receipt.Rebase.Triggered {
		l.metrics.MarkRebase()
		l.log.Info("supply rebased",
			log.String("delta", receipt.Rebase.Delta.Dec()),
			log.String("supply", receipt.Rebase.Supply.Dec()),
		)
	}
	return receipt, nil
}

// admin runs f for an authorized caller.
func (l *Ledger) admin(caller ids.ShortID, op string, f func(d state.Diff) ([]Event, error)) error {
	if l.auth == nil || !l.auth.IsAuthorized(caller) {
		l.metrics.MarkFailed(op)
		return fmt.Errorf("%w: %s", ErrUnauthorized, caller)
	}
	return l.write(op, f)
}

// write stages f on a fresh diff and commits it only if f succeeds. A failed
// commit leaves the state at its last committed values. Events are published
// after the commit.
func (l *Ledger) write(op string, f func(d state.Diff) ([]Event, error)) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	d := state.NewDiff(l.state)
	events, err := f(d)
	if err != nil {
		l.metrics.MarkFailed(op)
		return err
	}

	d.Apply(l.state)
	if err := l.state.Commit(); err != nil {
		l.metrics.MarkFailed(op)
		l.log.Error("failed to commit",
			log.String("op", op),
			log.Err(err),
		)
		return fmt.Errorf("failed to commit %s: %w", op, err)
	}

	l.metrics.SetTotalSupply(l.state.GetTotalSupply())
	l.metrics.SetBurnCycle(l.state.GetActualBurnCycle())

	now := l.clock.Now()
	for i := range events {
		events[i].Time = now
	}
	l.sink.Accept(events...)
	return nil
}

func addTotal(get func() *uint256.Int, set func(*uint256.Int), amount *uint256.Int) error {
	total, err := safemath.Add256(get(), amount)
	if err != nil {
		return err
	}
	set(total)
	return nil
}
