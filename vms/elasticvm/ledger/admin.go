// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/elastic/vms/elasticvm/fee"
	"github.com/luxfi/elastic/vms/elasticvm/shares"
	"github.com/luxfi/elastic/vms/elasticvm/state"
)

// SetFeeReceiver sets the account paid the fee leg. The empty address
// disables the fee leg.
func (l *Ledger) SetFeeReceiver(caller, receiver ids.ShortID) error {
	return l.admin(caller, "setFeeReceiver", func(d state.Diff) ([]Event, error) {
		d.SetFeeReceiver(receiver)
		l.log.Info("fee receiver set",
			log.Stringer("receiver", receiver),
		)
		return nil, nil
	})
}

// SetCommonFee sets the default fee-on-transfer rate.
func (l *Ledger) SetCommonFee(caller ids.ShortID, fotBps uint16) error {
	if err := fee.VerifyBps(fotBps); err != nil {
		return err
	}
	return l.admin(caller, "setCommonFee", func(d state.Diff) ([]Event, error) {
		rates := d.GetCommonRates()
		rates.FotBps = fotBps
		d.SetCommonRates(rates)
		l.log.Info("common fee set",
			log.Int("fotBps", int(fotBps)),
		)
		return nil, nil
	})
}

// SetBurnFee sets the default burn rate.
func (l *Ledger) SetBurnFee(caller ids.ShortID, burnBps uint16) error {
	if err := fee.VerifyBps(burnBps); err != nil {
		return err
	}
	return l.admin(caller, "setBurnFee", func(d state.Diff) ([]Event, error) {
		rates := d.GetCommonRates()
		rates.BurnBps = burnBps
		d.SetCommonRates(rates)
		l.log.Info("burn fee set",
			log.Int("burnBps", int(burnBps)),
		)
		return nil, nil
	})
}

// SetUserCustomFee overrides the rates paid when addr sends.
func (l *Ledger) SetUserCustomFee(caller, addr ids.ShortID, fotBps, burnBps uint16) error {
	if err := fee.VerifyBps(fotBps, burnBps); err != nil {
		return err
	}
	return l.admin(caller, "setUserCustomFee", func(d state.Diff) ([]Event, error) {
		d.SetCustomFee(addr, fee.CustomFee{
			Enabled: true,
			FotBps:  fotBps,
			BurnBps: burnBps,
		})
		l.log.Info("custom fee set",
			log.Stringer("account", addr),
			log.Int("fotBps", int(fotBps)),
			log.Int("burnBps", int(burnBps)),
		)
		return nil, nil
	})
}

// RemoveUserCustomFee disables the override of addr. The rates stay
// readable through CustomFee.
func (l *Ledger) RemoveUserCustomFee(caller, addr ids.ShortID) error {
	return l.admin(caller, "removeUserCustomFee", func(d state.Diff) ([]Event, error) {
		custom := d.GetCustomFee(addr)
		custom.Enabled = false
		d.SetCustomFee(addr, custom)
		l.log.Info("custom fee removed",
			log.Stringer("account", addr),
		)
		return nil, nil
	})
}

// SetDexFee registers venue with direction-sensitive rates.
func (l *Ledger) SetDexFee(caller, venue ids.ShortID, buyBps, sellBps, burnBps uint16) error {
	if err := fee.VerifyBps(buyBps, sellBps, burnBps); err != nil {
		return err
	}
	return l.admin(caller, "setDexFee", func(d state.Diff) ([]Event, error) {
		d.SetVenueFee(venue, fee.VenueFee{
			Enabled: true,
			BuyBps:  buyBps,
			SellBps: sellBps,
			BurnBps: burnBps,
		})
		l.log.Info("venue fee set",
			log.Stringer("venue", venue),
			log.Int("buyBps", int(buyBps)),
			log.Int("sellBps", int(sellBps)),
			log.Int("burnBps", int(burnBps)),
		)
		return nil, nil
	})
}

func (l *Ledger) RemoveDexFee(caller, venue ids.ShortID) error {
	return l.admin(caller, "removeDexFee", func(d state.Diff) ([]Event, error) {
		v := d.GetVenueFee(venue)
		v.Enabled = false
		d.SetVenueFee(venue, v)
		l.log.Info("venue fee removed",
			log.Stringer("venue", venue),
		)
		return nil, nil
	})
}

// SetBurnCycle sets the burned volume that triggers a rebase. Zero disables
// rebasing.
func (l *Ledger) SetBurnCycle(caller ids.ShortID, threshold *uint256.Int) error {
	return l.admin(caller, "setBurnCycle", func(d state.Diff) ([]Event, error) {
		d.SetBurnCycleThreshold(threshold)
		l.log.Info("burn cycle set",
			log.String("threshold", threshold.Dec()),
		)
		return nil, nil
	})
}

// SetRebaseDelta sets the amount minted by each rebase.
func (l *Ledger) SetRebaseDelta(caller ids.ShortID, delta *uint256.Int) error {
	return l.admin(caller, "setRebaseDelta", func(d state.Diff) ([]Event, error) {
		d.SetRebaseDelta(delta)
		l.log.Info("rebase delta set",
			log.String("delta", delta.Dec()),
		)
		return nil, nil
	})
}

func (l *Ledger) ExcludeAccount(caller, addr ids.ShortID) error {
	return l.setExcluded(caller, addr, true)
}

func (l *Ledger) IncludeAccount(caller, addr ids.ShortID) error {
	return l.setExcluded(caller, addr, false)
}

func (l *Ledger) setExcluded(caller, addr ids.ShortID, excluded bool) error {
	return l.admin(caller, "setExcluded", func(d state.Diff) ([]Event, error) {
		d.SetExcluded(addr, excluded)
		l.log.Info("exclusion set",
			log.Stringer("account", addr),
			log.Bool("excluded", excluded),
		)
		return nil, nil
	})
}

// RecoverTokens moves the ledger address's whole balance of tokenAddr to
// dest. Recovering the ledger's own token is a fee-free move.
func (l *Ledger) RecoverTokens(caller, tokenAddr, dest ids.ShortID) error {
	if dest == ids.ShortEmpty {
		return ErrInvalidDestination
	}
	if tokenAddr == l.address {
		return l.admin(caller, "recoverTokens", func(d state.Diff) ([]Event, error) {
			ledger := shares.New(d)
			balance := ledger.BalanceOf(l.address)
			if balance.IsZero() {
				return nil, fmt.Errorf("%w: nothing to recover", ErrInsufficientBalance)
			}
			if err := ledger.Move(l.address, dest, balance); err != nil {
				return nil, err
			}
			l.log.Info("tokens recovered",
				log.Stringer("token", tokenAddr),
				log.Stringer("destination", dest),
				log.String("amount", balance.Dec()),
			)
			return []Event{{
				Type:   TransferEvent,
				From:   l.address,
				To:     dest,
				Amount: balance,
			}}, nil
		})
	}

	if l.auth == nil || !l.auth.IsAuthorized(caller) {
		l.metrics.MarkFailed("recoverTokens")
		return fmt.Errorf("%w: %s", ErrUnauthorized, caller)
	}
	tok, err := l.tokens.Get(tokenAddr)
	if err != nil {
		return err
	}
	balance := tok.BalanceOf(l.address)
	if balance.IsZero() {
		return fmt.Errorf("%w: nothing to recover", ErrInsufficientBalance)
	}
	if err := tok.Transfer(l.address, dest, balance); err != nil {
		return fmt.Errorf("failed to recover %s: %w", tokenAddr, err)
	}
	l.log.Info("tokens recovered",
		log.Stringer("token", tokenAddr),
		log.Stringer("destination", dest),
		log.String("amount", balance.Dec()),
	)
	return nil
}
