// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api provides the JSON-RPC API of the elastic VM.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/elastic/vms/elasticvm/distributor"
	"github.com/luxfi/elastic/vms/elasticvm/ledger"
	"github.com/luxfi/elastic/vms/elasticvm/owner"
	"github.com/luxfi/elastic/vms/elasticvm/swap"
	"github.com/luxfi/elastic/vms/elasticvm/token"

	utiljson "github.com/luxfi/elastic/utils/json"
)

// ServiceName is the JSON-RPC service name of the API.
const ServiceName = "elastic"

var (
	ErrDistributorDisabled = errors.New("fee distributor is not configured")
	ErrSwapDisabled        = errors.New("migration swap is not configured")
)

// Backend holds the components served by the API. Distributor and Swap are
// optional.
type Backend struct {
	Log         log.Logger
	Ledger      *ledger.Ledger
	Owner       *owner.Ownable
	Tokens      *token.Registry
	Events      *ledger.EventLog
	Distributor *distributor.Distributor
	Swap        *swap.Swap
	// MaxEvents bounds the events returned by one GetEvents call
	MaxEvents int
}

// Service is the "elastic" JSON-RPC service. Callers identify themselves
// with the caller field of each mutating request.
type Service struct {
	b Backend
}

func NewService(b Backend) *Service {
	return &Service{b: b}
}

func (s *Service) called(method string) {
	s.b.Log.Debug("API called",
		log.String("service", "elastic"),
		log.String("method", method),
	)
}

type EmptyArgs struct{}

type EmptyReply struct{}

type AddressArgs struct {
	Address ids.ShortID `json:"address"`
}

type CallerArgs struct {
	Caller ids.ShortID `json:"caller"`
}

type AmountReply struct {
	Amount utiljson.Amount `json:"amount"`
}

type BoolReply struct {
	Value bool `json:"value"`
}

// ====== Token ======

func (s *Service) TotalSupply(_ *http.Request, _ *EmptyArgs, reply *AmountReply) error {
	s.called("totalSupply")

	reply.Amount = utiljson.NewAmount(s.b.Ledger.TotalSupply())
	return nil
}

func (s *Service) BalanceOf(_ *http.Request, args *AddressArgs, reply *AmountReply) error {
	s.called("balanceOf")

	reply.Amount = utiljson.NewAmount(s.b.Ledger.BalanceOf(args.Address))
	return nil
}

type AllowanceArgs struct {
	Owner   ids.ShortID `json:"owner"`
	Spender ids.ShortID `json:"spender"`
}

func (s *Service) Allowance(_ *http.Request, args *AllowanceArgs, reply *AmountReply) error {
	s.called("allowance")

	reply.Amount = utiljson.NewAmount(s.b.Ledger.Allowance(args.Owner, args.Spender))
	return nil
}

type TransferArgs struct {
	Caller ids.ShortID     `json:"caller"`
	To     ids.ShortID     `json:"to"`
	Amount utiljson.Amount `json:"amount"`
}

// ReceiptReply describes how a transfer was split.
type ReceiptReply struct {
	Source  string          `json:"source"`
	FotBps  utiljson.Uint16 `json:"fotBps"`
	BurnBps utiljson.Uint16 `json:"burnBps"`
	Net     utiljson.Amount `json:"net"`
	Fee     utiljson.Amount `json:"fee"`
	Burn    utiljson.Amount `json:"burn"`
	Rebased bool            `json:"rebased"`
	// Supply is set when the transfer triggered a rebase
	Supply utiljson.Amount `json:"supply"`
}

func (r *ReceiptReply) set(receipt ledger.Receipt) {
	r.Source = receipt.Decision.Source.String()
	r.FotBps = utiljson.Uint16(receipt.Decision.FotBps)
	r.BurnBps = utiljson.Uint16(receipt.Decision.BurnBps)
	r.Net = utiljson.NewAmount(receipt.Split.Net)
	r.Fee = utiljson.NewAmount(receipt.Split.Fee)
	r.Burn = utiljson.NewAmount(receipt.Split.Burn)
	r.Rebased = receipt.Rebase.Triggered
	r.Supply = utiljson.NewAmount(receipt.Rebase.Supply)
}

func (s *Service) Transfer(_ *http.Request, args *TransferArgs, reply *ReceiptReply) error {
	s.called("transfer")

	receipt, err := s.b.Ledger.TransferWithReceipt(args.Caller, args.To, args.Amount.Uint256())
	if err != nil {
		return err
	}
	reply.set(receipt)
	return nil
}

type QuoteTransferArgs struct {
	From   ids.ShortID     `json:"from"`
	To     ids.ShortID     `json:"to"`
	Amount utiljson.Amount `json:"amount"`
}

// QuoteTransfer previews a transfer without committing it.
func (s *Service) QuoteTransfer(_ *http.Request, args *QuoteTransferArgs, reply *ReceiptReply) error {
	s.called("quoteTransfer")

	receipt, err := s.b.Ledger.QuoteTransfer(args.From, args.To, args.Amount.Uint256())
	if err != nil {
		return err
	}
	reply.set(receipt)
	return nil
}

type TransferFromArgs struct {
	Caller ids.ShortID     `json:"caller"`
	From   ids.ShortID     `json:"from"`
	To     ids.ShortID     `json:"to"`
	Amount utiljson.Amount `json:"amount"`
}

func (s *Service) TransferFrom(_ *http.Request, args *TransferFromArgs, _ *EmptyReply) error {
	s.called("transferFrom")

	return s.b.Ledger.TransferFrom(args.Caller, args.From, args.To, args.Amount.Uint256())
}

type ApproveArgs struct {
	Caller  ids.ShortID     `json:"caller"`
	Spender ids.ShortID     `json:"spender"`
	Amount  utiljson.Amount `json:"amount"`
}

func (s *Service) Approve(_ *http.Request, args *ApproveArgs, _ *EmptyReply) error {
	s.called("approve")

	return s.b.Ledger.Approve(args.Caller, args.Spender, args.Amount.Uint256())
}

type BurnArgs struct {
	Caller ids.ShortID     `json:"caller"`
	Amount utiljson.Amount `json:"amount"`
}

// Burn lets the fee receiver destroy part of its balance.
func (s *Service) Burn(_ *http.Request, args *BurnArgs, _ *EmptyReply) error {
	s.called("burn")

	return s.b.Ledger.Burn(args.Caller, args.Amount.Uint256())
}

// ====== Ownership ======

type OwnerReply struct {
	Owner ids.ShortID `json:"owner"`
}

func (s *Service) Owner(_ *http.Request, _ *EmptyArgs, reply *OwnerReply) error {
	s.called("owner")

	reply.Owner = s.b.Owner.Owner()
	return nil
}

type TransferOwnershipArgs struct {
	Caller   ids.ShortID `json:"caller"`
	NewOwner ids.ShortID `json:"newOwner"`
}

func (s *Service) TransferOwnership(_ *http.Request, args *TransferOwnershipArgs, _ *EmptyReply) error {
	s.called("transferOwnership")

	return s.b.Owner.TransferOwnership(args.Caller, args.NewOwner)
}

func (s *Service) RenounceOwnership(_ *http.Request, args *CallerArgs, _ *EmptyReply) error {
	s.called("renounceOwnership")

	return s.b.Owner.RenounceOwnership(args.Caller)
}

// ====== Administration ======

type SetFeeReceiverArgs struct {
	Caller   ids.ShortID `json:"caller"`
	Receiver ids.ShortID `json:"receiver"`
}

func (s *Service) SetFeeReceiver(_ *http.Request, args *SetFeeReceiverArgs, _ *EmptyReply) error {
	s.called("setFeeReceiver")

	return s.b.Ledger.SetFeeReceiver(args.Caller, args.Receiver)
}

type SetRateArgs struct {
	Caller ids.ShortID     `json:"caller"`
	Bps    utiljson.Uint16 `json:"bps"`
}

func (s *Service) SetCommonFee(_ *http.Request, args *SetRateArgs, _ *EmptyReply) error {
	s.called("setCommonFee")

	return s.b.Ledger.SetCommonFee(args.Caller, uint16(args.Bps))
}

func (s *Service) SetBurnFee(_ *http.Request, args *SetRateArgs, _ *EmptyReply) error {
	s.called("setBurnFee")

	return s.b.Ledger.SetBurnFee(args.Caller, uint16(args.Bps))
}

type SetUserCustomFeeArgs struct {
	Caller  ids.ShortID     `json:"caller"`
	Address ids.ShortID     `json:"address"`
	FotBps  utiljson.Uint16 `json:"fotBps"`
	BurnBps utiljson.Uint16 `json:"burnBps"`
}

func (s *Service) SetUserCustomFee(_ *http.Request, args *SetUserCustomFeeArgs, _ *EmptyReply) error {
	s.called("setUserCustomFee")

	return s.b.Ledger.SetUserCustomFee(args.Caller, args.Address, uint16(args.FotBps), uint16(args.BurnBps))
}

type CallerAddressArgs struct {
	Caller  ids.ShortID `json:"caller"`
	Address ids.ShortID `json:"address"`
}

func (s *Service) RemoveUserCustomFee(_ *http.Request, args *CallerAddressArgs, _ *EmptyReply) error {
	s.called("removeUserCustomFee")

	return s.b.Ledger.RemoveUserCustomFee(args.Caller, args.Address)
}

type SetDexFeeArgs struct {
	Caller  ids.ShortID     `json:"caller"`
	Venue   ids.ShortID     `json:"venue"`
	BuyBps  utiljson.Uint16 `json:"buyBps"`
	SellBps utiljson.Uint16 `json:"sellBps"`
	BurnBps utiljson.Uint16 `json:"burnBps"`
}

func (s *Service) SetDexFee(_ *http.Request, args *SetDexFeeArgs, _ *EmptyReply) error {
	s.called("setDexFee")

	return s.b.Ledger.SetDexFee(
		args.Caller,
		args.Venue,
		uint16(args.BuyBps),
		uint16(args.SellBps),
		uint16(args.BurnBps),
	)
}

func (s *Service) RemoveDexFee(_ *http.Request, args *CallerAddressArgs, _ *EmptyReply) error {
	s.called("removeDexFee")

	return s.b.Ledger.RemoveDexFee(args.Caller, args.Address)
}

type SetAmountArgs struct {
	Caller ids.ShortID     `json:"caller"`
	Amount utiljson.Amount `json:"amount"`
}

func (s *Service) SetBurnCycle(_ *http.Request, args *SetAmountArgs, _ *EmptyReply) error {
	s.called("setBurnCycle")

	return s.b.Ledger.SetBurnCycle(args.Caller, args.Amount.Uint256())
}

func (s *Service) SetRebaseDelta(_ *http.Request, args *SetAmountArgs, _ *EmptyReply) error {
	s.called("setRebaseDelta")

	return s.b.Ledger.SetRebaseDelta(args.Caller, args.Amount.Uint256())
}

func (s *Service) ExcludeAccount(_ *http.Request, args *CallerAddressArgs, _ *EmptyReply) error {
	s.called("excludeAccount")

	return s.b.Ledger.ExcludeAccount(args.Caller, args.Address)
}

func (s *Service) IncludeAccount(_ *http.Request, args *CallerAddressArgs, _ *EmptyReply) error {
	s.called("includeAccount")

	return s.b.Ledger.IncludeAccount(args.Caller, args.Address)
}

type RecoverTokensArgs struct {
	Caller      ids.ShortID `json:"caller"`
	Token       ids.ShortID `json:"token"`
	Destination ids.ShortID `json:"destination"`
}

func (s *Service) RecoverTokens(_ *http.Request, args *RecoverTokensArgs, _ *EmptyReply) error {
	s.called("recoverTokens")

	return s.b.Ledger.RecoverTokens(args.Caller, args.Token, args.Destination)
}

// ====== Introspection ======

type GetInfoReply struct {
	Address            ids.ShortID     `json:"address"`
	Rules              string          `json:"rules"`
	Initialized        bool            `json:"initialized"`
	FeeReceiver        ids.ShortID     `json:"feeReceiver"`
	CommonFotBps       utiljson.Uint16 `json:"commonFotBps"`
	CommonBurnBps      utiljson.Uint16 `json:"commonBurnBps"`
	TotalSupply        utiljson.Amount `json:"totalSupply"`
	BurnCycleThreshold utiljson.Amount `json:"burnCycleThreshold"`
	RebaseDelta        utiljson.Amount `json:"rebaseDelta"`
	ActualBurnCycle    utiljson.Amount `json:"actualBurnCycle"`
	TotalBurn          utiljson.Amount `json:"totalBurn"`
	TotalFees          utiljson.Amount `json:"totalFees"`
	TotalBurnWithFees  utiljson.Amount `json:"totalBurnWithFees"`
	NumHolders         utiljson.Uint64 `json:"numHolders"`
}

// GetInfo returns the ledger configuration and accounting totals.
func (s *Service) GetInfo(_ *http.Request, _ *EmptyArgs, reply *GetInfoReply) error {
	s.called("getInfo")

	l := s.b.Ledger
	rates := l.CommonRates()
	reply.Address = l.Address()
	reply.Rules = l.Rules()
	reply.Initialized = l.IsInitialized()
	reply.FeeReceiver = l.FeeReceiver()
	reply.CommonFotBps = utiljson.Uint16(rates.FotBps)
	reply.CommonBurnBps = utiljson.Uint16(rates.BurnBps)
	reply.TotalSupply = utiljson.NewAmount(l.TotalSupply())
	reply.BurnCycleThreshold = utiljson.NewAmount(l.BurnCycleThreshold())
	reply.RebaseDelta = utiljson.NewAmount(l.RebaseDelta())
	reply.ActualBurnCycle = utiljson.NewAmount(l.ActualBurnCycle())
	reply.TotalBurn = utiljson.NewAmount(l.TotalBurn())
	reply.TotalFees = utiljson.NewAmount(l.TotalFees())
	reply.TotalBurnWithFees = utiljson.NewAmount(l.TotalBurnWithFees())
	reply.NumHolders = utiljson.Uint64(l.NumHolders())
	return nil
}

type CustomFee struct {
	Address ids.ShortID     `json:"address"`
	FotBps  utiljson.Uint16 `json:"fotBps"`
	BurnBps utiljson.Uint16 `json:"burnBps"`
}

type GetCustomFeesReply struct {
	CustomFees []CustomFee `json:"customFees"`
}

func (s *Service) GetCustomFees(_ *http.Request, _ *EmptyArgs, reply *GetCustomFeesReply) error {
	s.called("getCustomFees")

	custom := s.b.Ledger.CustomFees()
	reply.CustomFees = make([]CustomFee, 0, len(custom))
	for addr, c := range custom {
		reply.CustomFees = append(reply.CustomFees, CustomFee{
			Address: addr,
			FotBps:  utiljson.Uint16(c.FotBps),
			BurnBps: utiljson.Uint16(c.BurnBps),
		})
	}
	sortByAddress(reply.CustomFees, func(c CustomFee) ids.ShortID { return c.Address })
	return nil
}

type GetCustomFeeReply struct {
	Enabled bool `json:"enabled"`
	CustomFee
}

// GetCustomFee returns the override stored for an address. A removed override
// keeps its rates with enabled=false.
func (s *Service) GetCustomFee(_ *http.Request, args *AddressArgs, reply *GetCustomFeeReply) error {
	s.called("getCustomFee")

	c := s.b.Ledger.CustomFee(args.Address)
	reply.Enabled = c.Enabled
	reply.CustomFee = CustomFee{
		Address: args.Address,
		FotBps:  utiljson.Uint16(c.FotBps),
		BurnBps: utiljson.Uint16(c.BurnBps),
	}
	return nil
}

type VenueFee struct {
	Venue   ids.ShortID     `json:"venue"`
	BuyBps  utiljson.Uint16 `json:"buyBps"`
	SellBps utiljson.Uint16 `json:"sellBps"`
	BurnBps utiljson.Uint16 `json:"burnBps"`
}

type GetDexFeeReply struct {
	Enabled bool `json:"enabled"`
	VenueFee
}

// GetDexFee returns the rates stored for a venue, enabled or not.
func (s *Service) GetDexFee(_ *http.Request, args *AddressArgs, reply *GetDexFeeReply) error {
	s.called("getDexFee")

	v := s.b.Ledger.VenueFee(args.Address)
	reply.Enabled = v.Enabled
	reply.VenueFee = VenueFee{
		Venue:   args.Address,
		BuyBps:  utiljson.Uint16(v.BuyBps),
		SellBps: utiljson.Uint16(v.SellBps),
		BurnBps: utiljson.Uint16(v.BurnBps),
	}
	return nil
}

type GetDexFOTReply struct {
	Venues []VenueFee `json:"venues"`
}

func (s *Service) GetDexFOT(_ *http.Request, _ *EmptyArgs, reply *GetDexFOTReply) error {
	s.called("getDexFOT")

	venues := s.b.Ledger.DexFOT()
	reply.Venues = make([]VenueFee, 0, len(venues))
	for addr, v := range venues {
		reply.Venues = append(reply.Venues, VenueFee{
			Venue:   addr,
			BuyBps:  utiljson.Uint16(v.BuyBps),
			SellBps: utiljson.Uint16(v.SellBps),
			BurnBps: utiljson.Uint16(v.BurnBps),
		})
	}
	sortByAddress(reply.Venues, func(v VenueFee) ids.ShortID { return v.Venue })
	return nil
}

func (s *Service) IsExcluded(_ *http.Request, args *AddressArgs, reply *BoolReply) error {
	s.called("isExcluded")

	reply.Value = s.b.Ledger.IsExcluded(args.Address)
	return nil
}

type GetExcludedAccountsReply struct {
	Accounts []ids.ShortID `json:"accounts"`
}

func (s *Service) GetExcludedAccounts(_ *http.Request, _ *EmptyArgs, reply *GetExcludedAccountsReply) error {
	s.called("getExcludedAccounts")

	reply.Accounts = s.b.Ledger.ExcludedAccounts()
	return nil
}

// ====== Events ======

type GetEventsArgs struct {
	Start utiljson.Uint64 `json:"start"`
	Limit int             `json:"limit"`
}

type Event struct {
	Index  utiljson.Uint64  `json:"index"`
	Type   ledger.EventType `json:"type"`
	From   ids.ShortID      `json:"from"`
	To     ids.ShortID      `json:"to"`
	Amount utiljson.Amount  `json:"amount"`
	Supply *utiljson.Amount `json:"supply,omitempty"`
	Time   time.Time        `json:"time"`
}

type GetEventsReply struct {
	Events []Event `json:"events"`
	// Next is the start to pass to fetch the following events
	Next utiljson.Uint64 `json:"next"`
}

// GetEvents pages through the retained ledger events. A limit of zero or
// above the configured maximum is clamped to the maximum.
func (s *Service) GetEvents(_ *http.Request, args *GetEventsArgs, reply *GetEventsReply) error {
	s.called("getEvents")

	limit := args.Limit
	if limit <= 0 || limit > s.b.MaxEvents {
		limit = s.b.MaxEvents
	}
	events := s.b.Events.Since(uint64(args.Start), limit)
	reply.Events = make([]Event, len(events))
	for i, e := range events {
		reply.Events[i] = Event{
			Index:  utiljson.Uint64(e.Index),
			Type:   e.Type,
			From:   e.From,
			To:     e.To,
			Amount: utiljson.NewAmount(e.Amount),
			Time:   e.Time,
		}
		if e.Supply != nil {
			supply := utiljson.NewAmount(e.Supply)
			reply.Events[i].Supply = &supply
		}
	}
	if len(events) > 0 {
		reply.Next = utiljson.Uint64(events[len(events)-1].Index + 1)
	} else {
		reply.Next = utiljson.Uint64(max(uint64(args.Start), s.b.Events.Next()))
	}
	return nil
}

// ====== Tokens ======

type TokenBalanceArgs struct {
	Token   ids.ShortID `json:"token"`
	Address ids.ShortID `json:"address"`
}

// TokenBalanceOf reads a balance of any registered token.
func (s *Service) TokenBalanceOf(_ *http.Request, args *TokenBalanceArgs, reply *AmountReply) error {
	s.called("tokenBalanceOf")

	tok, err := s.b.Tokens.Get(args.Token)
	if err != nil {
		return err
	}
	reply.Amount = utiljson.NewAmount(tok.BalanceOf(args.Address))
	return nil
}

type TokenTransferArgs struct {
	Token  ids.ShortID     `json:"token"`
	Caller ids.ShortID     `json:"caller"`
	To     ids.ShortID     `json:"to"`
	Amount utiljson.Amount `json:"amount"`
}

// TokenTransfer transfers any registered token.
func (s *Service) TokenTransfer(_ *http.Request, args *TokenTransferArgs, _ *EmptyReply) error {
	s.called("tokenTransfer")

	tok, err := s.b.Tokens.Get(args.Token)
	if err != nil {
		return err
	}
	return tok.Transfer(args.Caller, args.To, args.Amount.Uint256())
}

type TokenApproveArgs struct {
	Token   ids.ShortID     `json:"token"`
	Caller  ids.ShortID     `json:"caller"`
	Spender ids.ShortID     `json:"spender"`
	Amount  utiljson.Amount `json:"amount"`
}

// TokenApprove approves a spender on any registered token.
func (s *Service) TokenApprove(_ *http.Request, args *TokenApproveArgs, _ *EmptyReply) error {
	s.called("tokenApprove")

	tok, err := s.b.Tokens.Get(args.Token)
	if err != nil {
		return err
	}
	return tok.Approve(args.Caller, args.Spender, args.Amount.Uint256())
}

// ====== Distributor ======

type SeedDistributorArgs struct {
	Caller           ids.ShortID `json:"caller"`
	Token            ids.ShortID `json:"token"`
	LiquidVault      ids.ShortID `json:"liquidVault"`
	Secondary        ids.ShortID `json:"secondary"`
	LiquidVaultShare uint8       `json:"liquidVaultShare"`
	BurnPercentage   uint8       `json:"burnPercentage"`
}

func (s *Service) SeedDistributor(_ *http.Request, args *SeedDistributorArgs, _ *EmptyReply) error {
	s.called("seedDistributor")

	if s.b.Distributor == nil {
		return ErrDistributorDisabled
	}
	return s.b.Distributor.Seed(args.Caller, distributor.Recipients{
		Token:            args.Token,
		LiquidVault:      args.LiquidVault,
		Secondary:        args.Secondary,
		LiquidVaultShare: args.LiquidVaultShare,
		BurnPercentage:   args.BurnPercentage,
	})
}

type GetDistributorReply struct {
	Address          ids.ShortID     `json:"address"`
	Initialized      bool            `json:"initialized"`
	Token            ids.ShortID     `json:"token"`
	LiquidVault      ids.ShortID     `json:"liquidVault"`
	Secondary        ids.ShortID     `json:"secondary"`
	LiquidVaultShare uint8           `json:"liquidVaultShare"`
	BurnPercentage   uint8           `json:"burnPercentage"`
	Balance          utiljson.Amount `json:"balance"`
}

func (s *Service) GetDistributor(_ *http.Request, _ *EmptyArgs, reply *GetDistributorReply) error {
	s.called("getDistributor")

	d := s.b.Distributor
	if d == nil {
		return ErrDistributorDisabled
	}
	r := d.Recipients()
	reply.Address = d.Address()
	reply.Initialized = d.Initialized()
	reply.Token = r.Token
	reply.LiquidVault = r.LiquidVault
	reply.Secondary = r.Secondary
	reply.LiquidVaultShare = r.LiquidVaultShare
	reply.BurnPercentage = r.BurnPercentage
	if tok, err := s.b.Tokens.Get(r.Token); err == nil {
		reply.Balance = utiljson.NewAmount(tok.BalanceOf(d.Address()))
	}
	return nil
}

type DistributeFeesReply struct {
	Vault     utiljson.Amount `json:"vault"`
	Burned    utiljson.Amount `json:"burned"`
	Secondary utiljson.Amount `json:"secondary"`
}

func (s *Service) DistributeFees(_ *http.Request, _ *EmptyArgs, reply *DistributeFeesReply) error {
	s.called("distributeFees")

	if s.b.Distributor == nil {
		return ErrDistributorDisabled
	}
	payout, err := s.b.Distributor.DistributeFees()
	if err != nil {
		return err
	}
	reply.Vault = utiljson.NewAmount(payout.Vault)
	reply.Burned = utiljson.NewAmount(payout.Burned)
	reply.Secondary = utiljson.NewAmount(payout.Secondary)
	return nil
}

// ====== Migration ======

type GetSwapReply struct {
	Address   ids.ShortID     `json:"address"`
	OldToken  ids.ShortID     `json:"oldToken"`
	NewToken  ids.ShortID     `json:"newToken"`
	Inventory utiljson.Amount `json:"inventory"`
}

func (s *Service) GetSwap(_ *http.Request, _ *EmptyArgs, reply *GetSwapReply) error {
	s.called("getSwap")

	if s.b.Swap == nil {
		return ErrSwapDisabled
	}
	inventory, err := s.b.Swap.Inventory()
	if err != nil {
		return err
	}
	reply.Address = s.b.Swap.Address()
	reply.OldToken = s.b.Swap.OldToken()
	reply.NewToken = s.b.Swap.NewToken()
	reply.Inventory = utiljson.NewAmount(inventory)
	return nil
}

// Swap exchanges the caller's whole legacy balance for the ledger's token.
func (s *Service) Swap(_ *http.Request, args *CallerArgs, reply *AmountReply) error {
	s.called("swap")

	if s.b.Swap == nil {
		return ErrSwapDisabled
	}
	amount, err := s.b.Swap.Swap(args.Caller)
	if err != nil {
		return fmt.Errorf("swap failed: %w", err)
	}
	reply.Amount = utiljson.NewAmount(amount)
	return nil
}

func sortByAddress[T any](entries []T, address func(T) ids.ShortID) {
	slices.SortFunc(entries, func(a, b T) int {
		addrA, addrB := address(a), address(b)
		return bytes.Compare(addrA[:], addrB[:])
	})
}

// ====== Snapshot ======

type GetSnapshotReply struct {
	// Bytes is the codec encoded snapshot of the committed ledger
	Bytes []byte `json:"bytes"`
}

func (s *Service) GetSnapshot(_ *http.Request, _ *EmptyArgs, reply *GetSnapshotReply) error {
	s.called("getSnapshot")

	b, err := s.b.Ledger.Snapshot().Bytes()
	if err != nil {
		return err
	}
	reply.Bytes = b
	return nil
}
