// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package elasticvm

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/holiman/uint256"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/elastic/vms/elasticvm/api"
	"github.com/luxfi/elastic/vms/elasticvm/config"
	"github.com/luxfi/elastic/vms/elasticvm/genesis"
	"github.com/luxfi/elastic/vms/elasticvm/ledger"

	utiljson "github.com/luxfi/elastic/utils/json"
)

type fixture struct {
	db      database.Database
	genesis *genesis.Genesis
	vm      *VM
}

func testGenesis() *genesis.Genesis {
	return &genesis.Genesis{
		Owner:         ids.GenerateTestShortID(),
		Address:       ids.GenerateTestShortID(),
		InitialSupply: utiljson.NewAmount(uint256.NewInt(1_000_000)),
		FeeReceiver:   ids.GenerateTestShortID(),
		CommonFotBps:  200,
		CommonBurnBps: 300,
		BurnCycle:     utiljson.NewAmount(uint256.NewInt(100_000)),
		RebaseDelta:   utiljson.NewAmount(uint256.NewInt(50_000)),
		Distributor:   ids.GenerateTestShortID(),
		Migration: &genesis.Migration{
			Swap:         ids.GenerateTestShortID(),
			LegacyToken:  ids.GenerateTestShortID(),
			LegacySupply: utiljson.NewAmount(uint256.NewInt(10_000)),
		},
	}
}

func newFixture(t *testing.T, configBytes []byte) *fixture {
	f := &fixture{
		db:      memdb.New(),
		genesis: testGenesis(),
	}
	f.vm = f.open(t, configBytes)
	return f
}

// open initializes a new VM over the fixture database.
func (f *fixture) open(t *testing.T, configBytes []byte) *VM {
	require := require.New(t)

	factory := &Factory{
		Config: config.DefaultConfig(),
		Clock:  clockwork.NewFakeClock(),
	}
	vmIntf, err := factory.New(log.NewNoOpLogger())
	require.NoError(err)
	vm, ok := vmIntf.(*VM)
	require.True(ok)

	genesisBytes, err := f.genesis.Bytes()
	require.NoError(err)
	require.NoError(vm.Initialize(context.Background(), f.db, genesisBytes, configBytes))
	return vm
}

func call(t *testing.T, handler http.Handler, method string, args, reply interface{}) error {
	require := require.New(t)

	body, err := json2.EncodeClientRequest(ServiceName+"."+method, args)
	require.NoError(err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return json2.DecodeClientResponse(rec.Body, reply)
}

func TestInitialize(t *testing.T) {
	require := require.New(t)

	f := newFixture(t, nil)
	vm := f.vm
	g := f.genesis

	version, err := vm.Version(context.Background())
	require.NoError(err)
	require.Equal(Version.String(), version)

	require.Equal(config.DefaultConfig(), vm.Config())
	require.Equal(g.Address, vm.Ledger().Address())
	require.Equal(config.ImplementationV2, vm.Ledger().Rules())
	require.Equal(uint256.NewInt(1_000_000), vm.Ledger().BalanceOf(g.Owner))
	require.Equal(g.Owner, vm.Owner().Owner())
	require.Equal(g.FeeReceiver, vm.Ledger().FeeReceiver())

	require.NotNil(vm.Distributor())
	require.Equal(g.Distributor, vm.Distributor().Address())

	require.NotNil(vm.Swap())
	legacy, err := vm.Tokens().Get(g.Migration.LegacyToken)
	require.NoError(err)
	require.Equal(uint256.NewInt(10_000), legacy.BalanceOf(g.Owner))

	// Genesis mint
	require.Equal(uint64(1), vm.Events().Next())

	genesisBytes, err := g.Bytes()
	require.NoError(err)
	require.ErrorIs(vm.Initialize(context.Background(), f.db, genesisBytes, nil), ErrAlreadyInitialized)
}

func TestInitializeWithoutOptionalComponents(t *testing.T) {
	require := require.New(t)

	g := testGenesis()
	g.Distributor = ids.ShortEmpty
	g.Migration = nil
	genesisBytes, err := g.Bytes()
	require.NoError(err)

	vm := New(log.NewNoOpLogger(), config.DefaultConfig(), nil)
	require.NoError(vm.Initialize(context.Background(), memdb.New(), genesisBytes, nil))
	require.Nil(vm.Distributor())
	require.Nil(vm.Swap())

	handlers, err := vm.CreateHandlers(context.Background())
	require.NoError(err)
	err = call(t, handlers[""], "DistributeFees", &api.EmptyArgs{}, &api.DistributeFeesReply{})
	require.ErrorContains(err, api.ErrDistributorDisabled.Error())
	err = call(t, handlers[""], "Swap", &api.CallerArgs{Caller: g.Owner}, &api.AmountReply{})
	require.ErrorContains(err, api.ErrSwapDisabled.Error())

	require.NoError(vm.Shutdown(context.Background()))
}

func TestInitializeInvalid(t *testing.T) {
	genesisBytes, err := testGenesis().Bytes()
	require.NoError(t, err)

	tests := []struct {
		name         string
		genesisBytes []byte
		configBytes  []byte
		expectedErr  error
	}{
		{
			name:         "unknown implementation",
			genesisBytes: genesisBytes,
			configBytes:  []byte(`{"implementation":"v3"}`),
			expectedErr:  ledger.ErrUnknownRules,
		},
		{
			name:         "invalid event history",
			genesisBytes: genesisBytes,
			configBytes:  []byte(`{"eventHistory":0}`),
			expectedErr:  config.ErrInvalidEventHistory,
		},
		{
			name:         "missing owner",
			genesisBytes: []byte(`{"initialSupply":"1"}`),
			expectedErr:  genesis.ErrMissingOwner,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			vm := New(log.NewNoOpLogger(), config.DefaultConfig(), nil)
			err := vm.Initialize(context.Background(), memdb.New(), test.genesisBytes, test.configBytes)
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestLegacyImplementation(t *testing.T) {
	f := newFixture(t, []byte(`{"implementation":"v1"}`))
	require.Equal(t, config.ImplementationV1, f.vm.Ledger().Rules())
	require.Equal(t, config.ImplementationV1, f.vm.Config().Implementation)
}

func TestRestartKeepsState(t *testing.T) {
	require := require.New(t)

	f := newFixture(t, nil)
	user := ids.GenerateTestShortID()
	require.NoError(f.vm.Ledger().Transfer(f.genesis.Owner, user, uint256.NewInt(10_000)))
	balance := f.vm.Ledger().BalanceOf(user)
	supply := f.vm.Ledger().TotalSupply()

	// A second VM over the same database skips the genesis.
	f.genesis.InitialSupply = utiljson.NewAmount(uint256.NewInt(1))
	restarted := f.open(t, nil)
	require.Equal(balance, restarted.Ledger().BalanceOf(user))
	require.Equal(supply, restarted.Ledger().TotalSupply())
	require.Zero(restarted.Events().Next())
}

func TestHandlers(t *testing.T) {
	require := require.New(t)

	f := newFixture(t, nil)
	g := f.genesis
	handlers, err := f.vm.CreateHandlers(context.Background())
	require.NoError(err)
	handler := handlers[""]

	user := ids.GenerateTestShortID()
	receipt := &api.ReceiptReply{}
	require.NoError(call(t, handler, "Transfer", &api.TransferArgs{
		Caller: g.Owner,
		To:     user,
		Amount: utiljson.NewAmount(uint256.NewInt(10_000)),
	}, receipt))
	require.Equal("common", receipt.Source)
	require.Equal(uint256.NewInt(200), receipt.Fee.Uint256())
	require.Equal(uint256.NewInt(300), receipt.Burn.Uint256())
	require.Equal(uint256.NewInt(9_500), receipt.Net.Uint256())
	require.False(receipt.Rebased)

	balance := &api.AmountReply{}
	require.NoError(call(t, handler, "BalanceOf", &api.AddressArgs{Address: user}, balance))
	require.Equal(uint256.NewInt(9_500), balance.Amount.Uint256())

	info := &api.GetInfoReply{}
	require.NoError(call(t, handler, "GetInfo", &api.EmptyArgs{}, info))
	require.Equal(g.Address, info.Address)
	require.Equal(uint256.NewInt(300), info.TotalBurn.Uint256())
	require.Equal(uint256.NewInt(200), info.TotalFees.Uint256())
	require.Equal(uint256.NewInt(1_000_000-300), info.TotalSupply.Uint256())

	events := &api.GetEventsReply{}
	require.NoError(call(t, handler, "GetEvents", &api.GetEventsArgs{}, events))
	require.NotEmpty(events.Events)
	require.Equal(uint64(events.Next), f.vm.Events().Next())

	err = call(t, handler, "SetCommonFee", &api.SetRateArgs{
		Caller: user,
		Bps:    100,
	}, &api.EmptyReply{})
	require.ErrorContains(err, ledger.ErrUnauthorized.Error())

	health, err := f.vm.HealthCheck(context.Background())
	require.NoError(err)
	require.Equal(Health{
		Initialized: true,
		Rules:       config.ImplementationV2,
		Holders:     3,
		NextEvent:   f.vm.Events().Next(),
	}, health)
}

func TestNotInitialized(t *testing.T) {
	require := require.New(t)

	vm := New(log.NewNoOpLogger(), config.DefaultConfig(), nil)
	_, err := vm.CreateHandlers(context.Background())
	require.ErrorIs(err, ErrNotInitialized)
	_, err = vm.HealthCheck(context.Background())
	require.ErrorIs(err, ErrNotInitialized)
	_, err = vm.Snapshot()
	require.ErrorIs(err, ErrNotInitialized)
	require.NoError(vm.Shutdown(context.Background()))
}

func TestSnapshot(t *testing.T) {
	require := require.New(t)

	f := newFixture(t, nil)
	snap, err := f.vm.Snapshot()
	require.NoError(err)
	require.NoError(snap.Verify())
	require.Equal(f.genesis.Address, snap.Address)
	require.Equal(uint256.NewInt(1_000_000), snap.BalanceOf(f.genesis.Owner))

	require.NoError(f.vm.Shutdown(context.Background()))
	_, err = f.vm.Snapshot()
	require.ErrorIs(err, ErrNotInitialized)
}
