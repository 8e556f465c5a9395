// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ids"

	"github.com/luxfi/elastic/vms/elasticvm/api"
	"github.com/luxfi/elastic/vms/elasticvm/ledger"
	"github.com/luxfi/elastic/vms/elasticvm/snapshot"
)

func TestClient(t *testing.T) {
	require := require.New(t)

	f := newFixture(t, 16)
	handlers, err := f.vm.CreateHandlers(context.Background())
	require.NoError(err)
	server := httptest.NewServer(handlers[""])
	defer server.Close()

	ctx := context.Background()
	client := api.NewClient(server.URL)

	info, err := client.GetInfo(ctx)
	require.NoError(err)
	require.Equal(f.genesis.Address, info.Address)
	require.Equal(uint256.NewInt(1_000_000), info.TotalSupply.Uint256())

	user := ids.GenerateTestShortID()
	receipt, err := client.Transfer(ctx, f.genesis.Owner, user, uint256.NewInt(10_000))
	require.NoError(err)
	require.Equal(uint256.NewInt(9_500), receipt.Net.Uint256())

	balance, err := client.BalanceOf(ctx, user)
	require.NoError(err)
	require.Equal(uint256.NewInt(9_500), balance)

	_, err = client.Transfer(ctx, user, f.genesis.Owner, uint256.NewInt(1_000_000))
	require.ErrorContains(err, ledger.ErrInsufficientBalance.Error())

	snapBytes, err := client.GetSnapshot(ctx)
	require.NoError(err)
	snap, err := snapshot.Parse(snapBytes)
	require.NoError(err)
	require.NoError(snap.Verify())
	require.Equal(uint256.NewInt(9_500), snap.BalanceOf(user))
}
