// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/holiman/uint256"

	"github.com/luxfi/ids"

	utiljson "github.com/luxfi/elastic/utils/json"
)

// Client calls the API of a running daemon.
type Client struct {
	uri  string
	http *http.Client
}

// NewClient returns a client of the API served at uri, for example
// http://127.0.0.1:9650/ext/elastic.
func NewClient(uri string) *Client {
	return &Client{
		uri:  uri,
		http: http.DefaultClient,
	}
}

func (c *Client) call(ctx context.Context, method string, args, reply interface{}) error {
	body, err := json2.EncodeClientRequest(ServiceName+"."+method, args)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uri, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to call %s: status %s", method, resp.Status)
	}
	return json2.DecodeClientResponse(resp.Body, reply)
}

func (c *Client) GetInfo(ctx context.Context) (*GetInfoReply, error) {
	reply := &GetInfoReply{}
	return reply, c.call(ctx, "GetInfo", &EmptyArgs{}, reply)
}

func (c *Client) BalanceOf(ctx context.Context, addr ids.ShortID) (*uint256.Int, error) {
	reply := &AmountReply{}
	if err := c.call(ctx, "BalanceOf", &AddressArgs{Address: addr}, reply); err != nil {
		return nil, err
	}
	return reply.Amount.Uint256(), nil
}

func (c *Client) Transfer(ctx context.Context, caller, to ids.ShortID, amount *uint256.Int) (*ReceiptReply, error) {
	reply := &ReceiptReply{}
	return reply, c.call(ctx, "Transfer", &TransferArgs{
		Caller: caller,
		To:     to,
		Amount: utiljson.NewAmount(amount),
	}, reply)
}

// GetSnapshot returns the encoded snapshot of the daemon's committed ledger.
func (c *Client) GetSnapshot(ctx context.Context) ([]byte, error) {
	reply := &GetSnapshotReply{}
	if err := c.call(ctx, "GetSnapshot", &EmptyArgs{}, reply); err != nil {
		return nil, err
	}
	return reply.Bytes, nil
}
