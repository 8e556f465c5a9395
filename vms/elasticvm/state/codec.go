// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"github.com/holiman/uint256"

	"github.com/luxfi/ids"

	"github.com/luxfi/elastic/utils/wrappers"
	"github.com/luxfi/elastic/vms/elasticvm/fee"
)

const (
	ratesLen     = 2 * wrappers.ShortLen
	customFeeLen = wrappers.BoolLen + 2*wrappers.ShortLen
	venueFeeLen  = wrappers.BoolLen + 3*wrappers.ShortLen
)

func marshalUint256(v *uint256.Int) []byte {
	p := wrappers.NewPacker(wrappers.Uint256Len)
	p.PackUint256(v)
	return p.Bytes
}

func parseUint256(b []byte) (*uint256.Int, error) {
	p := &wrappers.Packer{Bytes: b}
	v := p.UnpackUint256()
	return v, p.Done()
}

func marshalRates(r fee.Rates) []byte {
	p := wrappers.NewPacker(ratesLen)
	p.PackShort(r.FotBps)
	p.PackShort(r.BurnBps)
	return p.Bytes
}

func parseRates(b []byte) (fee.Rates, error) {
	p := &wrappers.Packer{Bytes: b}
	r := fee.Rates{
		FotBps:  p.UnpackShort(),
		BurnBps: p.UnpackShort(),
	}
	return r, p.Done()
}

func marshalCustomFee(c fee.CustomFee) []byte {
	p := wrappers.NewPacker(customFeeLen)
	p.PackBool(c.Enabled)
	p.PackShort(c.FotBps)
	p.PackShort(c.BurnBps)
	return p.Bytes
}

func parseCustomFee(b []byte) (fee.CustomFee, error) {
	p := &wrappers.Packer{Bytes: b}
	c := fee.CustomFee{
		Enabled: p.UnpackBool(),
		FotBps:  p.UnpackShort(),
		BurnBps: p.UnpackShort(),
	}
	return c, p.Done()
}

func marshalVenueFee(v fee.VenueFee) []byte {
	p := wrappers.NewPacker(venueFeeLen)
	p.PackBool(v.Enabled)
	p.PackShort(v.BuyBps)
	p.PackShort(v.SellBps)
	p.PackShort(v.BurnBps)
	return p.Bytes
}

func parseVenueFee(b []byte) (fee.VenueFee, error) {
	p := &wrappers.Packer{Bytes: b}
	v := fee.VenueFee{
		Enabled: p.UnpackBool(),
		BuyBps:  p.UnpackShort(),
		SellBps: p.UnpackShort(),
		BurnBps: p.UnpackShort(),
	}
	return v, p.Done()
}

func parseShortID(b []byte) (ids.ShortID, error) {
	p := &wrappers.Packer{Bytes: b}
	id := p.UnpackShortID()
	return id, p.Done()
}

func allowanceDBKey(k allowanceKey) []byte {
	p := wrappers.NewPacker(2 * wrappers.ShortIDLen)
	p.PackShortID(k.owner)
	p.PackShortID(k.spender)
	return p.Bytes
}

func parseAllowanceDBKey(b []byte) (allowanceKey, error) {
	p := &wrappers.Packer{Bytes: b}
	k := allowanceKey{
		owner:   p.UnpackShortID(),
		spender: p.UnpackShortID(),
	}
	return k, p.Done()
}
