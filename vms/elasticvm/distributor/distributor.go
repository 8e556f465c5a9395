// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package distributor splits the fees collected at its address between a
// liquid vault, a burn and a secondary recipient.
package distributor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/elastic/utils/wrappers"
	"github.com/luxfi/elastic/vms/elasticvm/owner"
	"github.com/luxfi/elastic/vms/elasticvm/token"
)

const (
	HundredPercent = 100

	recipientsLen = 3*wrappers.ShortIDLen + 2*wrappers.ByteLen
)

var (
	ErrNotSeeded         = errors.New("distributor is not seeded")
	ErrInvalidPercentage = errors.New("vault share and burn exceed 100%")
	ErrEmptyRecipient    = errors.New("empty recipient")

	recipientsKey = []byte("recipients")
)

// Recipients is the seeded payout configuration.
type Recipients struct {
	Token            ids.ShortID
	LiquidVault      ids.ShortID
	Secondary        ids.ShortID
	LiquidVaultShare uint8
	BurnPercentage   uint8
}

// Payout is the outcome of a distribution.
type Payout struct {
	Vault     *uint256.Int
	Burned    *uint256.Int
	Secondary *uint256.Int
}

type Distributor struct {
	log     log.Logger
	db      database.Database
	auth    owner.Authorizer
	tokens  *token.Registry
	address ids.ShortID

	lock       sync.Mutex
	seeded     bool
	recipients Recipients
}

// New loads the recipients stored in db, if any. address is the account
// that collects fees.
func New(
	logger log.Logger,
	db database.Database,
	auth owner.Authorizer,
	tokens *token.Registry,
	address ids.ShortID,
) (*Distributor, error) {
	d := &Distributor{
		log:     logger,
		db:      db,
		auth:    auth,
		tokens:  tokens,
		address: address,
	}

	recipientsBytes, err := db.Get(recipientsKey)
	switch {
	case err == nil:
		d.recipients, err = parseRecipients(recipientsBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse recipients: %w", err)
		}
		d.seeded = true
		return d, nil
	case errors.Is(err, database.ErrNotFound):
		return d, nil
	default:
		return nil, fmt.Errorf("failed to load recipients: %w", err)
	}
}

func (d *Distributor) Address() ids.ShortID {
	return d.address
}

// Seed replaces the payout configuration. It may be called repeatedly.
func (d *Distributor) Seed(caller ids.ShortID, r Recipients) error {
	if !d.auth.IsAuthorized(caller) {
		return fmt.Errorf("%w: %s", owner.ErrUnauthorized, caller)
	}
	if int(r.LiquidVaultShare)+int(r.BurnPercentage) > HundredPercent {
		return fmt.Errorf("%w: %d+%d", ErrInvalidPercentage, r.LiquidVaultShare, r.BurnPercentage)
	}
	if r.LiquidVaultShare > 0 && r.LiquidVault == ids.ShortEmpty {
		return fmt.Errorf("%w: liquid vault", ErrEmptyRecipient)
	}
	if int(r.LiquidVaultShare)+int(r.BurnPercentage) < HundredPercent && r.Secondary == ids.ShortEmpty {
		return fmt.Errorf("%w: secondary", ErrEmptyRecipient)
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	if err := d.db.Put(recipientsKey, marshalRecipients(r)); err != nil {
		return fmt.Errorf("failed to store recipients: %w", err)
	}
	d.recipients = r
	d.seeded = true

	d.log.Info("distributor seeded",
		log.Stringer("token", r.Token),
		log.Stringer("liquidVault", r.LiquidVault),
		log.Stringer("secondary", r.Secondary),
		log.Int("liquidVaultShare", int(r.LiquidVaultShare)),
		log.Int("burnPercentage", int(r.BurnPercentage)),
	)
	return nil
}

func (d *Distributor) Initialized() bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.seeded
}

func (d *Distributor) Recipients() Recipients {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.recipients
}

// Token returns the seeded token address.
func (d *Distributor) Token() ids.ShortID {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.recipients.Token
}

// DistributeFees pays out the distributor's whole balance of the seeded
// token. The burn share goes through the token's burn, so the distributor
// must be allowed to burn, typically by being the fee receiver. The burn
// runs before any payment, so a refused burn leaves every balance untouched.
func (d *Distributor) DistributeFees() (Payout, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if !d.seeded {
		return Payout{}, ErrNotSeeded
	}
	r := d.recipients
	tok, err := d.tokens.Get(r.Token)
	if err != nil {
		return Payout{}, err
	}

	balance := tok.BalanceOf(d.address)
	payout := Payout{
		Vault:     percent(balance, r.LiquidVaultShare),
		Burned:    percent(balance, r.BurnPercentage),
		Secondary: new(uint256.Int),
	}
	if balance.IsZero() {
		return payout, nil
	}
	// Seed bounds vault+burn by 100%.
	payout.Secondary.Sub(balance, payout.Vault)
	payout.Secondary.Sub(payout.Secondary, payout.Burned)

	if !payout.Burned.IsZero() {
		burner, ok := tok.(token.Burner)
		if !ok {
			return Payout{}, fmt.Errorf("%w: %s", token.ErrBurnUnsupported, r.Token)
		}
		if err := burner.Burn(d.address, payout.Burned); err != nil {
			return Payout{}, fmt.Errorf("failed to burn: %w", err)
		}
	}
	if !payout.Vault.IsZero() {
		if err := tok.Transfer(d.address, r.LiquidVault, payout.Vault); err != nil {
			return Payout{}, fmt.Errorf("failed to pay liquid vault: %w", err)
		}
	}
	// A share-based token may round the remaining balance down after the
	// burn.
	if remaining := tok.BalanceOf(d.address); remaining.Lt(payout.Secondary) {
		payout.Secondary = remaining
	}
	if !payout.Secondary.IsZero() {
		if err := tok.Transfer(d.address, r.Secondary, payout.Secondary); err != nil {
			return Payout{}, fmt.Errorf("failed to pay secondary: %w", err)
		}
	}

	d.log.Info("fees distributed",
		log.String("vault", payout.Vault.Dec()),
		log.String("burned", payout.Burned.Dec()),
		log.String("secondary", payout.Secondary.Dec()),
	)
	return payout, nil
}

func percent(amount *uint256.Int, pct uint8) *uint256.Int {
	v := new(uint256.Int).Mul(amount, uint256.NewInt(uint64(pct)))
	return v.Div(v, uint256.NewInt(HundredPercent))
}

func marshalRecipients(r Recipients) []byte {
	p := wrappers.NewPacker(recipientsLen)
	p.PackShortID(r.Token)
	p.PackShortID(r.LiquidVault)
	p.PackShortID(r.Secondary)
	p.PackByte(r.LiquidVaultShare)
	p.PackByte(r.BurnPercentage)
	return p.Bytes
}

func parseRecipients(b []byte) (Recipients, error) {
	p := &wrappers.Packer{Bytes: b}
	r := Recipients{
		Token:            p.UnpackShortID(),
		LiquidVault:      p.UnpackShortID(),
		Secondary:        p.UnpackShortID(),
		LiquidVaultShare: p.UnpackByte(),
		BurnPercentage:   p.UnpackByte(),
	}
	return r, p.Done()
}
