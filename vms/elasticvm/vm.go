// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package elasticvm hosts the elastic supply ledger together with its fee
// distributor, migration swap and JSON-RPC API.
package elasticvm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/jonboulle/clockwork"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/luxfi/version"

	"github.com/luxfi/elastic/vms/elasticvm/api"
	"github.com/luxfi/elastic/vms/elasticvm/config"
	"github.com/luxfi/elastic/vms/elasticvm/distributor"
	"github.com/luxfi/elastic/vms/elasticvm/genesis"
	"github.com/luxfi/elastic/vms/elasticvm/ledger"
	"github.com/luxfi/elastic/vms/elasticvm/metrics"
	"github.com/luxfi/elastic/vms/elasticvm/owner"
	"github.com/luxfi/elastic/vms/elasticvm/snapshot"
	"github.com/luxfi/elastic/vms/elasticvm/state"
	"github.com/luxfi/elastic/vms/elasticvm/swap"
	"github.com/luxfi/elastic/vms/elasticvm/token"
)

const ServiceName = api.ServiceName

var (
	Version = &version.Semantic{
		Major: 1,
		Minor: 0,
		Patch: 0,
	}

	stateDBPrefix       = []byte("state")
	ownerDBPrefix       = []byte("owner")
	distributorDBPrefix = []byte("distributor")

	ErrNotInitialized     = errors.New("vm not initialized")
	ErrAlreadyInitialized = errors.New("vm already initialized")
)

type VM struct {
	config config.Config
	log    log.Logger
	clock  clockwork.Clock

	lock        sync.RWMutex
	initialized bool

	registry    metric.Registry
	metrics     metrics.Metrics
	db          database.Database
	state       *state.State
	genesis     *genesis.Genesis
	owner       *owner.Ownable
	tokens      *token.Registry
	events      *ledger.EventLog
	ledger      *ledger.Ledger
	distributor *distributor.Distributor
	swap        *swap.Swap
}

// New returns an uninitialized VM. cfg is used unless Initialize is given
// config bytes.
func New(logger log.Logger, cfg config.Config, clock clockwork.Clock) *VM {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &VM{
		config: cfg,
		log:    logger,
		clock:  clock,
	}
}

// Initialize opens the ledger stored in db. On first start the genesis is
// applied, later starts load the persisted state and ignore the genesis
// supply and fee configuration.
func (vm *VM) Initialize(
	_ context.Context,
	db database.Database,
	genesisBytes []byte,
	configBytes []byte,
) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	if vm.initialized {
		return ErrAlreadyInitialized
	}

	if len(configBytes) > 0 {
		cfg, err := config.Parse(configBytes)
		if err != nil {
			return err
		}
		vm.config = cfg
	}
	if err := vm.config.Verify(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	g, err := genesis.Parse(genesisBytes)
	if err != nil {
		return err
	}
	rules, err := ledger.LookupRules(vm.config.Implementation)
	if err != nil {
		return err
	}

	vm.registry = metric.NewRegistry()
	vm.metrics, err = metrics.New(vm.registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	vm.state, err = state.New(prefixdb.New(stateDBPrefix, db))
	if err != nil {
		return fmt.Errorf("failed to open state: %w", err)
	}
	vm.owner, err = owner.New(vm.log, prefixdb.New(ownerDBPrefix, db), g.Owner)
	if err != nil {
		return fmt.Errorf("failed to open owner: %w", err)
	}

	vm.db = db
	vm.genesis = g
	vm.tokens = token.NewRegistry()
	vm.events = ledger.NewEventLog(vm.config.EventHistory)
	vm.ledger, err = ledger.New(ledger.Params{
		Log:        vm.log,
		State:      vm.state,
		Authorizer: vm.owner,
		Rules:      rules,
		Metrics:    vm.metrics,
		Clock:      vm.clock,
		Sink:       vm.events,
		Tokens:     vm.tokens,
		Address:    g.Address,
	})
	if err != nil {
		return err
	}
	if !vm.ledger.IsInitialized() {
		if err := vm.ledger.Init(g.Owner, g); err != nil {
			return fmt.Errorf("failed to apply genesis: %w", err)
		}
	}

	if g.Distributor != ids.ShortEmpty {
		vm.distributor, err = distributor.New(
			vm.log,
			prefixdb.New(distributorDBPrefix, db),
			vm.owner,
			vm.tokens,
			g.Distributor,
		)
		if err != nil {
			return err
		}
	}

	if m := g.Migration; m != nil {
		legacy := token.NewBasic(g.Owner, m.LegacySupply.Uint256())
		if err := vm.tokens.Register(m.LegacyToken, legacy); err != nil {
			return err
		}
		vm.swap = swap.New(vm.log, vm.tokens, m.Swap, m.LegacyToken, g.Address)
	}

	vm.initialized = true
	vm.log.Info("elastic VM initialized",
		log.String("version", Version.String()),
		log.String("implementation", rules.Name()),
		log.Stringer("address", g.Address),
		log.Bool("distributor", vm.distributor != nil),
		log.Bool("swap", vm.swap != nil),
	)
	return nil
}

func (vm *VM) Shutdown(context.Context) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	if !vm.initialized {
		return nil
	}
	vm.initialized = false
	vm.log.Info("shutting down elastic VM")
	return errors.Join(
		vm.state.Close(),
		vm.db.Close(),
	)
}

func (*VM) Version(context.Context) (string, error) {
	return Version.String(), nil
}

// CreateHandlers returns the JSON-RPC API, keyed by path extension.
func (vm *VM) CreateHandlers(context.Context) (map[string]http.Handler, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if !vm.initialized {
		return nil, ErrNotInitialized
	}

	codec := json2.NewCodec()
	server := rpc.NewServer()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	server.RegisterInterceptFunc(vm.metrics.InterceptRequest)
	server.RegisterAfterFunc(vm.metrics.AfterRequest)
	service := api.NewService(api.Backend{
		Log:         vm.log,
		Ledger:      vm.ledger,
		Owner:       vm.owner,
		Tokens:      vm.tokens,
		Events:      vm.events,
		Distributor: vm.distributor,
		Swap:        vm.swap,
		MaxEvents:   vm.config.MaxEventsPerRequest,
	})
	return map[string]http.Handler{
		"": server,
	}, server.RegisterService(service, ServiceName)
}

// Health is reported by HealthCheck.
type Health struct {
	Initialized bool   `json:"initialized"`
	Rules       string `json:"rules"`
	Holders     int    `json:"holders"`
	NextEvent   uint64 `json:"nextEvent"`
}

// HealthCheck verifies that the holder shares add up to the total shares.
func (vm *VM) HealthCheck(context.Context) (interface{}, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if !vm.initialized {
		return Health{}, ErrNotInitialized
	}
	health := Health{
		Initialized: vm.ledger.IsInitialized(),
		Rules:       vm.ledger.Rules(),
		Holders:     vm.ledger.NumHolders(),
		NextEvent:   vm.events.Next(),
	}
	if err := vm.ledger.Snapshot().Verify(); err != nil {
		return health, fmt.Errorf("ledger unhealthy: %w", err)
	}
	return health, nil
}

func (vm *VM) Config() config.Config {
	return vm.config
}

func (vm *VM) Genesis() *genesis.Genesis {
	return vm.genesis
}

// Registry holds the VM and API metrics.
func (vm *VM) Registry() metric.Registry {
	return vm.registry
}

func (vm *VM) Ledger() *ledger.Ledger {
	return vm.ledger
}

func (vm *VM) Owner() *owner.Ownable {
	return vm.owner
}

func (vm *VM) Tokens() *token.Registry {
	return vm.tokens
}

func (vm *VM) Events() *ledger.EventLog {
	return vm.events
}

// Distributor is nil unless the genesis names a distributor address.
func (vm *VM) Distributor() *distributor.Distributor {
	return vm.distributor
}

// Swap is nil unless the genesis configures a migration.
func (vm *VM) Swap() *swap.Swap {
	return vm.swap
}

// Snapshot captures the committed ledger state.
func (vm *VM) Snapshot() (*snapshot.Snapshot, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if !vm.initialized {
		return nil, ErrNotInitialized
	}
	return vm.ledger.Snapshot(), nil
}
