// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"

	"github.com/luxfi/elastic/api/health"
	"github.com/luxfi/elastic/api/metrics"
	"github.com/luxfi/elastic/api/server"
	"github.com/luxfi/elastic/utils/compression"
	"github.com/luxfi/elastic/utils/profiler"
	"github.com/luxfi/elastic/vms/elasticvm"
	"github.com/luxfi/elastic/vms/elasticvm/config"
	"github.com/luxfi/elastic/vms/elasticvm/snapshot"
)

const (
	metricsPath        = "/metrics"
	runtimeMetricsPath = "/metrics/runtime"
	healthPath         = "/health"
)

var errUnexpectedVM = errors.New("unexpected vm type")

// node serves one ledger over HTTP.
type node struct {
	log      log.Logger
	config   Config
	vm       *elasticvm.VM
	listener net.Listener
	server   *server.Server
	profiler *profiler.Continuous
}

func newNode(ctx context.Context, logger log.Logger, cfg Config, clock clockwork.Clock) (*node, error) {
	factory := &elasticvm.Factory{
		Config: config.DefaultConfig(),
		Clock:  clock,
	}
	vmIntf, err := factory.New(logger)
	if err != nil {
		return nil, err
	}
	vm, ok := vmIntf.(*elasticvm.VM)
	if !ok {
		return nil, fmt.Errorf("%w: %T", errUnexpectedVM, vmIntf)
	}
	if err := vm.Initialize(ctx, memdb.New(), cfg.GenesisBytes, cfg.VMConfigBytes); err != nil {
		return nil, err
	}

	n := &node{
		log:    logger,
		config: cfg,
		vm:     vm,
	}
	if err := n.initServer(ctx, clock); err != nil {
		return nil, errors.Join(err, vm.Shutdown(ctx))
	}
	if cfg.Profile.Enabled {
		n.profiler, err = profiler.NewContinuous(logger, cfg.Profile, clock)
		if err != nil {
			return nil, errors.Join(err, n.listener.Close(), vm.Shutdown(ctx))
		}
	}
	return n, nil
}

func (n *node) initServer(ctx context.Context, clock clockwork.Clock) error {
	gatherer := metrics.NewMultiGatherer()
	if err := gatherer.Register(elasticvm.ServiceName, n.vm.Registry()); err != nil {
		return err
	}
	httpRegistry, err := metrics.MakeAndRegister(gatherer, "http")
	if err != nil {
		return err
	}
	healthRegistry, err := metrics.MakeAndRegister(gatherer, "node")
	if err != nil {
		return err
	}

	checks := health.New(n.log, healthRegistry, clock)
	if err := checks.RegisterCheck(elasticvm.ServiceName, n.vm, health.ApplicationTag); err != nil {
		return err
	}

	runtimeRegistry := prometheus.NewRegistry()
	if err := errors.Join(
		runtimeRegistry.Register(collectors.NewGoCollector()),
		runtimeRegistry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})),
	); err != nil {
		return err
	}

	address := net.JoinHostPort(n.config.HTTPHost, strconv.Itoa(int(n.config.HTTPPort)))
	n.listener, err = net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	n.server = server.New(n.log, n.listener, n.config.Server, httpRegistry, clock)

	handlers, err := n.vm.CreateHandlers(ctx)
	if err != nil {
		return errors.Join(err, n.listener.Close())
	}
	for extension, handler := range handlers {
		if err := n.server.AddRoute(handler, elasticvm.ServiceName, extension); err != nil {
			return errors.Join(err, n.listener.Close())
		}
	}
	if err := errors.Join(
		n.server.Handle(metricsPath, metrics.Handler(gatherer)),
		n.server.Handle(runtimeMetricsPath, promhttp.HandlerFor(runtimeRegistry, promhttp.HandlerOpts{})),
		n.server.Handle(healthPath, checks.Handler()),
	); err != nil {
		return errors.Join(err, n.listener.Close())
	}
	return nil
}

// Addr is the address the HTTP server listens on.
func (n *node) Addr() net.Addr {
	return n.listener.Addr()
}

// Dispatch serves until ctx is cancelled or the server fails, then shuts the
// ledger down.
func (n *node) Dispatch(ctx context.Context) error {
	n.log.Info("serving elastic ledger",
		log.Stringer("address", n.Addr()),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(n.server.Dispatch)
	g.Go(func() error {
		<-ctx.Done()
		return n.server.Shutdown()
	})
	if n.profiler != nil {
		g.Go(func() error {
			return n.profiler.Dispatch(ctx)
		})
	}
	err := g.Wait()
	return errors.Join(err, n.shutdown())
}

func (n *node) shutdown() error {
	var errs []error
	if n.config.SnapshotFile != "" {
		errs = append(errs, n.writeSnapshot())
	}
	errs = append(errs, n.vm.Shutdown(context.Background()))
	return errors.Join(errs...)
}

func (n *node) writeSnapshot() error {
	snap, err := n.vm.Snapshot()
	if err != nil {
		return err
	}

	var c compression.Compressor
	if n.config.SnapshotCompress {
		c, err = snapshot.NewCompressor()
		if err != nil {
			return err
		}
	}
	if err := snapshot.WriteFile(n.config.SnapshotFile, snap, c); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	n.log.Info("wrote ledger snapshot",
		log.String("file", n.config.SnapshotFile),
		log.Int("holders", len(snap.Holders)),
	)
	return nil
}
