// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"

	"github.com/luxfi/elastic/utils/compression"
	"github.com/luxfi/elastic/vms/elasticvm"
	"github.com/luxfi/elastic/vms/elasticvm/api"
	"github.com/luxfi/elastic/vms/elasticvm/config"
	"github.com/luxfi/elastic/vms/elasticvm/snapshot"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "export",
		Short: "Writes a ledger snapshot of a running daemon or of a genesis",
		RunE:  exportFunc,
	}
	AddFlags(c.Flags())
	return c
}

func exportFunc(c *cobra.Command, args []string) error {
	cfg, err := ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}

	snap, err := load(c.Context(), log.NewLogger("elasticd"), cfg)
	if err != nil {
		return err
	}
	if err := Write(cfg, snap); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.OutOrStdout(), "exported %d holders with a total supply of %s to %s\n",
		len(snap.Holders),
		snap.TotalSupply.Uint256().Dec(),
		cfg.Output,
	)
	return err
}

// load fetches the snapshot from the daemon at cfg.URI or builds the genesis
// ledger in memory.
func load(ctx context.Context, logger log.Logger, cfg Config) (*snapshot.Snapshot, error) {
	if cfg.URI != "" {
		b, err := api.NewClient(cfg.URI).GetSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		return snapshot.Parse(b)
	}

	vm := elasticvm.New(logger, config.DefaultConfig(), nil)
	if err := vm.Initialize(ctx, memdb.New(), cfg.GenesisBytes, cfg.VMConfigBytes); err != nil {
		return nil, err
	}
	snap, err := vm.Snapshot()
	return snap, errors.Join(err, vm.Shutdown(ctx))
}

// Write verifies snap and atomically writes it to cfg.Output.
func Write(cfg Config, snap *snapshot.Snapshot) error {
	if err := snap.Verify(); err != nil {
		return err
	}

	var (
		c   compression.Compressor
		err error
	)
	if cfg.Compress {
		c, err = snapshot.NewCompressor()
		if err != nil {
			return err
		}
	}
	return snapshot.WriteFile(cfg.Output, snap, c)
}
