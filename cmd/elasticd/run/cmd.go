// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/luxfi/log"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "run",
		Short: "Serves an elastic supply ledger over HTTP",
		RunE:  runFunc,
	}
	AddFlags(c.Flags())
	return c
}

func runFunc(c *cobra.Command, args []string) error {
	config, err := ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}

	ctx := c.Context()
	n, err := newNode(ctx, log.NewLogger("elasticd"), config, clockwork.NewRealClock())
	if err != nil {
		return err
	}
	return n.Dispatch(ctx)
}
