// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/luxfi/elastic/cmd/elasticd/export"
	"github.com/luxfi/elastic/cmd/elasticd/run"
	"github.com/luxfi/elastic/cmd/elasticd/version"
)

func main() {
	cmd := &cobra.Command{
		Use:           "elasticd",
		Short:         "Runs and inspects an elastic supply ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		run.Command(),
		export.Command(),
		version.Command(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
