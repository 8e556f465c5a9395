// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/luxfi/elastic/vms/elasticvm"
)

func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the version of the daemon",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(c.OutOrStdout(), "elasticd/%s (go %s)\n", elasticvm.Version, runtime.Version())
			return err
		},
	}
}
