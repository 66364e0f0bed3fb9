// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datawire/kolla-versions/pkg/cliutil"
	"github.com/datawire/kolla-versions/pkg/version"
)

func init() {
	var argSort bool
	cmd := &cobra.Command{
		Use:   "normalize [flags] VERSION...",
		Short: "Print the normalized form of version strings",
		Long: "Strip the decorations that packagers put around a version number (a leading " +
			"\"v\" or \"r\", a Debian epoch, a revision or build suffix) and print what is " +
			"left, one per line.  This is what the report shows.",
		Example: "  $ kolla-versions normalize 1:10.0.29+maria-1~xenial v3.6.6-1\n" +
			"  10.0.29\n" +
			"  3.6.6",
		Args: cliutil.WrapPositionalArgs(cobra.MinimumNArgs(1)),
		RunE: func(flags *cobra.Command, args []string) error {
			vers := make([]string, 0, len(args))
			for _, arg := range args {
				vers = append(vers, version.Normalize(arg))
			}
			if argSort {
				version.Sort(vers)
			}
			for _, ver := range vers {
				if _, err := fmt.Fprintln(flags.OutOrStdout(), ver); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&argSort, "sort", false, "Print the versions in ascending loose-version order")

	argparser.AddCommand(cmd)
}
