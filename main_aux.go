// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

//go:build aux
// +build aux

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/datawire/kolla-versions/pkg/cliutil"
)

// docCommand returns a hidden command that regenerates documentation for the whole command tree
// in to an emptied OUT_DIRECTORY.
func docCommand(use, short string, gen func(root *cobra.Command, dir string) error) *cobra.Command {
	return &cobra.Command{
		Hidden: true,
		Use:    use + " OUT_DIRECTORY",
		Short:  short,
		Args:   cliutil.WrapPositionalArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if err := os.RemoveAll(dir); err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o777); err != nil {
				return err
			}
			root := cmd.Root()
			root.DisableAutoGenTag = true
			return gen(root, dir)
		},
	}
}

func init() {
	// completion
	argparser.CompletionOptions.DisableDefaultCmd = false
	argparser.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if completionCmd, _, err := cmd.Root().Find([]string{"completion"}); err == nil {
			completionCmd.Hidden = true
		}
	}

	argparser.AddCommand(docCommand("man", "Generate man pages",
		func(root *cobra.Command, dir string) error {
			return doc.GenManTree(root, &doc.GenManHeader{
				Source: "Ambassador Labs",
				Manual: root.Name(),
			}, dir)
		}))
	argparser.AddCommand(docCommand("mddoc", "Generate markdown documentation",
		doc.GenMarkdownTree))
}
