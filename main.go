// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Command kolla-versions reports which versions of the OpenStack projects and infrastructure
// services are packaged by a Kolla release, compared with the latest upstream releases and with a
// downstream set of images.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/datawire/dlib/dlog"
	"github.com/google/go-containerregistry/pkg/logs"
	"github.com/spf13/cobra"

	"github.com/datawire/kolla-versions/pkg/cliutil"
)

var argparser = &cobra.Command{
	Use:   "kolla-versions [flags]",
	Short: "Report the versions of the OpenStack projects packaged by Kolla",
	Long: "Fetch the list of projects bundled by a Kolla release, look up the latest release " +
		"of each one, probe the service images, and write the result as an HTML page." +
		"\n\n" +
		"Service images are inspected either by pulling them and running dpkg-query in a " +
		"throwaway container (--probe=docker, the default), or by reading the dpkg database " +
		"straight out of the registry (--probe=registry).",

	Args: cliutil.OnlySubcommands,
	RunE: runReport,

	SilenceErrors: true, // main() will handle this after .ExecuteContext() returns
	SilenceUsage:  true, // our FlagErrorFunc will handle it
}

func init() {
	argparser.SetFlagErrorFunc(cliutil.FlagErrorFunc)
	argparser.SetHelpTemplate(cliutil.HelpTemplate)
	cliutil.SetEnvironment(argparser,
		cliutil.EnvVar{
			Name:  "SOURCE_DATE_EPOCH",
			Usage: "Stamp the report with this Unix time instead of the current time",
		},
		cliutil.EnvVar{
			Name:  "DOCKER_CONFIG",
			Usage: "Read registry credentials from config.json in this directory (default ~/.docker)",
		},
		cliutil.EnvVar{
			Name:  "COLUMNS",
			Usage: "Wrap --help output to this many columns; 0 disables wrapping",
		})
}

func main() {
	ctx := context.Background()

	logs.Warn = dlog.StdLogger(ctx, dlog.LogLevelWarn)
	logs.Progress = dlog.StdLogger(ctx, dlog.LogLevelInfo)
	logs.Debug = dlog.StdLogger(ctx, dlog.LogLevelDebug)

	if err := argparser.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(argparser.ErrOrStderr(), "%s: error: %v\n", argparser.CommandPath(), err)
		os.Exit(1)
	}
}
