// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"

	"github.com/datawire/kolla-versions/pkg/pipeline"
)

var reportOpts = pipeline.DefaultOptions()

func init() {
	flags := argparser.Flags()
	flags.StringVar(&reportOpts.SettingsFile, "config", reportOpts.SettingsFile,
		"Read settings from `FILE`")
	flags.StringVar(&reportOpts.IDsFile, "anitya-ids", reportOpts.IDsFile,
		"Read release-monitoring.org project IDs from `FILE`")
	flags.StringVar(&reportOpts.TemplateFile, "template", "",
		"Render the report with the html/template in `FILE` instead of the built-in one")
	flags.StringVarP(&reportOpts.Output, "output", "o", reportOpts.Output,
		"Write the report to `FILE`")
	flags.Var(&reportOpts.Probe, "probe",
		"How to inspect service images: \"docker\" or \"registry\"")
}

func runReport(cmd *cobra.Command, _ []string) error {
	return pipeline.Run(cmd.Context(), reportOpts)
}
