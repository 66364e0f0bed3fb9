// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package cliutil

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// EnvVar describes an environment variable that a command reads.
type EnvVar struct {
	Name  string
	Usage string
}

const envAnnotation = "cliutil.environment"

// SetEnvironment records the environment variables that cmd reads, so that HelpTemplate can list
// them under "Environment:".  It replaces any previously recorded list.
func SetEnvironment(cmd *cobra.Command, vars ...EnvVar) {
	lines := make([]string, 0, len(vars))
	for _, v := range vars {
		lines = append(lines, v.Name+"\t"+v.Usage)
	}
	if cmd.Annotations == nil {
		cmd.Annotations = make(map[string]string)
	}
	cmd.Annotations[envAnnotation] = strings.Join(lines, "\n")
}

// Environment returns the environment variables recorded by SetEnvironment, in order.
func Environment(cmd *cobra.Command) []EnvVar {
	str := cmd.Annotations[envAnnotation]
	if str == "" {
		return nil
	}
	var vars []EnvVar
	for _, line := range strings.Split(str, "\n") {
		name, usage := line, ""
		if i := strings.IndexByte(line, '\t'); i >= 0 {
			name, usage = line[:i], line[i+1:]
		}
		vars = append(vars, EnvVar{Name: name, Usage: usage})
	}
	return vars
}

// EnvUsagesWrapped formats the environment variables of cmd the way
// (*pflag.FlagSet).FlagUsagesWrapped formats flags, wrapping the usage text to `cols` columns.
// It returns "" if cmd has no recorded environment.
func EnvUsagesWrapped(cmd *cobra.Command, cols int) string {
	vars := Environment(cmd)
	width := 0
	for _, v := range vars {
		if len(v.Name) > width {
			width = len(v.Name)
		}
	}
	var buf strings.Builder
	for _, v := range vars {
		fmt.Fprintf(&buf, "  %-*s   %s\n", width, v.Name, WrapIndent(width+5, cols, v.Usage))
	}
	return buf.String()
}
