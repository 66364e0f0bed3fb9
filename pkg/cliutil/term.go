// Copyright (C) 2020  Ambassador Labs (for Telepresence)
// Copyright (C) 2021-2022  Ambassador Labs (for ocibuild, kolla-versions)
//
// SPDX-License-Identifier: Apache-2.0
//
// Based on
// https://github.com/telepresenceio/telepresence/blob/b6dfa04ff014915b47386191cc3d8b1352522fea/pkg/client/cli/command_group.go#L35-L63

package cliutil

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// GetTerminalWidth returns the width that --help output should be wrapped to, or 0 for "don't
// wrap".
//
// COLUMNS wins if it is set to a non-negative integer; so `COLUMNS=0 kolla-versions --help`
// turns wrapping off.  Otherwise stdout is measured if it is a terminal; help that is redirected
// to a file or a pipe is not wrapped.
func GetTerminalWidth() int {
	return terminalWidth(os.Getenv("COLUMNS"), int(os.Stdout.Fd()))
}

func terminalWidth(columns string, fd int) int {
	if cols, err := strconv.Atoi(strings.TrimSpace(columns)); err == nil && cols >= 0 {
		return cols
	}
	if cols, _, err := term.GetSize(fd); err == nil {
		return cols
	}
	// A terminal that won't report its size.
	if term.IsTerminal(fd) {
		return 80
	}
	return 0
}
