// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package cliutil

// SetExit replaces the function that FlagErrorFunc exits through, and returns a function that
// restores the original.
func SetExit(fn func(int)) (restore func()) {
	orig := exit
	exit = fn
	return func() { exit = orig }
}

var TerminalWidth = terminalWidth
