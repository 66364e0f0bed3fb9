// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package cliutil

import (
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

// Wrap the string `s` to a maximum width `w`.  Pass `w` == 0 to do no wrapping.
//
// In order to have some room for slop to avoid things like a short word being on a line by itself,
// most lines are actually wrapped to `w - 5`.
func Wrap(w int, s string) string {
	return wrap(0, w, s)
}

// Wrap the string `s` to a maximum width `w` with leading indent `i`.  The first line is not
// indented (this is assumed to be done by caller).  Pass `w` == 0 to do no wrapping
//
// In order to have some room for slop to avoid things like a short word being on a line by itself,
// most lines are actually wrapped to `w - 5`.
func WrapIndent(i, w int, s string) string {
	return wrap(i, w, s)
}

func wrap(i, w int, s string) string {
	indent := "\n" + strings.Repeat(" ", i)
	limit := w - i
	// Too narrow to be worth it.
	if w == 0 || limit < 24 {
		return strings.ReplaceAll(s, "\n", indent)
	}
	if limit > 40 {
		limit -= 5
	}
	paras := strings.Split(s, "\n")
	for j, para := range paras {
		// Lines stay strictly shorter than limit.  A word that is too long by itself gets a
		// line to itself.
		paras[j] = strings.ReplaceAll(wordwrap.WrapString(para, uint(limit-1)), "\n", indent)
	}
	return strings.Join(paras, indent)
}
