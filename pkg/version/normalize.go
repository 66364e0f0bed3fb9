// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package version deals with the version strings reported by git tags, distribution packages, and
// container image tags.
package version

import (
	"strings"
)

// Normalize strips the decorations that git tags and distribution packages put around an upstream
// version number, so that versions from different sources can be compared:
//
//  - a leading "v" (git tags such as "v5.1.2")
//  - a leading "r" (git tags such as "r2.6.8")
//  - a trailing "-..." (Debian revisions such as "3.6.6-1")
//  - a trailing "+..." (vendor suffixes such as "10.1.21+maria-1~xenial")
//  - a leading "...:" (Debian epochs such as "1:2.6.10")
//
// Normalize never fails; degenerate input may normalize to "".  The rules are re-applied until the
// string stops changing, which makes Normalize idempotent.
func Normalize(raw string) string {
	for {
		cleaned := cleanup(raw)
		if cleaned == raw {
			return cleaned
		}
		raw = cleaned
	}
}

func cleanup(ver string) string {
	ver = strings.TrimPrefix(ver, "v")
	ver = strings.TrimPrefix(ver, "r")
	if i := strings.IndexByte(ver, '-'); i >= 0 {
		ver = ver[:i]
	}
	if i := strings.IndexByte(ver, '+'); i >= 0 {
		ver = ver[:i]
	}
	// The epoch goes last; by now any trailing decoration that might have contained a ':' is
	// already gone.
	if i := strings.IndexByte(ver, ':'); i >= 0 {
		ver = ver[i+1:]
	}
	return ver
}
