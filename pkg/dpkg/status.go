// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package dpkg determines the version of Debian packages installed in a container image.
package dpkg

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"pault.ag/go/debian/control"
)

// StatusFile is where dpkg keeps its database, relative to the image root.
const StatusFile = "var/lib/dpkg/status"

var ErrNotInstalled = errors.New("package is not installed")

// statusEntry is the part of a status database paragraph that matters here; the decoder skips the
// other fields (Description, Conffiles, ...).
type statusEntry struct {
	Package string
	Status  string
	Version string
}

// ParseStatus parses a dpkg status database and returns the version of each installed package.
// Packages that are known to dpkg but are not (fully) installed are omitted.
func ParseStatus(r io.Reader) (map[string]string, error) {
	decoder, err := control.NewDecoder(r, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StatusFile, err)
	}
	var entries []statusEntry
	if err := decoder.Decode(&entries); err != nil {
		return nil, fmt.Errorf("%s: %w", StatusFile, err)
	}

	installed := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.Package != "" && entry.Version != "" && strings.HasSuffix(entry.Status, " installed") {
			installed[entry.Package] = entry.Version
		}
	}
	return installed, nil
}

// Lookup returns the installed version of a package from a status database.
func Lookup(r io.Reader, pkg string) (string, error) {
	installed, err := ParseStatus(r)
	if err != nil {
		return "", err
	}
	ver, ok := installed[pkg]
	if !ok {
		return "", fmt.Errorf("%s: %w", pkg, ErrNotInstalled)
	}
	return ver, nil
}
