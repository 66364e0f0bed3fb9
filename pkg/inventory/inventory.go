// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package inventory holds the per-project version records that the report is built from.
package inventory

import (
	"sort"
)

// Unknown is the placeholder for a version that could not be determined.
const Unknown = "-"

// Record is everything known about the versions of one project.  Fields that do not apply to a
// project are left empty; fields that apply but could not be determined are Unknown.
type Record struct {
	Name string

	// Bundled is the version that the Kolla build configuration pins (OpenStack projects only).
	Bundled string
	// Current is the latest upstream release.
	Current string
	// Kolla is the version installed in the upstream Kolla image (services only).
	Kolla string
	// Downstream is the version shipped by the downstream distribution.
	Downstream string
}

// Names returns the sorted keys of a record map.
func Names(records map[string]*Record) []string {
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
