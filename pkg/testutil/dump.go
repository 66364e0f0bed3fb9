// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
)

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

// Dump renders a value deterministically (sorted map keys, no pointer addresses), so that two
// dumps may be diffed line-by-line.
func Dump(val interface{}) string {
	return spewConfig.Sdump(val)
}

// AssertEqualText compares two multi-line strings, and on mismatch reports a unified diff rather
// than two walls of text.
func AssertEqualText(t *testing.T, exp, act string) bool {
	t.Helper()
	if exp == act {
		return true
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(exp),
		B:        difflib.SplitLines(act),
		FromFile: "Expected",
		FromDate: "",
		ToFile:   "Actual",
		ToDate:   "",
		Context:  1,
	})
	t.Errorf("Diff:\n%s", diff)
	return false
}

// AssertEqualDump is AssertEqualText on the Dump of each value.
func AssertEqualDump(t *testing.T, exp, act interface{}) bool {
	t.Helper()
	return AssertEqualText(t, Dump(exp), Dump(act))
}
