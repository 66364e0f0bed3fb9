// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package reproducible provides the report's notion of "now", which may be pinned with the
// SOURCE_DATE_EPOCH environment variable so that regenerating a report from the same inputs
// yields the same bytes.
package reproducible

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// Layout is how timestamps appear in the report.
const Layout = "2006-01-02 15:04:05"

var (
	nowOnce sync.Once
	now     time.Time
)

// SourceDateEpoch parses a SOURCE_DATE_EPOCH value.
func SourceDateEpoch(val string) (time.Time, bool) {
	secs, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(secs, 0).UTC(), true
}

// Now returns SOURCE_DATE_EPOCH if it is set, or else the time of the first call.
func Now() time.Time {
	nowOnce.Do(func() {
		var ok bool
		now, ok = SourceDateEpoch(os.Getenv("SOURCE_DATE_EPOCH"))
		if !ok {
			now = time.Now()
		}
	})
	return now
}

// Timestamp is Now formatted with Layout.
func Timestamp() string {
	return Now().Format(Layout)
}
