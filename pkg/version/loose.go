// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"sort"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/intstr"
)

// Loose is a version number that makes no claims about its own structure.  It is a sequence of
// components, each of which is either a run of digits (compared numerically) or a run of other
// characters (compared lexicographically).  Dots only separate components.
//
// This is the same model as Python's distutils.version.LooseVersion, which is what upstream
// projects and registries in practice get sorted by.
type Loose struct {
	raw        string
	Components []intstr.IntOrString
}

// ParseLoose never fails; every string is a loose version.
func ParseLoose(str string) Loose {
	ver := Loose{raw: str}
	var cur strings.Builder
	curIsDigit := false
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		seg := cur.String()
		cur.Reset()
		if curIsDigit {
			if n, err := strconv.ParseInt(seg, 10, 32); err == nil {
				ver.Components = append(ver.Components, intstr.FromInt(int(n)))
				return
			}
		}
		ver.Components = append(ver.Components, intstr.FromString(seg))
	}
	for _, char := range str {
		isDigit := '0' <= char && char <= '9'
		switch {
		case char == '.':
			flush()
			continue
		case cur.Len() > 0 && isDigit != curIsDigit:
			flush()
		}
		curIsDigit = isDigit
		cur.WriteRune(char)
	}
	flush()
	return ver
}

// String returns the string that the version was parsed from.
func (ver Loose) String() string {
	return ver.raw
}

func cmpComponent(a, b *intstr.IntOrString) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch {
	case a.Type == intstr.Int && b.Type == intstr.Int:
		switch {
		case a.IntVal < b.IntVal:
			return -1
		case a.IntVal > b.IntVal:
			return 1
		}
		return 0
	case a.Type == intstr.String && b.Type == intstr.String:
		return strings.Compare(a.StrVal, b.StrVal)
	case a.Type == intstr.Int:
		return 1
	default:
		return -1
	}
}

// Cmp returns a number < 0 if version 'a' is less than version 'b', > 0 if 'a' is greater than 'b',
// or 0 if they are equal.  A version that is a strict prefix of another sorts before it.
func (a Loose) Cmp(b Loose) int {
	for i := 0; i < len(a.Components) || i < len(b.Components); i++ {
		var aSeg, bSeg *intstr.IntOrString
		if i < len(a.Components) {
			aSeg = &(a.Components[i])
		}
		if i < len(b.Components) {
			bSeg = &(b.Components[i])
		}
		if d := cmpComponent(aSeg, bSeg); d != 0 {
			return d
		}
	}
	return 0
}

// Compare is Cmp for strings.
func Compare(a, b string) int {
	return ParseLoose(a).Cmp(ParseLoose(b))
}

// Sort sorts the versions in-place in ascending loose order.  Equal versions keep their relative
// order.
func Sort(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		return Compare(versions[i], versions[j]) < 0
	})
}

// Max returns the greatest of the versions, or "" if there are none.  If several versions compare
// equal (say "1.0" and "1.00"), the first of them wins.
func Max(versions []string) string {
	if len(versions) == 0 {
		return ""
	}
	best := ParseLoose(versions[0])
	for _, str := range versions[1:] {
		if ver := ParseLoose(str); ver.Cmp(best) > 0 {
			best = ver
		}
	}
	return best.String()
}

// HasSeries reports whether the normalized form of the version lies in the given series, which is
// a plain string prefix such as "10.0" or "2.6".
func HasSeries(ver, series string) bool {
	return strings.HasPrefix(Normalize(ver), series)
}
