package compat

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseVersion parses a dot-separated numeric version like "12.1" into its
// components. Browser compatibility data uses plain dotted numerics, so a
// semver library would be both overkill and subtly wrong here (prerelease
// rules, rejection of forms like "15.0.0.1").
func ParseVersion(v string) ([]int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, fmt.Errorf("empty version")
	}
	parts := strings.Split(v, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid version %q: component %q is not a non-negative integer", v, p)
		}
		out[i] = n
	}
	return out, nil
}

// CompareVersions compares two dotted versions numerically, left-to-right,
// treating missing trailing components as zero. Returns -1, 0 or 1.
// Unparseable input compares as zero components; callers that need strict
// validation use ParseVersion first.
func CompareVersions(a, b string) int {
	av, _ := ParseVersion(a)
	bv, _ := ParseVersion(b)
	n := len(av)
	if len(bv) > n {
		n = len(bv)
	}
	for i := 0; i < n; i++ {
		var x, y int
		if i < len(av) {
			x = av[i]
		}
		if i < len(bv) {
			y = bv[i]
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}
