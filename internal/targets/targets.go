// Package targets resolves runtime/version constraint strings like
// "Chrome >= 60" into a compat.TargetProfile. All parsing failures are
// configuration errors and surface before any scanning starts.
package targets

import (
	"fmt"
	"strings"

	"webcompat/internal/compat"
)

// aliases maps normalized runtime spellings to canonical runtime keys.
var aliases = map[string]string{
	"chrome":           "chrome",
	"googlechrome":     "chrome",
	"firefox":          "firefox",
	"ff":               "firefox",
	"safari":           "safari",
	"edge":             "edge",
	"msedge":           "edge",
	"opera":            "opera",
	"ie":               "ie",
	"internetexplorer": "ie",
	"iossafari":        "ios_saf",
	"iossaf":           "ios_saf",
	"ios":              "ios_saf",
	"samsung":          "samsung",
	"samsunginternet":  "samsung",
	"node":             "node",
	"nodejs":           "node",
	"deno":             "deno",
}

// ParseConstraint parses a single constraint. Accepted forms:
//
//	"Chrome >= 60"
//	"chrome>=60"
//	"Safari 12.1"
//	"edge=79"
func ParseConstraint(s string) (compat.Target, error) {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return compat.Target{}, fmt.Errorf("empty target constraint")
	}

	// Normalize the operator away; only ">=" semantics exist here.
	for _, op := range []string{">=", "=>", "="} {
		s = strings.Replace(s, op, " ", 1)
	}
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return compat.Target{}, fmt.Errorf("invalid target constraint %q (want \"Runtime >= version\")", raw)
	}
	version := fields[len(fields)-1]
	name := strings.Join(fields[:len(fields)-1], " ")

	runtime, err := Canonical(name)
	if err != nil {
		return compat.Target{}, err
	}
	if _, err := compat.ParseVersion(version); err != nil {
		return compat.Target{}, fmt.Errorf("invalid target constraint %q: %w", raw, err)
	}
	return compat.Target{Runtime: runtime, Version: version}, nil
}

// Parse resolves a list of constraint strings into a validated profile.
// An empty list is a hard configuration error, never a silent default.
func Parse(constraints []string) (compat.TargetProfile, error) {
	if len(constraints) == 0 {
		return nil, fmt.Errorf("no target profile configured: set targets in config.yaml or pass --target")
	}
	profile := make(compat.TargetProfile, 0, len(constraints))
	for _, c := range constraints {
		t, err := ParseConstraint(c)
		if err != nil {
			return nil, err
		}
		profile = append(profile, t)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

// Canonical maps a runtime spelling to its canonical key.
func Canonical(name string) (string, error) {
	norm := strings.ToLower(name)
	norm = strings.NewReplacer(" ", "", "-", "", "_", "", ".", "").Replace(norm)
	if key, ok := aliases[norm]; ok {
		return key, nil
	}
	return "", fmt.Errorf("unknown runtime %q", name)
}

// Known returns the canonical runtime keys, for help text and wizards.
func Known() []string {
	return []string{"chrome", "firefox", "safari", "edge", "opera", "ie", "ios_saf", "samsung", "node", "deno"}
}
