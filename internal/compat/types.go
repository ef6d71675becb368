package compat

import (
	"fmt"
	"strings"
)

// CapabilityRecord describes one checkable API surface: a global, a namespace
// member, or a prototype method.
type CapabilityRecord struct {
	// Name is the canonical qualified name, e.g. "AbortController",
	// "navigator.clipboard" or "Array.prototype.includes".
	Name string `json:"name"`
	// Kind is "global", "member" or "prototype".
	Kind string `json:"kind"`
	// Patterns are the syntactic forms that reference this capability.
	// A plain dotted name matches a reference chain prefix; a "*.method"
	// pattern matches a property access on any receiver.
	Patterns []string `json:"patterns"`
	// Support maps a runtime key ("chrome", "safari", ...) to the minimum
	// version that supports the capability. A runtime absent from the map
	// is treated as fully unsupported.
	Support map[string]string `json:"support"`
	// MDN is a documentation URL, Notes free-form markdown. Both optional.
	MDN   string `json:"mdn,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// Target is one runtime/version constraint the scanned code must satisfy.
type Target struct {
	Runtime string `json:"runtime"`
	Version string `json:"version"`
}

func (t Target) String() string {
	return fmt.Sprintf("%s >= %s", DisplayName(t.Runtime), t.Version)
}

// TargetProfile is the ordered set of targets for a run. It is resolved once
// from configuration and never mutated while a check is in flight.
type TargetProfile []Target

// Validate rejects empty or malformed profiles before any scanning starts.
// An unspecified profile is a hard configuration error: without one the
// checker's output is meaningless.
func (p TargetProfile) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("no target profile configured: supply at least one runtime constraint (e.g. \"Chrome >= 60\")")
	}
	seen := make(map[string]bool, len(p))
	for _, t := range p {
		if t.Runtime == "" {
			return fmt.Errorf("target profile contains an empty runtime name")
		}
		if _, err := ParseVersion(t.Version); err != nil {
			return fmt.Errorf("invalid version for %s: %w", t.Runtime, err)
		}
		if seen[t.Runtime] {
			return fmt.Errorf("duplicate runtime %q in target profile", t.Runtime)
		}
		seen[t.Runtime] = true
	}
	return nil
}

func (p TargetProfile) String() string {
	parts := make([]string, len(p))
	for i, t := range p {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// RuntimeFailure records one runtime from the profile that does not meet a
// capability's minimum version. MinimumSupported is empty when the runtime
// does not support the capability at all.
type RuntimeFailure struct {
	Runtime          string `json:"runtime"`
	Required         string `json:"required"`
	MinimumSupported string `json:"minimumSupported,omitempty"`
}

// Finding is one reported incompatibility at a source location.
type Finding struct {
	File            string           `json:"file"`
	Line            int              `json:"line"`
	Column          int              `json:"column"`
	Capability      string           `json:"capability"`
	FailingRuntimes []RuntimeFailure `json:"failingRuntimes"`
}

// UnitError is a per-file scan failure, distinct from a Finding. One broken
// unit does not abort the rest of the run.
type UnitError struct {
	File string `json:"file"`
	Err  string `json:"error"`
}

// Severity controls the exit contract of a check run.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

// ParseSeverity parses a severity name. Matching is case-insensitive.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info", "informational":
		return SeverityInfo, nil
	case "warn", "warning":
		return SeverityWarning, nil
	case "error", "fail", "failing":
		return SeverityError, nil
	}
	return SeverityError, fmt.Errorf("unknown severity %q (want info, warning or error)", s)
}

// runtimeNames maps runtime keys to display names for reports.
var runtimeNames = map[string]string{
	"chrome":  "Chrome",
	"firefox": "Firefox",
	"safari":  "Safari",
	"edge":    "Edge",
	"opera":   "Opera",
	"ie":      "IE",
	"ios_saf": "iOS Safari",
	"samsung": "Samsung Internet",
	"node":    "Node.js",
	"deno":    "Deno",
}

// DisplayName returns the human-readable name for a runtime key.
func DisplayName(runtime string) string {
	if n, ok := runtimeNames[runtime]; ok {
		return n
	}
	return runtime
}
