package compat

import "strings"

// globalAliases are receiver prefixes that resolve to the global object and
// are stripped before lookup, so `window.fetch` and `fetch` hit the same
// record.
var globalAliases = map[string]bool{
	"window":     true,
	"globalThis": true,
	"self":       true,
}

// Match is one capability reference located in a source unit.
type Match struct {
	Record CapabilityRecord
	Line   int
	Column int
}

// Matcher finds capability references in source text. Matching is purely
// lexical/structural: no data-flow or type analysis is attempted, so a
// feature-detected use such as
//
//	typeof window.X !== 'undefined' ? window.X() : fallback()
//
// still matches window.X. False positives for guarded code are accepted in
// exchange for not missing real incompatibilities.
type Matcher struct {
	// exact maps a dotted qualified name to its record.
	exact map[string]CapabilityRecord
	// member maps a "*.method" pattern's method name to its record.
	member map[string]CapabilityRecord
}

// NewMatcher indexes the capability records of one database snapshot.
func NewMatcher(records []CapabilityRecord) *Matcher {
	m := &Matcher{
		exact:  make(map[string]CapabilityRecord),
		member: make(map[string]CapabilityRecord),
	}
	for _, rec := range records {
		patterns := rec.Patterns
		if len(patterns) == 0 {
			patterns = []string{rec.Name}
		}
		for _, p := range patterns {
			if rest, ok := strings.CutPrefix(p, "*."); ok {
				m.member[rest] = rec
			} else {
				m.exact[p] = rec
			}
		}
	}
	return m
}

// Scan returns every capability reference in src. Identical input always
// yields the identical match sequence, in source order.
func (m *Matcher) Scan(src []byte) []Match {
	var out []Match
	seen := make(map[matchKey]bool)
	for _, ch := range scanChains(src) {
		for _, hit := range m.matchChain(ch) {
			k := matchKey{hit.Record.Name, hit.Line, hit.Column}
			if !seen[k] {
				seen[k] = true
				out = append(out, hit)
			}
		}
	}
	return out
}

type matchKey struct {
	name string
	line int
	col  int
}

func (m *Matcher) matchChain(ch chain) []Match {
	segs := ch.segs
	if len(segs) == 0 {
		return nil
	}

	if !ch.leadingDot {
		// Strip a global-object alias receiver.
		base := 0
		if len(segs) > 1 && globalAliases[segs[0].text] {
			base = 1
		}
		// Longest dotted prefix wins; one match consumes the chain.
		for k := len(segs); k > base; k-- {
			name := joinSegments(segs[base:k])
			if rec, ok := m.exact[name]; ok {
				return []Match{{Record: rec, Line: segs[base].line, Column: segs[base].col}}
			}
		}
	}

	// Member patterns apply to dotted accesses whose receiver is not a
	// recognized qualified name: segments after the first, or every segment
	// of an unknown-receiver chain.
	first := 1
	if ch.leadingDot {
		first = 0
	}
	var out []Match
	for i := first; i < len(segs); i++ {
		if rec, ok := m.member[segs[i].text]; ok {
			out = append(out, Match{Record: rec, Line: segs[i].line, Column: segs[i].col})
		}
	}
	return out
}

func joinSegments(segs []segment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.text
	}
	return strings.Join(parts, ".")
}
