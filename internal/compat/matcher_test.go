package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecords() []CapabilityRecord {
	return []CapabilityRecord{
		{Name: "AbortController", Patterns: []string{"AbortController"}, Support: map[string]string{"chrome": "66"}},
		{Name: "fetch", Patterns: []string{"fetch"}, Support: map[string]string{"chrome": "42"}},
		{Name: "navigator.clipboard", Patterns: []string{"navigator.clipboard"}, Support: map[string]string{"chrome": "66"}},
		{Name: "navigator.share", Patterns: []string{"navigator.share"}, Support: map[string]string{"chrome": "89"}},
		{Name: "crypto.randomUUID", Patterns: []string{"crypto.randomUUID"}, Support: map[string]string{"chrome": "92"}},
		{Name: "Promise.allSettled", Patterns: []string{"Promise.allSettled"}, Support: map[string]string{"chrome": "76"}},
		{Name: "showOpenFilePicker", Patterns: []string{"showOpenFilePicker"}, Support: map[string]string{"chrome": "86"}},
		{Name: "Array.prototype.includes", Patterns: []string{"*.includes"}, Support: map[string]string{"chrome": "47"}},
		{Name: "Array.prototype.flat", Patterns: []string{"*.flat"}, Support: map[string]string{"chrome": "69"}},
		{Name: "Array.prototype.at", Patterns: []string{"*.at"}, Support: map[string]string{"chrome": "92"}},
	}
}

func capabilityNames(matches []Match) []string {
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Record.Name
	}
	return names
}

func TestMatcher_Globals(t *testing.T) {
	m := NewMatcher(testRecords())

	src := []byte(`const ctrl = new AbortController();
fetch("/api", { signal: ctrl.signal });
`)
	matches := m.Scan(src)

	require.Len(t, matches, 2)
	assert.Equal(t, "AbortController", matches[0].Record.Name)
	assert.Equal(t, 1, matches[0].Line)
	assert.Equal(t, 18, matches[0].Column)
	assert.Equal(t, "fetch", matches[1].Record.Name)
	assert.Equal(t, 2, matches[1].Line)
	assert.Equal(t, 1, matches[1].Column)
}

func TestMatcher_GlobalAliasPrefixes(t *testing.T) {
	m := NewMatcher(testRecords())

	tests := []struct {
		name string
		src  string
	}{
		{name: "Window", src: `window.fetch("/api")`},
		{name: "GlobalThis", src: `globalThis.fetch("/api")`},
		{name: "Self", src: `self.fetch("/api")`},
		{name: "Bare", src: `fetch("/api")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := m.Scan([]byte(tt.src))
			require.Len(t, matches, 1)
			assert.Equal(t, "fetch", matches[0].Record.Name)
		})
	}
}

func TestMatcher_LongestPrefixWins(t *testing.T) {
	m := NewMatcher(testRecords())

	// navigator.clipboard.writeText matches the navigator.clipboard record
	// once, at the start of the reference.
	matches := m.Scan([]byte(`await navigator.clipboard.writeText(text);`))
	require.Len(t, matches, 1)
	assert.Equal(t, "navigator.clipboard", matches[0].Record.Name)
	assert.Equal(t, 7, matches[0].Column)
}

func TestMatcher_MemberPatterns(t *testing.T) {
	m := NewMatcher(testRecords())

	src := []byte(`if (values.includes(3)) {
  return rows.flat().at(0);
}
`)
	matches := m.Scan(src)

	require.Equal(t, []string{
		"Array.prototype.includes",
		"Array.prototype.flat",
		"Array.prototype.at",
	}, capabilityNames(matches))

	// `.at` continues a call expression; its receiver is unknown but the
	// member access still matches.
	assert.Equal(t, 2, matches[2].Line)
}

func TestMatcher_GuardedUsageStillMatches(t *testing.T) {
	m := NewMatcher(testRecords())

	// Feature detection does not suppress the match: the matcher is lexical
	// and accepts this false-positive class deliberately.
	src := []byte(`typeof window.showOpenFilePicker !== 'undefined' ? window.showOpenFilePicker() : fallback();`)
	matches := m.Scan(src)

	require.Len(t, matches, 2)
	assert.Equal(t, "showOpenFilePicker", matches[0].Record.Name)
	assert.Equal(t, "showOpenFilePicker", matches[1].Record.Name)
	assert.NotEqual(t, matches[0].Column, matches[1].Column)
}

func TestMatcher_SkipsStringsAndComments(t *testing.T) {
	m := NewMatcher(testRecords())

	src := []byte(`// fetch is mentioned here
/* and AbortController here */
const s = "fetch";
const u = 'AbortController';
`)
	assert.Empty(t, m.Scan(src))
}

func TestMatcher_TemplateLiteralSubstitutions(t *testing.T) {
	m := NewMatcher(testRecords())

	src := []byte("const id = `req-${crypto.randomUUID()}`;\nconst quiet = `crypto.randomUUID is not code here`;")
	matches := m.Scan(src)

	require.Len(t, matches, 1)
	assert.Equal(t, "crypto.randomUUID", matches[0].Record.Name)
	assert.Equal(t, 1, matches[0].Line)
}

func TestMatcher_OptionalChaining(t *testing.T) {
	m := NewMatcher(testRecords())

	matches := m.Scan([]byte(`navigator?.share?.({ title })`))
	require.Len(t, matches, 1)
	assert.Equal(t, "navigator.share", matches[0].Record.Name)
}

func TestMatcher_StaticNamespaceMembers(t *testing.T) {
	m := NewMatcher(testRecords())

	matches := m.Scan([]byte(`const results = await Promise.allSettled(tasks);`))
	require.Len(t, matches, 1)
	assert.Equal(t, "Promise.allSettled", matches[0].Record.Name)
}

func TestMatcher_NumericLiteralsAreNotMemberAccess(t *testing.T) {
	m := NewMatcher(testRecords())

	// The dot in 1.5 is part of the literal, not a property access.
	assert.Empty(t, m.Scan([]byte(`const x = 1.5 + 0.25;`)))
}

func TestMatcher_Deterministic(t *testing.T) {
	m := NewMatcher(testRecords())
	src := []byte(`fetch(url); values.includes(x); new AbortController();`)

	first := m.Scan(src)
	second := m.Scan(src)
	assert.Equal(t, first, second, "identical input must yield identical match sets")
}

func TestMatcher_UnknownReferencesProduceNothing(t *testing.T) {
	m := NewMatcher(testRecords())

	// Unknown names are not errors; the matcher only reports what it
	// positively recognizes.
	assert.Empty(t, m.Scan([]byte(`wibble.wobble(); frobnicate();`)))
}
