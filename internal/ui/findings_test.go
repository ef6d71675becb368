package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webcompat/internal/compat"
)

func sampleReport() *compat.Report {
	return &compat.Report{
		Targets: compat.TargetProfile{
			{Runtime: "chrome", Version: "60"},
			{Runtime: "safari", Version: "11"},
		},
		Findings: []compat.Finding{
			{
				File: "src/app.js", Line: 14, Column: 3,
				Capability: "AbortController",
				FailingRuntimes: []compat.RuntimeFailure{
					{Runtime: "chrome", Required: "60", MinimumSupported: "66"},
					{Runtime: "safari", Required: "11", MinimumSupported: "12.1"},
				},
			},
			{
				File: "src/share.js", Line: 2, Column: 1,
				Capability: "navigator.share",
				FailingRuntimes: []compat.RuntimeFailure{
					{Runtime: "chrome", Required: "60"},
				},
			},
		},
		FilesScanned: 2,
	}
}

func sampleLookup(name string) (compat.CapabilityRecord, error) {
	return compat.CapabilityRecord{
		Name:    name,
		Support: map[string]string{"chrome": "66", "safari": "12.1"},
		MDN:     "https://developer.mozilla.org/docs/Web/API/" + name,
		Notes:   "Cancels in-flight requests.",
	}, nil
}

func resized(m FindingsModel) FindingsModel {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(FindingsModel)
}

func TestFindingItem(t *testing.T) {
	item := FindingItem{Finding: sampleReport().Findings[0]}

	assert.Contains(t, item.Title(), "AbortController")
	assert.Contains(t, item.Title(), "src/app.js:14:3")
	assert.Contains(t, item.Description(), "Chrome: needs 66")
	assert.Contains(t, item.Description(), "Safari: needs 12.1")
	assert.Contains(t, item.FilterValue(), "AbortController")
}

func TestFindingItem_UnsupportedRuntime(t *testing.T) {
	item := FindingItem{Finding: sampleReport().Findings[1]}
	assert.Contains(t, item.Description(), "Chrome: unsupported")
}

func TestFindingsModel_ListView(t *testing.T) {
	m := resized(NewFindingsModel(sampleReport(), sampleLookup))

	view := m.View()
	assert.Contains(t, view, "Compatibility Findings (2)")
	assert.Contains(t, view, "AbortController")
}

func TestFindingsModel_DetailView(t *testing.T) {
	m := resized(NewFindingsModel(sampleReport(), sampleLookup))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(FindingsModel)
	require.True(t, m.viewingDetails)

	view := m.View()
	assert.Contains(t, view, "Finding Details")
	assert.Contains(t, view, "AbortController")
	assert.Contains(t, view, "needs 66")
	assert.Contains(t, view, "Supported since:")
	assert.Contains(t, view, "Cancels in-flight requests.")

	// esc returns to the list.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(FindingsModel)
	assert.False(t, m.viewingDetails)
}

func TestFindingsModel_Quit(t *testing.T) {
	m := resized(NewFindingsModel(sampleReport(), sampleLookup))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
