package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"webcompat/internal/compat"
)

// FindingItem represents one compatibility finding in the browser list.
type FindingItem struct {
	Finding compat.Finding
}

func (i FindingItem) Title() string {
	return fmt.Sprintf("%s — %s:%d:%d", i.Finding.Capability, i.Finding.File, i.Finding.Line, i.Finding.Column)
}

func (i FindingItem) Description() string {
	parts := make([]string, len(i.Finding.FailingRuntimes))
	for n, f := range i.Finding.FailingRuntimes {
		if f.MinimumSupported == "" {
			parts[n] = fmt.Sprintf("%s: unsupported", compat.DisplayName(f.Runtime))
		} else {
			parts[n] = fmt.Sprintf("%s: needs %s", compat.DisplayName(f.Runtime), f.MinimumSupported)
		}
	}
	return strings.Join(parts, ", ")
}

func (i FindingItem) FilterValue() string {
	return i.Finding.Capability + " " + i.Finding.File
}

// RecordLookup resolves a capability name to its database record for the
// detail pane.
type RecordLookup func(name string) (compat.CapabilityRecord, error)

// FindingsModel is the Bubble Tea model for the findings browser.
type FindingsModel struct {
	list           list.Model
	viewport       viewport.Model
	viewingDetails bool
	lookup         RecordLookup
	profile        compat.TargetProfile

	width  int
	height int
}

// NewFindingsModel creates a findings browser over one report.
func NewFindingsModel(report *compat.Report, lookup RecordLookup) FindingsModel {
	items := make([]list.Item, len(report.Findings))
	for i, f := range report.Findings {
		items[i] = FindingItem{Finding: f}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = fmt.Sprintf("Compatibility Findings (%d)", len(report.Findings))
	l.SetShowHelp(true)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		}
	}

	return FindingsModel{
		list:     l,
		viewport: viewport.New(0, 0),
		lookup:   lookup,
		profile:  report.Targets,
	}
}

func (m FindingsModel) Init() tea.Cmd {
	return nil
}

func (m FindingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		contentHeight := msg.Height - 1
		if contentHeight < 0 {
			contentHeight = 0
		}
		m.list.SetSize(msg.Width, contentHeight)
		m.viewport.Width = msg.Width
		m.viewport.Height = contentHeight
		return m, nil

	case tea.KeyMsg:
		if m.viewingDetails {
			switch msg.String() {
			case "esc", "q", "enter":
				m.viewingDetails = false
				return m, nil
			}
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(FindingItem); ok {
				m.viewport.SetContent(m.renderDetail(item.Finding))
				m.viewport.GotoTop()
				m.viewingDetails = true
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m FindingsModel) View() string {
	if m.viewingDetails {
		header := headerStyle.Render("Finding Details (esc to go back)")
		return header + "\n" + m.viewport.View()
	}
	return m.list.View()
}

func (m FindingsModel) renderDetail(f compat.Finding) string {
	var b strings.Builder

	b.WriteString(detailTitleStyle.Render(f.Capability))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s:%d:%d", f.File, f.Line, f.Column)))
	b.WriteString("\n\n")

	failing := make(map[string]compat.RuntimeFailure, len(f.FailingRuntimes))
	for _, fr := range f.FailingRuntimes {
		failing[fr.Runtime] = fr
	}
	for _, t := range m.profile {
		if fr, ok := failing[t.Runtime]; ok {
			if fr.MinimumSupported == "" {
				b.WriteString(failStyle.Render(fmt.Sprintf("✗ %s %s — unsupported", compat.DisplayName(t.Runtime), t.Version)))
			} else {
				b.WriteString(failStyle.Render(fmt.Sprintf("✗ %s %s — needs %s", compat.DisplayName(t.Runtime), t.Version, fr.MinimumSupported)))
			}
		} else {
			b.WriteString(okStyle.Render(fmt.Sprintf("✓ %s %s", compat.DisplayName(t.Runtime), t.Version)))
		}
		b.WriteString("\n")
	}

	if m.lookup != nil {
		if rec, err := m.lookup(f.Capability); err == nil {
			if len(rec.Support) > 0 {
				b.WriteString("\nSupported since:\n")
				runtimes := make([]string, 0, len(rec.Support))
				for r := range rec.Support {
					runtimes = append(runtimes, r)
				}
				sort.Strings(runtimes)
				for _, r := range runtimes {
					b.WriteString(fmt.Sprintf("  %s %s\n", compat.DisplayName(r), rec.Support[r]))
				}
			}
			if rec.Notes != "" {
				b.WriteString("\n" + rec.Notes + "\n")
			}
			if rec.MDN != "" {
				b.WriteString("\n" + dimStyle.Render(rec.MDN) + "\n")
			}
		}
	}

	return b.String()
}
