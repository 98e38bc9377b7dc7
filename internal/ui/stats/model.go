package stats

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/punchcard/internal/keys"
	"github.com/nhle/punchcard/internal/model"
	"github.com/nhle/punchcard/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// Model is the scrollable statistics panel.
type Model struct {
	summary  *Summary
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new stats view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// SetSummary replaces the displayed summary and scrolls to the top.
func (m *Model) SetSummary(s Summary) {
	m.summary = &s
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Update handles messages for the stats view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Back) {
		return m, func() tea.Msg { return BackMsg{} }
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the stats view.
func (m Model) View() string {
	if m.summary == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No statistics yet")
	}
	return m.viewport.View()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	if m.summary != nil {
		m.viewport.SetContent(m.renderContent())
	}
}

var sectionStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(theme.ColorBlue).
	MarginTop(1)

// renderContent builds the full panel content for the viewport.
func (m Model) renderContent() string {
	s := m.summary
	var b strings.Builder

	b.WriteString(sectionStyle.Render("Streaks"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  current %d day(s), best %d day(s)\n", s.CurrentStreak, s.MaxStreak)

	b.WriteString(sectionStyle.Render("Today"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %d punch(es), %d minute(s), %d created, %d completed\n",
		s.Today.PunchInsTotal, s.Today.MinutesTotal, s.Today.CreatedCount, s.Today.CompletedCount)

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Last %d days", len(s.Recent))))
	b.WriteString("\n")
	for _, d := range s.Recent {
		cell := theme.HeatStyle(d.Level).Render(strings.Repeat("■", d.Level+1))
		fmt.Fprintf(&b, "  %s %-5s %3d punch(es) %4dm\n", d.DayKey, cell, d.Punches, d.Minutes)
	}

	if len(s.Categories) > 0 {
		b.WriteString(sectionStyle.Render("Categories"))
		b.WriteString("\n")
		for _, c := range s.Categories {
			fmt.Fprintf(&b, "  %-16s %3d punch(es) %4dm  %d/%d done\n",
				theme.CategoryStyle.Render(c.Name), c.Punches, c.Minutes, c.Completed, c.Created)
		}
	}

	if s.Selected != nil {
		b.WriteString(m.renderSelected())
	}

	return b.String()
}

// renderSelected lists the punch ledger of the selected instance.
func (m Model) renderSelected() string {
	s := m.summary
	td := s.Selected
	var b strings.Builder

	b.WriteString(sectionStyle.Render(td.Title))
	b.WriteString("\n")
	if td.Description != "" {
		b.WriteString(theme.HelpStyle.Render("  " + td.Description))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "  %s since %s\n", td.Period, td.DayKey)

	for _, r := range s.Punches {
		line := "  " + r.Timestamp.Format("2006-01-02 15:04")
		if r.Unit == model.UnitMinutes && r.Minutes > 0 {
			line += fmt.Sprintf("  %dm", r.Minutes)
		}
		if r.Note != "" {
			line += "  " + r.Note
		}
		b.WriteString(line + "\n")
	}
	for _, p := range s.Progress {
		fmt.Fprintf(&b, "  %s  %s\n", p.Timestamp.Format("2006-01-02 15:04"), p.Note)
	}
	if len(s.Punches) == 0 && len(s.Progress) == 0 {
		b.WriteString(theme.HelpStyle.Render("  no punches yet"))
		b.WriteString("\n")
	}
	return b.String()
}
