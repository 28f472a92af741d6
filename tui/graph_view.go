// ABOUTME: Pipeline view for TUI
// ABOUTME: Bar chart of how many prospects sit in each outreach stage
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/leadbook/models"
	"github.com/harperreed/leadbook/viz"
)

func renderPipelineFor(records []models.Person) string {
	return viz.RenderPipeline(viz.GenerateDashboardStats(records).ByStatus)
}

func (m Model) renderPipelineView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("PIPELINE"))
	s.WriteString("\n\n")

	s.WriteString(lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Render(m.pipeline))

	s.WriteString("\n")
	s.WriteString(m.renderPipelineHelp())

	return s.String()
}

func (m Model) renderPipelineHelp() string {
	help := []string{
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handlePipelineKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		m.viewMode = ViewList
		m.pipeline = ""
	}

	return m, nil
}
