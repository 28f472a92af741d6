// ABOUTME: Read-only detail view of a single prospect
// ABOUTME: Shows the record with staged edits applied and marks changed fields
package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/leadbook/models"
	"github.com/harperreed/leadbook/tablestate"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	p, ok := m.record(m.selectedID)
	if !ok {
		return "Error: record no longer loaded\n\n" + m.renderDetailHelp()
	}

	s.WriteString(titleStyle.Render(strings.ToUpper(p.DisplayName())))
	s.WriteString("\n\n")

	pending, _ := m.table.Tracker().Pending(p.ID)
	row := func(field tablestate.Field, label, value string) {
		if value == "" {
			return
		}
		if _, changed := field.FromPatch(pending); changed {
			label = "* " + label
		}
		s.WriteString(fieldLabelStyle.Render(label + ":"))
		s.WriteString(fieldValueStyle.Render(value))
		s.WriteString("\n")
	}

	conn := "no"
	if p.Connected {
		conn = "yes"
	}
	degree := "out of network"
	if p.ConnectionDegree > 0 {
		degree = models.ConnectionLabel(p.ConnectionDegree)
	}

	row(tablestate.FieldHeadline, "Headline", models.Deref(p.Headline))
	row(tablestate.FieldCurrentPosition, "Position", models.Deref(p.CurrentPosition))
	row(tablestate.FieldCurrentCompany, "Company", models.Deref(p.CurrentCompany))
	row(tablestate.FieldLocation, "Location", models.Deref(p.Location))
	row(tablestate.FieldEmail, "Email", models.Deref(p.Email))
	row(tablestate.FieldPhone, "Phone", models.Deref(p.Phone))
	row(tablestate.FieldURL, "Profile", models.Deref(p.URL))
	row(tablestate.FieldProfileImage, "Image", models.Deref(p.ProfileImage))
	row(tablestate.FieldWebsites, "Websites", strings.Join(p.Websites, ", "))
	row(tablestate.FieldStatus, "Status", string(p.Status))
	row(tablestate.FieldConnected, "Connected", conn)
	row(tablestate.FieldConnectionDegree, "Degree", degree)
	row(tablestate.FieldEngagement, "Engagement", strconv.Itoa(p.Engagement))

	if about := models.Deref(p.About); about != "" {
		s.WriteString("\n")
		s.WriteString(fieldLabelStyle.Render("About:"))
		s.WriteString("\n")
		s.WriteString(fieldValueStyle.Render(about))
		s.WriteString("\n")
	}

	if !p.CreatedAt.IsZero() {
		s.WriteString("\n")
		s.WriteString(helpStyle.Render(fmt.Sprintf("added %s", p.CreatedAt.Local().Format("2006-01-02 15:04"))))
	}

	s.WriteString("\n")
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"e: Edit",
		"d: Delete",
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		m.viewMode = ViewList
	case "e":
		m.initFormInputs()
		m.viewMode = ViewEdit
	case "d":
		m.viewMode = ViewConfirmDelete
	}

	return m, nil
}
