// ABOUTME: Prospect table view with inline edits
// ABOUTME: Engagement, status and connection changes are staged until saved
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/leadbook/models"
	"github.com/harperreed/leadbook/tablestate"
)

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("LEADBOOK"))
	s.WriteString("\n")

	if m.searching || m.searchQuery != "" {
		s.WriteString(m.searchInput.View())
		s.WriteString("\n")
	}
	s.WriteString("\n")

	s.WriteString(m.renderTable())
	s.WriteString("\n")

	s.WriteString(m.renderStatusLine())
	s.WriteString("\n")

	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) rows() []models.Person {
	return m.table.Search(m.searchQuery)
}

func (m Model) selected() (models.Person, bool) {
	rows := m.rows()
	if m.selectedRow < 0 || m.selectedRow >= len(rows) {
		return models.Person{}, false
	}
	return rows[m.selectedRow], true
}

func (m *Model) clampSelection() {
	n := len(m.rows())
	if m.selectedRow >= n {
		m.selectedRow = n - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

func (m Model) renderTable() string {
	columns := []table.Column{
		{Title: " ", Width: 1},
		{Title: "Name", Width: 24},
		{Title: "Company", Width: 20},
		{Title: "Status", Width: 28},
		{Title: "Conn", Width: 5},
		{Title: "Eng", Width: 4},
		{Title: "Email", Width: 26},
	}

	tracker := m.table.Tracker()
	var rows []table.Row
	for _, p := range m.rows() {
		marker := ""
		if _, pending := tracker.Pending(p.ID); pending {
			marker = "*"
		}

		conn := "-"
		if p.ConnectionDegree > 0 {
			conn = models.ConnectionLabel(p.ConnectionDegree)
		}

		rows = append(rows, table.Row{
			marker,
			p.DisplayName(),
			models.Deref(p.CurrentCompany),
			string(p.Status),
			conn,
			strconv.Itoa(p.Engagement),
			models.Deref(p.Email),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 5)),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderStatusLine() string {
	var parts []string

	switch m.table.State() {
	case tablestate.Saving:
		parts = append(parts, dirtyStyle.Render("saving..."))
	case tablestate.Dirty:
		parts = append(parts, dirtyStyle.Render(pluralize(m.table.Tracker().Len(), "unsaved record")))
	}
	if m.status != "" {
		parts = append(parts, statusStyle.Render(m.status))
	}
	if m.err != nil {
		parts = append(parts, errorStyle.Render("error: "+m.err.Error()))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Enter: Details",
		"/: Search",
		"+/-: Engagement",
		"a: Advance",
		"x: Cancel",
		"c: Connected",
		"s: Save",
		"u: Undo",
		"n: New",
		"e: Edit",
		"d: Delete",
		"p: Pipeline",
		"r: Reload",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.selectedRow = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.searchQuery = m.searchInput.Value()
	m.selectedRow = 0
	return m, cmd
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(m.rows())-1 {
			m.selectedRow++
		}
	case "/":
		m.searching = true
		return m, m.searchInput.Focus()
	case "esc":
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.selectedRow = 0
	case "enter":
		if p, ok := m.selected(); ok {
			m.selectedID = p.ID
			m.viewMode = ViewDetail
		}
	case "+", "=":
		m.editSelected(func(p models.Person) error {
			return m.table.Edit(p.ID, tablestate.FieldEngagement, p.Engagement+1)
		})
	case "-":
		m.editSelected(func(p models.Person) error {
			return m.table.Edit(p.ID, tablestate.FieldEngagement, max(0, p.Engagement-1))
		})
	case "a":
		m.editSelected(func(p models.Person) error {
			return m.table.Edit(p.ID, tablestate.FieldStatus, p.Status.Next())
		})
	case "x":
		m.editSelected(func(p models.Person) error {
			return m.table.Edit(p.ID, tablestate.FieldStatus, models.StatusCancelled)
		})
	case "c":
		m.editSelected(func(p models.Person) error {
			return toggleConnected(m.table, p)
		})
	case "u":
		if p, ok := m.selected(); ok {
			m.table.Tracker().Forget(p.ID)
			m.status = "reverted " + p.DisplayName()
		}
	case "s", "ctrl+s":
		return m.startSave()
	case "r":
		m.status = "reloading..."
		return m, m.loadCmd()
	case "n":
		m.selectedID = ""
		m.initFormInputs()
		m.viewMode = ViewEdit
	case "e":
		if p, ok := m.selected(); ok {
			m.selectedID = p.ID
			m.initFormInputs()
			m.viewMode = ViewEdit
		}
	case "d":
		if p, ok := m.selected(); ok {
			m.selectedID = p.ID
			m.viewMode = ViewConfirmDelete
		}
	case "p":
		m.pipeline = renderPipelineFor(m.table.Records())
		m.viewMode = ViewPipeline
	}

	return m, nil
}

func (m *Model) editSelected(edit func(p models.Person) error) {
	p, ok := m.selected()
	if !ok {
		return
	}
	if err := edit(p); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.status = ""
}

func (m Model) startSave() (tea.Model, tea.Cmd) {
	switch m.table.State() {
	case tablestate.Clean:
		m.status = "nothing to save"
		return m, nil
	case tablestate.Saving:
		m.err = tablestate.ErrSaveInProgress
		return m, nil
	}
	m.status = fmt.Sprintf("saving %s...", pluralize(m.table.Tracker().Len(), "record"))
	return m, m.saveCmd()
}

// toggleConnected flips the connection and keeps the degree consistent with it.
func toggleConnected(t *tablestate.Orchestrator, p models.Person) error {
	connected := !p.Connected
	degree := 0
	if connected {
		degree = 1
	}
	if err := t.Edit(p.ID, tablestate.FieldConnected, connected); err != nil {
		return err
	}
	return t.Edit(p.ID, tablestate.FieldConnectionDegree, degree)
}
