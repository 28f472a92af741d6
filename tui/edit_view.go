// ABOUTME: Add and edit form for TUI
// ABOUTME: New records are created directly; edits to existing ones are staged for the next save
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/leadbook/models"
	"github.com/harperreed/leadbook/people"
	"github.com/harperreed/leadbook/tablestate"
)

type formField struct {
	field tablestate.Field
	label string
	limit int
}

var formFields = []formField{
	{tablestate.FieldName, "Name", 200},
	{tablestate.FieldURL, "Profile URL", 300},
	{tablestate.FieldProfileImage, "Profile image URL", 500},
	{tablestate.FieldHeadline, "Headline", 300},
	{tablestate.FieldCurrentPosition, "Current position", 200},
	{tablestate.FieldCurrentCompany, "Current company", 200},
	{tablestate.FieldLocation, "Location", 200},
	{tablestate.FieldEmail, "Email", 200},
	{tablestate.FieldPhone, "Phone", 50},
	{tablestate.FieldWebsites, "Websites (comma separated)", 1000},
	{tablestate.FieldConnectionDegree, "Connection degree (0 = out of network)", 2},
	{tablestate.FieldAbout, "About", 2000},
}

func (m Model) renderEditView() string {
	var s strings.Builder

	if m.selectedID == "" {
		s.WriteString(titleStyle.Render("NEW PERSON"))
	} else {
		s.WriteString(titleStyle.Render("EDIT PERSON"))
	}
	s.WriteString("\n\n")

	for i, input := range m.formInputs {
		if i == m.focusIndex {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(fieldLabelStyle.Render(formFields[i].label))
		s.WriteString("\n    ")
		s.WriteString(input.View())
		s.WriteString("\n")
	}

	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render("error: " + m.err.Error()))
		s.WriteString("\n")
	}

	s.WriteString(m.renderEditHelp())

	return s.String()
}

func (m Model) renderEditHelp() string {
	help := []string{
		"Tab/Shift+Tab: Move",
		"Enter: Save",
		"Esc: Cancel",
	}
	if m.selectedID != "" {
		help[1] = "Enter: Stage changes"
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.err = nil
		return m, nil
	case "tab", "down":
		m.focusIndex = (m.focusIndex + 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "shift+tab", "up":
		m.focusIndex = (m.focusIndex - 1 + len(m.formInputs)) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "enter":
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.formInputs[m.focusIndex], cmd = m.formInputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m *Model) initFormInputs() {
	inputs := make([]textinput.Model, len(formFields))
	for i, f := range formFields {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = f.label
		inputs[i].CharLimit = f.limit
		inputs[i].Width = 60
	}

	// If editing, populate fields from the record as currently displayed
	if m.selectedID != "" {
		if p, ok := m.record(m.selectedID); ok {
			for i, f := range formFields {
				inputs[i].SetValue(formValue(f.field, p))
			}
		}
	}

	m.formInputs = inputs
	m.focusIndex = 0
	m.err = nil
	m.updateFormFocus()
}

func (m *Model) updateFormFocus() {
	for i := range m.formInputs {
		if i == m.focusIndex {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

func formValue(field tablestate.Field, p models.Person) string {
	switch field {
	case tablestate.FieldWebsites:
		return strings.Join(p.Websites, ", ")
	case tablestate.FieldConnectionDegree:
		return strconv.Itoa(p.ConnectionDegree)
	}
	v, _ := field.Value(p)
	s, _ := v.(string)
	return s
}

// parseFormValue converts raw input into the field's value type. ok is false
// when the input is blank.
func parseFormValue(field tablestate.Field, raw string) (value any, ok bool, err error) {
	raw = strings.TrimSpace(raw)
	switch field {
	case tablestate.FieldWebsites:
		sites := []string{}
		for _, w := range strings.Split(raw, ",") {
			if w = strings.TrimSpace(w); w != "" {
				sites = append(sites, w)
			}
		}
		return sites, len(sites) > 0, nil
	case tablestate.FieldConnectionDegree:
		if raw == "" {
			return 0, false, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, false, fmt.Errorf("connection degree must be a non-negative number")
		}
		return n, true, nil
	}
	return raw, raw != "", nil
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	values := make(map[tablestate.Field]any, len(formFields))
	var patch models.PersonPatch

	for i, f := range formFields {
		v, ok, err := parseFormValue(f.field, m.formInputs[i].Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		values[f.field] = v
		if !ok {
			continue
		}
		fp, err := f.field.Patch(v)
		if err != nil {
			m.err = err
			return m, nil
		}
		patch = patch.Merge(fp)
	}

	if err := people.ValidatePatch(patch); err != nil {
		m.err = err
		return m, nil
	}

	if m.selectedID == "" {
		m.status = "adding..."
		return m, m.createCmd(patch)
	}

	for _, f := range formFields {
		if err := m.table.Edit(m.selectedID, f.field, values[f.field]); err != nil {
			m.err = err
			return m, nil
		}
	}
	degree := values[tablestate.FieldConnectionDegree].(int)
	if err := m.table.Edit(m.selectedID, tablestate.FieldConnected, degree == 1); err != nil {
		m.err = err
		return m, nil
	}

	m.err = nil
	m.status = "changes staged, press s to save"
	m.viewMode = ViewList
	return m, nil
}
