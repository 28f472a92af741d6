// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Spreadsheet-style prospect table with staged edits and batch save
package tui

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/harperreed/leadbook/models"
	"github.com/harperreed/leadbook/people"
	"github.com/harperreed/leadbook/tablestate"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewEdit
	ViewPipeline
	ViewConfirmDelete
)

// Model is the main bubbletea model
type Model struct {
	ctx      context.Context
	store    people.Store
	table    *tablestate.Orchestrator
	viewMode ViewMode

	// List view state
	selectedRow int
	searching   bool
	searchInput textinput.Model
	searchQuery string

	// Detail, edit and delete views work on this record; empty means a new one.
	selectedID string

	// Edit view state
	formInputs []textinput.Model
	focusIndex int

	// Pipeline view state
	pipeline string

	// UI state
	status string
	err    error
	width  int
	height int
}

type loadedMsg struct{ err error }

type savedMsg struct {
	updated []models.Person
	err     error
}

type createdMsg struct {
	person *models.Person
	err    error
}

type deletedMsg struct {
	id  string
	err error
}

// NewModel creates a new TUI model over store.
func NewModel(ctx context.Context, store people.Store, logger *log.Logger) Model {
	search := textinput.New()
	search.Placeholder = "search name, company, email..."
	search.Prompt = "/ "
	search.CharLimit = 100

	return Model{
		ctx:         ctx,
		store:       store,
		table:       tablestate.NewOrchestrator(store, logger),
		viewMode:    ViewList,
		searchInput: search,
		width:       120,
		height:      30,
	}
}

// Table exposes the orchestrator behind the view.
func (m Model) Table() *tablestate.Orchestrator {
	return m.table
}

func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m Model) loadCmd() tea.Cmd {
	table, store, ctx := m.table, m.store, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: table.Hydrate(ctx, store)}
	}
}

func (m Model) saveCmd() tea.Cmd {
	table, ctx := m.table, m.ctx
	return func() tea.Msg {
		updated, err := table.Save(ctx)
		return savedMsg{updated: updated, err: err}
	}
}

func (m Model) createCmd(patch models.PersonPatch) tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		p, err := store.Create(ctx, patch)
		return createdMsg{person: p, err: err}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	store, ctx := m.store, m.ctx
	return func() tea.Msg {
		return deletedMsg{id: id, err: store.Delete(ctx, id)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = ""
		}
		m.clampSelection()
		return m, nil
	case savedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		if msg.updated != nil {
			m.status = pluralize(len(msg.updated), "record") + " saved"
		}
		return m, nil
	case createdMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.table.Upsert(*msg.person)
		m.status = "added " + msg.person.DisplayName()
		m.viewMode = ViewList
		m.selectedRow = 0
		return m, nil
	case deletedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.table.Remove(msg.id)
		m.status = "deleted"
		m.clampSelection()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewEdit:
		return m.renderEditView()
	case ViewPipeline:
		return m.renderPipelineView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Delegate to view-specific handlers
	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewEdit:
		return m.handleEditKeys(msg)
	case ViewPipeline:
		return m.handlePipelineKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
}

func (m Model) record(id string) (models.Person, bool) {
	for _, p := range m.table.Records() {
		if p.ID == id {
			return p, true
		}
	}
	return models.Person{}, false
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	dirtyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)
