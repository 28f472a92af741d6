// ABOUTME: Interactive table subcommand
// ABOUTME: Runs the bubbletea prospect table against a local or remote store
package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/harperreed/leadbook/people"
	"github.com/harperreed/leadbook/tablestate"
	"github.com/harperreed/leadbook/tui"
)

// TUICommand runs the table until the user quits. Unsaved edits are reported.
func TUICommand(ctx context.Context, store people.Store, logger *log.Logger) error {
	model := tui.NewModel(ctx, store, logger)

	final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}

	if m, ok := final.(tui.Model); ok && m.Table().State() == tablestate.Dirty {
		fmt.Printf("Discarded unsaved edits to %d records\n", m.Table().Tracker().Len())
	}
	return nil
}
