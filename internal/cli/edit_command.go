package cli

import (
	"context"

	"github.com/spf13/cobra"

	"timebookings/internal/domain"
	"timebookings/internal/errors"
)

// EditCommand handles the edit command
type EditCommand struct {
	app   *App
	cmd   *cobra.Command
	flags *entryFlags
}

// NewEditCommand creates a new edit command handler
func NewEditCommand(app *App, cmd *cobra.Command, flags *entryFlags) *EditCommand {
	return &EditCommand{app: app, cmd: cmd, flags: flags}
}

// Execute runs the edit command. The first argument is the entry id.
func (c *EditCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.app.errorHandler.Handle("edit entry",
			errors.NewInvalidInputError("id", "", "usage: tb edit <id> [flags]"))
	}

	req, err := c.flags.request(c.cmd, args[1:], c.app.config.Display.TimeFormat)
	if err != nil {
		return c.app.errorHandler.Handle("edit entry", err)
	}

	entry, err := c.app.api.EditEntry(ctx, domain.EntryID(args[0]), req)
	if err != nil {
		return c.app.errorHandler.Handle("edit entry", err)
	}

	c.app.printf("Updated entry %s: %s (%s)\n", entry.ID, entry.ShortText, entry.Duration)
	return nil
}
