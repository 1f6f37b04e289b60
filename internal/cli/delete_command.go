package cli

import (
	"context"

	"timebookings/internal/domain"
	"timebookings/internal/errors"
)

// DeleteCommand handles the delete command
type DeleteCommand struct {
	app *App
}

// NewDeleteCommand creates a new delete command handler
func NewDeleteCommand(app *App) *DeleteCommand {
	return &DeleteCommand{app: app}
}

// Execute runs the delete command
func (c *DeleteCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return c.app.errorHandler.Handle("delete entry",
			errors.NewInvalidInputError("id", joinArgs(args), "usage: tb delete <id>"))
	}

	id := domain.EntryID(args[0])
	if err := c.app.api.DeleteEntry(ctx, id); err != nil {
		return c.app.errorHandler.Handle("delete entry", err)
	}

	c.app.printf("Deleted entry %s\n", id)
	return nil
}
