package cli

import (
	"context"
)

// ListCommand handles the list command
type ListCommand struct {
	app *App
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{app: app}
}

// Execute runs the list command. All arguments form one search query.
func (c *ListCommand) Execute(ctx context.Context, args []string) error {
	groups, err := c.app.api.ListEntries(ctx, joinArgs(args))
	if err != nil {
		return c.app.errorHandler.Handle("list entries", err)
	}

	printGroups(c.app.out, groups)
	return nil
}
