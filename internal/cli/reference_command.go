package cli

import (
	"context"

	"timebookings/internal/api"
	"timebookings/internal/domain"
	"timebookings/internal/errors"
)

// ReferenceCommand handles the reference list and reference add commands
type ReferenceCommand struct {
	app *App
}

// NewReferenceCommand creates a new reference command handler
func NewReferenceCommand(app *App) *ReferenceCommand {
	return &ReferenceCommand{app: app}
}

// Execute runs "list" or "add <kind> <id> <name...>"
func (c *ReferenceCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewInvalidInputError("command", "reference", "usage: tb reference list|add")
	}

	switch args[0] {
	case "list":
		return c.list(ctx)
	case "add":
		return c.add(ctx, args[1:])
	default:
		return errors.NewInvalidInputError("command", args[0], "unknown reference command")
	}
}

func (c *ReferenceCommand) list(ctx context.Context) error {
	data, err := c.app.api.ListReferences(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("list reference data", err)
	}

	c.app.println("Projects:")
	printReferences(c.app, data.Projects)
	c.app.println("Accountings:")
	printReferences(c.app, data.Accountings)
	return nil
}

func (c *ReferenceCommand) add(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.NewInvalidInputError("arguments", joinArgs(args), "usage: tb reference add project|accounting <id> <name>")
	}

	kind, err := api.ParseReferenceKind(args[0])
	if err != nil {
		return c.app.errorHandler.Handle("add reference", err)
	}

	ref := domain.Reference{ID: args[1], Name: joinArgs(args[2:])}
	if err := c.app.api.AddReference(ctx, kind, ref); err != nil {
		return c.app.errorHandler.Handle("add reference", err)
	}

	c.app.printf("Saved %s %s: %s\n", kind, ref.ID, ref.Name)
	return nil
}

func printReferences(app *App, list domain.ReferenceList) {
	if len(list) == 0 {
		app.println("  (none)")
		return
	}
	for _, ref := range list {
		app.printf("  %-12s %s\n", ref.ID, ref.Name)
	}
}
