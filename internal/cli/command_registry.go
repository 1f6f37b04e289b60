package cli

import (
	"context"
	"strings"

	"timebookings/internal/errors"
	"timebookings/internal/services"
)

// Command represents a command the interactive session can dispatch
type Command interface {
	Execute(ctx context.Context, args []string) error
}

// CommandRegistry maps session command names to handlers
type CommandRegistry struct {
	commands map[string]Command
	names    []string
}

// NewCommandRegistry creates a registry holding every session command
func NewCommandRegistry(app *App, booking services.BookingService) *CommandRegistry {
	registry := &CommandRegistry{
		commands: make(map[string]Command),
	}

	registry.Register("project", newProjectCommand(app, booking))
	registry.Register("start", NewStartCommand(app, booking))
	registry.Register("stop", NewStopCommand(app, booking))
	registry.Register("status", NewStatusCommand(app, booking))
	registry.Register("new", newDraftCommand(app, booking))
	registry.Register("edit", newEditDraftCommand(app, booking))
	registry.Register("set", newSetFieldCommand(app, booking))
	registry.Register("save", newSaveCommand(app, booking))
	registry.Register("cancel", newCancelCommand(app, booking))
	registry.Register("delete", newDeleteEntryCommand(app, booking))
	registry.Register("list", newListEntriesCommand(app, booking))
	registry.Register("help", newHelpCommand(app, registry))

	return registry
}

// Register adds a command to the registry
func (r *CommandRegistry) Register(name string, command Command) {
	if _, exists := r.commands[name]; !exists {
		r.names = append(r.names, name)
	}
	r.commands[name] = command
}

// Execute runs the specified command with the given arguments
func (r *CommandRegistry) Execute(ctx context.Context, commandName string, args []string) error {
	command, exists := r.commands[commandName]
	if !exists {
		return errors.NewInvalidInputError("command", commandName, "unknown command, type help")
	}
	return command.Execute(ctx, args)
}

// Names returns the registered command names in registration order
func (r *CommandRegistry) Names() []string {
	return append([]string{}, r.names...)
}

// GetUsage returns the usage string for the session
func (r *CommandRegistry) GetUsage() string {
	return "commands: " + strings.Join(append(r.Names(), "quit"), ", ")
}
