package cli

import (
	"context"

	"timebookings/internal/errors"
	"timebookings/internal/services"
)

// StartCommand starts the session timer for the selected project
type StartCommand struct {
	app     *App
	booking services.BookingService
}

// NewStartCommand creates a new start command handler
func NewStartCommand(app *App, booking services.BookingService) *StartCommand {
	return &StartCommand{app: app, booking: booking}
}

// Execute runs the start command
func (c *StartCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "start", "usage: start")
	}

	if err := c.booking.StartTimer(); err != nil {
		return c.app.errorHandler.Handle("start timer", err)
	}

	selection := c.booking.Selection()
	c.app.printf("Timer started for %s\n", orDash(selection.ProjectName))
	return nil
}
