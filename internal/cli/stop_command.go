package cli

import (
	"context"

	"timebookings/internal/errors"
	"timebookings/internal/services"
)

// StopCommand stops the session timer and opens the quick-save draft
type StopCommand struct {
	app     *App
	booking services.BookingService
}

// NewStopCommand creates a new stop command handler
func NewStopCommand(app *App, booking services.BookingService) *StopCommand {
	return &StopCommand{app: app, booking: booking}
}

// Execute runs the stop command
func (c *StopCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "stop", "usage: stop")
	}

	draft, err := c.booking.StopTimer()
	if err != nil {
		return c.app.errorHandler.Handle("stop timer", err)
	}

	c.app.printf("Timer stopped at %s\n", c.booking.Timer().Clock())
	printDraft(c.app, draft, c.booking.Mode(), c.booking.CanQuickSave())
	c.app.println("Set text and accounting, then save.")
	return nil
}
