package cli

import (
	"context"

	"timebookings/internal/services"
)

// StatusCommand shows the timer, the selection and the open draft
type StatusCommand struct {
	app     *App
	booking services.BookingService
}

// NewStatusCommand creates a new status command handler
func NewStatusCommand(app *App, booking services.BookingService) *StatusCommand {
	return &StatusCommand{app: app, booking: booking}
}

// Execute runs the status command
func (c *StatusCommand) Execute(ctx context.Context, args []string) error {
	snapshot := c.booking.Timer()
	c.app.printf("Timer:   %s %s\n", snapshot.State, snapshot.Clock())
	c.app.printf("Project: %s\n", orDash(c.booking.Selection().ProjectName))

	mode := c.booking.Mode()
	if mode == services.ModeNone {
		c.app.println("Draft:   none")
		return nil
	}

	ready := c.booking.CanFullSave()
	if mode == services.ModeQuick {
		ready = c.booking.CanQuickSave()
	}
	printDraft(c.app, c.booking.Draft(), mode, ready)
	return nil
}
