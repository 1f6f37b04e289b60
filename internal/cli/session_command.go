package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"timebookings/internal/domain"
	"timebookings/internal/errors"
	"timebookings/internal/services"
	"timebookings/internal/timer"
	"timebookings/internal/validation"
)

const sessionPrompt = "tb> "

// isTerminal is a test seam for term.IsTerminal on the session input.
var isTerminal = func(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SessionCommand runs the interactive session. It owns one live draft and
// one timer until the input ends or the user quits.
type SessionCommand struct {
	app *App
}

// NewSessionCommand creates a new session command handler
func NewSessionCommand(app *App) *SessionCommand {
	return &SessionCommand{app: app}
}

// Execute runs the read-eval-print loop. Command errors are printed and the
// loop continues.
func (c *SessionCommand) Execute(ctx context.Context, args []string) error {
	booking, err := c.app.api.Session(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("start session", err)
	}

	registry := NewCommandRegistry(c.app, booking)
	interactive := isTerminal(c.app.in)
	if interactive {
		c.app.println("Type help for commands.")
	}

	scanner := bufio.NewScanner(c.app.in)
	for {
		if interactive {
			c.app.printf("%s", sessionPrompt)
		}
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			break
		}

		if err := c.dispatch(ctx, registry, fields[0], fields[1:]); err != nil {
			c.app.println(c.app.errorHandler.HandleSimple(err))
		}
	}

	if snapshot := booking.Timer(); snapshot.State == timer.Running {
		c.app.printf("Timer discarded at %s\n", snapshot.Clock())
	}
	return scanner.Err()
}

func (c *SessionCommand) dispatch(ctx context.Context, registry *CommandRegistry, name string, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, c.app.config.Application.Timeout)
	defer cancel()
	return registry.Execute(ctx, name, args)
}

// printDraft shows the open draft and whether its submit gate passes
func printDraft(app *App, draft domain.EntryDraft, mode services.DraftMode, ready bool) {
	layout := app.config.Display.TimeFormat

	app.printf("Draft (%s):\n", mode)
	app.printf("  start:      %s\n", formatOptionalTime(draft.Start, layout))
	app.printf("  end:        %s\n", formatOptionalTime(draft.End, layout))
	if draft.Start != nil && draft.End != nil {
		_, label := domain.ComputeDuration(*draft.Start, *draft.End)
		app.printf("  duration:   %s\n", label)
	}
	if !validation.NewValidator().IsValidTimeRange(draft.Start, draft.End) {
		app.println("  warning:    end is before start")
	}
	app.printf("  text:       %s\n", orDash(draft.ShortText))
	app.printf("  project:    %s %s\n", orDash(draft.ProjectID), draft.ProjectName)
	app.printf("  accounting: %s %s\n", orDash(draft.AccountingID), draft.AccountingName)
	if ready {
		app.println("  save:       ready")
	} else {
		app.println("  save:       incomplete")
	}
}

func formatOptionalTime(t *time.Time, layout string) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(layout)
}

// projectCommand lists projects or changes the selection. "-" clears it.
type projectCommand struct {
	app     *App
	booking services.BookingService
}

func newProjectCommand(app *App, booking services.BookingService) *projectCommand {
	return &projectCommand{app: app, booking: booking}
}

func (c *projectCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		data, err := c.app.api.ListReferences(ctx)
		if err != nil {
			return c.app.errorHandler.Handle("list projects", err)
		}
		selected := c.booking.Selection().ProjectID
		for _, ref := range data.Projects {
			marker := " "
			if ref.ID == selected {
				marker = "*"
			}
			c.app.printf("%s %-12s %s\n", marker, ref.ID, ref.Name)
		}
		if len(data.Projects) == 0 {
			c.app.println("No projects; any id is accepted")
		}
		return nil
	}

	id := args[0]
	if id == "-" {
		id = ""
	}
	selection, err := c.booking.SelectProject(id)
	if err != nil {
		return c.app.errorHandler.Handle("select project", err)
	}
	if selection.IsEmpty() {
		c.app.println("Project selection cleared")
		return nil
	}
	c.app.printf("Selected project %s %s\n", selection.ProjectID, selection.ProjectName)
	return nil
}

// draftCommand opens a manual draft
type draftCommand struct {
	app     *App
	booking services.BookingService
}

func newDraftCommand(app *App, booking services.BookingService) *draftCommand {
	return &draftCommand{app: app, booking: booking}
}

func (c *draftCommand) Execute(ctx context.Context, args []string) error {
	draft := c.booking.BeginManualEntry()
	printDraft(c.app, draft, c.booking.Mode(), c.booking.CanFullSave())
	return nil
}

// editDraftCommand opens an edit draft for an existing entry
type editDraftCommand struct {
	app     *App
	booking services.BookingService
}

func newEditDraftCommand(app *App, booking services.BookingService) *editDraftCommand {
	return &editDraftCommand{app: app, booking: booking}
}

func (c *editDraftCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("id", joinArgs(args), "usage: edit <id>")
	}
	draft, err := c.booking.BeginEdit(domain.EntryID(args[0]))
	if err != nil {
		return c.app.errorHandler.Handle("edit entry", err)
	}
	printDraft(c.app, draft, c.booking.Mode(), c.booking.CanFullSave())
	return nil
}

// setFieldCommand changes one draft field
type setFieldCommand struct {
	app     *App
	booking services.BookingService
}

func newSetFieldCommand(app *App, booking services.BookingService) *setFieldCommand {
	return &setFieldCommand{app: app, booking: booking}
}

func (c *setFieldCommand) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewInvalidInputError("field", "", "usage: set <field> <value>")
	}
	value := joinArgs(args[1:])

	var err error
	switch strings.ToLower(args[0]) {
	case "text", "shorttext":
		_, err = c.booking.UpdateField(domain.FieldShortText, value)
	case "project", "projectid":
		_, err = c.booking.SetDraftProject(value)
	case "accounting", "accountingid":
		_, err = c.booking.SetDraftAccounting(value)
	case "start", "end":
		err = c.setTime(domain.Field(strings.ToLower(args[0])), value)
	default:
		field, parseErr := domain.ParseField(args[0])
		if parseErr != nil {
			return errors.NewInvalidInputError("field", args[0], "fields: start, end, text, project, accounting")
		}
		_, err = c.booking.UpdateField(field, value)
	}
	if err != nil {
		return c.app.errorHandler.Handle("set "+args[0], err)
	}

	c.app.printf("%s set\n", args[0])
	return nil
}

func (c *setFieldCommand) setTime(field domain.Field, value string) error {
	if value == "" || value == "-" {
		_, err := c.booking.UpdateField(field, nil)
		return err
	}
	t, err := parseTimeArg(value, c.app.config.Display.TimeFormat)
	if err != nil {
		return err
	}
	_, err = c.booking.UpdateField(field, t)
	return err
}

// saveCommand submits the open draft through the gate of its mode
type saveCommand struct {
	app     *App
	booking services.BookingService
}

func newSaveCommand(app *App, booking services.BookingService) *saveCommand {
	return &saveCommand{app: app, booking: booking}
}

func (c *saveCommand) Execute(ctx context.Context, args []string) error {
	var (
		entry domain.TimeEntry
		err   error
	)
	if c.booking.Mode() == services.ModeQuick {
		entry, err = c.booking.SubmitQuick(ctx)
	} else {
		entry, err = c.booking.SubmitFull(ctx)
	}
	if err != nil {
		return c.app.errorHandler.Handle("save entry", err)
	}

	c.app.printf("Saved entry %s: %s (%s)\n", entry.ID, entry.ShortText, entry.Duration)
	return nil
}

// cancelCommand discards the open draft
type cancelCommand struct {
	app     *App
	booking services.BookingService
}

func newCancelCommand(app *App, booking services.BookingService) *cancelCommand {
	return &cancelCommand{app: app, booking: booking}
}

func (c *cancelCommand) Execute(ctx context.Context, args []string) error {
	c.booking.CancelDraft()
	c.app.println("Draft discarded")
	return nil
}

// deleteEntryCommand removes an entry from the collection
type deleteEntryCommand struct {
	app     *App
	booking services.BookingService
}

func newDeleteEntryCommand(app *App, booking services.BookingService) *deleteEntryCommand {
	return &deleteEntryCommand{app: app, booking: booking}
}

func (c *deleteEntryCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("id", joinArgs(args), "usage: delete <id>")
	}
	id := domain.EntryID(args[0])
	if err := c.booking.Delete(ctx, id); err != nil {
		return c.app.errorHandler.Handle("delete entry", err)
	}
	c.app.printf("Deleted entry %s\n", id)
	return nil
}

// listEntriesCommand prints the session collection grouped by date
type listEntriesCommand struct {
	app     *App
	booking services.BookingService
}

func newListEntriesCommand(app *App, booking services.BookingService) *listEntriesCommand {
	return &listEntriesCommand{app: app, booking: booking}
}

func (c *listEntriesCommand) Execute(ctx context.Context, args []string) error {
	entries := c.booking.Search(joinArgs(args))
	printGroups(c.app.out, domain.GroupByDate(entries, c.app.config.Display.GroupHeaderPrefix))
	return nil
}

// helpCommand prints the session usage
type helpCommand struct {
	app      *App
	registry *CommandRegistry
}

func newHelpCommand(app *App, registry *CommandRegistry) *helpCommand {
	return &helpCommand{app: app, registry: registry}
}

func (c *helpCommand) Execute(ctx context.Context, args []string) error {
	c.app.println(c.registry.GetUsage())
	c.app.println("  project [id|-]      list projects or select one")
	c.app.println("  start | stop        run the timer; stop opens a quick draft")
	c.app.println("  new | edit <id>     open a draft for a new or existing entry")
	c.app.println("  set <field> <value> fields: start, end, text, project, accounting")
	c.app.println("  save | cancel       submit or discard the draft")
	return nil
}
