package cli

import (
	"context"

	"github.com/spf13/cobra"

	"timebookings/internal/api"
)

// entryFlags are the draft fields a one-shot add or edit can set
type entryFlags struct {
	start      string
	end        string
	text       string
	project    string
	accounting string
}

func (f *entryFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.start, "start", "", "Start time (configured time format, RFC 3339 or HH:MM)")
	flags.StringVar(&f.end, "end", "", "End time (configured time format, RFC 3339 or HH:MM)")
	flags.StringVarP(&f.text, "text", "t", "", "Short text describing the work")
	flags.StringVarP(&f.project, "project", "p", "", "Project id")
	flags.StringVarP(&f.accounting, "accounting", "a", "", "Accounting id")
}

// request converts the set flags into an EntryRequest. Positional words,
// when given, are used as the short text.
func (f *entryFlags) request(cmd *cobra.Command, words []string, layout string) (api.EntryRequest, error) {
	var req api.EntryRequest
	changed := func(name string) bool { return cmd != nil && cmd.Flags().Changed(name) }

	if changed("start") {
		t, err := parseTimeArg(f.start, layout)
		if err != nil {
			return req, err
		}
		req.Start = &t
	}
	if changed("end") {
		t, err := parseTimeArg(f.end, layout)
		if err != nil {
			return req, err
		}
		req.End = &t
	}
	if text := joinArgs(words); text != "" {
		req.ShortText = &text
	} else if changed("text") {
		req.ShortText = &f.text
	}
	if changed("project") {
		req.ProjectID = &f.project
	}
	if changed("accounting") {
		req.AccountingID = &f.accounting
	}
	return req, nil
}

// AddCommand handles the add command
type AddCommand struct {
	app   *App
	cmd   *cobra.Command
	flags *entryFlags
}

// NewAddCommand creates a new add command handler
func NewAddCommand(app *App, cmd *cobra.Command, flags *entryFlags) *AddCommand {
	return &AddCommand{app: app, cmd: cmd, flags: flags}
}

// Execute runs the add command
func (c *AddCommand) Execute(ctx context.Context, args []string) error {
	req, err := c.flags.request(c.cmd, args, c.app.config.Display.TimeFormat)
	if err != nil {
		return c.app.errorHandler.Handle("add entry", err)
	}

	entry, err := c.app.api.AddEntry(ctx, req)
	if err != nil {
		return c.app.errorHandler.Handle("add entry", err)
	}

	c.app.printf("Added entry %s: %s (%s)\n", entry.ID, entry.ShortText, entry.Duration)
	return nil
}
