package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"timebookings/internal/domain"
	"timebookings/internal/errors"
)

// OutputCommand handles the output command
type OutputCommand struct {
	app *App
}

// NewOutputCommand creates a new output command handler
func NewOutputCommand(app *App) *OutputCommand {
	return &OutputCommand{app: app}
}

// Execute runs the output command
func (c *OutputCommand) Execute(ctx context.Context, args []string) error {
	return c.outputEntries(ctx, args)
}

// outputEntries writes every entry in the requested format, newest first
func (c *OutputCommand) outputEntries(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewInvalidInputError("command", "output", "usage: tb output format=csv|json")
	}

	format := args[0]
	if !strings.HasPrefix(format, "format=") {
		return errors.NewInvalidInputError("format", format, "invalid format option")
	}
	format = strings.TrimPrefix(format, "format=")
	if format != "csv" && format != "json" {
		return errors.NewInvalidInputError("format", format, "unsupported format")
	}

	groups, err := c.app.api.ListEntries(ctx, "")
	if err != nil {
		return c.app.errorHandler.Handle("export entries", err)
	}
	var entries []domain.TimeEntry
	for _, group := range groups {
		entries = append(entries, group.Entries...)
	}

	if format == "json" {
		return c.outputJSON(entries)
	}
	return c.outputCSV(entries)
}

// outputJSON writes the entries using the booking payload field names
func (c *OutputCommand) outputJSON(entries []domain.TimeEntry) error {
	if entries == nil {
		entries = []domain.TimeEntry{}
	}
	encoder := json.NewEncoder(c.app.out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entries); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// outputCSV writes one row per entry
func (c *OutputCommand) outputCSV(entries []domain.TimeEntry) error {
	writer := csv.NewWriter(c.app.out)

	header := []string{"ID", "Date", "Start", "End", "Duration", "Project ID", "Project", "Accounting ID", "Accounting", "Short Text"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, entry := range entries {
		row := []string{
			entry.ID.String(),
			entry.Date,
			entry.Start.UTC().Format(time.RFC3339),
			entry.End.UTC().Format(time.RFC3339),
			entry.Duration,
			entry.ProjectID,
			entry.ProjectName,
			entry.AccountingID,
			entry.AccountingName,
			entry.ShortText,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
