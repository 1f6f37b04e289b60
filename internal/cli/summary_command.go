package cli

import (
	"context"
	"fmt"
	"sort"

	"timebookings/internal/domain"
)

// projectTotal accumulates the minutes booked on one project
type projectTotal struct {
	name    string
	minutes int
	count   int
}

// SummaryCommand handles the summary command
type SummaryCommand struct {
	app *App
}

// NewSummaryCommand creates a new summary command handler
func NewSummaryCommand(app *App) *SummaryCommand {
	return &SummaryCommand{app: app}
}

// Execute runs the summary command. Arguments filter like list.
func (c *SummaryCommand) Execute(ctx context.Context, args []string) error {
	groups, err := c.app.api.ListEntries(ctx, joinArgs(args))
	if err != nil {
		return c.app.errorHandler.Handle("summarize entries", err)
	}

	if len(groups) == 0 {
		c.app.println("No entries found")
		return nil
	}

	grand := 0
	for _, group := range groups {
		totals, dayMinutes := summarize(group.Entries)
		grand += dayMinutes

		c.app.printf("%s  total %s\n", group.Header, domain.FormatDurationLabel(dayMinutes))
		for _, total := range totals {
			c.app.printf("  %-30s %-8s %s\n", total.name, domain.FormatDurationLabel(total.minutes), pluralEntries(total.count))
		}
	}
	c.app.printf("Total: %s\n", domain.FormatDurationLabel(grand))
	return nil
}

// summarize totals entries per project, largest first, ties by name
func summarize(entries []domain.TimeEntry) ([]projectTotal, int) {
	byProject := make(map[string]*projectTotal)
	sum := 0
	for _, entry := range entries {
		name := orDash(entry.ProjectName)
		total, ok := byProject[name]
		if !ok {
			total = &projectTotal{name: name}
			byProject[name] = total
		}
		minutes := entry.Minutes()
		total.minutes += minutes
		total.count++
		sum += minutes
	}

	totals := make([]projectTotal, 0, len(byProject))
	for _, total := range byProject {
		totals = append(totals, *total)
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].minutes != totals[j].minutes {
			return totals[i].minutes > totals[j].minutes
		}
		return totals[i].name < totals[j].name
	})
	return totals, sum
}

func pluralEntries(n int) string {
	if n == 1 {
		return "(1 entry)"
	}
	return fmt.Sprintf("(%d entries)", n)
}
