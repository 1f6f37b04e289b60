package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"timebookings/internal/api"
	"timebookings/internal/config"
	"timebookings/internal/domain"
	"timebookings/internal/errors"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// App represents the main CLI application
type App struct {
	api          api.BookingAPI
	config       *config.Config
	in           io.Reader
	out          io.Writer
	errorHandler *ErrorHandler
}

// AppOption configures an App
type AppOption func(*App)

// WithIO replaces stdin and stdout
func WithIO(in io.Reader, out io.Writer) AppOption {
	return func(a *App) {
		a.in = in
		a.out = out
	}
}

// NewApp creates a new CLI application instance with dependency injection
func NewApp(bookingAPI api.BookingAPI, cfg *config.Config, opts ...AppOption) *App {
	app := &App{
		api:          bookingAPI,
		config:       cfg,
		in:           os.Stdin,
		out:          os.Stdout,
		errorHandler: NewErrorHandler(),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Close releases the API and its backend
func (a *App) Close() error {
	return a.api.Close()
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...interface{}) {
	fmt.Fprintln(a.out, args...)
}

// parseTimeArg accepts the configured time format, RFC 3339 or a bare
// HH:MM meaning that clock time today. Layouts without a zone are read in
// local time.
func parseTimeArg(value, layout string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("15:04", value, time.Local); err == nil {
		now := timeNow().In(time.Local)
		return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, time.Local), nil
	}
	return time.Time{}, errors.NewInvalidInputError("time", value,
		fmt.Sprintf("expected %q, RFC 3339 or HH:MM", layout))
}

// printGroups writes entries under their date headers
func printGroups(w io.Writer, groups []domain.DateGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No entries found")
		return
	}
	for _, group := range groups {
		fmt.Fprintln(w, group.Header)
		for _, entry := range group.Entries {
			fmt.Fprintf(w, "  %s  %s-%s  %-8s %s / %s  %s\n",
				entry.ID,
				entry.Start.Local().Format("15:04"),
				entry.End.Local().Format("15:04"),
				entry.Duration,
				orDash(entry.ProjectName),
				orDash(entry.AccountingName),
				entry.ShortText,
			)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
