package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"timebookings/internal/api"
	"timebookings/internal/config"
	"timebookings/internal/logging"
)

// APIFactory builds the booking API once the configuration is known
type APIFactory func(ctx context.Context, cfg *config.Config, logger logging.Logger) (api.BookingAPI, error)

// DefaultAPIFactory opens the configured backend and wires the services on it
func DefaultAPIFactory(ctx context.Context, cfg *config.Config, logger logging.Logger) (api.BookingAPI, error) {
	backend, err := config.CreateBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return api.New(backend, cfg, logger), nil
}

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd     *cobra.Command
	factory APIFactory
	loader  *config.Loader
	in      io.Reader
	out     io.Writer
	logOut  io.Writer

	config *config.Config
	app    *App
}

// RootOption configures a RootCommand
type RootOption func(*RootCommand)

// WithRootIO replaces stdin, stdout and the log destination
func WithRootIO(in io.Reader, out, logOut io.Writer) RootOption {
	return func(r *RootCommand) {
		r.in = in
		r.out = out
		r.logOut = logOut
	}
}

// WithLoader replaces the configuration loader
func WithLoader(loader *config.Loader) RootOption {
	return func(r *RootCommand) { r.loader = loader }
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(factory APIFactory, opts ...RootOption) *RootCommand {
	root := &RootCommand{
		factory: factory,
		loader:  config.NewLoader(),
		in:      os.Stdin,
		out:     os.Stdout,
		logOut:  os.Stderr,
	}
	for _, opt := range opts {
		opt(root)
	}

	root.cmd = &cobra.Command{
		Use:   "tb",
		Short: "A command-line time booking application",
		Long: `Time Bookings (tb) records time entries against projects and accountings.

Entries are created with a full form (add, edit, session "new") or by running
the session timer and quick-saving the measured interval (session "start",
"stop", "save").

EXAMPLES:
  tb add "Sprint planning" -p P-100 -a ACC-1      # 30 minute entry starting now
  tb add -t "Code review" -p P-100 -a ACC-1 --start 09:00 --end 10:15
  tb edit <id> --end 11:00                        # Change an existing entry
  tb list standup                                 # Entries matching "standup"
  tb summary                                      # Totals per day and project
  tb reference add project P-100 "Platform"       # Maintain lookup lists
  tb session                                      # Interactive timer and drafts

CONFIGURATION:
  Priority: command-line flags > environment variables > config file > defaults

  Config file:
    TB_CONFIG                    JSON config file (or --config)

  Storage:
    TB_STORAGE_BACKEND           sqlite, jsonfile or odata (default: sqlite)
    TB_STORAGE_DIR               Data directory (default: ~/.tb)
    TB_DB_FILENAME               SQLite filename (default: tb.db)
    TB_ODATA_URL                 OData service root for the odata backend
    TB_DB_QUERY_TIMEOUT          Query timeout (default: 10s)
    TB_DB_WRITE_TIMEOUT          Write timeout (default: 5s)

  Entries:
    TB_DEFAULT_ENTRY_LENGTH      Length of a new manual entry (default: 30m)
    TB_VALIDATION_QUICK_MIN      Minimum text length for quick save (default: 1)
    TB_VALIDATION_FULL_MIN       Minimum text length for full save (default: 5)

  Display:
    TB_TIME_FORMAT               Time input and display format (default: 2006-01-02 15:04)
    TB_GROUP_HEADER_PREFIX       Prefix of date group headers (default: "Date: ")

  Application:
    TB_APP_TIMEOUT               Timeout per command (default: 60s)
    TB_LOG_LEVEL                 debug, info, warn or error (default: warn)
    TB_DEBUG                     Any value enables debug logging`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsAPI(cmd) {
				return nil
			}
			return root.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return root.teardown()
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command
func (r *RootCommand) Execute(ctx context.Context) error {
	err := r.cmd.ExecuteContext(ctx)
	// PersistentPostRunE is skipped when RunE fails
	if closeErr := r.teardown(); err == nil {
		err = closeErr
	}
	return err
}

// SetArgs overrides os.Args for the root command
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// Config returns the configuration loaded for the last run
func (r *RootCommand) Config() *config.Config {
	return r.config
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "JSON config file (overrides TB_CONFIG)")

	// Storage configuration
	flags.String("backend", "", "Storage backend: sqlite, jsonfile or odata (overrides TB_STORAGE_BACKEND)")
	flags.String("storage-dir", "", "Data directory (overrides TB_STORAGE_DIR)")
	flags.String("db-filename", "", "SQLite filename (overrides TB_DB_FILENAME)")
	flags.String("odata-url", "", "OData service root (overrides TB_ODATA_URL)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides TB_DB_QUERY_TIMEOUT)")
	flags.Duration("db-write-timeout", 0, "Database write timeout (overrides TB_DB_WRITE_TIMEOUT)")

	// Entry configuration
	flags.Duration("entry-length", 0, "Length of a new manual entry (overrides TB_DEFAULT_ENTRY_LENGTH)")

	// Display configuration
	flags.String("time-format", "", "Time input and display format (overrides TB_TIME_FORMAT)")
	flags.String("group-prefix", "", "Date group header prefix (overrides TB_GROUP_HEADER_PREFIX)")

	// Application configuration
	flags.Duration("app-timeout", 0, "Timeout per command (overrides TB_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Enable info logging (overrides TB_APP_VERBOSE)")
	flags.String("log-level", "", "Log level (overrides TB_LOG_LEVEL)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	addFlags := &entryFlags{}
	addCmd := &cobra.Command{
		Use:   "add [short text]",
		Short: "Add a time entry",
		Long: `Add a time entry through the full form. The entry starts now and lasts the
configured default length unless --start or --end are given. Short text needs at
least five characters; project and accounting are required.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()
			return NewAddCommand(r.app, cmd, addFlags).Execute(ctx, args)
		},
	}
	addFlags.register(addCmd)

	editFlags := &entryFlags{}
	editCmd := &cobra.Command{
		Use:   "edit <id> [short text]",
		Short: "Edit a time entry",
		Long:  "Change fields of an existing entry. Fields without a flag keep their value.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()
			return NewEditCommand(r.app, cmd, editFlags).Execute(ctx, args)
		},
	}
	editFlags.register(editCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a time entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()
			return NewDeleteCommand(r.app).Execute(ctx, args)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list [query]",
		Short: "List time entries grouped by date",
		Long: `List time entries newest first, grouped by date.

The optional query matches short text, project and accounting names
(case-insensitive partial matching).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()
			return NewListCommand(r.app).Execute(ctx, args)
		},
	}

	summaryCmd := &cobra.Command{
		Use:   "summary [query]",
		Short: "Show booked time per day and project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()
			return NewSummaryCommand(r.app).Execute(ctx, args)
		},
	}

	outputCmd := &cobra.Command{
		Use:   "output format=csv|json",
		Short: "Export all entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()
			return NewOutputCommand(r.app).Execute(ctx, args)
		},
	}

	referenceCmd := &cobra.Command{
		Use:   "reference",
		Short: "Show or edit the project and accounting lists",
	}
	referenceCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List projects and accountings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := r.commandContext(cmd)
				defer cancel()
				return NewReferenceCommand(r.app).Execute(ctx, []string{"list"})
			},
		},
		&cobra.Command{
			Use:   "add project|accounting <id> <name>",
			Short: "Add or rename a project or accounting",
			Long:  "Add or rename a lookup list entry. Only the sqlite and jsonfile backends keep reference data locally.",
			Args:  cobra.MinimumNArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := r.commandContext(cmd)
				defer cancel()
				return NewReferenceCommand(r.app).Execute(ctx, append([]string{"add"}, args...))
			},
		},
	)

	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Start an interactive booking session",
		Long: `Start an interactive session that owns one entry draft and one timer.

Select a project, start and stop the timer, then set text and accounting and
save. Type help inside the session for all commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Each session command gets its own timeout
			return NewSessionCommand(r.app).Execute(cmd.Context(), args)
		},
	}

	r.cmd.AddCommand(
		addCmd,
		editCmd,
		deleteCmd,
		listCmd,
		summaryCmd,
		outputCmd,
		referenceCmd,
		sessionCmd,
	)
}

// setup loads the configuration and builds the API for the command
func (r *RootCommand) setup(ctx context.Context) error {
	cfg, err := r.loader.LoadWithOverrides(r.overridesFromFlags())
	if err != nil {
		return err
	}
	r.config = cfg

	logger := logging.New(r.logOut, r.logLevel())
	bookingAPI, err := r.factory(ctx, cfg, logger)
	if err != nil {
		return err
	}

	r.app = NewApp(bookingAPI, cfg, WithIO(r.in, r.out))
	return nil
}

func (r *RootCommand) teardown() error {
	if r.app == nil {
		return nil
	}
	app := r.app
	r.app = nil
	return app.Close()
}

func (r *RootCommand) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, r.getAppTimeout())
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}

// overridesFromFlags collects the global flags that were set explicitly
func (r *RootCommand) overridesFromFlags() *config.ConfigOverrides {
	flags := r.cmd.PersistentFlags()
	overrides := &config.ConfigOverrides{}

	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	dur := func(name string) *time.Duration {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetDuration(name)
		return &v
	}

	overrides.ConfigFile = str("config")
	overrides.Backend = str("backend")
	overrides.StorageDir = str("storage-dir")
	overrides.DBFilename = str("db-filename")
	overrides.ODataURL = str("odata-url")
	overrides.QueryTimeout = dur("db-query-timeout")
	overrides.WriteTimeout = dur("db-write-timeout")
	overrides.DefaultEntryLength = dur("entry-length")
	overrides.TimeFormat = str("time-format")
	overrides.GroupHeaderPrefix = str("group-prefix")
	overrides.Timeout = dur("app-timeout")
	overrides.LogLevel = str("log-level")
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		overrides.Verbose = &v
	}

	return overrides
}

// logLevel prefers the configured level; --verbose lifts warn to info
func (r *RootCommand) logLevel() slog.Level {
	level := logging.LevelFromEnv()
	if r.config != nil {
		if parsed, err := logging.ParseLevel(r.config.Application.LogLevel); err == nil {
			level = parsed
		}
		if r.config.Application.Verbose && level > slog.LevelInfo {
			level = slog.LevelInfo
		}
	}
	if logging.DebugEnabled() {
		level = slog.LevelDebug
	}
	return level
}

// needsAPI reports whether cmd touches entries; help and completion do not
func needsAPI(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return cmd.Runnable()
}
