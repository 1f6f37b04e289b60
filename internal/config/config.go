package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	BackendSQLite   = "sqlite"
	BackendJSONFile = "jsonfile"
	BackendOData    = "odata"

	EnvironmentProduction  = "production"
	EnvironmentDevelopment = "development"
	EnvironmentTesting     = "testing"
)

// Config holds all configuration options for the time bookings application
type Config struct {
	Storage     StorageConfig
	Validation  ValidationConfig
	Timer       TimerConfig
	Display     DisplayConfig
	Application ApplicationConfig
}

// StorageConfig selects and tunes the persistence backend
type StorageConfig struct {
	Backend        string        `env:"TB_STORAGE_BACKEND"`
	Dir            string        `env:"TB_STORAGE_DIR"`
	DBFilename     string        `env:"TB_DB_FILENAME"`
	EntriesFile    string        `env:"TB_ENTRIES_FILE"`
	ReferenceFile  string        `env:"TB_REFERENCE_FILE"`
	ODataURL       string        `env:"TB_ODATA_URL"`
	ODataTimeout   time.Duration `env:"TB_ODATA_TIMEOUT"`
	QueryTimeout   time.Duration `env:"TB_DB_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `env:"TB_DB_WRITE_TIMEOUT"`
	DirPermissions uint32        `env:"TB_STORAGE_DIR_PERMISSIONS"`
}

// ValidationConfig holds the submit gate thresholds
type ValidationConfig struct {
	QuickSaveMinTextLength int           `env:"TB_VALIDATION_QUICK_MIN"`
	FullSaveMinTextLength  int           `env:"TB_VALIDATION_FULL_MIN"`
	DefaultEntryLength     time.Duration `env:"TB_DEFAULT_ENTRY_LENGTH"`
}

// TimerConfig holds stopwatch configuration
type TimerConfig struct {
	TickInterval time.Duration `env:"TB_TIMER_TICK"`
}

// DisplayConfig holds display formatting configuration
type DisplayConfig struct {
	TimeFormat        string `env:"TB_TIME_FORMAT"`
	GroupHeaderPrefix string `env:"TB_GROUP_HEADER_PREFIX"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout     time.Duration `env:"TB_APP_TIMEOUT"`
	Verbose     bool          `env:"TB_APP_VERBOSE"`
	LogLevel    string        `env:"TB_LOG_LEVEL"`
	Environment string        `env:"TB_ENV"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Storage: StorageConfig{
			Backend:        BackendSQLite,
			Dir:            filepath.Join(homeDir, ".tb"),
			DBFilename:     "tb.db",
			EntriesFile:    "entries.json",
			ReferenceFile:  "reference.json",
			ODataTimeout:   30 * time.Second,
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0755,
		},
		Validation: ValidationConfig{
			QuickSaveMinTextLength: 1,
			FullSaveMinTextLength:  5,
			DefaultEntryLength:     30 * time.Minute,
		},
		Timer: TimerConfig{
			TickInterval: time.Second,
		},
		Display: DisplayConfig{
			TimeFormat:        "2006-01-02 15:04",
			GroupHeaderPrefix: "Date: ",
		},
		Application: ApplicationConfig{
			Timeout:     60 * time.Second,
			LogLevel:    "warn",
			Environment: EnvironmentProduction,
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	if c.IsTesting() {
		return ":memory:"
	}
	return filepath.Join(c.Storage.Dir, c.Storage.DBFilename)
}

// IsTesting reports whether the testing environment is selected
func (c *Config) IsTesting() bool {
	return c.Application.Environment == EnvironmentTesting
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Storage configuration
	if backend := os.Getenv("TB_STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}
	if dir := os.Getenv("TB_STORAGE_DIR"); dir != "" {
		c.Storage.Dir = dir
	}
	if filename := os.Getenv("TB_DB_FILENAME"); filename != "" {
		c.Storage.DBFilename = filename
	}
	if filename := os.Getenv("TB_ENTRIES_FILE"); filename != "" {
		c.Storage.EntriesFile = filename
	}
	if filename := os.Getenv("TB_REFERENCE_FILE"); filename != "" {
		c.Storage.ReferenceFile = filename
	}
	if url := os.Getenv("TB_ODATA_URL"); url != "" {
		c.Storage.ODataURL = url
	}
	if timeout := os.Getenv("TB_ODATA_TIMEOUT"); timeout != "" {
		c.Storage.ODataTimeout = ParseDurationWithFallback(timeout, c.Storage.ODataTimeout)
	}
	if timeout := os.Getenv("TB_DB_QUERY_TIMEOUT"); timeout != "" {
		c.Storage.QueryTimeout = ParseDurationWithFallback(timeout, c.Storage.QueryTimeout)
	}
	if timeout := os.Getenv("TB_DB_WRITE_TIMEOUT"); timeout != "" {
		c.Storage.WriteTimeout = ParseDurationWithFallback(timeout, c.Storage.WriteTimeout)
	}
	if perms := os.Getenv("TB_STORAGE_DIR_PERMISSIONS"); perms != "" {
		c.Storage.DirPermissions = ParseUint32WithFallback(perms, 8, c.Storage.DirPermissions)
	}

	// Validation configuration
	if n := os.Getenv("TB_VALIDATION_QUICK_MIN"); n != "" {
		c.Validation.QuickSaveMinTextLength = ParseIntWithFallback(n, c.Validation.QuickSaveMinTextLength)
	}
	if n := os.Getenv("TB_VALIDATION_FULL_MIN"); n != "" {
		c.Validation.FullSaveMinTextLength = ParseIntWithFallback(n, c.Validation.FullSaveMinTextLength)
	}
	if length := os.Getenv("TB_DEFAULT_ENTRY_LENGTH"); length != "" {
		c.Validation.DefaultEntryLength = ParseDurationWithFallback(length, c.Validation.DefaultEntryLength)
	}

	// Timer configuration
	if tick := os.Getenv("TB_TIMER_TICK"); tick != "" {
		c.Timer.TickInterval = ParseDurationWithFallback(tick, c.Timer.TickInterval)
	}

	// Display configuration
	if format := os.Getenv("TB_TIME_FORMAT"); format != "" {
		c.Display.TimeFormat = format
	}
	if prefix, ok := os.LookupEnv("TB_GROUP_HEADER_PREFIX"); ok {
		c.Display.GroupHeaderPrefix = prefix
	}

	// Application configuration
	if timeout := os.Getenv("TB_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("TB_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}
	if level := os.Getenv("TB_LOG_LEVEL"); level != "" {
		c.Application.LogLevel = level
	}
	if env := os.Getenv("TB_ENV"); env != "" {
		c.Application.Environment = env
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate storage configuration
	switch c.Storage.Backend {
	case BackendSQLite:
		if !c.IsTesting() {
			if c.Storage.Dir == "" {
				return &ConfigError{Field: "storage.dir", Message: "storage directory cannot be empty"}
			}
			if c.Storage.DBFilename == "" {
				return &ConfigError{Field: "storage.db_filename", Message: "database filename cannot be empty"}
			}
		}
		if c.Storage.QueryTimeout <= 0 {
			return &ConfigError{Field: "storage.query_timeout", Message: "query timeout must be positive"}
		}
		if c.Storage.WriteTimeout <= 0 {
			return &ConfigError{Field: "storage.write_timeout", Message: "write timeout must be positive"}
		}
	case BackendJSONFile:
		if c.Storage.Dir == "" {
			return &ConfigError{Field: "storage.dir", Message: "storage directory cannot be empty"}
		}
		if c.Storage.EntriesFile == "" || c.Storage.ReferenceFile == "" {
			return &ConfigError{Field: "storage.entries_file", Message: "entries and reference file names cannot be empty"}
		}
	case BackendOData:
		if c.Storage.ODataURL == "" {
			return &ConfigError{Field: "storage.odata_url", Message: "odata backend requires a service URL"}
		}
		if c.Storage.ODataTimeout <= 0 {
			return &ConfigError{Field: "storage.odata_timeout", Message: "odata timeout must be positive"}
		}
	default:
		return &ConfigError{Field: "storage.backend", Message: "backend must be one of sqlite, jsonfile, odata"}
	}

	// Validate validation configuration
	if c.Validation.QuickSaveMinTextLength < 1 {
		return &ConfigError{Field: "validation.quick_save_min_text_length", Message: "quick save minimum text length must be at least 1"}
	}
	if c.Validation.FullSaveMinTextLength < 1 {
		return &ConfigError{Field: "validation.full_save_min_text_length", Message: "full save minimum text length must be at least 1"}
	}
	if c.Validation.DefaultEntryLength <= 0 {
		return &ConfigError{Field: "validation.default_entry_length", Message: "default entry length must be positive"}
	}

	// Validate timer configuration
	if c.Timer.TickInterval <= 0 {
		return &ConfigError{Field: "timer.tick_interval", Message: "tick interval must be positive"}
	}

	// Validate display configuration
	if c.Display.TimeFormat == "" {
		return &ConfigError{Field: "display.time_format", Message: "time format cannot be empty"}
	}

	// Validate application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}
	switch c.Application.Environment {
	case EnvironmentProduction, EnvironmentDevelopment, EnvironmentTesting:
	default:
		return &ConfigError{Field: "application.environment", Message: "environment must be one of production, development, testing"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
