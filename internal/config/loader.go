package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigFileEnv names the environment variable pointing at a JSON config file.
const ConfigFileEnv = "TB_CONFIG"

// Loader handles loading configuration from multiple sources
type Loader struct {
	config *Config
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		config: NewConfig(),
	}
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Overlay the JSON file named by TB_CONFIG, if any
// 3. Override with environment variables
// 4. Override with command line flags (see LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	return l.load(os.Getenv(ConfigFileEnv))
}

func (l *Loader) load(configFile string) (*Config, error) {
	if configFile != "" {
		if err := l.config.LoadFromFile(configFile); err != nil {
			return nil, err
		}
	}

	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides.
// A --config flag takes precedence over TB_CONFIG.
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	configFile := os.Getenv(ConfigFileEnv)
	if overrides != nil && overrides.ConfigFile != nil && *overrides.ConfigFile != "" {
		configFile = *overrides.ConfigFile
	}

	if configFile != "" {
		if err := l.config.LoadFromFile(configFile); err != nil {
			return nil, err
		}
	}
	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	if overrides != nil {
		l.applyOverrides(l.config, overrides)
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	ConfigFile *string

	// Storage overrides
	Backend      *string
	StorageDir   *string
	DBFilename   *string
	ODataURL     *string
	QueryTimeout *time.Duration
	WriteTimeout *time.Duration

	// Validation overrides
	DefaultEntryLength *time.Duration

	// Display overrides
	TimeFormat        *string
	GroupHeaderPrefix *string

	// Application overrides
	Timeout     *time.Duration
	Verbose     *bool
	LogLevel    *string
	Environment *string
}

// applyOverrides applies command line overrides to the configuration
func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	// Storage overrides
	if overrides.Backend != nil {
		config.Storage.Backend = *overrides.Backend
	}
	if overrides.StorageDir != nil {
		config.Storage.Dir = *overrides.StorageDir
	}
	if overrides.DBFilename != nil {
		config.Storage.DBFilename = *overrides.DBFilename
	}
	if overrides.ODataURL != nil {
		config.Storage.ODataURL = *overrides.ODataURL
	}
	if overrides.QueryTimeout != nil {
		config.Storage.QueryTimeout = *overrides.QueryTimeout
	}
	if overrides.WriteTimeout != nil {
		config.Storage.WriteTimeout = *overrides.WriteTimeout
	}

	// Validation overrides
	if overrides.DefaultEntryLength != nil {
		config.Validation.DefaultEntryLength = *overrides.DefaultEntryLength
	}

	// Display overrides
	if overrides.TimeFormat != nil {
		config.Display.TimeFormat = *overrides.TimeFormat
	}
	if overrides.GroupHeaderPrefix != nil {
		config.Display.GroupHeaderPrefix = *overrides.GroupHeaderPrefix
	}

	// Application overrides
	if overrides.Timeout != nil {
		config.Application.Timeout = *overrides.Timeout
	}
	if overrides.Verbose != nil {
		config.Application.Verbose = *overrides.Verbose
	}
	if overrides.LogLevel != nil {
		config.Application.LogLevel = *overrides.LogLevel
	}
	if overrides.Environment != nil {
		config.Application.Environment = *overrides.Environment
	}
}

// Duration accepts either a Go duration string ("30m") or integer
// nanoseconds in JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

// fileConfig is the JSON shape of a config file. Absent keys keep the
// current value.
type fileConfig struct {
	Storage *struct {
		Backend       *string   `json:"backend"`
		Dir           *string   `json:"dir"`
		DBFilename    *string   `json:"db_filename"`
		EntriesFile   *string   `json:"entries_file"`
		ReferenceFile *string   `json:"reference_file"`
		ODataURL      *string   `json:"odata_url"`
		ODataTimeout  *Duration `json:"odata_timeout"`
		QueryTimeout  *Duration `json:"query_timeout"`
		WriteTimeout  *Duration `json:"write_timeout"`
	} `json:"storage"`
	Validation *struct {
		QuickSaveMinTextLength *int      `json:"quick_save_min_text_length"`
		FullSaveMinTextLength  *int      `json:"full_save_min_text_length"`
		DefaultEntryLength     *Duration `json:"default_entry_length"`
	} `json:"validation"`
	Timer *struct {
		TickInterval *Duration `json:"tick_interval"`
	} `json:"timer"`
	Display *struct {
		TimeFormat        *string `json:"time_format"`
		GroupHeaderPrefix *string `json:"group_header_prefix"`
	} `json:"display"`
	Application *struct {
		Timeout     *Duration `json:"timeout"`
		Verbose     *bool     `json:"verbose"`
		LogLevel    *string   `json:"log_level"`
		Environment *string   `json:"environment"`
	} `json:"application"`
}

// LoadFromFile overlays the configuration with values from a JSON file
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Field: "config_file", Message: err.Error()}
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return &ConfigError{Field: "config_file", Message: fmt.Sprintf("invalid JSON in %s: %v", path, err)}
	}

	if s := fc.Storage; s != nil {
		setString(&c.Storage.Backend, s.Backend)
		setString(&c.Storage.Dir, s.Dir)
		setString(&c.Storage.DBFilename, s.DBFilename)
		setString(&c.Storage.EntriesFile, s.EntriesFile)
		setString(&c.Storage.ReferenceFile, s.ReferenceFile)
		setString(&c.Storage.ODataURL, s.ODataURL)
		setDuration(&c.Storage.ODataTimeout, s.ODataTimeout)
		setDuration(&c.Storage.QueryTimeout, s.QueryTimeout)
		setDuration(&c.Storage.WriteTimeout, s.WriteTimeout)
	}
	if v := fc.Validation; v != nil {
		if v.QuickSaveMinTextLength != nil {
			c.Validation.QuickSaveMinTextLength = *v.QuickSaveMinTextLength
		}
		if v.FullSaveMinTextLength != nil {
			c.Validation.FullSaveMinTextLength = *v.FullSaveMinTextLength
		}
		setDuration(&c.Validation.DefaultEntryLength, v.DefaultEntryLength)
	}
	if t := fc.Timer; t != nil {
		setDuration(&c.Timer.TickInterval, t.TickInterval)
	}
	if d := fc.Display; d != nil {
		setString(&c.Display.TimeFormat, d.TimeFormat)
		setString(&c.Display.GroupHeaderPrefix, d.GroupHeaderPrefix)
	}
	if a := fc.Application; a != nil {
		setDuration(&c.Application.Timeout, a.Timeout)
		if a.Verbose != nil {
			c.Application.Verbose = *a.Verbose
		}
		setString(&c.Application.LogLevel, a.LogLevel)
		setString(&c.Application.Environment, a.Environment)
	}

	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *Duration) {
	if src != nil {
		*dst = src.Duration
	}
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseIntWithFallback parses an integer string with a fallback value
func ParseIntWithFallback(s string, fallback int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return fallback
}

// ParseBoolWithFallback parses a boolean string with a fallback value
func ParseBoolWithFallback(s string, fallback bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}

// ParseUint32WithFallback parses a uint32 string with a fallback value
func ParseUint32WithFallback(s string, base int, fallback uint32) uint32 {
	if u, err := strconv.ParseUint(s, base, 32); err == nil {
		return uint32(u)
	}
	return fallback
}
