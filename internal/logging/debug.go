package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// DebugEnabled returns true if debug mode is enabled via TB_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv("TB_DEBUG") != ""
}

// ParseLevel converts debug, info, warn or error into a slog level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// LevelFromEnv picks the level from TB_LOG_LEVEL, falling back to debug when
// TB_DEBUG is set and warn otherwise.
func LevelFromEnv() slog.Level {
	if v := os.Getenv("TB_LOG_LEVEL"); v != "" {
		if level, err := ParseLevel(v); err == nil {
			return level
		}
	}
	if DebugEnabled() {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
