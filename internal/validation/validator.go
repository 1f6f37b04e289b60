package validation

import (
	"strings"
	"time"
	"unicode/utf8"

	"timebookings/internal/config"
)

// Validator provides common validation utilities
type Validator struct {
	config *config.Config
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		config: nil, // Use defaults
	}
}

// NewValidatorWithConfig creates a new validator instance with configuration
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	return &Validator{
		config: cfg,
	}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// HasMinLength checks that the trimmed string has at least min characters.
// Characters are counted as runes, so "Café!" has five.
func (v *Validator) HasMinLength(s string, min int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= min
}

// IsValidTimestamp checks that a timestamp is present and set
func (v *Validator) IsValidTimestamp(t *time.Time) bool {
	return t != nil && !t.IsZero()
}

// IsValidTimeRange checks that end is not before start. Drafts are not gated
// on it; the draft view warns instead.
func (v *Validator) IsValidTimeRange(start, end *time.Time) bool {
	if start == nil || end == nil {
		return true
	}
	return !end.Before(*start)
}

// quickSaveMinTextLength returns configured quick-save text threshold or default
func (v *Validator) quickSaveMinTextLength() int {
	if v.config != nil {
		return v.config.Validation.QuickSaveMinTextLength
	}
	return 1
}

// fullSaveMinTextLength returns configured full-save text threshold or default
func (v *Validator) fullSaveMinTextLength() int {
	if v.config != nil {
		return v.config.Validation.FullSaveMinTextLength
	}
	return 5
}
