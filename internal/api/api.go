package api

import (
	"strings"
	"time"

	"timebookings/internal/domain"
	"timebookings/internal/errors"
)

// EntryRequest carries the fields a one-shot add or edit sets on the draft.
// Nil fields keep whatever the draft already holds.
type EntryRequest struct {
	Start        *time.Time
	End          *time.Time
	ShortText    *string
	ProjectID    *string
	AccountingID *string
}

// ReferenceKind selects one of the two lookup lists
type ReferenceKind string

const (
	ReferenceProject    ReferenceKind = "project"
	ReferenceAccounting ReferenceKind = "accounting"
)

// ParseReferenceKind accepts the singular or plural list name
func ParseReferenceKind(s string) (ReferenceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "project", "projects":
		return ReferenceProject, nil
	case "accounting", "accountings":
		return ReferenceAccounting, nil
	default:
		return "", errors.NewInvalidInputError("kind", s, "must be project or accounting")
	}
}

// ReferenceData holds both lookup lists
type ReferenceData struct {
	Projects    domain.ReferenceList `json:"projects"`
	Accountings domain.ReferenceList `json:"accountings"`
}
