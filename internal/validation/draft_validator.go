package validation

import (
	"timebookings/internal/config"
	"timebookings/internal/domain"
)

// DraftValidator implements the two submit gates of an entry draft.
type DraftValidator struct {
	validator *Validator
}

// NewDraftValidator creates a draft validator with default thresholds
func NewDraftValidator() *DraftValidator {
	return &DraftValidator{validator: NewValidator()}
}

// NewDraftValidatorWithConfig creates a draft validator with configured thresholds
func NewDraftValidatorWithConfig(cfg *config.Config) *DraftValidator {
	return &DraftValidator{validator: NewValidatorWithConfig(cfg)}
}

// ValidateForQuickSave reports whether a stopped-timer draft may be committed.
func (dv *DraftValidator) ValidateForQuickSave(d domain.EntryDraft) bool {
	return dv.CheckQuickSave(d) == nil
}

// ValidateForFullSave reports whether a manual or edit draft may be committed.
func (dv *DraftValidator) ValidateForFullSave(d domain.EntryDraft) bool {
	return dv.CheckFullSave(d) == nil
}

// CheckQuickSave returns a *ValidationError naming every failing field, or nil.
func (dv *DraftValidator) CheckQuickSave(d domain.EntryDraft) error {
	ve := NewValidationError()
	dv.checkShortText(ve, d.ShortText, dv.validator.quickSaveMinTextLength())
	dv.checkRequired(ve, domain.FieldAccountingID, d.AccountingID)

	if ve.HasErrors() {
		return ve
	}
	return nil
}

// CheckFullSave returns a *ValidationError naming every failing field, or nil.
func (dv *DraftValidator) CheckFullSave(d domain.EntryDraft) error {
	ve := NewValidationError()
	dv.checkShortText(ve, d.ShortText, dv.validator.fullSaveMinTextLength())
	dv.checkRequired(ve, domain.FieldAccountingID, d.AccountingID)
	dv.checkRequired(ve, domain.FieldProjectID, d.ProjectID)
	if !dv.validator.IsValidTimestamp(d.Start) {
		ve.AddRequiredError(string(domain.FieldStart))
	}
	if !dv.validator.IsValidTimestamp(d.End) {
		ve.AddRequiredError(string(domain.FieldEnd))
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}

func (dv *DraftValidator) checkShortText(ve *ValidationError, text string, min int) {
	field := string(domain.FieldShortText)
	switch {
	case !dv.validator.IsNonEmptyString(text):
		ve.AddRequiredError(field)
	case !dv.validator.HasMinLength(text, min):
		ve.AddInvalidLengthError(field, text, min, 0)
	}
}

func (dv *DraftValidator) checkRequired(ve *ValidationError, field domain.Field, value string) {
	if !dv.validator.IsNonEmptyString(value) {
		ve.AddRequiredError(string(field))
	}
}
