package apperrors

import (
	"context"
	"errors"
	"strings"
)

// Field validation reasons
const (
	ReasonRequired      = "required"
	ReasonTooShort      = "too_short"
	ReasonInvalidEmail  = "invalid_email"
	ReasonInvalidChoice = "invalid_choice"
	ReasonMustAccept    = "must_accept"
	ReasonDuplicate     = "duplicate"
	ReasonInvalid       = "invalid"
)

// FieldError is a single field-level violation, addressed by its dotted path.
type FieldError struct {
	Field   string `json:"field"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// Error implements error interface
func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Unwrap lets a single FieldError match ErrValidationFailed.
func (e *FieldError) Unwrap() error {
	return ErrValidationFailed
}

// ValidationErrors collects every violated field of a submission, in form order.
type ValidationErrors []FieldError

// Error implements error interface
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ErrValidationFailed.Error()
	}
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Reason)
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(parts, ", ")
}

// Unwrap implements errors.Unwrap interface
func (v ValidationErrors) Unwrap() error {
	return ErrValidationFailed
}

// Fields returns the violated field paths.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for _, fe := range v {
		fields = append(fields, fe.Field)
	}
	return fields
}

// Lookup returns the violation reported for path, if any.
func (v ValidationErrors) Lookup(path string) (FieldError, bool) {
	for _, fe := range v {
		if fe.Field == path {
			return fe, true
		}
	}
	return FieldError{}, false
}

// SubmissionKind classifies failures of the external submit capability.
type SubmissionKind string

const (
	SubmissionUnavailable SubmissionKind = "unavailable"
	SubmissionRejected    SubmissionKind = "rejected"
	SubmissionDuplicate   SubmissionKind = "duplicate"
	SubmissionConflict    SubmissionKind = "conflict"
	SubmissionTimeout     SubmissionKind = "timeout"
	// SubmissionCanceled is only reported when the submitter itself returns
	// context.Canceled, e.g. a store closed during shutdown. Forms never pass
	// the caller's cancellation on to the submitter.
	SubmissionCanceled SubmissionKind = "canceled"
)

// SubmissionError wraps a failed submitRegistration call.
type SubmissionError struct {
	Kind SubmissionKind
	Err  error
}

// Error implements error interface
func (e *SubmissionError) Error() string {
	if e.Err == nil {
		return ErrSubmissionFailed.Error() + " (" + string(e.Kind) + ")"
	}
	return ErrSubmissionFailed.Error() + " (" + string(e.Kind) + "): " + e.Err.Error()
}

// Unwrap exposes both the submission sentinel and the underlying cause.
func (e *SubmissionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSubmissionFailed}
	}
	return []error{ErrSubmissionFailed, e.Err}
}

// Retryable reports whether the same draft may succeed if submitted again.
func (e *SubmissionError) Retryable() bool {
	return e.Kind == SubmissionUnavailable || e.Kind == SubmissionTimeout
}

// NewSubmissionError creates a SubmissionError of the given kind.
func NewSubmissionError(kind SubmissionKind, err error) *SubmissionError {
	return &SubmissionError{Kind: kind, Err: err}
}

// ClassifySubmissionError turns any submitter failure into a SubmissionError.
func ClassifySubmissionError(err error) *SubmissionError {
	if err == nil {
		return nil
	}

	var subErr *SubmissionError
	if errors.As(err, &subErr) {
		return subErr
	}

	switch {
	case errors.Is(err, ErrRegistrationAlreadyExists):
		return NewSubmissionError(SubmissionDuplicate, err)
	case errors.Is(err, ErrIdempotencyKeyReused):
		return NewSubmissionError(SubmissionConflict, err)
	case errors.Is(err, ErrValidationFailed), errors.Is(err, ErrBadRequest):
		return NewSubmissionError(SubmissionRejected, err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewSubmissionError(SubmissionTimeout, err)
	case errors.Is(err, context.Canceled):
		return NewSubmissionError(SubmissionCanceled, err)
	default:
		return NewSubmissionError(SubmissionUnavailable, err)
	}
}
