package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorsUnwrapToSentinel(t *testing.T) {
	errs := ValidationErrors{
		{Field: "leaderEmail", Reason: ReasonInvalidEmail, Message: "Please enter a valid email address."},
		{Field: "termsAccepted", Reason: ReasonMustAccept, Message: "You must accept the terms and conditions."},
	}

	var err error = errs
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, []string{"leaderEmail", "termsAccepted"}, errs.Fields())
	assert.Contains(t, err.Error(), "leaderEmail: invalid_email")

	fe, ok := errs.Lookup("termsAccepted")
	assert.True(t, ok)
	assert.Equal(t, ReasonMustAccept, fe.Reason)

	_, ok = errs.Lookup("member1.name")
	assert.False(t, ok)
}

func TestClassifySubmissionError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      SubmissionKind
		retryable bool
	}{
		{"duplicate leader", fmt.Errorf("insert: %w", ErrRegistrationAlreadyExists), SubmissionDuplicate, false},
		{"key reused", ErrIdempotencyKeyReused, SubmissionConflict, false},
		{"deadline", context.DeadlineExceeded, SubmissionTimeout, true},
		{"canceled", context.Canceled, SubmissionCanceled, false},
		{"bad request", NewBadRequestError("nope"), SubmissionRejected, false},
		{"network", errors.New("connection refused"), SubmissionUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subErr := ClassifySubmissionError(tt.err)
			assert.Equal(t, tt.kind, subErr.Kind)
			assert.Equal(t, tt.retryable, subErr.Retryable())
			assert.ErrorIs(t, subErr, ErrSubmissionFailed)
			assert.ErrorIs(t, subErr, tt.err)
		})
	}
}

func TestClassifySubmissionErrorKeepsExistingKind(t *testing.T) {
	original := NewSubmissionError(SubmissionRejected, errors.New("closed"))
	wrapped := fmt.Errorf("submit: %w", original)

	assert.Same(t, original, ClassifySubmissionError(wrapped))
	assert.Nil(t, ClassifySubmissionError(nil))
}
