package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestDuplicateKeyErrors(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "registrations_leader_email_idx"}
	wrapped := fmt.Errorf("insert registration: %w", pgErr)

	assert.True(t, IsDuplicateKeyError(wrapped))
	assert.True(t, IsDuplicateConstraintError(wrapped, "registrations_leader_email_idx"))
	assert.False(t, IsDuplicateConstraintError(wrapped, "team_members_pkey"))

	assert.False(t, IsDuplicateKeyError(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsDuplicateKeyError(errors.New("boom")))
	assert.False(t, IsDuplicateKeyError(nil))
}
