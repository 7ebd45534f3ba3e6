package repositories

import (
	"context"

	"github.com/yigit/hackfest/internal/app/models"
)

// RegistrationStore persists submitted registrations.
//
// Create is idempotent on rec.ID: storing an ID that already exists reports
// inserted=false and leaves the stored record untouched. A second team led
// by the same email fails with apperrors.ErrRegistrationAlreadyExists.
type RegistrationStore interface {
	Create(ctx context.Context, rec *models.RegistrationRecord) (inserted bool, err error)
	GetByID(ctx context.Context, id string) (*models.RegistrationRecord, error)
	// List returns registrations newest first.
	List(ctx context.Context, offset uint64, limit int) ([]*models.RegistrationRecord, error)
	Count(ctx context.Context) (int64, error)
}
