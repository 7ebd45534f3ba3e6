package services

import (
	"context"
	"time"

	"github.com/yigit/hackfest/internal/app/models"
	"github.com/yigit/hackfest/internal/app/registration"
	"github.com/yigit/hackfest/internal/app/repositories"
	"github.com/yigit/hackfest/internal/pkg/apperrors"
)

// StoreSubmitter submits registrations into a RegistrationStore. The form's
// key becomes the registration id, so retries are absorbed by the store. A
// key that is already stored with a different registration is refused.
type StoreSubmitter struct {
	store     repositories.RegistrationStore
	validator *registration.Validator
	now       func() time.Time
}

// NewStoreSubmitter creates a new StoreSubmitter
func NewStoreSubmitter(store repositories.RegistrationStore, validator *registration.Validator) *StoreSubmitter {
	return &StoreSubmitter{
		store:     store,
		validator: validator,
		now:       time.Now,
	}
}

// SubmitRegistration implements registration.Submitter
func (s *StoreSubmitter) SubmitRegistration(ctx context.Context, key string, draft models.Registration) (registration.Receipt, error) {
	// Never store a draft the form would not have accepted.
	if errs := s.validator.ValidateAll(draft); len(errs) > 0 {
		return registration.Receipt{}, apperrors.NewSubmissionError(apperrors.SubmissionRejected, errs)
	}

	rec := &models.RegistrationRecord{
		ID:           key,
		Registration: draft,
		CreatedAt:    s.now().UTC(),
	}

	inserted, err := s.store.Create(ctx, rec)
	if err != nil {
		return registration.Receipt{}, apperrors.ClassifySubmissionError(err)
	}

	if !inserted {
		stored, err := s.store.GetByID(ctx, key)
		if err != nil {
			return registration.Receipt{}, apperrors.ClassifySubmissionError(err)
		}
		if stored.Registration != draft {
			return registration.Receipt{}, apperrors.NewSubmissionError(apperrors.SubmissionConflict, apperrors.ErrIdempotencyKeyReused)
		}
	}

	return registration.Receipt{RegistrationID: key, Replayed: !inserted}, nil
}
