package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/hackfest/internal/app/models"
	"github.com/yigit/hackfest/internal/app/registration"
	"github.com/yigit/hackfest/internal/app/repositories"
	"github.com/yigit/hackfest/internal/pkg/apperrors"
	"github.com/yigit/hackfest/internal/pkg/helpers"
	"github.com/yigit/hackfest/internal/pkg/metrics"
)

// RegistrationService defines the interface for registration form sessions
// and stored registrations
type RegistrationService interface {
	OpenForm(ctx context.Context) (registration.Snapshot, error)
	GetForm(ctx context.Context, id string) (registration.Snapshot, error)
	UpdateField(ctx context.Context, id, path string, value any) (*apperrors.FieldError, error)
	ValidateForm(ctx context.Context, id string) (apperrors.ValidationErrors, error)
	SubmitForm(ctx context.Context, id string) (registration.Result, error)
	ResetForm(ctx context.Context, id string) (registration.Snapshot, error)
	CloseForm(ctx context.Context, id string) error

	// Register submits a complete draft in one call. key is the client's
	// idempotency key; an empty key gets a fresh one.
	Register(ctx context.Context, key string, draft models.Registration) (registration.Result, error)

	GetRegistration(ctx context.Context, id string) (*models.RegistrationRecord, error)
	ListRegistrations(ctx context.Context, page, size int) ([]*models.RegistrationRecord, int64, error)

	SweepExpiredForms() int
}

// RegistrationOptions configures RegistrationService
type RegistrationOptions struct {
	SubmitTimeout time.Duration
	UniqueMembers bool
}

// registrationServiceImpl implements the RegistrationService interface
type registrationServiceImpl struct {
	store     repositories.RegistrationStore
	forms     *FormRegistry
	validator *registration.Validator
	submitter registration.Submitter
	notifier  registration.Notifier
	metrics   *metrics.Metrics
	opts      RegistrationOptions
	logger    zerolog.Logger
}

// NewRegistrationService creates a new registration service instance
func NewRegistrationService(
	store repositories.RegistrationStore,
	forms *FormRegistry,
	notifier registration.Notifier,
	m *metrics.Metrics,
	opts RegistrationOptions,
	logger zerolog.Logger,
) RegistrationService {
	validator := registration.NewValidator(registration.WithUniqueMembers(opts.UniqueMembers))

	s := &registrationServiceImpl{
		store:     store,
		forms:     forms,
		validator: validator,
		submitter: NewStoreSubmitter(store, validator),
		notifier:  notifier,
		metrics:   m,
		opts:      opts,
		logger:    logger,
	}
	forms.OnExpire(func(n int) {
		m.AddFormsExpired(n)
	})
	return s
}

func (s *registrationServiceImpl) newForm(id string) *registration.Form {
	opts := []registration.Option{
		registration.WithValidator(s.validator),
		registration.WithSubmitTimeout(s.opts.SubmitTimeout),
		registration.WithLogger(s.logger),
	}
	if s.notifier != nil {
		opts = append(opts, registration.WithNotifier(s.notifier))
	}
	return registration.NewForm(id, s.submitter, opts...)
}

// OpenForm starts a new form session
func (s *registrationServiceImpl) OpenForm(ctx context.Context) (registration.Snapshot, error) {
	form := s.newForm(uuid.NewString())
	if err := s.forms.Add(form); err != nil {
		s.logger.Warn().Err(err).Int("openForms", s.forms.Len()).Msg("Refusing to open registration form")
		return registration.Snapshot{}, err
	}

	s.metrics.IncrementFormsOpened()
	s.metrics.SetOpenForms(s.forms.Len())
	s.logger.Debug().Str("form_id", form.ID()).Msg("Registration form opened")
	return form.Snapshot(), nil
}

// GetForm returns a snapshot of a form
func (s *registrationServiceImpl) GetForm(ctx context.Context, id string) (registration.Snapshot, error) {
	form, err := s.forms.Get(id)
	if err != nil {
		return registration.Snapshot{}, err
	}
	return form.Snapshot(), nil
}

// UpdateField stores one value and returns its inline validation result
func (s *registrationServiceImpl) UpdateField(ctx context.Context, id, path string, value any) (*apperrors.FieldError, error) {
	form, err := s.forms.Get(id)
	if err != nil {
		return nil, err
	}

	fieldErr, err := form.Update(path, value)
	if err != nil {
		return nil, err
	}
	if fieldErr != nil {
		s.metrics.IncrementFieldError(fieldErr.Field, fieldErr.Reason)
	}
	return fieldErr, nil
}

// ValidateForm validates the whole draft
func (s *registrationServiceImpl) ValidateForm(ctx context.Context, id string) (apperrors.ValidationErrors, error) {
	form, err := s.forms.Get(id)
	if err != nil {
		return nil, err
	}
	return form.Validate(), nil
}

// SubmitForm submits the draft of an open form
func (s *registrationServiceImpl) SubmitForm(ctx context.Context, id string) (registration.Result, error) {
	form, err := s.forms.Get(id)
	if err != nil {
		return registration.Result{}, err
	}
	return s.submit(ctx, form)
}

// ResetForm clears a form back to its defaults
func (s *registrationServiceImpl) ResetForm(ctx context.Context, id string) (registration.Snapshot, error) {
	form, err := s.forms.Get(id)
	if err != nil {
		return registration.Snapshot{}, err
	}
	form.Reset()
	return form.Snapshot(), nil
}

// CloseForm drops a form session
func (s *registrationServiceImpl) CloseForm(ctx context.Context, id string) error {
	form, err := s.forms.Get(id)
	if err != nil {
		return err
	}
	if form.Snapshot().State == registration.StateSubmitting {
		return apperrors.ErrSubmissionInProgress
	}

	s.forms.Remove(id)
	s.metrics.SetOpenForms(s.forms.Len())
	return nil
}

// Register validates and submits a complete draft without a stored session
func (s *registrationServiceImpl) Register(ctx context.Context, key string, draft models.Registration) (registration.Result, error) {
	if key == "" {
		key = uuid.NewString()
	} else if _, err := uuid.Parse(key); err != nil {
		return registration.Result{}, fmt.Errorf("%w: Idempotency-Key must be a UUID", apperrors.ErrBadRequest)
	}

	form := s.newForm(key)
	if err := form.Replace(draft); err != nil {
		return registration.Result{}, err
	}
	return s.submit(ctx, form)
}

func (s *registrationServiceImpl) submit(ctx context.Context, form *registration.Form) (registration.Result, error) {
	start := s.metrics.SubmissionStarted()
	result, err := form.Submit(ctx)
	s.metrics.SubmissionFinished(start, submissionOutcome(result, err))
	return result, err
}

func submissionOutcome(result registration.Result, err error) string {
	var subErr *apperrors.SubmissionError
	switch {
	case err == nil && result.Replayed:
		return metrics.OutcomeReplayed
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, apperrors.ErrSubmissionInProgress):
		return metrics.OutcomeInProgress
	case errors.As(err, &subErr):
		return string(subErr.Kind)
	default:
		return metrics.OutcomeInvalid
	}
}

// GetRegistration returns a stored registration
func (s *registrationServiceImpl) GetRegistration(ctx context.Context, id string) (*models.RegistrationRecord, error) {
	return s.store.GetByID(ctx, id)
}

// ListRegistrations returns a page of stored registrations and the total count
func (s *registrationServiceImpl) ListRegistrations(ctx context.Context, page, size int) ([]*models.RegistrationRecord, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	records, err := s.store.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// SweepExpiredForms drops forms past their TTL
func (s *registrationServiceImpl) SweepExpiredForms() int {
	removed := s.forms.Sweep()
	s.metrics.SetOpenForms(s.forms.Len())
	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Msg("Expired registration forms swept")
	}
	return removed
}
