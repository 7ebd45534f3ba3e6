// Package registration holds the registration form model: the draft being
// edited, its validation rules, and the idle/submitting/failed lifecycle that
// guards the external submit call.
package registration

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/hackfest/internal/app/models"
	"github.com/yigit/hackfest/internal/pkg/apperrors"
)

// State is the submission lifecycle state of a form.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateFailed     State = "failed"
)

// Receipt is returned by a Submitter once the registration is stored.
type Receipt struct {
	RegistrationID string
	// Replayed is set when the key had already been stored by an earlier call.
	Replayed bool
}

// Submitter performs the external submit effect. key is stable across retries
// of one draft, so a retried call after an ambiguous failure must not create a
// second registration. A key is never reused for a different draft.
type Submitter interface {
	SubmitRegistration(ctx context.Context, key string, draft models.Registration) (Receipt, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, key string, draft models.Registration) (Receipt, error)

// SubmitRegistration calls f.
func (f SubmitterFunc) SubmitRegistration(ctx context.Context, key string, draft models.Registration) (Receipt, error) {
	return f(ctx, key, draft)
}

// Notifier is told about every newly stored registration.
type Notifier interface {
	RegistrationConfirmed(ctx context.Context, record models.RegistrationRecord) error
}

// Confirmation is the user-visible message shown after a successful submit.
type Confirmation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DefaultConfirmation is shown once per successful submission.
var DefaultConfirmation = Confirmation{
	Title:       "Registration Successful!",
	Description: "Thank you for registering for HackFest 2025. We'll be in touch soon!",
}

// Result describes a successful submission.
type Result struct {
	RegistrationID string
	Replayed       bool
	Confirmation   Confirmation
	SubmittedAt    time.Time
}

// Snapshot is a read-only copy of a form.
type Snapshot struct {
	ID        string
	Draft     models.Registration
	State     State
	LastError *apperrors.SubmissionError
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Form is one registration form instance. All methods are safe for
// concurrent use; at most one submission is in flight at a time.
type Form struct {
	id        string
	submitter Submitter
	validator *Validator
	notifier  Notifier
	logger    zerolog.Logger
	timeout   time.Duration
	now       func() time.Time
	newKey    func() string

	mu         sync.Mutex
	draft      models.Registration
	state      State
	key        string
	lastErr    *apperrors.SubmissionError
	generation uint64
	createdAt  time.Time
	updatedAt  time.Time
}

// Option configures a Form
type Option func(*Form)

// WithValidator replaces the default validation rules.
func WithValidator(v *Validator) Option {
	return func(f *Form) {
		if v != nil {
			f.validator = v
		}
	}
}

// WithNotifier sets the confirmation notifier.
func WithNotifier(n Notifier) Option {
	return func(f *Form) {
		f.notifier = n
	}
}

// WithLogger sets the form logger
func WithLogger(l zerolog.Logger) Option {
	return func(f *Form) {
		f.logger = l
	}
}

// WithSubmitTimeout bounds every submit call. Zero disables the bound.
func WithSubmitTimeout(d time.Duration) Option {
	return func(f *Form) {
		f.timeout = d
	}
}

// WithKeyGenerator sets how submission keys are minted after a successful
// submit or a reset.
func WithKeyGenerator(gen func() string) Option {
	return func(f *Form) {
		if gen != nil {
			f.newKey = gen
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(f *Form) {
		if now != nil {
			f.now = now
		}
	}
}

// NewForm creates an idle form with an empty draft. id doubles as the
// idempotency key of the first draft; later drafts get fresh keys.
func NewForm(id string, submitter Submitter, opts ...Option) *Form {
	f := &Form{
		id:        id,
		submitter: submitter,
		validator: defaultValidator,
		logger:    zerolog.Nop(),
		now:       time.Now,
		newKey:    uuid.NewString,
		key:       id,
		draft:     models.EmptyRegistration(),
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With().Str("form_id", id).Logger()
	f.createdAt = f.now()
	f.updatedAt = f.createdAt
	return f
}

// ID returns the form id
func (f *Form) ID() string {
	return f.id
}

// Snapshot returns a copy of the current form state.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	return Snapshot{
		ID:        f.id,
		Draft:     f.draft,
		State:     f.state,
		LastError: f.lastErr,
		CreatedAt: f.createdAt,
		UpdatedAt: f.updatedAt,
	}
}

// Update stores value at path and returns the inline validation result for
// it. Invalid values are stored too so the user can keep typing.
func (f *Form) Update(path string, value any) (*apperrors.FieldError, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSubmitting {
		return nil, apperrors.ErrSubmissionInProgress
	}

	next, err := f.draft.With(path, value)
	if err != nil {
		return nil, err
	}
	fieldErr, err := f.validator.ValidateField(path, value)
	if err != nil {
		return nil, err
	}

	f.draft = next
	f.dismissLocked()
	return fieldErr, nil
}

// Replace swaps the whole draft.
func (f *Form) Replace(draft models.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSubmitting {
		return apperrors.ErrSubmissionInProgress
	}

	f.draft = draft
	f.dismissLocked()
	return nil
}

// dismissLocked records an edit. A failed form goes back to idle.
func (f *Form) dismissLocked() {
	if f.state == StateFailed {
		f.state = StateIdle
		f.lastErr = nil
	}
	f.updatedAt = f.now()
}

// Validate checks the current draft.
func (f *Form) Validate() apperrors.ValidationErrors {
	f.mu.Lock()
	draft := f.draft
	f.mu.Unlock()

	return f.validator.ValidateAll(draft)
}

// Submit validates the draft and hands it to the submitter.
//
// It returns apperrors.ErrSubmissionInProgress if another Submit has not
// settled yet, apperrors.ValidationErrors if the draft is invalid, and a
// *apperrors.SubmissionError if the submitter failed. In the first two cases
// the submitter is not called and the state is unchanged. On success the
// draft is cleared and the form is idle again; on failure the draft is kept
// and the form is left in StateFailed.
func (f *Form) Submit(ctx context.Context) (Result, error) {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return Result{}, apperrors.ErrSubmissionInProgress
	}

	draft := f.draft
	if errs := f.validator.ValidateAll(draft); len(errs) > 0 {
		f.mu.Unlock()
		return Result{}, errs
	}

	f.state = StateSubmitting
	f.lastErr = nil
	f.updatedAt = f.now()
	generation := f.generation
	key := f.key
	f.mu.Unlock()

	f.logger.Debug().Str("key", key).Msg("Submitting registration")

	submitCtx, cancel := f.submitContext(ctx)
	receipt, err := f.submitter.SubmitRegistration(submitCtx, key, draft)
	cancel()

	f.mu.Lock()
	// Reset was called while the submission was in flight.
	wasReset := f.generation != generation
	settledAt := f.now()
	f.updatedAt = settledAt

	if err != nil {
		subErr := apperrors.ClassifySubmissionError(err)
		if wasReset {
			f.state = StateIdle
		} else {
			f.state = StateFailed
			f.lastErr = subErr
		}
		f.mu.Unlock()

		f.logger.Warn().Err(err).Str("kind", string(subErr.Kind)).Msg("Registration submission failed")
		return Result{}, subErr
	}

	if !wasReset {
		f.draft = models.EmptyRegistration()
		f.key = f.newKey()
	}
	f.state = StateIdle
	f.lastErr = nil
	f.mu.Unlock()

	if receipt.RegistrationID == "" {
		receipt.RegistrationID = key
	}

	f.logger.Info().
		Str("registration_id", receipt.RegistrationID).
		Bool("replayed", receipt.Replayed).
		Msg("Registration submitted")

	if !receipt.Replayed && f.notifier != nil {
		record := models.RegistrationRecord{
			ID:           receipt.RegistrationID,
			Registration: draft,
			CreatedAt:    settledAt,
		}
		if err := f.notifier.RegistrationConfirmed(context.WithoutCancel(ctx), record); err != nil {
			f.logger.Error().Err(err).Str("registration_id", receipt.RegistrationID).Msg("Failed to send registration confirmation")
		}
	}

	return Result{
		RegistrationID: receipt.RegistrationID,
		Replayed:       receipt.Replayed,
		Confirmation:   DefaultConfirmation,
		SubmittedAt:    settledAt,
	}, nil
}

// submitContext keeps the caller's values but not its cancellation: once
// started, a submission runs until it settles or the timeout fires.
func (f *Form) submitContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if f.timeout <= 0 {
		return detached, func() {}
	}
	return context.WithTimeout(detached, f.timeout)
}

// Reset clears the draft and any stored error and starts a new submission
// key. A submission in flight keeps running and the form stays in
// StateSubmitting until it settles, but its outcome no longer touches the
// draft.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.draft = models.EmptyRegistration()
	f.lastErr = nil
	if f.state != StateSubmitting {
		f.state = StateIdle
	}
	f.key = f.newKey()
	f.generation++
	f.updatedAt = f.now()
}
