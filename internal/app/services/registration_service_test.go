package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/hackfest/internal/app/models"
	"github.com/yigit/hackfest/internal/app/registration"
	"github.com/yigit/hackfest/internal/app/repositories"
	"github.com/yigit/hackfest/internal/pkg/apperrors"
	"github.com/yigit/hackfest/internal/pkg/metrics"
)

type recordingNotifier struct {
	mu      sync.Mutex
	records []models.RegistrationRecord
}

func (n *recordingNotifier) RegistrationConfirmed(_ context.Context, rec models.RegistrationRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = append(n.records, rec)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.records)
}

// flakyStore fails the first n Create calls.
type flakyStore struct {
	repositories.RegistrationStore
	failures int
}

func (s *flakyStore) Create(ctx context.Context, rec *models.RegistrationRecord) (bool, error) {
	if s.failures > 0 {
		s.failures--
		return false, errors.New("connection reset by peer")
	}
	return s.RegistrationStore.Create(ctx, rec)
}

func member(n string) models.TeamMember {
	return models.TeamMember{Name: "Member " + n, Department: "CSE", RegNumber: "CS00" + n, Semester: "3", Email: "m" + n + "@x.com"}
}

func validRegistration(leaderEmail string) models.Registration {
	return models.Registration{
		LeaderName: "Jane Doe", LeaderEmail: leaderEmail, LeaderPhone: "1234567890",
		LeaderDepartment: "CSE", LeaderRegNumber: "CS001", LeaderSemester: "3",
		CollegeName: "Tech U", CollegeAddress: "1 Main St",
		ProjectTitle: "App", ProjectDescription: "Solves a real problem",
		Member1: member("2"), Member2: member("3"), Member3: member("4"),
		TermsAccepted: true,
	}
}

type serviceFixture struct {
	service  RegistrationService
	store    repositories.RegistrationStore
	forms    *FormRegistry
	notifier *recordingNotifier
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T, store repositories.RegistrationStore, opts RegistrationOptions) *serviceFixture {
	t.Helper()
	if store == nil {
		store = repositories.NewMemoryRegistrationStore()
	}
	f := &serviceFixture{
		store:    store,
		forms:    NewFormRegistry(time.Hour, 10),
		notifier: &recordingNotifier{},
		metrics:  metrics.New(),
	}
	f.service = NewRegistrationService(f.store, f.forms, f.notifier, f.metrics, opts, zerolog.Nop())
	return f
}

func fillForm(t *testing.T, s RegistrationService, id string, draft models.Registration) {
	t.Helper()
	for _, path := range models.FieldPaths() {
		value, err := draft.Get(path)
		require.NoError(t, err)
		_, err = s.UpdateField(context.Background(), id, path, value)
		require.NoError(t, err, path)
	}
}

func TestFormSessionSubmit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, RegistrationOptions{SubmitTimeout: time.Second})

	snap, err := f.service.OpenForm(ctx)
	require.NoError(t, err)
	assert.Equal(t, registration.StateIdle, snap.State)

	fillForm(t, f.service, snap.ID, validRegistration("jane@x.com"))

	errs, err := f.service.ValidateForm(ctx, snap.ID)
	require.NoError(t, err)
	assert.Empty(t, errs)

	result, err := f.service.SubmitForm(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, result.RegistrationID)
	assert.Equal(t, registration.DefaultConfirmation, result.Confirmation)

	stored, err := f.service.GetRegistration(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, validRegistration("jane@x.com"), stored.Registration)

	after, err := f.service.GetForm(ctx, snap.ID)
	require.NoError(t, err)
	assert.True(t, after.Draft.IsEmpty())
	assert.Equal(t, 1, f.notifier.count())
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Submissions.WithLabelValues(metrics.OutcomeSuccess)))
}

func TestFormSessionSubmitsSecondTeam(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, RegistrationOptions{})

	snap, err := f.service.OpenForm(ctx)
	require.NoError(t, err)

	fillForm(t, f.service, snap.ID, validRegistration("jane@x.com"))
	first, err := f.service.SubmitForm(ctx, snap.ID)
	require.NoError(t, err)

	fillForm(t, f.service, snap.ID, validRegistration("bob@x.com"))
	second, err := f.service.SubmitForm(ctx, snap.ID)
	require.NoError(t, err)
	assert.False(t, second.Replayed)
	assert.NotEqual(t, first.RegistrationID, second.RegistrationID)

	total, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, 2, f.notifier.count())

	stored, err := f.service.GetRegistration(ctx, second.RegistrationID)
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", stored.Registration.LeaderEmail)
}

func TestUpdateFieldReportsInlineErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, RegistrationOptions{})

	snap, err := f.service.OpenForm(ctx)
	require.NoError(t, err)

	fieldErr, err := f.service.UpdateField(ctx, snap.ID, "member2.email", "bad")
	require.NoError(t, err)
	require.NotNil(t, fieldErr)
	assert.Equal(t, apperrors.ReasonInvalidEmail, fieldErr.Reason)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.FieldErrors.WithLabelValues("member2.email", apperrors.ReasonInvalidEmail)))

	_, err = f.service.UpdateField(ctx, snap.ID, "member2.age", "20")
	assert.ErrorIs(t, err, apperrors.ErrUnknownField)
}

func TestSubmitInvalidFormStoresNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, RegistrationOptions{})

	snap, err := f.service.OpenForm(ctx)
	require.NoError(t, err)

	draft := validRegistration("jane@x.com")
	draft.Member2.Email = "bad"
	fillForm(t, f.service, snap.ID, draft)

	_, err = f.service.SubmitForm(ctx, snap.ID)
	var errs apperrors.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, []string{"member2.email"}, errs.Fields())

	total, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, f.notifier.count())
}

func TestSubmitFailureThenRetry(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{RegistrationStore: repositories.NewMemoryRegistrationStore(), failures: 1}
	f := newFixture(t, store, RegistrationOptions{})

	snap, err := f.service.OpenForm(ctx)
	require.NoError(t, err)
	fillForm(t, f.service, snap.ID, validRegistration("jane@x.com"))

	_, err = f.service.SubmitForm(ctx, snap.ID)
	var subErr *apperrors.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.True(t, subErr.Retryable())

	failed, err := f.service.GetForm(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, registration.StateFailed, failed.State)
	assert.False(t, failed.Draft.IsEmpty())

	_, err = f.service.SubmitForm(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.notifier.count())
}

func TestRegisterIsIdempotentOnKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, RegistrationOptions{})
	key := uuid.NewString()

	first, err := f.service.Register(ctx, key, validRegistration("jane@x.com"))
	require.NoError(t, err)
	assert.Equal(t, key, first.RegistrationID)
	assert.False(t, first.Replayed)

	second, err := f.service.Register(ctx, key, validRegistration("jane@x.com"))
	require.NoError(t, err)
	assert.Equal(t, key, second.RegistrationID)
	assert.True(t, second.Replayed)

	assert.Equal(t, 1, f.notifier.count(), "a replay does not confirm again")
	total, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestRegisterRefusesKeyReusedForDifferentTeam(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, RegistrationOptions{})
	key := uuid.NewString()

	_, err := f.service.Register(ctx, key, validRegistration("jane@x.com"))
	require.NoError(t, err)

	_, err = f.service.Register(ctx, key, validRegistration("bob@x.com"))
	var subErr *apperrors.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, apperrors.SubmissionConflict, subErr.Kind)
	assert.ErrorIs(t, err, apperrors.ErrIdempotencyKeyReused)

	stored, err := f.service.GetRegistration(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "jane@x.com", stored.Registration.LeaderEmail)
	assert.Equal(t, 1, f.notifier.count())
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Submissions.WithLabelValues(string(apperrors.SubmissionConflict))))
}

func TestRegisterGeneratesKey(t *testing.T) {
	f := newFixture(t, nil, RegistrationOptions{})

	result, err := f.service.Register(context.Background(), "", validRegistration("jane@x.com"))
	require.NoError(t, err)
	_, err = uuid.Parse(result.RegistrationID)
	assert.NoError(t, err)
}

func TestRegisterRejectsMalformedKey(t *testing.T) {
	f := newFixture(t, nil, RegistrationOptions{})

	_, err := f.service.Register(context.Background(), "abc", validRegistration("jane@x.com"))
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestRegisterDuplicateLeader(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, RegistrationOptions{})

	_, err := f.service.Register(ctx, "", validRegistration("jane@x.com"))
	require.NoError(t, err)

	_, err = f.service.Register(ctx, "", validRegistration("Jane@x.com"))
	var subErr *apperrors.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, apperrors.SubmissionDuplicate, subErr.Kind)
	assert.ErrorIs(t, err, apperrors.ErrRegistrationAlreadyExists)
}

func TestRegisterUniqueMembers(t *testing.T) {
	f := newFixture(t, nil, RegistrationOptions{UniqueMembers: true})

	draft := validRegistration("jane@x.com")
	draft.Member2.Email = draft.Member1.Email

	_, err := f.service.Register(context.Background(), "", draft)
	var errs apperrors.ValidationErrors
	require.ErrorAs(t, err, &errs)
	fe, ok := errs.Lookup("member2.email")
	require.True(t, ok)
	assert.Equal(t, apperrors.ReasonDuplicate, fe.Reason)
}

func TestResetAndCloseForm(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, RegistrationOptions{})

	snap, err := f.service.OpenForm(ctx)
	require.NoError(t, err)
	_, err = f.service.UpdateField(ctx, snap.ID, "leaderName", "Jane")
	require.NoError(t, err)

	reset, err := f.service.ResetForm(ctx, snap.ID)
	require.NoError(t, err)
	assert.True(t, reset.Draft.IsEmpty())

	require.NoError(t, f.service.CloseForm(ctx, snap.ID))
	_, err = f.service.GetForm(ctx, snap.ID)
	assert.ErrorIs(t, err, apperrors.ErrFormNotFound)
	assert.ErrorIs(t, f.service.CloseForm(ctx, snap.ID), apperrors.ErrFormNotFound)
}

func TestListRegistrations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, RegistrationOptions{})

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := f.service.Register(ctx, "", validRegistration(email))
		require.NoError(t, err)
	}

	records, total, err := f.service.ListRegistrations(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, records, 2)

	records, _, err = f.service.ListRegistrations(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestStoreSubmitterRejectsInvalidDraft(t *testing.T) {
	store := repositories.NewMemoryRegistrationStore()
	submitter := NewStoreSubmitter(store, registration.NewValidator())

	_, err := submitter.SubmitRegistration(context.Background(), uuid.NewString(), models.EmptyRegistration())

	var subErr *apperrors.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, apperrors.SubmissionRejected, subErr.Kind)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
