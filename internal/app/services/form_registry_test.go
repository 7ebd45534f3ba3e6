package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/hackfest/internal/app/models"
	"github.com/yigit/hackfest/internal/app/registration"
	"github.com/yigit/hackfest/internal/pkg/apperrors"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestRegistry(ttl time.Duration, max int) (*FormRegistry, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	r := NewFormRegistry(ttl, max)
	r.now = clock.Now
	return r, clock
}

func idleForm(id string) *registration.Form {
	return registration.NewForm(id, registration.SubmitterFunc(
		func(context.Context, string, models.Registration) (registration.Receipt, error) {
			return registration.Receipt{}, nil
		}))
}

func TestRegistryGetRefreshesTTL(t *testing.T) {
	r, clock := newTestRegistry(time.Minute, 0)
	require.NoError(t, r.Add(idleForm("a")))

	clock.Advance(50 * time.Second)
	_, err := r.Get("a")
	require.NoError(t, err)

	clock.Advance(50 * time.Second)
	_, err = r.Get("a")
	require.NoError(t, err, "access slid the expiry")

	clock.Advance(time.Minute)
	_, err = r.Get("a")
	assert.ErrorIs(t, err, apperrors.ErrFormNotFound)
	assert.Zero(t, r.Len())
}

func TestRegistrySweep(t *testing.T) {
	r, clock := newTestRegistry(time.Minute, 0)

	var expired int
	r.OnExpire(func(n int) { expired += n })

	require.NoError(t, r.Add(idleForm("a")))
	require.NoError(t, r.Add(idleForm("b")))
	clock.Advance(30 * time.Second)
	require.NoError(t, r.Add(idleForm("c")))

	clock.Advance(45 * time.Second)
	assert.Equal(t, 2, r.Sweep())
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 2, expired)
}

func TestRegistryKeepsSubmittingForms(t *testing.T) {
	r, clock := newTestRegistry(time.Minute, 0)

	started := make(chan struct{})
	release := make(chan struct{})
	form := registration.NewForm("busy", registration.SubmitterFunc(
		func(context.Context, string, models.Registration) (registration.Receipt, error) {
			close(started)
			<-release
			return registration.Receipt{}, nil
		}))
	require.NoError(t, form.Replace(validRegistration("jane@x.com")))
	require.NoError(t, r.Add(form))

	done := make(chan error, 1)
	go func() {
		_, err := form.Submit(context.Background())
		done <- err
	}()
	<-started

	clock.Advance(time.Hour)
	assert.Zero(t, r.Sweep())
	_, err := r.Get("busy")
	assert.NoError(t, err)

	close(release)
	require.NoError(t, <-done)

	clock.Advance(time.Hour)
	assert.Equal(t, 1, r.Sweep())
}

func TestRegistryCap(t *testing.T) {
	r, _ := newTestRegistry(time.Minute, 2)

	require.NoError(t, r.Add(idleForm("a")))
	require.NoError(t, r.Add(idleForm("b")))
	assert.ErrorIs(t, r.Add(idleForm("c")), apperrors.ErrTooManyForms)

	assert.True(t, r.Remove("a"))
	assert.False(t, r.Remove("a"))
	assert.NoError(t, r.Add(idleForm("c")))
}
