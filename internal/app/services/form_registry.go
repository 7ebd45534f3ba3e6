package services

import (
	"sync"
	"time"

	"github.com/yigit/hackfest/internal/app/registration"
	"github.com/yigit/hackfest/internal/pkg/apperrors"
)

type formEntry struct {
	form       *registration.Form
	lastAccess time.Time
}

// FormRegistry holds open registration forms. A form that has not been
// touched for ttl is dropped, unless a submission is still in flight.
type FormRegistry struct {
	mu    sync.Mutex
	forms map[string]*formEntry
	ttl   time.Duration
	max   int
	now   func() time.Time

	onExpire func(n int)
}

// NewFormRegistry creates a registry. A non-positive max means no limit.
func NewFormRegistry(ttl time.Duration, max int) *FormRegistry {
	return &FormRegistry{
		forms: make(map[string]*formEntry),
		ttl:   ttl,
		max:   max,
		now:   time.Now,
	}
}

// OnExpire registers a callback invoked with the number of forms dropped
// after their TTL.
func (r *FormRegistry) OnExpire(fn func(n int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onExpire = fn
}

// Add registers a new form.
func (r *FormRegistry) Add(form *registration.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.max > 0 && len(r.forms) >= r.max {
		return apperrors.ErrTooManyForms
	}
	r.forms[form.ID()] = &formEntry{form: form, lastAccess: r.now()}
	return nil
}

// Get returns a live form and refreshes its TTL.
func (r *FormRegistry) Get(id string) (*registration.Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.forms[id]
	if !ok {
		return nil, apperrors.ErrFormNotFound
	}

	now := r.now()
	if r.expired(entry, now) {
		delete(r.forms, id)
		r.notifyExpired(1)
		return nil, apperrors.ErrFormNotFound
	}

	entry.lastAccess = now
	return entry.form, nil
}

// Remove drops a form. It reports whether the form was present.
func (r *FormRegistry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.forms[id]
	delete(r.forms, id)
	return ok
}

// Sweep drops every expired form and returns how many were removed.
func (r *FormRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, entry := range r.forms {
		if r.expired(entry, now) {
			delete(r.forms, id)
			removed++
		}
	}
	r.notifyExpired(removed)
	return removed
}

// Len returns the number of forms held.
func (r *FormRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms)
}

func (r *FormRegistry) notifyExpired(n int) {
	if n > 0 && r.onExpire != nil {
		r.onExpire(n)
	}
}

func (r *FormRegistry) expired(entry *formEntry, now time.Time) bool {
	if r.ttl <= 0 || now.Sub(entry.lastAccess) < r.ttl {
		return false
	}
	return entry.form.Snapshot().State != registration.StateSubmitting
}
