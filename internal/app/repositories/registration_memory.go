package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/yigit/hackfest/internal/app/models"
	"github.com/yigit/hackfest/internal/pkg/apperrors"
)

// MemoryRegistrationStore keeps registrations in process memory. It follows
// the same idempotency and uniqueness rules as the Postgres store.
type MemoryRegistrationStore struct {
	mu      sync.RWMutex
	records map[string]models.RegistrationRecord
	leaders map[string]string
	order   []string
}

// NewMemoryRegistrationStore creates an empty store
func NewMemoryRegistrationStore() *MemoryRegistrationStore {
	return &MemoryRegistrationStore{
		records: make(map[string]models.RegistrationRecord),
		leaders: make(map[string]string),
	}
}

// Create stores rec unless its ID is already present.
func (s *MemoryRegistrationStore) Create(ctx context.Context, rec *models.RegistrationRecord) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return false, nil
	}

	leader := strings.ToLower(rec.Registration.LeaderEmail)
	if _, taken := s.leaders[leader]; taken {
		return false, apperrors.ErrRegistrationAlreadyExists
	}

	s.records[rec.ID] = *rec
	s.leaders[leader] = rec.ID
	s.order = append(s.order, rec.ID)
	return true, nil
}

// GetByID returns a copy of the stored record
func (s *MemoryRegistrationStore) GetByID(_ context.Context, id string) (*models.RegistrationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, apperrors.ErrRegistrationNotFound
	}
	return &rec, nil
}

// List returns a page of registrations, newest first
func (s *MemoryRegistrationStore) List(_ context.Context, offset uint64, limit int) ([]*models.RegistrationRecord, error) {
	s.mu.RLock()
	all := make([]models.RegistrationRecord, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.records[id])
	}
	s.mu.RUnlock()

	// Insertion order breaks ties between equal timestamps.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	records := []*models.RegistrationRecord{}
	if offset >= uint64(len(all)) || limit <= 0 {
		return records, nil
	}
	end := int(offset) + limit
	if end > len(all) {
		end = len(all)
	}
	for i := int(offset); i < end; i++ {
		rec := all[i]
		records = append(records, &rec)
	}
	return records, nil
}

// Count returns the number of stored registrations
func (s *MemoryRegistrationStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}
