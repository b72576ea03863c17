package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pawhaven/adoption-api/internal/domains/adoptions/domain"
	"github.com/pawhaven/adoption-api/internal/domains/adoptions/ports"
	"github.com/pawhaven/adoption-api/internal/shared/projection"
)

var _ ports.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory record store for demos/tests. The pet index
// enforces the at-most-one-active-record constraint atomically under the
// mutex, mirroring the unique index the Postgres adapter relies on.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]*storedRecord
	byPet   map[string]string
	now     func() time.Time
}

type storedRecord struct {
	record   *domain.Record
	metadata projection.Metadata
}

// NewRecordStore constructs an empty in-memory store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: map[string]*storedRecord{},
		byPet:   map[string]string{},
		now:     time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (s *RecordStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create inserts the record unless the pet already has an active one.
func (s *RecordStore) Create(_ context.Context, record *domain.Record) (*ports.RecordProjection, error) {
	if record == nil {
		return nil, errors.New("cannot create nil record")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byPet[record.PetID]; taken {
		return nil, ports.ErrDuplicate
	}
	timestamp := s.now()
	stored := &storedRecord{
		record:   cloneRecord(record),
		metadata: projection.Metadata{CreatedAt: timestamp, UpdatedAt: timestamp},
	}
	s.records[record.ID] = stored
	s.byPet[record.PetID] = record.ID
	return projectionCopy(stored), nil
}

// GetByID fetches a record if present.
func (s *RecordStore) GetByID(_ context.Context, id string) (*ports.RecordProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.records[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(entry), nil
}

// Delete removes a record and frees its pet slot.
func (s *RecordStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.records[id]
	if !ok {
		return ports.ErrNotFound
	}
	delete(s.records, id)
	delete(s.byPet, entry.record.PetID)
	return nil
}

// FindActiveForPet returns nil, nil when no active record references the pet.
func (s *RecordStore) FindActiveForPet(_ context.Context, petID string) (*ports.RecordProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPet[petID]
	if !ok {
		return nil, nil
	}
	return projectionCopy(s.records[id]), nil
}

// ListByUser returns the user's active records.
func (s *RecordStore) ListByUser(_ context.Context, userID string) ([]*ports.RecordProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*ports.RecordProjection
	for _, entry := range s.records {
		if entry.record.UserID == userID {
			list = append(list, projectionCopy(entry))
		}
	}
	return list, nil
}

// ListActive returns every active record.
func (s *RecordStore) ListActive(_ context.Context) ([]*ports.RecordProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*ports.RecordProjection, 0, len(s.records))
	for _, entry := range s.records {
		list = append(list, projectionCopy(entry))
	}
	return list, nil
}

func projectionCopy(entry *storedRecord) *ports.RecordProjection {
	return &ports.RecordProjection{
		Entity:   cloneRecord(entry.record),
		Metadata: entry.metadata,
	}
}

func cloneRecord(r *domain.Record) *domain.Record {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}
