package postgres

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/pawhaven/adoption-api/internal/domains/adoptions/domain"
	"github.com/pawhaven/adoption-api/internal/domains/adoptions/ports"
	"github.com/pawhaven/adoption-api/internal/shared/projection"
)

const uniqueViolation = "23505"

var _ ports.RecordStore = (*RecordStore)(nil)

// RecordStore persists adoption records in PostgreSQL. The unique index on
// pet_id is the load-bearing piece: the database, not the application,
// decides which of two concurrent submissions gets the record.
type RecordStore struct {
	db *gorm.DB
}

// NewRecordStore wires a PostgreSQL-backed record store. The caller owns the
// DB lifecycle.
func NewRecordStore(db *gorm.DB) *RecordStore {
	store := &RecordStore{db: db}
	if db != nil {
		if err := db.AutoMigrate(&adoptionRecord{}); err != nil {
			log.Printf("postgres adoption record store migration failed: %v", err)
		}
	}
	return store
}

type adoptionRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:64"`
	PetID     string    `gorm:"column:pet_id;size:64;uniqueIndex:uidx_adoption_records_pet"`
	UserID    string    `gorm:"column:user_id;size:64;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (adoptionRecord) TableName() string { return "adoption_records" }

// Create inserts the record, translating the unique-index violation on
// pet_id into ports.ErrDuplicate.
func (s *RecordStore) Create(ctx context.Context, record *domain.Record) (*ports.RecordProjection, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.New("record is nil")
	}
	row := adoptionRecord{ID: record.ID, PetID: record.PetID, UserID: record.UserID}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ports.ErrDuplicate
		}
		return nil, err
	}
	return s.GetByID(ctx, row.ID)
}

// GetByID fetches a record by identifier.
func (s *RecordStore) GetByID(ctx context.Context, id string) (*ports.RecordProjection, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var row adoptionRecord
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return row.toProjection(), nil
}

// Delete removes a record by identifier.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Delete(&adoptionRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// FindActiveForPet returns nil, nil when no active record references the pet.
func (s *RecordStore) FindActiveForPet(ctx context.Context, petID string) (*ports.RecordProjection, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var row adoptionRecord
	if err := s.db.WithContext(ctx).First(&row, "pet_id = ?", petID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row.toProjection(), nil
}

// ListByUser returns the user's active records, newest first.
func (s *RecordStore) ListByUser(ctx context.Context, userID string) ([]*ports.RecordProjection, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rows []adoptionRecord
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRecordProjections(rows), nil
}

// ListActive returns every active record.
func (s *RecordStore) ListActive(ctx context.Context) ([]*ports.RecordProjection, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rows []adoptionRecord
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toRecordProjections(rows), nil
}

func (s *RecordStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres adoption record store not configured")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

func (r adoptionRecord) toProjection() *ports.RecordProjection {
	return &ports.RecordProjection{
		Entity: &domain.Record{
			ID:     r.ID,
			PetID:  r.PetID,
			UserID: r.UserID,
		},
		Metadata: projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
}

func toRecordProjections(rows []adoptionRecord) []*ports.RecordProjection {
	list := make([]*ports.RecordProjection, 0, len(rows))
	for i := range rows {
		list = append(list, rows[i].toProjection())
	}
	return list
}
