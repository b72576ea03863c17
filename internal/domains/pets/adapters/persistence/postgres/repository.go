package postgres

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pawhaven/adoption-api/internal/domains/pets/domain"
	"github.com/pawhaven/adoption-api/internal/domains/pets/ports"
	"github.com/pawhaven/adoption-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists pets in PostgreSQL using GORM-mapped columns.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The caller owns the DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		if err := db.AutoMigrate(&petRecord{}); err != nil {
			log.Printf("postgres pet repository migration failed: %v", err)
		}
	}
	return repo
}

type petRecord struct {
	ID           string    `gorm:"primaryKey;column:id;size:64"`
	Name         string    `gorm:"column:name"`
	Gender       string    `gorm:"column:gender;type:varchar(16)"`
	Variety      string    `gorm:"column:variety"`
	ShelterName  string    `gorm:"column:shelter_name"`
	ImageURL     string    `gorm:"column:image_url"`
	Introduction string    `gorm:"column:introduction;type:text"`
	Available    bool      `gorm:"column:available;index"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;index"`
}

func (petRecord) TableName() string { return "pets" }

// Save inserts or updates a pet's catalog columns. The availability flag is
// deliberately excluded from the upsert assignments: it only moves through
// SetAvailability's conditional write.
func (r *Repository) Save(ctx context.Context, pet *domain.Pet) (*ports.PetProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if pet == nil {
		return nil, errors.New("pet is nil")
	}
	record := newPetRecord(pet)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":         record.Name,
				"gender":       record.Gender,
				"variety":      record.Variety,
				"shelter_name": record.ShelterName,
				"image_url":    record.ImageURL,
				"introduction": record.Introduction,
				"updated_at":   gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches a pet by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*ports.PetProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record petRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// SetAvailability performs the conditional write backing the reconciliation
// protocol: UPDATE ... WHERE id = ? AND available = <expected>. Zero rows
// affected means either the pet is gone or another writer got there first.
func (r *Repository) SetAvailability(ctx context.Context, id string, available, expected bool) (*ports.PetProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).
		Model(&petRecord{}).
		Where("id = ? AND available = ?", id, expected).
		Updates(map[string]any{
			"available":  available,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); errors.Is(err, ports.ErrNotFound) {
			return nil, ports.ErrNotFound
		} else if err != nil {
			return nil, err
		}
		return nil, ports.ErrConflict
	}
	return r.GetByID(ctx, id)
}

// Delete removes a pet by identifier.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&petRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// FindAvailable returns pets open for adoption.
func (r *Repository) FindAvailable(ctx context.Context) ([]*ports.PetProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []petRecord
	if err := r.db.WithContext(ctx).Where("available = ?", true).Find(&records).Error; err != nil {
		return nil, err
	}
	return toProjections(records), nil
}

// List returns all pets.
func (r *Repository) List(ctx context.Context) ([]*ports.PetProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []petRecord
	if err := r.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}
	return toProjections(records), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres pet repository not configured")
	}
	return nil
}

func newPetRecord(p *domain.Pet) petRecord {
	return petRecord{
		ID:           p.ID,
		Name:         p.Name,
		Gender:       string(p.Gender),
		Variety:      p.Variety,
		ShelterName:  p.ShelterName,
		ImageURL:     p.ImageURL,
		Introduction: p.Introduction,
		Available:    p.Available,
	}
}

func (r petRecord) toProjection() *ports.PetProjection {
	return &ports.PetProjection{
		Entity: &domain.Pet{
			ID:           r.ID,
			Name:         r.Name,
			Gender:       domain.Gender(r.Gender),
			Variety:      r.Variety,
			ShelterName:  r.ShelterName,
			ImageURL:     r.ImageURL,
			Introduction: r.Introduction,
			Available:    r.Available,
		},
		Metadata: projection.Metadata{CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
	}
}

func toProjections(records []petRecord) []*ports.PetProjection {
	list := make([]*ports.PetProjection, 0, len(records))
	for i := range records {
		list = append(list, records[i].toProjection())
	}
	return list
}
