package migrations

import (
	"time"

	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&petRecord{},
		&adoptionRecord{},
	)
}

// Pet schema mirrors the pets Postgres adapter.
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

// Adoption record schema mirrors the adoptions Postgres adapter. The unique
// index on pet_id carries the at-most-one-active-record constraint.
type adoptionRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:64"`
	PetID     string    `gorm:"column:pet_id;size:64;uniqueIndex:uidx_adoption_records_pet"`
	UserID    string    `gorm:"column:user_id;size:64;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (adoptionRecord) TableName() string { return "adoption_records" }
