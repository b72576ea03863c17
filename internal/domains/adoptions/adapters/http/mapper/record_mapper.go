package mapper

import (
	"time"

	"github.com/pawhaven/adoption-api/internal/domains/adoptions/ports"
)

// SubmitAdoption is the inbound submission payload. The applicant identity
// comes from the verified principal, never from the body.
type SubmitAdoption struct {
	PetID string `json:"petId" binding:"required"`
}

// Record is the HTTP representation of an active adoption record.
type Record struct {
	ID        string    `json:"id"`
	PetID     string    `json:"petId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// FromProjection maps a record projection into its transport shape.
func FromProjection(projection *ports.RecordProjection) Record {
	r := projection.Entity
	return Record{
		ID:        r.ID,
		PetID:     r.PetID,
		UserID:    r.UserID,
		CreatedAt: projection.Metadata.CreatedAt,
	}
}

// FromProjectionList maps a slice of record projections.
func FromProjectionList(list []*ports.RecordProjection) []Record {
	result := make([]Record, 0, len(list))
	for _, projection := range list {
		result = append(result, FromProjection(projection))
	}
	return result
}
