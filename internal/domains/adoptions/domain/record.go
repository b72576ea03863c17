package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Record links a requesting user to the pet they applied for. A record is
// never updated in place: it is created by a submission and deleted by a
// cancellation, and its existence marks the pet as adopted.
type Record struct {
	ID     string
	PetID  string
	UserID string
}

var (
	ErrEmptyPetID  = errors.New("pet id is required")
	ErrEmptyUserID = errors.New("user id is required")
)

// NewRecord validates the references and assigns a fresh identifier.
func NewRecord(petID, userID string) (*Record, error) {
	petID = strings.TrimSpace(petID)
	userID = strings.TrimSpace(userID)
	if petID == "" {
		return nil, ErrEmptyPetID
	}
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	return &Record{ID: uuid.NewString(), PetID: petID, UserID: userID}, nil
}

// BelongsTo reports whether the record was created by the given user.
func (r *Record) BelongsTo(userID string) bool {
	return r.UserID == userID
}
