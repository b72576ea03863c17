package ports

import "context"

// SubmitAdoptionInput carries a submission for an authenticated user.
type SubmitAdoptionInput struct {
	PetID  string
	UserID string
}

// CancelAdoptionInput carries a cancellation. AdminOverride bypasses the
// ownership check when the principal holds the administrative capability.
type CancelAdoptionInput struct {
	RecordID      string
	RequestedBy   string
	AdminOverride bool
}

// Service exposes the adoption reconciliation use cases.
type Service interface {
	SubmitAdoption(ctx context.Context, input SubmitAdoptionInput) (*RecordProjection, error)
	CancelAdoption(ctx context.Context, input CancelAdoptionInput) error
	ListByUser(ctx context.Context, userID string) ([]*RecordProjection, error)
	// RepairPet recomputes a pet's availability flag from the record store,
	// the out-of-band half of the reconciliation protocol.
	RepairPet(ctx context.Context, petID string) error
	// HasActiveRecordForPet backs the pet-deletion referential guard.
	HasActiveRecordForPet(ctx context.Context, petID string) (bool, error)
}
