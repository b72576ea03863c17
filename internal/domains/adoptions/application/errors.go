package application

import "errors"

// Error taxonomy surfaced by the reconciliation service. The store-level
// signals (duplicate record, availability conflict) are always translated
// into one of these before leaving the package.
var (
	// ErrInvalidInput signals a malformed pet or user reference.
	ErrInvalidInput = errors.New("invalid adoption input")

	// ErrNotFound covers an unknown pet, an unknown record, and a cancel
	// against a record the caller does not own. The ownership case reuses
	// this error on purpose: a foreign caller must not learn the record exists.
	ErrNotFound = errors.New("adoption target not found")

	// ErrAlreadyAdopted is terminal: the pet is not available, whether the
	// caller arrived late or lost a race against a concurrent submitter.
	ErrAlreadyAdopted = errors.New("pet is already adopted")

	// ErrReconciliationPending signals the availability flag could not be
	// brought in line with the record store within the retry budget. The
	// record mutation has committed; repair happens out of band.
	ErrReconciliationPending = errors.New("adoption reconciliation pending")

	// ErrStorage wraps unexpected store failures outside the retryable
	// availability-flip step.
	ErrStorage = errors.New("adoption storage failure")
)
