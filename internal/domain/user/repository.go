package user

import (
	"context"
)

// Repository is the storage port for principal documents. It covers both the
// registry operations (Exists, Create) and the profile operations; all of
// them address the same per-principal document.
type Repository interface {
	// Exists reports whether a registry entry exists for the principal
	Exists(ctx context.Context, id UserID) (bool, error)

	// Create writes the registry fields for a principal and returns the
	// stored document. Calling it again for the same id overwrites the
	// registry fields but leaves other document fields (including a claimed
	// username) untouched.
	Create(ctx context.Context, u NewUser) (Profile, error)

	// GetProfile returns the full document, or nil without error when absent
	GetProfile(ctx context.Context, id UserID) (Profile, error)

	// SaveProfile merge-upserts the given fields, creating the document if
	// absent and leaving unspecified fields untouched
	SaveProfile(ctx context.Context, id UserID, fields Profile) error

	// UpdateProfile applies a partial update; fails with a not-found error
	// when the document does not exist
	UpdateProfile(ctx context.Context, id UserID, fields Profile) error
}
