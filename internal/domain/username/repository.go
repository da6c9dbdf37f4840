package username

import (
	"context"
	"errors"
)

// ErrAlreadyHeld reports that the claimant's profile already carries a
// username, observed inside the claim transaction. The claim is abandoned,
// not retried: the principal keeps the username it holds.
var ErrAlreadyHeld = errors.New("profile already holds a username")

// Repository is the storage port for the username pool
type Repository interface {
	// UnassignedSample returns up to n names of currently unassigned units,
	// sampled at random. An empty result means the pool holds no unassigned
	// units at all.
	UnassignedSample(ctx context.Context, n int) ([]string, error)

	// TryClaim atomically binds an unassigned unit to the principal and
	// writes the username into the principal's profile document. Both writes
	// commit together or not at all. Fails with a conflict (see IsConflict)
	// when a racing claimant got the unit first, and with ErrAlreadyHeld when
	// the principal's profile already carries a username.
	TryClaim(ctx context.Context, name string, userID string) error

	// Add registers names as unassigned pool units, skipping names that
	// already exist in any state. Returns the number actually added.
	Add(ctx context.Context, names []string) (int, error)

	// Get returns a unit by name, nil when absent
	Get(ctx context.Context, name string) (*Unit, error)
}
