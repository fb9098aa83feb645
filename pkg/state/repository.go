package state

import "context"

// Repository handles manifest persistence.
// Implementations persist state to disk (or other storage) atomically.
type Repository interface {
	// Load retrieves the last saved manifest.
	// Returns an empty state and nil error if no manifest exists.
	// Returns an error only for actual read failures.
	Load(ctx context.Context) (State, error)

	// Save persists the manifest atomically.
	Save(ctx context.Context, state State) error

	// Update loads the manifest, applies fn and saves the result as one
	// step with respect to other callers of the same repository.
	Update(ctx context.Context, fn func(*State)) error
}
