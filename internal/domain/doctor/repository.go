package doctor

import "context"

type Repository interface {
	// Create persists a new doctor account. Returns ErrDuplicateUsername or
	// ErrDuplicateEmail when a unique constraint is violated.
	Create(ctx context.Context, d *Doctor) error

	// GetByUsername retrieves a doctor by exact username match.
	// Returns ErrDoctorNotFound if no such account exists.
	GetByUsername(ctx context.Context, username string) (*Doctor, error)

	// GetByID retrieves a doctor by primary key. Returns ErrDoctorNotFound if not found.
	GetByID(ctx context.Context, id uint) (*Doctor, error)

	// ExistsByUsername checks username uniqueness without fetching the row.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail checks email uniqueness without fetching the row.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
