package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/models"
)

// Sentinel errors for user store operations
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserReferenced    = errors.New("user is referenced by existing tasks")
)

// UserStore defines the interface for user storage operations.
type UserStore interface {
	// Create creates a new user in the store.
	// Returns ErrUserAlreadyExists if a user with the same ID or email already exists.
	Create(ctx context.Context, user *models.User) error

	// Get retrieves a user by ID.
	// Returns ErrUserNotFound if the user doesn't exist.
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by email address.
	// Returns ErrUserNotFound if no user has that email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Update updates an existing user.
	// Returns ErrUserNotFound if the user doesn't exist, and
	// ErrUserAlreadyExists if the new email is already taken.
	Update(ctx context.Context, user *models.User) error

	// Delete removes a user by ID. Deletion is hard; there is no soft-delete state.
	// Returns ErrUserNotFound if the user doesn't exist, and ErrUserReferenced if
	// the user authored tasks that still exist. Task assignments are cleared.
	Delete(ctx context.Context, userID uuid.UUID) error

	// ListByOrg returns all users in an organization, optionally filtered by role.
	ListByOrg(ctx context.Context, orgID uuid.UUID, role *models.Role) ([]*models.User, error)

	// GetByOrgAndRole returns one user in the organization holding the given role.
	// Returns ErrUserNotFound if there is none.
	GetByOrgAndRole(ctx context.Context, orgID uuid.UUID, role models.Role) (*models.User, error)

	// CountByOrgAndRole counts users in the organization holding the given role.
	// Used to enforce the sole-owner invariant before organization deletion.
	CountByOrgAndRole(ctx context.Context, orgID uuid.UUID, role models.Role) (int, error)
}
