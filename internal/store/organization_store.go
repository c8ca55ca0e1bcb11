package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/models"
)

// Sentinel errors for organization store operations
var (
	ErrOrganizationNotFound      = errors.New("organization not found")
	ErrOrganizationAlreadyExists = errors.New("organization already exists")
)

// OrganizationStore defines the interface for organization storage operations.
// Organizations form a tree via ParentID; cycles are forbidden by construction
// (an organization's parent must exist before the child is created).
type OrganizationStore interface {
	// Create creates a new organization in the store.
	// Returns ErrOrganizationAlreadyExists if an organization with the same ID already exists.
	Create(ctx context.Context, org *models.Organization) error

	// Get retrieves an organization by ID.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)

	// Update updates an existing organization.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Update(ctx context.Context, org *models.Organization) error

	// Delete deletes an organization by ID.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Delete(ctx context.Context, orgID uuid.UUID) error

	// ListChildren returns the direct child organizations of the given organization.
	ListChildren(ctx context.Context, orgID uuid.UUID) ([]*models.Organization, error)
}
