package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/store"
)

// OrganizationStore implements store.OrganizationStore using in-memory storage.
// This implementation is for testing and development only - data is lost on restart.
type OrganizationStore struct {
	mu sync.RWMutex

	organizations map[uuid.UUID]*models.Organization // org_id -> Organization

	users *UserStore
	tasks *TaskStore
}

// NewOrganizationStore creates a new in-memory organization store. Deleting an
// organization cascades to its users and tasks, matching the schema's
// ON DELETE CASCADE constraints.
func NewOrganizationStore(users *UserStore, tasks *TaskStore) *OrganizationStore {
	return &OrganizationStore{
		organizations: make(map[uuid.UUID]*models.Organization),
		users:         users,
		tasks:         tasks,
	}
}

// Create creates a new organization in memory.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.organizations[org.OrgID]; exists {
		return store.ErrOrganizationAlreadyExists
	}

	// A child's parent must already exist; this keeps the tree acyclic.
	if org.ParentID != nil {
		if _, exists := s.organizations[*org.ParentID]; !exists {
			return store.ErrOrganizationNotFound
		}
	}

	// Clone to avoid external modifications
	clone := *org
	s.organizations[org.OrgID] = &clone

	return nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, exists := s.organizations[orgID]
	if !exists {
		return nil, store.ErrOrganizationNotFound
	}

	clone := *org
	return &clone, nil
}

// Update updates an existing organization.
func (s *OrganizationStore) Update(ctx context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.organizations[org.OrgID]; !exists {
		return store.ErrOrganizationNotFound
	}

	org.UpdatedAt = time.Now()

	clone := *org
	s.organizations[org.OrgID] = &clone

	return nil
}

// Delete deletes an organization by ID, cascading to its users and tasks.
func (s *OrganizationStore) Delete(ctx context.Context, orgID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.organizations[orgID]; !exists {
		return store.ErrOrganizationNotFound
	}

	delete(s.organizations, orgID)

	s.tasks.deleteByOrg(orgID)
	s.users.deleteByOrg(orgID)

	return nil
}

// ListChildren returns the direct child organizations of the given organization.
func (s *OrganizationStore) ListChildren(ctx context.Context, orgID uuid.UUID) ([]*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Organization
	for _, org := range s.organizations {
		if org.ParentID != nil && *org.ParentID == orgID {
			clone := *org
			result = append(result, &clone)
		}
	}

	return result, nil
}
