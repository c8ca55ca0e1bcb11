package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/store"
)

// UserStore implements store.UserStore using in-memory storage.
// This implementation is for testing and development only - data is lost on restart.
type UserStore struct {
	mu sync.RWMutex

	users        map[uuid.UUID]*models.User // user_id -> User
	usersByEmail map[string]*models.User    // email -> User

	tasks *TaskStore // referential checks on delete, mirroring the schema FKs
}

// NewUserStore creates a new in-memory user store. The task store is consulted
// on delete: authored tasks block deletion, assignments are cleared.
func NewUserStore(tasks *TaskStore) *UserStore {
	return &UserStore{
		users:        make(map[uuid.UUID]*models.User),
		usersByEmail: make(map[string]*models.User),
		tasks:        tasks,
	}
}

// Create creates a new user in memory.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return store.ErrUserAlreadyExists
	}
	if _, exists := s.usersByEmail[user.Email]; exists {
		return store.ErrUserAlreadyExists
	}

	// Clone to avoid external modifications
	clone := *user
	s.users[user.ID] = &clone
	s.usersByEmail[clone.Email] = &clone

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	clone := *user
	return &clone, nil
}

// GetByEmail retrieves a user by email address.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.usersByEmail[email]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	clone := *user
	return &clone, nil
}

// Update updates an existing user.
func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.users[user.ID]
	if !exists {
		return store.ErrUserNotFound
	}

	user.UpdatedAt = time.Now()

	// Re-index if the email changed
	if existing.Email != user.Email {
		if _, taken := s.usersByEmail[user.Email]; taken {
			return store.ErrUserAlreadyExists
		}
		delete(s.usersByEmail, existing.Email)
	}

	clone := *user
	s.users[user.ID] = &clone
	s.usersByEmail[clone.Email] = &clone

	return nil
}

// Delete removes a user by ID. Deletion is refused while the user has
// authored tasks; any task assignments are cleared.
func (s *UserStore) Delete(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[userID]
	if !exists {
		return store.ErrUserNotFound
	}

	if s.tasks.anyCreatedBy(userID) {
		return store.ErrUserReferenced
	}

	delete(s.usersByEmail, user.Email)
	delete(s.users, userID)

	s.tasks.clearAssignee(userID)

	return nil
}

// deleteByOrg removes every user belonging to the given organization.
func (s *UserStore) deleteByOrg(orgID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if u.OrganizationID == orgID {
			delete(s.usersByEmail, u.Email)
			delete(s.users, id)
		}
	}
}

// ListByOrg returns all users in an organization, optionally filtered by role.
func (s *UserStore) ListByOrg(ctx context.Context, orgID uuid.UUID, role *models.Role) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.User
	for _, u := range s.users {
		if u.OrganizationID != orgID {
			continue
		}
		if role != nil && u.Role != *role {
			continue
		}

		clone := *u
		result = append(result, &clone)
	}

	return result, nil
}

// GetByOrgAndRole returns one user in the organization holding the given role.
func (s *UserStore) GetByOrgAndRole(ctx context.Context, orgID uuid.UUID, role models.Role) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.OrganizationID == orgID && u.Role == role {
			clone := *u
			return &clone, nil
		}
	}

	return nil, store.ErrUserNotFound
}

// CountByOrgAndRole counts users in the organization holding the given role.
func (s *UserStore) CountByOrgAndRole(ctx context.Context, orgID uuid.UUID, role models.Role) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, u := range s.users {
		if u.OrganizationID == orgID && u.Role == role {
			count++
		}
	}

	return count, nil
}
