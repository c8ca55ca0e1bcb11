package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/store"
)

// TaskStore implements store.TaskStore using in-memory storage.
// This implementation is for testing and development only - data is lost on restart.
type TaskStore struct {
	mu sync.RWMutex

	tasks map[uuid.UUID]*models.Task // task_id -> Task
}

// NewTaskStore creates a new in-memory task store.
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[uuid.UUID]*models.Task),
	}
}

// Create creates a new task in memory.
func (s *TaskStore) Create(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return store.ErrTaskAlreadyExists
	}

	// Clone to avoid external modifications
	clone := *task
	s.tasks[task.ID] = &clone

	return nil
}

// Get retrieves a task by ID.
func (s *TaskStore) Get(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return nil, store.ErrTaskNotFound
	}

	clone := *task
	return &clone, nil
}

// Update updates an existing task.
func (s *TaskStore) Update(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; !exists {
		return store.ErrTaskNotFound
	}

	task.UpdatedAt = time.Now()

	clone := *task
	s.tasks[task.ID] = &clone

	return nil
}

// Delete removes a task by ID.
func (s *TaskStore) Delete(ctx context.Context, taskID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[taskID]; !exists {
		return store.ErrTaskNotFound
	}

	delete(s.tasks, taskID)

	return nil
}

// anyCreatedBy reports whether any task was authored by the given user.
func (s *TaskStore) anyCreatedBy(userID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tasks {
		if t.CreatedByID == userID {
			return true
		}
	}

	return false
}

// clearAssignee unassigns every task assigned to the given user.
func (s *TaskStore) clearAssignee(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		if t.AssignedToID != nil && *t.AssignedToID == userID {
			t.AssignedToID = nil
			t.UpdatedAt = time.Now()
		}
	}
}

// deleteByOrg removes every task belonging to the given organization.
func (s *TaskStore) deleteByOrg(orgID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.tasks {
		if t.OrganizationID == orgID {
			delete(s.tasks, id)
		}
	}
}

// ListByOrg returns all tasks belonging to an organization.
func (s *TaskStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Task
	for _, t := range s.tasks {
		if t.OrganizationID == orgID {
			clone := *t
			result = append(result, &clone)
		}
	}

	return result, nil
}

// CountByOrg counts tasks belonging to an organization.
func (s *TaskStore) CountByOrg(ctx context.Context, orgID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, t := range s.tasks {
		if t.OrganizationID == orgID {
			count++
		}
	}

	return count, nil
}
