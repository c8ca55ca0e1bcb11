package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/models"
)

// Sentinel errors for task store operations
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskAlreadyExists = errors.New("task already exists")
)

// TaskStore defines the interface for task storage operations.
type TaskStore interface {
	// Create creates a new task in the store.
	// Returns ErrTaskAlreadyExists if a task with the same ID already exists.
	Create(ctx context.Context, task *models.Task) error

	// Get retrieves a task by ID.
	// Returns ErrTaskNotFound if the task doesn't exist.
	Get(ctx context.Context, taskID uuid.UUID) (*models.Task, error)

	// Update updates an existing task.
	// Returns ErrTaskNotFound if the task doesn't exist.
	Update(ctx context.Context, task *models.Task) error

	// Delete removes a task by ID. Deletion is hard; there is no soft-delete state.
	// Returns ErrTaskNotFound if the task doesn't exist.
	Delete(ctx context.Context, taskID uuid.UUID) error

	// ListByOrg returns all tasks belonging to an organization.
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Task, error)

	// CountByOrg counts tasks belonging to an organization.
	CountByOrg(ctx context.Context, orgID uuid.UUID) (int, error)
}
