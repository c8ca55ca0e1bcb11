package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/audit"
	"github.com/taskwell/taskwell/internal/auth"
	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/store"
	"github.com/taskwell/taskwell/internal/workflow"
)

// TaskService validates and applies task mutations, enforcing both
// permission and workflow transition legality.
type TaskService struct {
	store    *store.Store
	engine   *auth.Engine
	recorder audit.Recorder
}

// NewTaskService creates a new task service.
func NewTaskService(s *store.Store, engine *auth.Engine, recorder audit.Recorder) *TaskService {
	return &TaskService{
		store:    s,
		engine:   engine,
		recorder: recorder,
	}
}

// CreateTaskInput is the payload for creating a task. Status defaults to
// todo when empty.
type CreateTaskInput struct {
	Title        string
	Description  string
	Status       workflow.Status
	Category     string
	Priority     int
	DueDate      *time.Time
	AssignedToID *uuid.UUID
}

// Create creates a task in the principal's organization.
func (s *TaskService) Create(ctx context.Context, principal models.Principal, in CreateTaskInput) (*models.Task, error) {
	if in.Title == "" {
		return nil, &ValidationError{Msg: "title is required"}
	}

	status := in.Status
	if status == "" {
		status = workflow.StatusTodo
	}
	if !status.Valid() {
		return nil, &ValidationError{Msg: fmt.Sprintf("unknown status %q", in.Status)}
	}

	now := time.Now()
	task := &models.Task{
		ID:             uuid.Must(uuid.NewV7()),
		Title:          in.Title,
		Description:    in.Description,
		Status:         status,
		Category:       in.Category,
		Priority:       in.Priority,
		DueDate:        in.DueDate,
		CreatedByID:    principal.UserID,
		OrganizationID: principal.OrganizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if d := s.engine.CanActOnTask(principal, task, auth.TaskActionCreate); !d.Allowed {
		return nil, denied("create task", d)
	}

	if in.AssignedToID != nil {
		if err := s.validateAssignee(ctx, principal, *in.AssignedToID); err != nil {
			return nil, err
		}
		task.AssignedToID = in.AssignedToID
	}

	if err := s.store.Tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.recorder.Record(ctx, principal, audit.ActionCreate, audit.ResourceTask, task.ID,
		fmt.Sprintf("created task %q with status %s", task.Title, task.Status))

	return task, nil
}

// Get retrieves a task the principal is allowed to read.
func (s *TaskService) Get(ctx context.Context, principal models.Principal, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.store.Tasks.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, &NotFoundError{Resource: "task"}
		}
		return nil, err
	}

	if d := s.engine.CanActOnTask(principal, task, auth.TaskActionRead); !d.Allowed {
		return nil, denied("read task", d)
	}

	return task, nil
}

// List returns all tasks in the principal's organization. Every role may
// read tasks, so the only gate is a well-formed principal.
func (s *TaskService) List(ctx context.Context, principal models.Principal) ([]*models.Task, error) {
	if d := s.engine.CanAccessOrganization(principal, principal.OrganizationID); !d.Allowed {
		return nil, denied("list tasks", d)
	}
	if !auth.HasCapability(principal.Role, auth.CapTasksRead) {
		return nil, denied("list tasks", auth.Decision{Reason: auth.DenyInsufficientRole})
	}

	return s.store.Tasks.ListByOrg(ctx, principal.OrganizationID)
}

// UpdateTaskInput carries partial task changes. Nil fields are left
// untouched. For AssignedToID, a pointer to uuid.Nil clears the assignment;
// clearing never requires validation.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *workflow.Status
	Category     *string
	Priority     *int
	DueDate      *time.Time
	AssignedToID *uuid.UUID
}

// Update applies changes to a task. A status change must be a legal workflow
// transition; requesting the current status is a no-op, not a transition.
func (s *TaskService) Update(ctx context.Context, principal models.Principal, taskID uuid.UUID, in UpdateTaskInput) (*models.Task, error) {
	task, err := s.store.Tasks.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, &NotFoundError{Resource: "task"}
		}
		return nil, err
	}

	if d := s.engine.CanActOnTask(principal, task, auth.TaskActionUpdate); !d.Allowed {
		return nil, denied("update task", d)
	}

	if in.Status != nil && *in.Status != task.Status {
		if !in.Status.Valid() {
			return nil, &ValidationError{Msg: fmt.Sprintf("unknown status %q", *in.Status)}
		}
		if !workflow.IsValidTransition(task.Status, *in.Status) {
			return nil, &TransitionError{From: task.Status, To: *in.Status}
		}
		task.Status = *in.Status
	}

	if in.AssignedToID != nil {
		if *in.AssignedToID == uuid.Nil {
			task.AssignedToID = nil
		} else {
			if err := s.validateAssignee(ctx, principal, *in.AssignedToID); err != nil {
				return nil, err
			}
			assignee := *in.AssignedToID
			task.AssignedToID = &assignee
		}
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, &ValidationError{Msg: "title is required"}
		}
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Category != nil {
		task.Category = *in.Category
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}

	if err := s.store.Tasks.Update(ctx, task); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, &NotFoundError{Resource: "task"}
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.recorder.Record(ctx, principal, audit.ActionUpdate, audit.ResourceTask, task.ID,
		fmt.Sprintf("updated task %q, status %s", task.Title, task.Status))

	return task, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, principal models.Principal, taskID uuid.UUID) error {
	task, err := s.store.Tasks.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return &NotFoundError{Resource: "task"}
		}
		return err
	}

	if d := s.engine.CanActOnTask(principal, task, auth.TaskActionDelete); !d.Allowed {
		return denied("delete task", d)
	}

	if err := s.store.Tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return &NotFoundError{Resource: "task"}
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.recorder.Record(ctx, principal, audit.ActionDelete, audit.ResourceTask, task.ID,
		fmt.Sprintf("deleted task %q", task.Title))

	return nil
}

// AvailableTransitions returns the statuses the task can move to next, for
// rendering choices to the end user. Reachability is not an authorization
// decision; the read permission is.
func (s *TaskService) AvailableTransitions(ctx context.Context, principal models.Principal, taskID uuid.UUID) ([]workflow.Status, error) {
	task, err := s.Get(ctx, principal, taskID)
	if err != nil {
		return nil, err
	}

	return workflow.AvailableTransitions(task.Status), nil
}

// validateAssignee checks that the assignee exists and belongs to the
// principal's organization. Both failures surface as the same validation
// error so the response doesn't reveal whether a cross-organization user
// exists.
func (s *TaskService) validateAssignee(ctx context.Context, principal models.Principal, assigneeID uuid.UUID) error {
	assignee, err := s.store.Users.Get(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return &ValidationError{Msg: "assignee must belong to your organization"}
		}
		return err
	}

	if assignee.OrganizationID != principal.OrganizationID {
		return &ValidationError{Msg: "assignee must belong to your organization"}
	}

	return nil
}
