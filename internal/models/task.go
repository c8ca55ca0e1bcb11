package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/workflow"
)

// Task represents a unit of work tracked through the workflow.
// OrganizationID is fixed at creation; AssignedToID, when set, must
// reference a user in the same organization.
type Task struct {
	ID          uuid.UUID // UUIDv7
	Title       string
	Description string
	Status      workflow.Status
	Category    string
	Priority    int
	DueDate     *time.Time

	CreatedByID    uuid.UUID
	AssignedToID   *uuid.UUID
	OrganizationID uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}
