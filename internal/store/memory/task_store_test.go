package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/store"
	"github.com/taskwell/taskwell/internal/workflow"
)

func newTestTask(orgID, createdBy uuid.UUID, title string) *models.Task {
	now := time.Now()
	return &models.Task{
		ID:             uuid.Must(uuid.NewV7()),
		Title:          title,
		Status:         workflow.StatusTodo,
		CreatedByID:    createdBy,
		OrganizationID: orgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestTaskStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore()
	orgID := uuid.Must(uuid.NewV7())
	userID := uuid.Must(uuid.NewV7())

	task := newTestTask(orgID, userID, "triage inbox")
	require.NoError(t, s.Create(ctx, task))

	got, err := s.Get(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, "triage inbox", got.Title)
	require.Equal(t, workflow.StatusTodo, got.Status)

	require.ErrorIs(t, s.Create(ctx, task), store.ErrTaskAlreadyExists)
}

func TestTaskStoreGetNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore()

	_, err := s.Get(ctx, uuid.Must(uuid.NewV7()))
	require.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStoreUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore()
	orgID := uuid.Must(uuid.NewV7())
	userID := uuid.Must(uuid.NewV7())

	task := newTestTask(orgID, userID, "triage inbox")
	require.NoError(t, s.Create(ctx, task))

	task.Status = workflow.StatusInProgress
	require.NoError(t, s.Update(ctx, task))

	got, err := s.Get(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, workflow.StatusInProgress, got.Status)

	missing := newTestTask(orgID, userID, "ghost")
	require.ErrorIs(t, s.Update(ctx, missing), store.ErrTaskNotFound)
}

func TestTaskStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore()
	orgID := uuid.Must(uuid.NewV7())
	userID := uuid.Must(uuid.NewV7())

	task := newTestTask(orgID, userID, "triage inbox")
	require.NoError(t, s.Create(ctx, task))
	require.NoError(t, s.Delete(ctx, task.ID))

	_, err := s.Get(ctx, task.ID)
	require.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStoreListAndCountByOrg(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore()
	orgID := uuid.Must(uuid.NewV7())
	otherOrgID := uuid.Must(uuid.NewV7())
	userID := uuid.Must(uuid.NewV7())

	require.NoError(t, s.Create(ctx, newTestTask(orgID, userID, "one")))
	require.NoError(t, s.Create(ctx, newTestTask(orgID, userID, "two")))
	require.NoError(t, s.Create(ctx, newTestTask(otherOrgID, userID, "elsewhere")))

	tasks, err := s.ListByOrg(ctx, orgID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	count, err := s.CountByOrg(ctx, orgID)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	count, err = s.CountByOrg(ctx, uuid.Must(uuid.NewV7()))
	require.NoError(t, err)
	require.Equal(t, 0, count)
}
