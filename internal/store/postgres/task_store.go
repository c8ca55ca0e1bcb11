package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/store"
)

// TaskStore implements store.TaskStore using PostgreSQL.
type TaskStore struct {
	pool *pgxpool.Pool
}

// NewTaskStore creates a new PostgreSQL-backed task store.
// It shares the connection pool with other stores.
func NewTaskStore(pool *pgxpool.Pool) *TaskStore {
	return &TaskStore{pool: pool}
}

const taskColumns = `task_id, title, description, status, category, priority, due_date, created_by, assigned_to, org_id, created_at, updated_at`

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Category,
		&t.Priority,
		&t.DueDate,
		&t.CreatedByID,
		&t.AssignedToID,
		&t.OrganizationID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, mapPostgresError(err)
	}
	return &t, nil
}

// Create creates a new task in the database.
func (s *TaskStore) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (
			task_id, title, description, status, category, priority, due_date,
			created_by, assigned_to, org_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	_, err := queriesFrom(ctx, s.pool).Exec(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.Category,
		task.Priority,
		task.DueDate,
		task.CreatedByID,
		task.AssignedToID,
		task.OrganizationID,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrTaskAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return store.ErrUserNotFound
		}
		return fmt.Errorf("failed to create task: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("task_id", task.ID.String()).
		Str("org_id", task.OrganizationID.String()).
		Str("status", string(task.Status)).
		Msg("Created task")

	return nil
}

// Get retrieves a task by ID.
func (s *TaskStore) Get(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE task_id = $1`
	return scanTask(queriesFrom(ctx, s.pool).QueryRow(ctx, query, taskID))
}

// Update updates an existing task.
func (s *TaskStore) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, category = $5,
		    priority = $6, due_date = $7, assigned_to = $8, updated_at = $9
		WHERE task_id = $1
	`

	task.UpdatedAt = time.Now()

	tag, err := queriesFrom(ctx, s.pool).Exec(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.Category,
		task.Priority,
		task.DueDate,
		task.AssignedToID,
		task.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrUserNotFound
		}
		return fmt.Errorf("failed to update task: %w", mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// Delete removes a task by ID.
func (s *TaskStore) Delete(ctx context.Context, taskID uuid.UUID) error {
	tag, err := queriesFrom(ctx, s.pool).Exec(ctx, `DELETE FROM tasks WHERE task_id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		return store.ErrTaskNotFound
	}

	log.Debug().Str("task_id", taskID.String()).Msg("Deleted task")

	return nil
}

// ListByOrg returns all tasks belonging to an organization.
func (s *TaskStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE org_id = $1 ORDER BY created_at`

	rows, err := queriesFrom(ctx, s.pool).Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var result []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}

	return result, rows.Err()
}

// CountByOrg counts tasks belonging to an organization.
func (s *TaskStore) CountByOrg(ctx context.Context, orgID uuid.UUID) (int, error) {
	var count int
	err := queriesFrom(ctx, s.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE org_id = $1`, orgID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", mapPostgresError(err))
	}
	return count, nil
}
