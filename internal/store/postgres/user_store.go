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

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new PostgreSQL-backed user store.
// It shares the connection pool with other stores.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const userColumns = `user_id, email, first_name, last_name, role, org_id, status, created_at, updated_at, last_login_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.Role,
		&u.OrganizationID,
		&u.Status,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, mapPostgresError(err)
	}
	return &u, nil
}

// Create creates a new user in the database.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			user_id, email, first_name, last_name, role, org_id, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := queriesFrom(ctx, s.pool).Exec(ctx, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Role,
		user.OrganizationID,
		user.Status,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrUserAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return store.ErrOrganizationNotFound
		}
		return fmt.Errorf("failed to create user: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("user_id", user.ID.String()).
		Str("org_id", user.OrganizationID.String()).
		Str("role", string(user.Role)).
		Msg("Created user")

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	return scanUser(queriesFrom(ctx, s.pool).QueryRow(ctx, query, userID))
}

// GetByEmail retrieves a user by email address.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(queriesFrom(ctx, s.pool).QueryRow(ctx, query, email))
}

// Update updates an existing user.
func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $2, first_name = $3, last_name = $4, role = $5,
		    org_id = $6, status = $7, updated_at = $8, last_login_at = $9
		WHERE user_id = $1
	`

	user.UpdatedAt = time.Now()

	tag, err := queriesFrom(ctx, s.pool).Exec(ctx, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Role,
		user.OrganizationID,
		user.Status,
		user.UpdatedAt,
		user.LastLoginAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to update user: %w", mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}

	return nil
}

// Delete removes a user by ID.
func (s *UserStore) Delete(ctx context.Context, userID uuid.UUID) error {
	tag, err := queriesFrom(ctx, s.pool).Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		// tasks.created_by restricts deletion; tasks.assigned_to is SET NULL.
		if isForeignKeyViolation(err) {
			return store.ErrUserReferenced
		}
		return fmt.Errorf("failed to delete user: %w", mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}

	log.Debug().Str("user_id", userID.String()).Msg("Deleted user")

	return nil
}

// ListByOrg returns all users in an organization, optionally filtered by role.
func (s *UserStore) ListByOrg(ctx context.Context, orgID uuid.UUID, role *models.Role) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE org_id = $1`
	args := []any{orgID}
	if role != nil {
		query += ` AND role = $2`
		args = append(args, *role)
	}
	query += ` ORDER BY created_at`

	rows, err := queriesFrom(ctx, s.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}

	return result, rows.Err()
}

// GetByOrgAndRole returns one user in the organization holding the given role.
func (s *UserStore) GetByOrgAndRole(ctx context.Context, orgID uuid.UUID, role models.Role) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE org_id = $1 AND role = $2 LIMIT 1`
	return scanUser(queriesFrom(ctx, s.pool).QueryRow(ctx, query, orgID, role))
}

// CountByOrgAndRole counts users in the organization holding the given role.
// Inside a transfer transaction the count observes the transaction's snapshot.
func (s *UserStore) CountByOrgAndRole(ctx context.Context, orgID uuid.UUID, role models.Role) (int, error) {
	var count int
	err := queriesFrom(ctx, s.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE org_id = $1 AND role = $2`, orgID, role,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", mapPostgresError(err))
	}
	return count, nil
}
