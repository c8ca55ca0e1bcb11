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

// OrganizationStore implements store.OrganizationStore using PostgreSQL.
type OrganizationStore struct {
	pool *pgxpool.Pool
}

// NewOrganizationStore creates a new PostgreSQL-backed organization store.
// It shares the connection pool with other stores.
func NewOrganizationStore(pool *pgxpool.Pool) *OrganizationStore {
	return &OrganizationStore{pool: pool}
}

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	var org models.Organization
	err := row.Scan(
		&org.OrgID,
		&org.Name,
		&org.ParentID,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, mapPostgresError(err)
	}
	return &org, nil
}

// Create creates a new organization in the database.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (
			org_id, name, parent_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`

	_, err := queriesFrom(ctx, s.pool).Exec(ctx, query,
		org.OrgID,
		org.Name,
		org.ParentID,
		org.CreatedAt,
		org.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrOrganizationAlreadyExists
		}
		if isForeignKeyViolation(err) {
			// Parent organization doesn't exist
			return store.ErrOrganizationNotFound
		}
		return fmt.Errorf("failed to create organization: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("org_id", org.OrgID.String()).
		Str("name", org.Name).
		Msg("Created organization")

	return nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	query := `SELECT org_id, name, parent_id, created_at, updated_at FROM organizations WHERE org_id = $1`
	return scanOrganization(queriesFrom(ctx, s.pool).QueryRow(ctx, query, orgID))
}

// Update updates an existing organization.
func (s *OrganizationStore) Update(ctx context.Context, org *models.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2, parent_id = $3, updated_at = $4
		WHERE org_id = $1
	`

	org.UpdatedAt = time.Now()

	tag, err := queriesFrom(ctx, s.pool).Exec(ctx, query,
		org.OrgID,
		org.Name,
		org.ParentID,
		org.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update organization: %w", mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		return store.ErrOrganizationNotFound
	}

	return nil
}

// Delete deletes an organization by ID.
// Users and tasks in the organization are removed by FK cascade.
func (s *OrganizationStore) Delete(ctx context.Context, orgID uuid.UUID) error {
	tag, err := queriesFrom(ctx, s.pool).Exec(ctx, `DELETE FROM organizations WHERE org_id = $1`, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", mapPostgresError(err))
	}

	if tag.RowsAffected() == 0 {
		return store.ErrOrganizationNotFound
	}

	log.Debug().Str("org_id", orgID.String()).Msg("Deleted organization")

	return nil
}

// ListChildren returns the direct child organizations of the given organization.
func (s *OrganizationStore) ListChildren(ctx context.Context, orgID uuid.UUID) ([]*models.Organization, error) {
	query := `SELECT org_id, name, parent_id, created_at, updated_at FROM organizations WHERE parent_id = $1 ORDER BY name`

	rows, err := queriesFrom(ctx, s.pool).Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list child organizations: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var result []*models.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, org)
	}

	return result, rows.Err()
}
