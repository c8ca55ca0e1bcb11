package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell/internal/audit"
	"github.com/taskwell/taskwell/internal/auth"
	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/store"
	"github.com/taskwell/taskwell/internal/store/memory"
)

// env is a fully wired in-memory service stack with one seeded organization
// holding one owner, one admin and one viewer, plus a second organization
// with its own owner for cross-tenant cases.
type env struct {
	store *store.Store

	tasks *TaskService
	users *UserService
	orgs  *OrganizationService

	org      *models.Organization
	owner    *models.User
	admin    *models.User
	viewer   *models.User
	otherOrg *models.Organization
	outsider *models.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	s := memory.NewStore()
	engine := auth.NewEngine()
	recorder := audit.NewStoreRecorder(s.Audit)

	e := &env{
		store: s,
		tasks: NewTaskService(s, engine, recorder),
		users: NewUserService(s, engine, recorder),
		orgs:  NewOrganizationService(s, engine, recorder),
	}

	e.org = seedOrg(t, ctx, s, "Acme")
	e.owner = seedUser(t, ctx, s, e.org.OrgID, "owner@acme.test", models.RoleOwner)
	e.admin = seedUser(t, ctx, s, e.org.OrgID, "admin@acme.test", models.RoleAdmin)
	e.viewer = seedUser(t, ctx, s, e.org.OrgID, "viewer@acme.test", models.RoleViewer)

	e.otherOrg = seedOrg(t, ctx, s, "Globex")
	e.outsider = seedUser(t, ctx, s, e.otherOrg.OrgID, "owner@globex.test", models.RoleOwner)

	return e
}

func seedOrg(t *testing.T, ctx context.Context, s *store.Store, name string) *models.Organization {
	t.Helper()

	now := time.Now()
	org := &models.Organization{
		OrgID:     uuid.Must(uuid.NewV7()),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.Organizations.Create(ctx, org))

	return org
}

func seedUser(t *testing.T, ctx context.Context, s *store.Store, orgID uuid.UUID, email string, role models.Role) *models.User {
	t.Helper()

	now := time.Now()
	user := &models.User{
		ID:             uuid.Must(uuid.NewV7()),
		Email:          email,
		FirstName:      "Test",
		LastName:       "User",
		Role:           role,
		OrganizationID: orgID,
		Status:         models.UserStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, s.Users.Create(ctx, user))

	return user
}
