package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/notify"
	"github.com/taskwell/taskwell/internal/store"
	"github.com/taskwell/taskwell/internal/store/memory"
)

const testSecret = "test-secret"

type testServer struct {
	handler http.Handler
	store   *store.Store

	org    *models.Organization
	owner  *models.User
	admin  *models.User
	viewer *models.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	s := memory.NewStore()

	now := time.Now()
	org := &models.Organization{
		OrgID:     uuid.Must(uuid.NewV7()),
		Name:      "Acme",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.Organizations.Create(ctx, org))

	mkUser := func(email string, role models.Role) *models.User {
		u := &models.User{
			ID:             uuid.Must(uuid.NewV7()),
			Email:          email,
			Role:           role,
			OrganizationID: org.OrgID,
			Status:         models.UserStatusActive,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		require.NoError(t, s.Users.Create(ctx, u))
		return u
	}

	owner := mkUser("owner@acme.test", models.RoleOwner)
	admin := mkUser("admin@acme.test", models.RoleAdmin)
	viewer := mkUser("viewer@acme.test", models.RoleViewer)

	feed := notify.NewFeed([]models.Notification{
		{
			ID:             "maintenance",
			Message:        "Maintenance window tonight",
			RoleVisibility: []models.Role{models.RoleOwner, models.RoleAdmin},
			CreatedAt:      now,
		},
	})

	srv := NewServer(Config{JWTSecret: testSecret}, s, feed)

	return &testServer{
		handler: srv.Handler(zerolog.Nop()),
		store:   s,
		org:     org,
		owner:   owner,
		admin:   admin,
		viewer:  viewer,
	}
}

func (ts *testServer) request(t *testing.T, method, path string, as *models.User, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if as != nil {
		token, err := IssueToken(as.ID, testSecret, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestServerHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServerAuthentication(t *testing.T) {
	ts := newTestServer(t)

	// No token at all.
	rec := ts.request(t, http.MethodGet, "/v1/tasks", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token.
	req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Token for a deleted user.
	ghost := &models.User{ID: uuid.Must(uuid.NewV7())}
	rec = ts.request(t, http.MethodGet, "/v1/tasks", ghost, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServerDeactivatedAccount(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	ts.viewer.Status = models.UserStatusInactive
	require.NoError(t, ts.store.Users.Update(ctx, ts.viewer))

	rec := ts.request(t, http.MethodGet, "/v1/tasks", ts.viewer, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServerTaskLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/v1/tasks", ts.admin, map[string]any{
		"title":    "Ship it",
		"category": "release",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID     uuid.UUID `json:"id"`
		Status string    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "todo", created.Status)

	// todo -> in_progress is legal.
	rec = ts.request(t, http.MethodPatch, "/v1/tasks/"+created.ID.String(), ts.admin, map[string]any{
		"status": "in_progress",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// in_progress -> closed is not an edge.
	rec = ts.request(t, http.MethodPatch, "/v1/tasks/"+created.ID.String(), ts.admin, map[string]any{
		"status": "closed",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Transition listing.
	rec = ts.request(t, http.MethodGet, "/v1/tasks/"+created.ID.String()+"/transitions", ts.viewer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var transitions struct {
		Transitions []string `json:"transitions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &transitions))
	require.Equal(t, []string{"verify", "on_hold", "waiting_for_customer", "waiting_for_support"}, transitions.Transitions)

	// Viewers cannot delete.
	rec = ts.request(t, http.MethodDelete, "/v1/tasks/"+created.ID.String(), ts.viewer, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.request(t, http.MethodDelete, "/v1/tasks/"+created.ID.String(), ts.admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.request(t, http.MethodGet, "/v1/tasks/"+created.ID.String(), ts.admin, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerTaskAssignment(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/v1/tasks", ts.admin, map[string]any{
		"title":          "Review PR",
		"assigned_to_id": ts.viewer.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID           uuid.UUID  `json:"id"`
		AssignedToID *uuid.UUID `json:"assigned_to_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotNil(t, created.AssignedToID)
	require.Equal(t, ts.viewer.ID, *created.AssignedToID)

	// An update that doesn't mention the field leaves the assignment alone.
	rec = ts.request(t, http.MethodPatch, "/v1/tasks/"+created.ID.String(), ts.admin, map[string]any{
		"title": "Review the PR",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated struct {
		AssignedToID *uuid.UUID `json:"assigned_to_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.NotNil(t, updated.AssignedToID)

	// An explicit null clears it.
	rec = ts.request(t, http.MethodPatch, "/v1/tasks/"+created.ID.String(), ts.admin, map[string]any{
		"assigned_to_id": nil,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated.AssignedToID = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Nil(t, updated.AssignedToID)

	// Garbage values are rejected.
	rec = ts.request(t, http.MethodPatch, "/v1/tasks/"+created.ID.String(), ts.admin, map[string]any{
		"assigned_to_id": "not-a-uuid",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServerUserManagement(t *testing.T) {
	ts := newTestServer(t)

	// Admin cannot mint an owner.
	rec := ts.request(t, http.MethodPost, "/v1/users", ts.admin, map[string]any{
		"email": "sneaky@acme.test",
		"role":  "owner",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Duplicate email conflicts.
	rec = ts.request(t, http.MethodPost, "/v1/users", ts.admin, map[string]any{
		"email": ts.viewer.Email,
		"role":  "viewer",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Owner changes a role.
	rec = ts.request(t, http.MethodPost, "/v1/users/"+ts.viewer.ID.String()+"/role", ts.owner, map[string]any{
		"role": "admin",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Admin cannot.
	rec = ts.request(t, http.MethodPost, "/v1/users/"+ts.viewer.ID.String()+"/role", ts.admin, map[string]any{
		"role": "viewer",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServerOrganization(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/v1/organization", ts.viewer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var details struct {
		Name      string `json:"name"`
		UserCount int    `json:"user_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	require.Equal(t, "Acme", details.Name)
	require.Equal(t, 3, details.UserCount)

	// Rename is owner-only.
	rec = ts.request(t, http.MethodPatch, "/v1/organization", ts.admin, map[string]any{"name": "Evil Corp"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.request(t, http.MethodPatch, "/v1/organization", ts.owner, map[string]any{"name": "Acme Corp"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Transfer ownership, then the old owner can no longer rename.
	rec = ts.request(t, http.MethodPost, "/v1/organization/transfer-ownership", ts.owner, map[string]any{
		"user_id": ts.admin.ID,
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.request(t, http.MethodPatch, "/v1/organization", ts.owner, map[string]any{"name": "Mine Again"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.request(t, http.MethodPatch, "/v1/organization", ts.admin, map[string]any{"name": "Theirs Now"})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServerNotifications(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/v1/notifications", ts.owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var owned []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &owned))
	require.Len(t, owned, 1)

	rec = ts.request(t, http.MethodGet, "/v1/notifications", ts.viewer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var viewed []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &viewed))
	require.Empty(t, viewed)
}

func TestServerWorkflowStatuses(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/v1/workflow/statuses", ts.viewer, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var statuses []struct {
		Status      string   `json:"status"`
		Transitions []string `json:"transitions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statuses))
	require.Len(t, statuses, 10)

	byStatus := make(map[string][]string)
	for _, s := range statuses {
		byStatus[s.Status] = s.Transitions
	}
	require.Empty(t, byStatus["closed"])
	require.Equal(t, []string{"awaiting_approval", "todo", "on_hold"}, byStatus["new"])
}

func TestServerAuditEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/v1/tasks", ts.admin, map[string]any{"title": "tracked"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.request(t, http.MethodGet, "/v1/organization/audit?limit=10", ts.owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	require.Equal(t, "CREATE", entries[0]["action"])

	// Viewers cannot read the audit log.
	rec = ts.request(t, http.MethodGet, "/v1/organization/audit", ts.viewer, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
