package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell/internal/auth"
	"github.com/taskwell/taskwell/internal/models"
)

func TestUserServiceInvite(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	user, err := e.users.Invite(ctx, e.admin.Principal(), InviteUserInput{
		Email:     "new@acme.test",
		FirstName: "New",
		LastName:  "Hire",
		Role:      models.RoleViewer,
	})
	require.NoError(t, err)
	require.Equal(t, e.org.OrgID, user.OrganizationID, "invitee lands in the inviter's organization")
	require.Equal(t, models.UserStatusActive, user.Status)

	got, err := e.store.Users.GetByEmail(ctx, "new@acme.test")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestUserServiceInviteDenied(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	tests := []struct {
		name       string
		principal  models.Principal
		input      InviteUserInput
		wantReason auth.DenyReason
	}{
		{
			name:       "viewer cannot invite",
			principal:  e.viewer.Principal(),
			input:      InviteUserInput{Email: "x@acme.test", Role: models.RoleViewer},
			wantReason: auth.DenyInsufficientRole,
		},
		{
			name:       "admin cannot mint an owner",
			principal:  e.admin.Principal(),
			input:      InviteUserInput{Email: "x@acme.test", Role: models.RoleOwner},
			wantReason: auth.DenyOwnerElevation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.users.Invite(ctx, tt.principal, tt.input)
			var aerr *AuthzError
			require.ErrorAs(t, err, &aerr)
			require.Equal(t, tt.wantReason, aerr.Reason)
		})
	}

	// Owner may mint another owner.
	_, err := e.users.Invite(ctx, e.owner.Principal(), InviteUserInput{
		Email: "cofounder@acme.test",
		Role:  models.RoleOwner,
	})
	require.NoError(t, err)
}

func TestUserServiceInviteValidation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	var verr *ValidationError

	_, err := e.users.Invite(ctx, e.owner.Principal(), InviteUserInput{Role: models.RoleViewer})
	require.ErrorAs(t, err, &verr)

	_, err = e.users.Invite(ctx, e.owner.Principal(), InviteUserInput{Email: "not-an-email", Role: models.RoleViewer})
	require.ErrorAs(t, err, &verr)

	_, err = e.users.Invite(ctx, e.owner.Principal(), InviteUserInput{Email: "x@acme.test", Role: "superuser"})
	require.ErrorAs(t, err, &verr)

	// Duplicate email conflicts.
	var cerr *ConflictError
	_, err = e.users.Invite(ctx, e.owner.Principal(), InviteUserInput{Email: e.viewer.Email, Role: models.RoleViewer})
	require.ErrorAs(t, err, &cerr)
}

func TestUserServiceChangeRole(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	// Owner promotes the viewer to admin.
	updated, err := e.users.ChangeRole(ctx, e.owner.Principal(), e.viewer.ID, models.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, updated.Role)

	// Admins cannot change roles at all, even downward.
	_, err = e.users.ChangeRole(ctx, e.admin.Principal(), e.viewer.ID, models.RoleViewer)
	var aerr *AuthzError
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, auth.DenyInsufficientRole, aerr.Reason)

	// An owner cannot change their own role.
	_, err = e.users.ChangeRole(ctx, e.owner.Principal(), e.owner.ID, models.RoleAdmin)
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, auth.DenySelfAction, aerr.Reason)

	// Cross-org role changes are denied before any role logic runs.
	_, err = e.users.ChangeRole(ctx, e.outsider.Principal(), e.viewer.ID, models.RoleAdmin)
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, auth.DenyCrossOrganization, aerr.Reason)
}

func TestUserServiceAdminCannotTouchOwner(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	var aerr *AuthzError

	_, err := e.users.ToggleStatus(ctx, e.admin.Principal(), e.owner.ID)
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, auth.DenyOwnerProtected, aerr.Reason)

	err = e.users.Delete(ctx, e.admin.Principal(), e.owner.ID)
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, auth.DenyOwnerProtected, aerr.Reason)

	name := "Re"
	_, err = e.users.Update(ctx, e.admin.Principal(), e.owner.ID, UpdateUserInput{FirstName: &name})
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, auth.DenyOwnerProtected, aerr.Reason)

	// Reading the owner is still fine.
	got, err := e.users.Get(ctx, e.admin.Principal(), e.owner.ID)
	require.NoError(t, err)
	require.Equal(t, e.owner.ID, got.ID)
}

func TestUserServiceToggleStatus(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	updated, err := e.users.ToggleStatus(ctx, e.admin.Principal(), e.viewer.ID)
	require.NoError(t, err)
	require.Equal(t, models.UserStatusInactive, updated.Status)
	require.False(t, updated.IsActive())

	updated, err = e.users.ToggleStatus(ctx, e.admin.Principal(), e.viewer.ID)
	require.NoError(t, err)
	require.Equal(t, models.UserStatusActive, updated.Status)

	// Never against yourself.
	_, err = e.users.ToggleStatus(ctx, e.admin.Principal(), e.admin.ID)
	var aerr *AuthzError
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, auth.DenySelfAction, aerr.Reason)
}

func TestUserServiceDelete(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	require.NoError(t, e.users.Delete(ctx, e.admin.Principal(), e.viewer.ID))

	_, err := e.users.Get(ctx, e.admin.Principal(), e.viewer.ID)
	var nerr *NotFoundError
	require.ErrorAs(t, err, &nerr)

	// Self-deletion is denied for every role.
	err = e.users.Delete(ctx, e.owner.Principal(), e.owner.ID)
	var aerr *AuthzError
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, auth.DenySelfAction, aerr.Reason)
}

func TestUserServiceDeleteTaskAuthorConflicts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	task, err := e.tasks.Create(ctx, e.admin.Principal(), CreateTaskInput{Title: "write onboarding docs"})
	require.NoError(t, err)

	err = e.users.Delete(ctx, e.owner.Principal(), e.admin.ID)
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)

	// With the authored task removed the deletion goes through.
	require.NoError(t, e.tasks.Delete(ctx, e.admin.Principal(), task.ID))
	require.NoError(t, e.users.Delete(ctx, e.owner.Principal(), e.admin.ID))
}

func TestUserServiceUpdateProfile(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	first := "Vera"
	email := "vera@acme.test"
	updated, err := e.users.Update(ctx, e.admin.Principal(), e.viewer.ID, UpdateUserInput{
		FirstName: &first,
		Email:     &email,
	})
	require.NoError(t, err)
	require.Equal(t, "Vera", updated.FirstName)
	require.Equal(t, "vera@acme.test", updated.Email)

	// Changing to an email already in use conflicts.
	taken := e.owner.Email
	_, err = e.users.Update(ctx, e.admin.Principal(), e.viewer.ID, UpdateUserInput{Email: &taken})
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
}

func TestUserServiceList(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	users, err := e.users.List(ctx, e.admin.Principal())
	require.NoError(t, err)
	require.Len(t, users, 3)
	for _, u := range users {
		require.Equal(t, e.org.OrgID, u.OrganizationID)
	}

	// Viewers hold no users:read capability.
	_, err = e.users.List(ctx, e.viewer.Principal())
	var aerr *AuthzError
	require.ErrorAs(t, err, &aerr)
}

func TestUserServiceGetNotFound(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.users.Get(ctx, e.admin.Principal(), uuid.Must(uuid.NewV7()))
	var nerr *NotFoundError
	require.ErrorAs(t, err, &nerr)
}
