package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/audit"
	"github.com/taskwell/taskwell/internal/auth"
	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/store"
)

// UserService applies user account mutations. Authentication (passwords,
// tokens, sessions) happens upstream; this service only manages the account
// records and their roles.
type UserService struct {
	store    *store.Store
	engine   *auth.Engine
	recorder audit.Recorder
}

// NewUserService creates a new user service.
func NewUserService(s *store.Store, engine *auth.Engine, recorder audit.Recorder) *UserService {
	return &UserService{
		store:    s,
		engine:   engine,
		recorder: recorder,
	}
}

// InviteUserInput is the payload for inviting a user into the principal's
// organization.
type InviteUserInput struct {
	Email     string
	FirstName string
	LastName  string
	Role      models.Role
}

// Invite creates a new user in the principal's organization. Admins may not
// mint Owner users; role changes after the fact are Owner-only.
func (s *UserService) Invite(ctx context.Context, principal models.Principal, in InviteUserInput) (*models.User, error) {
	if in.Email == "" {
		return nil, &ValidationError{Msg: "email is required"}
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid email address %q", in.Email)}
	}
	if !in.Role.Valid() {
		return nil, &ValidationError{Msg: fmt.Sprintf("unknown role %q", in.Role)}
	}

	now := time.Now()
	user := &models.User{
		ID:             uuid.Must(uuid.NewV7()),
		Email:          in.Email,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Role:           in.Role,
		OrganizationID: principal.OrganizationID,
		Status:         models.UserStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if d := s.engine.CanActOnUser(principal, user, auth.UserActionCreate); !d.Allowed {
		return nil, denied("invite user", d)
	}
	if d := s.engine.CanAssignRole(principal, in.Role); !d.Allowed {
		return nil, denied("invite user", d)
	}

	// The organization must exist; the principal's org can only be missing
	// if it was deleted under a stale token.
	if _, err := s.store.Organizations.Get(ctx, principal.OrganizationID); err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			return nil, &NotFoundError{Resource: "organization"}
		}
		return nil, err
	}

	if err := s.store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserAlreadyExists) {
			return nil, &ConflictError{Msg: fmt.Sprintf("a user with email %q already exists", in.Email)}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.recorder.Record(ctx, principal, audit.ActionCreate, audit.ResourceUser, user.ID,
		fmt.Sprintf("invited %s as %s", user.Email, user.Role))

	return user, nil
}

// Get retrieves a user the principal is allowed to read.
func (s *UserService) Get(ctx context.Context, principal models.Principal, userID uuid.UUID) (*models.User, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, err
	}

	if d := s.engine.CanActOnUser(principal, user, auth.UserActionRead); !d.Allowed {
		return nil, denied("read user", d)
	}

	return user, nil
}

// List returns all users in the principal's organization.
func (s *UserService) List(ctx context.Context, principal models.Principal) ([]*models.User, error) {
	if d := s.engine.CanAccessOrganization(principal, principal.OrganizationID); !d.Allowed {
		return nil, denied("list users", d)
	}
	if !auth.HasCapability(principal.Role, auth.CapUsersRead) {
		return nil, denied("list users", auth.Decision{Reason: auth.DenyInsufficientRole})
	}

	return s.store.Users.ListByOrg(ctx, principal.OrganizationID, nil)
}

// UpdateUserInput carries partial profile changes. Role and status changes
// have dedicated operations (ChangeRole, ToggleStatus) and are rejected here.
type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// Update applies profile changes to a user.
func (s *UserService) Update(ctx context.Context, principal models.Principal, userID uuid.UUID, in UpdateUserInput) (*models.User, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, err
	}

	if d := s.engine.CanActOnUser(principal, user, auth.UserActionUpdate); !d.Allowed {
		return nil, denied("update user", d)
	}

	if in.Email != nil {
		if _, err := mail.ParseAddress(*in.Email); err != nil {
			return nil, &ValidationError{Msg: fmt.Sprintf("invalid email address %q", *in.Email)}
		}
		user.Email = *in.Email
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}

	if err := s.store.Users.Update(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserAlreadyExists) {
			return nil, &ConflictError{Msg: fmt.Sprintf("a user with email %q already exists", user.Email)}
		}
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.recorder.Record(ctx, principal, audit.ActionUpdate, audit.ResourceUser, user.ID,
		fmt.Sprintf("updated profile of %s", user.Email))

	return user, nil
}

// ChangeRole sets a user's role. Owner-only; a principal may never change
// its own role.
func (s *UserService) ChangeRole(ctx context.Context, principal models.Principal, userID uuid.UUID, newRole models.Role) (*models.User, error) {
	if !newRole.Valid() {
		return nil, &ValidationError{Msg: fmt.Sprintf("unknown role %q", newRole)}
	}

	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, err
	}

	if d := s.engine.CanActOnUser(principal, user, auth.UserActionChangeRole); !d.Allowed {
		return nil, denied("change role", d)
	}

	oldRole := user.Role
	user.Role = newRole

	if err := s.store.Users.Update(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, fmt.Errorf("failed to change role: %w", err)
	}

	s.recorder.Record(ctx, principal, audit.ActionChangeRole, audit.ResourceUser, user.ID,
		fmt.Sprintf("changed role of %s from %s to %s", user.Email, oldRole, newRole))

	return user, nil
}

// ToggleStatus flips a user between active and inactive. A principal may
// never deactivate itself, and Admins may not touch Owners.
func (s *UserService) ToggleStatus(ctx context.Context, principal models.Principal, userID uuid.UUID) (*models.User, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, err
	}

	if d := s.engine.CanActOnUser(principal, user, auth.UserActionChangeStatus); !d.Allowed {
		return nil, denied("change user status", d)
	}

	if user.Status == models.UserStatusActive {
		user.Status = models.UserStatusInactive
	} else {
		user.Status = models.UserStatusActive
	}

	if err := s.store.Users.Update(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, fmt.Errorf("failed to toggle user status: %w", err)
	}

	s.recorder.Record(ctx, principal, audit.ActionToggleStatus, audit.ResourceUser, user.ID,
		fmt.Sprintf("set %s to %s", user.Email, user.Status))

	return user, nil
}

// Delete removes a user account. A principal may never delete itself, and
// Admins may not delete Owners.
func (s *UserService) Delete(ctx context.Context, principal models.Principal, userID uuid.UUID) error {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return &NotFoundError{Resource: "user"}
		}
		return err
	}

	if d := s.engine.CanActOnUser(principal, user, auth.UserActionDelete); !d.Allowed {
		return denied("delete user", d)
	}

	if err := s.store.Users.Delete(ctx, userID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return &NotFoundError{Resource: "user"}
		}
		if errors.Is(err, store.ErrUserReferenced) {
			return &ConflictError{Msg: "user has created tasks; reassign or delete them first"}
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.recorder.Record(ctx, principal, audit.ActionDelete, audit.ResourceUser, user.ID,
		fmt.Sprintf("deleted user %s", user.Email))

	return nil
}
