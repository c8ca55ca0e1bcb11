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
)

// OrganizationService applies organization lifecycle mutations: renaming,
// ownership transfer and deletion. All of these are Owner-gated and scoped to
// the principal's own organization.
type OrganizationService struct {
	store    *store.Store
	engine   *auth.Engine
	recorder audit.Recorder
}

// NewOrganizationService creates a new organization service.
func NewOrganizationService(s *store.Store, engine *auth.Engine, recorder audit.Recorder) *OrganizationService {
	return &OrganizationService{
		store:    s,
		engine:   engine,
		recorder: recorder,
	}
}

// Details returns the organization together with user/task counts, the
// current owner and its direct children. Any member of the organization may
// read it.
func (s *OrganizationService) Details(ctx context.Context, principal models.Principal, orgID uuid.UUID) (*models.OrganizationDetails, error) {
	if d := s.engine.CanAccessOrganization(principal, orgID); !d.Allowed {
		return nil, denied("read organization", d)
	}

	org, err := s.store.Organizations.Get(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			return nil, &NotFoundError{Resource: "organization"}
		}
		return nil, err
	}

	users, err := s.store.Users.ListByOrg(ctx, orgID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	taskCount, err := s.store.Tasks.CountByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	children, err := s.store.Organizations.ListChildren(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list child organizations: %w", err)
	}

	details := &models.OrganizationDetails{
		Organization: *org,
		UserCount:    len(users),
		TaskCount:    taskCount,
		Children:     children,
	}

	owner, err := s.store.Users.GetByOrgAndRole(ctx, orgID, models.RoleOwner)
	switch {
	case err == nil:
		details.Owner = owner
	case errors.Is(err, store.ErrUserNotFound):
		// Organizations can be temporarily ownerless mid-migration; the
		// read model tolerates it.
	default:
		return nil, err
	}

	return details, nil
}

// Rename changes the organization's name. Owner-only.
func (s *OrganizationService) Rename(ctx context.Context, principal models.Principal, orgID uuid.UUID, name string) (*models.Organization, error) {
	if name == "" {
		return nil, &ValidationError{Msg: "organization name is required"}
	}

	if d := s.engine.CanAccessOrganization(principal, orgID); !d.Allowed {
		return nil, denied("rename organization", d)
	}
	if !auth.HasCapability(principal.Role, auth.CapOrgManage) {
		return nil, denied("rename organization", auth.Decision{Reason: auth.DenyInsufficientRole})
	}

	org, err := s.store.Organizations.Get(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			return nil, &NotFoundError{Resource: "organization"}
		}
		return nil, err
	}

	oldName := org.Name
	org.Name = name
	org.UpdatedAt = time.Now()

	if err := s.store.Organizations.Update(ctx, org); err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			return nil, &NotFoundError{Resource: "organization"}
		}
		return nil, fmt.Errorf("failed to rename organization: %w", err)
	}

	s.recorder.Record(ctx, principal, audit.ActionRename, audit.ResourceOrganization, org.OrgID,
		fmt.Sprintf("renamed organization from %q to %q", oldName, name))

	return org, nil
}

// TransferOwnership makes the target user the organization's Owner and
// demotes the current principal to Admin. Both role changes happen in one
// transaction; concurrent transfers for the same organization serialize at
// the store, so exactly one wins.
func (s *OrganizationService) TransferOwnership(ctx context.Context, principal models.Principal, targetUserID uuid.UUID) error {
	target, err := s.store.Users.Get(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return &NotFoundError{Resource: "user"}
		}
		return err
	}

	// Owner-only, same organization, never self. The role-change gate
	// covers all three.
	if d := s.engine.CanActOnUser(principal, target, auth.UserActionChangeRole); !d.Allowed {
		return denied("transfer ownership", d)
	}
	if !auth.HasCapability(principal.Role, auth.CapOrgManage) {
		return denied("transfer ownership", auth.Decision{Reason: auth.DenyInsufficientRole})
	}

	err = s.store.Tx.InTx(ctx, func(ctx context.Context) error {
		// Re-read both rows inside the transaction so a concurrent
		// transfer can't promote against stale state.
		target, err := s.store.Users.Get(ctx, targetUserID)
		if err != nil {
			return err
		}
		current, err := s.store.Users.Get(ctx, principal.UserID)
		if err != nil {
			return err
		}
		if current.Role != models.RoleOwner {
			return &AuthzError{Action: "transfer ownership", Reason: auth.DenyInsufficientRole}
		}

		target.Role = models.RoleOwner
		if err := s.store.Users.Update(ctx, target); err != nil {
			return err
		}

		current.Role = models.RoleAdmin
		return s.store.Users.Update(ctx, current)
	})
	if err != nil {
		var authzErr *AuthzError
		if errors.As(err, &authzErr) {
			return err
		}
		if errors.Is(err, store.ErrUserNotFound) {
			return &NotFoundError{Resource: "user"}
		}
		return fmt.Errorf("failed to transfer ownership: %w", err)
	}

	s.recorder.Record(ctx, principal, audit.ActionTransferOwnership, audit.ResourceOrganization, principal.OrganizationID,
		fmt.Sprintf("transferred ownership to %s", target.Email))

	return nil
}

// Delete removes the organization and, through the store, everything in it.
// It is refused while more than one Owner exists; ownership must be
// consolidated first so exactly one person is accountable for the deletion.
func (s *OrganizationService) Delete(ctx context.Context, principal models.Principal, orgID uuid.UUID) error {
	if d := s.engine.CanAccessOrganization(principal, orgID); !d.Allowed {
		return denied("delete organization", d)
	}
	if !auth.HasCapability(principal.Role, auth.CapOrgManage) {
		return denied("delete organization", auth.Decision{Reason: auth.DenyInsufficientRole})
	}

	org, err := s.store.Organizations.Get(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			return &NotFoundError{Resource: "organization"}
		}
		return err
	}

	ownerCount, err := s.store.Users.CountByOrgAndRole(ctx, orgID, models.RoleOwner)
	if err != nil {
		return fmt.Errorf("failed to count owners: %w", err)
	}
	if ownerCount > 1 {
		return &ConflictError{Msg: "organization has multiple owners, transfer ownership first"}
	}

	if err := s.store.Organizations.Delete(ctx, orgID); err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			return &NotFoundError{Resource: "organization"}
		}
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	s.recorder.Record(ctx, principal, audit.ActionDelete, audit.ResourceOrganization, orgID,
		fmt.Sprintf("deleted organization %q", org.Name))

	return nil
}

// AuditLog returns recent audit entries for the principal's organization.
// Owners and Admins only; the audit trail reveals every member's activity.
func (s *OrganizationService) AuditLog(ctx context.Context, principal models.Principal, limit int) ([]*models.AuditEntry, error) {
	if d := s.engine.CanAccessOrganization(principal, principal.OrganizationID); !d.Allowed {
		return nil, denied("read audit log", d)
	}
	if !auth.HasCapability(principal.Role, auth.CapAuditRead) {
		return nil, denied("read audit log", auth.Decision{Reason: auth.DenyInsufficientRole})
	}

	orgID := principal.OrganizationID
	return s.store.Audit.List(ctx, store.ListAuditOptions{OrgID: &orgID, Limit: limit})
}
