// Package seed loads development fixtures: a small organization tree with
// users in every role, a few tasks, and the static notification feed.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/store"
	"github.com/taskwell/taskwell/internal/workflow"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// rawFixtures mirrors the YAML layout. IDs stay strings here; Default parses
// and validates them into model types.
type rawFixtures struct {
	Organizations []struct {
		ID       string `yaml:"id"`
		Name     string `yaml:"name"`
		ParentID string `yaml:"parent_id"`
	} `yaml:"organizations"`
	Users []struct {
		ID             string `yaml:"id"`
		Email          string `yaml:"email"`
		FirstName      string `yaml:"first_name"`
		LastName       string `yaml:"last_name"`
		Role           string `yaml:"role"`
		OrganizationID string `yaml:"organization_id"`
	} `yaml:"users"`
	Tasks []struct {
		ID             string `yaml:"id"`
		Title          string `yaml:"title"`
		Description    string `yaml:"description"`
		Status         string `yaml:"status"`
		Category       string `yaml:"category"`
		Priority       int    `yaml:"priority"`
		CreatedByID    string `yaml:"created_by_id"`
		AssignedToID   string `yaml:"assigned_to_id"`
		OrganizationID string `yaml:"organization_id"`
	} `yaml:"tasks"`
	Notifications []struct {
		ID             string   `yaml:"id"`
		Message        string   `yaml:"message"`
		RoleVisibility []string `yaml:"role_visibility"`
		OrganizationID string   `yaml:"organization_id"`
		TargetUserID   string   `yaml:"target_user_id"`
	} `yaml:"notifications"`
}

// Fixtures is the parsed and validated fixture set.
type Fixtures struct {
	Organizations []*models.Organization
	Users         []*models.User
	Tasks         []*models.Task
	Notifications []models.Notification
}

// Default parses the embedded fixture set.
func Default() (*Fixtures, error) {
	var raw rawFixtures
	if err := yaml.Unmarshal(fixturesYAML, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}

	now := time.Now()
	f := &Fixtures{}

	for _, o := range raw.Organizations {
		id, err := uuid.Parse(o.ID)
		if err != nil {
			return nil, fmt.Errorf("organization %q: invalid id: %w", o.Name, err)
		}
		parentID, err := parseOptionalUUID(o.ParentID)
		if err != nil {
			return nil, fmt.Errorf("organization %q: invalid parent_id: %w", o.Name, err)
		}
		f.Organizations = append(f.Organizations, &models.Organization{
			OrgID:     id,
			Name:      o.Name,
			ParentID:  parentID,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	for _, u := range raw.Users {
		id, err := uuid.Parse(u.ID)
		if err != nil {
			return nil, fmt.Errorf("user %q: invalid id: %w", u.Email, err)
		}
		orgID, err := uuid.Parse(u.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("user %q: invalid organization_id: %w", u.Email, err)
		}
		role := models.Role(u.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("user %q: unknown role %q", u.Email, u.Role)
		}
		f.Users = append(f.Users, &models.User{
			ID:             id,
			Email:          u.Email,
			FirstName:      u.FirstName,
			LastName:       u.LastName,
			Role:           role,
			OrganizationID: orgID,
			Status:         models.UserStatusActive,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	for _, t := range raw.Tasks {
		id, err := uuid.Parse(t.ID)
		if err != nil {
			return nil, fmt.Errorf("task %q: invalid id: %w", t.Title, err)
		}
		createdByID, err := uuid.Parse(t.CreatedByID)
		if err != nil {
			return nil, fmt.Errorf("task %q: invalid created_by_id: %w", t.Title, err)
		}
		orgID, err := uuid.Parse(t.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("task %q: invalid organization_id: %w", t.Title, err)
		}
		assignedToID, err := parseOptionalUUID(t.AssignedToID)
		if err != nil {
			return nil, fmt.Errorf("task %q: invalid assigned_to_id: %w", t.Title, err)
		}
		status := workflow.Status(t.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("task %q: unknown status %q", t.Title, t.Status)
		}
		f.Tasks = append(f.Tasks, &models.Task{
			ID:             id,
			Title:          t.Title,
			Description:    t.Description,
			Status:         status,
			Category:       t.Category,
			Priority:       t.Priority,
			CreatedByID:    createdByID,
			AssignedToID:   assignedToID,
			OrganizationID: orgID,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	for _, n := range raw.Notifications {
		orgID, err := parseOptionalUUID(n.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("notification %q: invalid organization_id: %w", n.ID, err)
		}
		targetUserID, err := parseOptionalUUID(n.TargetUserID)
		if err != nil {
			return nil, fmt.Errorf("notification %q: invalid target_user_id: %w", n.ID, err)
		}
		roles := make([]models.Role, 0, len(n.RoleVisibility))
		for _, r := range n.RoleVisibility {
			role := models.Role(r)
			if !role.Valid() {
				return nil, fmt.Errorf("notification %q: unknown role %q", n.ID, r)
			}
			roles = append(roles, role)
		}
		f.Notifications = append(f.Notifications, models.Notification{
			ID:             n.ID,
			Message:        n.Message,
			RoleVisibility: roles,
			OrgID:          orgID,
			TargetUserID:   targetUserID,
			CreatedAt:      now,
		})
	}

	return f, nil
}

func parseOptionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// Apply writes the fixtures into the store. Entities that already exist are
// skipped, so applying twice is harmless.
func (f *Fixtures) Apply(ctx context.Context, s *store.Store) error {
	for _, org := range f.Organizations {
		if err := s.Organizations.Create(ctx, org); err != nil {
			if errors.Is(err, store.ErrOrganizationAlreadyExists) {
				continue
			}
			return fmt.Errorf("failed to seed organization %q: %w", org.Name, err)
		}
		log.Info().Str("org", org.Name).Msg("seeded organization")
	}

	for _, user := range f.Users {
		if err := s.Users.Create(ctx, user); err != nil {
			if errors.Is(err, store.ErrUserAlreadyExists) {
				continue
			}
			return fmt.Errorf("failed to seed user %q: %w", user.Email, err)
		}
		log.Info().Str("email", user.Email).Str("role", string(user.Role)).Msg("seeded user")
	}

	for _, task := range f.Tasks {
		if err := s.Tasks.Create(ctx, task); err != nil {
			if errors.Is(err, store.ErrTaskAlreadyExists) {
				continue
			}
			return fmt.Errorf("failed to seed task %q: %w", task.Title, err)
		}
		log.Info().Str("title", task.Title).Msg("seeded task")
	}

	return nil
}
