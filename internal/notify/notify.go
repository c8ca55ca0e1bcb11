// Package notify serves the notification feed. The feed is a static set
// loaded at startup; filtering happens per request against the principal's
// role and organization.
package notify

import (
	"slices"

	"github.com/taskwell/taskwell/internal/models"
)

// Feed filters a fixed notification set per principal.
//
// Visibility rules: Owners see the entire feed, cross-organization entries
// included. Admins see admin-visible notifications addressed to their
// organization or broadcast globally. Viewers see viewer-visible
// notifications addressed to them personally, regardless of organization.
type Feed struct {
	notifications []models.Notification
}

// NewFeed creates a feed over the given notification set. The slice is not
// copied; callers must not mutate it afterwards.
func NewFeed(notifications []models.Notification) *Feed {
	return &Feed{notifications: notifications}
}

// For returns the notifications visible to the principal, in feed order.
// Unknown roles see nothing; the authentication layer rejects them before
// this point anyway.
func (f *Feed) For(principal models.Principal) []models.Notification {
	switch principal.Role {
	case models.RoleOwner:
		out := make([]models.Notification, len(f.notifications))
		copy(out, f.notifications)
		return out
	case models.RoleAdmin:
		return f.filter(func(n models.Notification) bool {
			if !slices.Contains(n.RoleVisibility, models.RoleAdmin) {
				return false
			}
			return n.OrgID == nil || *n.OrgID == principal.OrganizationID
		})
	case models.RoleViewer:
		return f.filter(func(n models.Notification) bool {
			if !slices.Contains(n.RoleVisibility, models.RoleViewer) {
				return false
			}
			return n.TargetUserID != nil && *n.TargetUserID == principal.UserID
		})
	}
	return []models.Notification{}
}

func (f *Feed) filter(keep func(models.Notification) bool) []models.Notification {
	out := make([]models.Notification, 0, len(f.notifications))
	for _, n := range f.notifications {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}
