package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/models"
)

type organizationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type organizationDetailsResponse struct {
	organizationResponse
	UserCount int                    `json:"user_count"`
	TaskCount int                    `json:"task_count"`
	Owner     *userResponse          `json:"owner,omitempty"`
	Children  []organizationResponse `json:"children"`
}

type auditEntryResponse struct {
	ID          uuid.UUID `json:"id"`
	Action      string    `json:"action"`
	Resource    string    `json:"resource"`
	ResourceID  uuid.UUID `json:"resource_id"`
	PrincipalID uuid.UUID `json:"principal_id"`
	Details     string    `json:"details,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func toOrganizationResponse(o *models.Organization) organizationResponse {
	return organizationResponse{
		ID:        o.OrgID,
		Name:      o.Name,
		ParentID:  o.ParentID,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func (s *Server) organizationDetails(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	details, err := s.orgs.Details(r.Context(), principal, principal.OrganizationID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := organizationDetailsResponse{
		organizationResponse: toOrganizationResponse(&details.Organization),
		UserCount:            details.UserCount,
		TaskCount:            details.TaskCount,
		Children:             make([]organizationResponse, 0, len(details.Children)),
	}
	if details.Owner != nil {
		owner := toUserResponse(details.Owner)
		resp.Owner = &owner
	}
	for _, child := range details.Children {
		resp.Children = append(resp.Children, toOrganizationResponse(child))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) renameOrganization(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	org, err := s.orgs.Rename(r.Context(), principal, principal.OrganizationID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrganizationResponse(org))
}

func (s *Server) deleteOrganization(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	if err := s.orgs.Delete(r.Context(), principal, principal.OrganizationID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) transferOwnership(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.orgs.TransferOwnership(r.Context(), principal, req.UserID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) auditLog(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeErrorStatus(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := s.orgs.AuditLog(r.Context(), principal, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryResponse{
			ID:          e.ID,
			Action:      e.Action,
			Resource:    e.Resource,
			ResourceID:  e.ResourceID,
			PrincipalID: e.PrincipalID,
			Details:     e.Details,
			Timestamp:   e.Timestamp,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
