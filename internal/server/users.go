package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/service"
)

type userResponse struct {
	ID             uuid.UUID         `json:"id"`
	Email          string            `json:"email"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	Role           models.Role       `json:"role"`
	OrganizationID uuid.UUID         `json:"organization_id"`
	Status         models.UserStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
		Status:         u.Status,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	users, err := s.users.List(r.Context(), principal)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) inviteUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req struct {
		Email     string      `json:"email"`
		FirstName string      `json:"first_name"`
		LastName  string      `json:"last_name"`
		Role      models.Role `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.Invite(r.Context(), principal, service.InviteUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := s.users.Get(r.Context(), principal, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req struct {
		Email     *string `json:"email"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.Update(r.Context(), principal, userID, service.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := s.users.Delete(r.Context(), principal, userID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) changeUserRole(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req struct {
		Role models.Role `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.ChangeRole(r.Context(), principal, userID, req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) toggleUserStatus(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := s.users.ToggleStatus(r.Context(), principal, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
