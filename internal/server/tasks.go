package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/service"
	"github.com/taskwell/taskwell/internal/workflow"
)

type taskResponse struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Status         workflow.Status `json:"status"`
	Category       string          `json:"category,omitempty"`
	Priority       int             `json:"priority"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	CreatedByID    uuid.UUID       `json:"created_by_id"`
	AssignedToID   *uuid.UUID      `json:"assigned_to_id,omitempty"`
	OrganizationID uuid.UUID       `json:"organization_id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func toTaskResponse(t *models.Task) taskResponse {
	return taskResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.Status,
		Category:       t.Category,
		Priority:       t.Priority,
		DueDate:        t.DueDate,
		CreatedByID:    t.CreatedByID,
		AssignedToID:   t.AssignedToID,
		OrganizationID: t.OrganizationID,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	tasks, err := s.tasks.List(r.Context(), principal)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req struct {
		Title        string          `json:"title"`
		Description  string          `json:"description"`
		Status       workflow.Status `json:"status"`
		Category     string          `json:"category"`
		Priority     int             `json:"priority"`
		DueDate      *time.Time      `json:"due_date"`
		AssignedToID *uuid.UUID      `json:"assigned_to_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := s.tasks.Create(r.Context(), principal, service.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Category:     req.Category,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTaskResponse(task))
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := s.tasks.Get(r.Context(), principal, taskID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid task id")
		return
	}

	// assigned_to_id is kept raw so an explicit null (clear the assignment)
	// can be told apart from an absent field (leave it alone).
	var req struct {
		Title        *string          `json:"title"`
		Description  *string          `json:"description"`
		Status       *workflow.Status `json:"status"`
		Category     *string          `json:"category"`
		Priority     *int             `json:"priority"`
		DueDate      *time.Time       `json:"due_date"`
		AssignedToID json.RawMessage  `json:"assigned_to_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Category:    req.Category,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}
	if len(req.AssignedToID) > 0 {
		if string(req.AssignedToID) == "null" {
			cleared := uuid.Nil
			in.AssignedToID = &cleared
		} else {
			var assignee uuid.UUID
			if err := json.Unmarshal(req.AssignedToID, &assignee); err != nil {
				writeErrorStatus(w, http.StatusBadRequest, "invalid assigned_to_id")
				return
			}
			in.AssignedToID = &assignee
		}
	}

	task, err := s.tasks.Update(r.Context(), principal, taskID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := s.tasks.Delete(r.Context(), principal, taskID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) taskTransitions(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	taskID, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid task id")
		return
	}

	next, err := s.tasks.AvailableTransitions(r.Context(), principal, taskID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]workflow.Status{"transitions": next})
}
