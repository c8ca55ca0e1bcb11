package server

import (
	"net/http"
	"time"

	"github.com/taskwell/taskwell/internal/workflow"
)

type notificationResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) notifications(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	out := make([]notificationResponse, 0)
	for _, n := range s.feed.For(principal) {
		out = append(out, notificationResponse{
			ID:        n.ID,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// workflowStatuses describes the status graph: every status and its outgoing
// edges. Clients use this to render transition pickers without hardcoding
// the graph.
func (s *Server) workflowStatuses(w http.ResponseWriter, r *http.Request) {
	type statusInfo struct {
		Status      workflow.Status   `json:"status"`
		Transitions []workflow.Status `json:"transitions"`
	}

	out := make([]statusInfo, 0, len(workflow.Statuses))
	for _, status := range workflow.Statuses {
		out = append(out, statusInfo{
			Status:      status,
			Transitions: workflow.AvailableTransitions(status),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
