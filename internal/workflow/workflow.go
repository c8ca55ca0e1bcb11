// Package workflow defines the task status graph: the closed set of task
// statuses and the fixed table of legal transitions between them. The graph
// is immutable after process start, so concurrent reads need no
// synchronization.
package workflow

// Status represents a task lifecycle state. Legality of movement between
// statuses is graph membership, not numeric comparison; there is no ordering.
type Status string

const (
	StatusNew                   Status = "new"
	StatusAwaitingApproval      Status = "awaiting_approval"
	StatusAwaitingBoardApproval Status = "awaiting_board_approval"
	StatusTodo                  Status = "todo"
	StatusInProgress            Status = "in_progress"
	StatusVerify                Status = "verify"
	StatusClosed                Status = "closed"
	StatusOnHold                Status = "on_hold"
	StatusWaitingForCustomer    Status = "waiting_for_customer"
	StatusWaitingForSupport     Status = "waiting_for_support"
)

// Statuses lists every status in declaration order.
var Statuses = []Status{
	StatusNew,
	StatusAwaitingApproval,
	StatusAwaitingBoardApproval,
	StatusTodo,
	StatusInProgress,
	StatusVerify,
	StatusClosed,
	StatusOnHold,
	StatusWaitingForCustomer,
	StatusWaitingForSupport,
}

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusAwaitingApproval, StatusAwaitingBoardApproval,
		StatusTodo, StatusInProgress, StatusVerify, StatusClosed,
		StatusOnHold, StatusWaitingForCustomer, StatusWaitingForSupport:
		return true
	}
	return false
}

// transitions is the complete directed edge table. Edges are declared in
// graph order; AvailableTransitions preserves this order. Reversibility is
// per-edge, never implied. CLOSED is terminal.
var transitions = map[Status][]Status{
	StatusNew:                   {StatusAwaitingApproval, StatusTodo, StatusOnHold},
	StatusAwaitingApproval:      {StatusAwaitingBoardApproval, StatusTodo, StatusOnHold},
	StatusAwaitingBoardApproval: {StatusTodo, StatusOnHold},
	StatusTodo:                  {StatusInProgress, StatusOnHold, StatusWaitingForSupport},
	StatusInProgress:            {StatusVerify, StatusOnHold, StatusWaitingForCustomer, StatusWaitingForSupport},
	StatusVerify:                {StatusClosed, StatusInProgress},
	StatusOnHold:                {StatusTodo, StatusInProgress},
	StatusWaitingForCustomer:    {StatusInProgress, StatusOnHold},
	StatusWaitingForSupport:     {StatusInProgress, StatusOnHold},
	StatusClosed:                {},
}

// IsValidTransition reports whether (from, to) is an edge in the graph.
// A self-transition is never valid; no-op updates bypass the graph entirely
// rather than being treated as a transition.
func IsValidTransition(from, to Status) bool {
	if from == to {
		return false
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AvailableTransitions returns the statuses reachable by one edge from the
// given status, in declaration order. The result is a copy; callers may
// modify it freely.
func AvailableTransitions(from Status) []Status {
	next := transitions[from]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}
