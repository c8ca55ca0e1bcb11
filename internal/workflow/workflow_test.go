package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		name           string
		from           Status
		to             Status
		expectedResult bool
	}{
		{
			name:           "new to awaiting approval",
			from:           StatusNew,
			to:             StatusAwaitingApproval,
			expectedResult: true,
		},
		{
			name:           "new to todo",
			from:           StatusNew,
			to:             StatusTodo,
			expectedResult: true,
		},
		{
			name:           "new cannot jump to in progress",
			from:           StatusNew,
			to:             StatusInProgress,
			expectedResult: false,
		},
		{
			name:           "awaiting approval escalates to board approval",
			from:           StatusAwaitingApproval,
			to:             StatusAwaitingBoardApproval,
			expectedResult: true,
		},
		{
			name:           "board approval cannot go back to awaiting approval",
			from:           StatusAwaitingBoardApproval,
			to:             StatusAwaitingApproval,
			expectedResult: false,
		},
		{
			name:           "todo to in progress",
			from:           StatusTodo,
			to:             StatusInProgress,
			expectedResult: true,
		},
		{
			name:           "in progress to verify",
			from:           StatusInProgress,
			to:             StatusVerify,
			expectedResult: true,
		},
		{
			name:           "verify back to in progress",
			from:           StatusVerify,
			to:             StatusInProgress,
			expectedResult: true,
		},
		{
			name:           "verify to closed",
			from:           StatusVerify,
			to:             StatusClosed,
			expectedResult: true,
		},
		{
			name:           "verify cannot go to todo",
			from:           StatusVerify,
			to:             StatusTodo,
			expectedResult: false,
		},
		{
			name:           "closed is terminal",
			from:           StatusClosed,
			to:             StatusTodo,
			expectedResult: false,
		},
		{
			name:           "closed cannot reopen to in progress",
			from:           StatusClosed,
			to:             StatusInProgress,
			expectedResult: false,
		},
		{
			name:           "on hold resumes to todo",
			from:           StatusOnHold,
			to:             StatusTodo,
			expectedResult: true,
		},
		{
			name:           "waiting for customer resumes to in progress",
			from:           StatusWaitingForCustomer,
			to:             StatusInProgress,
			expectedResult: true,
		},
		{
			name:           "waiting for support resumes to in progress",
			from:           StatusWaitingForSupport,
			to:             StatusInProgress,
			expectedResult: true,
		},
		{
			name:           "waiting for customer cannot close directly",
			from:           StatusWaitingForCustomer,
			to:             StatusClosed,
			expectedResult: false,
		},
		{
			name:           "unknown status has no transitions",
			from:           Status("bogus"),
			to:             StatusTodo,
			expectedResult: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expectedResult, IsValidTransition(tt.from, tt.to))
		})
	}
}

func TestIsValidTransitionSelfNeverValid(t *testing.T) {
	for _, s := range Statuses {
		require.False(t, IsValidTransition(s, s), "self-transition should be invalid for %s", s)
	}
}

func TestIsValidTransitionMatchesEdgeTable(t *testing.T) {
	// Every (from, to) pair not in the declared edge table must be rejected.
	for _, from := range Statuses {
		allowed := make(map[Status]bool)
		for _, to := range AvailableTransitions(from) {
			allowed[to] = true
		}
		for _, to := range Statuses {
			require.Equal(t, from != to && allowed[to], IsValidTransition(from, to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestAvailableTransitions(t *testing.T) {
	tests := []struct {
		name     string
		from     Status
		expected []Status
	}{
		{
			name:     "new",
			from:     StatusNew,
			expected: []Status{StatusAwaitingApproval, StatusTodo, StatusOnHold},
		},
		{
			name:     "awaiting approval",
			from:     StatusAwaitingApproval,
			expected: []Status{StatusAwaitingBoardApproval, StatusTodo, StatusOnHold},
		},
		{
			name:     "awaiting board approval",
			from:     StatusAwaitingBoardApproval,
			expected: []Status{StatusTodo, StatusOnHold},
		},
		{
			name:     "todo",
			from:     StatusTodo,
			expected: []Status{StatusInProgress, StatusOnHold, StatusWaitingForSupport},
		},
		{
			name:     "in progress",
			from:     StatusInProgress,
			expected: []Status{StatusVerify, StatusOnHold, StatusWaitingForCustomer, StatusWaitingForSupport},
		},
		{
			name:     "verify",
			from:     StatusVerify,
			expected: []Status{StatusClosed, StatusInProgress},
		},
		{
			name:     "on hold",
			from:     StatusOnHold,
			expected: []Status{StatusTodo, StatusInProgress},
		},
		{
			name:     "waiting for customer",
			from:     StatusWaitingForCustomer,
			expected: []Status{StatusInProgress, StatusOnHold},
		},
		{
			name:     "waiting for support",
			from:     StatusWaitingForSupport,
			expected: []Status{StatusInProgress, StatusOnHold},
		},
		{
			name:     "closed is terminal",
			from:     StatusClosed,
			expected: []Status{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, AvailableTransitions(tt.from))
		})
	}
}

func TestAvailableTransitionsStableOrder(t *testing.T) {
	// Repeated queries without graph mutation yield identical ordered results.
	for _, s := range Statuses {
		first := AvailableTransitions(s)
		second := AvailableTransitions(s)
		require.Equal(t, first, second)
	}
}

func TestAvailableTransitionsReturnsCopy(t *testing.T) {
	out := AvailableTransitions(StatusNew)
	require.NotEmpty(t, out)
	out[0] = StatusClosed

	require.Equal(t, StatusAwaitingApproval, AvailableTransitions(StatusNew)[0])
}

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses {
		require.True(t, s.Valid())
	}
	require.False(t, Status("").Valid())
	require.False(t, Status("deleted").Valid())
}
