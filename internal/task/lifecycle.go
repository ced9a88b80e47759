package task

import (
	"time"

	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/models"
)

// Task statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Assignment statuses.
const (
	AssignmentAssigned   = "assigned"
	AssignmentInProgress = "in_progress"
	AssignmentCompleted  = "completed"
	AssignmentCancelled  = "cancelled"
)

// ValidTransitions maps each task status to its valid next statuses.
// completed and cancelled are terminal and have no entry.
var ValidTransitions = map[string][]string{
	StatusPending:    {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusInProgress, StatusCompleted, StatusCancelled},
}

// AssignmentTransitions maps each assignment status to its valid next statuses.
var AssignmentTransitions = map[string][]string{
	AssignmentAssigned:   {AssignmentInProgress, AssignmentCompleted, AssignmentCancelled},
	AssignmentInProgress: {AssignmentInProgress, AssignmentCompleted, AssignmentCancelled},
}

// Statuses lists every task status.
var Statuses = []string{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

// AssignmentStatuses lists every assignment status.
var AssignmentStatuses = []string{AssignmentAssigned, AssignmentInProgress, AssignmentCompleted, AssignmentCancelled}

// ParseStatus normalises a user-supplied task status. The hyphenated
// "in-progress" spelling is accepted.
func ParseStatus(s string) (string, error) {
	if s == "in-progress" {
		s = StatusInProgress
	}
	for _, v := range Statuses {
		if v == s {
			return s, nil
		}
	}
	return "", apperr.Invalid("task", "status", "must be one of pending, in_progress, completed, cancelled")
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status string) bool {
	_, ok := ValidTransitions[status]
	return !ok
}

// Apply moves t to status to at the given instant, stamping the lifecycle
// dates. It mutates t only when the transition is allowed.
func Apply(t *models.Task, to string, at time.Time) error {
	to, err := ParseStatus(to)
	if err != nil {
		return err
	}
	if !isValidTransition(ValidTransitions, t.Status, to) {
		return apperr.Transition("task", t.ID, t.Status, to)
	}
	if t.Status == to {
		return nil
	}

	switch to {
	case StatusInProgress:
		if t.StartDate == nil {
			t.StartDate = timePtr(at)
		}
	case StatusCompleted:
		t.CompletedAt = timePtr(at)
		t.EndDate = timePtr(at)
	}
	t.Status = to
	t.UpdatedAt = models.NextUpdate(t.UpdatedAt, at)
	return nil
}

// ApplyAssignment moves a to status to at the given instant.
func ApplyAssignment(a *models.TaskAssignment, to string, at time.Time) error {
	if !contains(AssignmentStatuses, to) {
		return apperr.Invalid("assignment", "status", "must be one of assigned, in_progress, completed, cancelled")
	}
	if !isValidTransition(AssignmentTransitions, a.Status, to) {
		return apperr.Transition("assignment", a.ID, a.Status, to)
	}
	if a.Status == to {
		return nil
	}
	if to == AssignmentCompleted {
		a.CompletedAt = timePtr(at)
	}
	a.Status = to
	a.UpdatedAt = models.NextUpdate(a.UpdatedAt, at)
	return nil
}

// isValidTransition checks whether a status transition is allowed.
func isValidTransition(table map[string][]string, from, to string) bool {
	valid, ok := table[from]
	if !ok {
		return false
	}
	return contains(valid, to)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func timePtr(t time.Time) *time.Time { return &t }

func nowIfZero(at time.Time) time.Time {
	if at.IsZero() {
		return time.Now()
	}
	return at
}
