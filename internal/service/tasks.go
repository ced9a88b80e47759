package service

import (
	"strings"
	"time"

	"github.com/zulandar/shamba/internal/audit"
	"github.com/zulandar/shamba/internal/models"
	"github.com/zulandar/shamba/internal/task"
	"gorm.io/gorm"
)

// AddTaskInput is the input of add-task. DueDate is an ISO date string.
type AddTaskInput struct {
	Title       string
	Description string
	DueDate     string
	Priority    string
}

// AddTask creates a pending task and returns its id.
func (s *Service) AddTask(in AddTaskInput) (uint, error) {
	opts := task.CreateOpts{
		Title:       in.Title,
		Description: in.Description,
		Priority:    strings.ToLower(strings.TrimSpace(in.Priority)),
		CreatedBy:   s.Operator.ID,
	}
	if strings.TrimSpace(in.DueDate) != "" {
		due, err := task.ParseDueDate(in.DueDate)
		if err != nil {
			return 0, err
		}
		opts.DueDate = &due
	}

	var id uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		t, err := task.Create(tx, opts)
		if err != nil {
			return err
		}
		id = t.ID
		return s.record(tx, audit.ActionCreate, "tasks", t.ID, nil, taskSnapshot(t))
	})
	if err != nil {
		return 0, logged("add task", err)
	}
	return id, nil
}

// ListTasks returns tasks, optionally only those with the given status.
func (s *Service) ListTasks(status string) ([]models.Task, error) {
	tasks, err := task.List(s.DB, task.ListFilters{Status: status})
	return tasks, logged("list tasks", err)
}

// CompleteTask marks a task completed now.
func (s *Service) CompleteTask(id uint) (*models.Task, error) {
	return s.setTaskStatus(id, task.StatusCompleted)
}

// StartTask moves a task to in_progress.
func (s *Service) StartTask(id uint) (*models.Task, error) {
	return s.setTaskStatus(id, task.StatusInProgress)
}

// CancelTask cancels a task.
func (s *Service) CancelTask(id uint) (*models.Task, error) {
	return s.setTaskStatus(id, task.StatusCancelled)
}

// SetTaskStatus applies any lifecycle transition to a task.
func (s *Service) SetTaskStatus(id uint, status string) (*models.Task, error) {
	return s.setTaskStatus(id, status)
}

func (s *Service) setTaskStatus(id uint, to string) (*models.Task, error) {
	var out *models.Task
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		before, err := task.Get(tx, id)
		if err != nil {
			return err
		}
		after, err := task.UpdateStatus(tx, id, to, s.now())
		if err != nil {
			return err
		}
		out = after
		if after.Status == before.Status {
			return nil
		}
		return s.record(tx, audit.ActionStatus, "tasks", id,
			map[string]any{"status": before.Status},
			map[string]any{"status": after.Status, "completed_at": after.CompletedAt})
	})
	if err != nil {
		return nil, logged("set task status", err)
	}
	return out, nil
}

// AssignTask assigns a task to a user on the operator's authority.
func (s *Service) AssignTask(taskID, userID uint, notes string) (*models.TaskAssignment, error) {
	var out *models.TaskAssignment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		a, err := task.Assign(tx, taskID, userID, s.Operator.ID, notes)
		if err != nil {
			return err
		}
		out = a
		return s.record(tx, audit.ActionCreate, "task_assignments", a.ID, nil,
			map[string]any{"task_id": taskID, "user_id": userID, "status": a.Status})
	})
	if err != nil {
		return nil, logged("assign task", err)
	}
	return out, nil
}

func taskSnapshot(t *models.Task) map[string]any {
	var due *string
	if t.DueDate != nil {
		d := t.DueDate.Format(time.DateOnly)
		due = &d
	}
	return map[string]any{
		"title":    t.Title,
		"status":   t.Status,
		"priority": t.Priority,
		"due_date": due,
	}
}
