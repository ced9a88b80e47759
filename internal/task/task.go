// Package task implements the task and assignment lifecycle.
package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/models"
	"github.com/zulandar/shamba/internal/schema"
	"gorm.io/gorm"
)

// Priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var taskSchema = schema.Entity{
	Name: "task",
	Fields: []schema.Field{
		{Name: "title", Kind: schema.String, Required: true, MaxLen: 200},
		{Name: "description", Kind: schema.String},
		{Name: "priority", Kind: schema.String, OneOf: []string{PriorityLow, PriorityMedium, PriorityHigh}},
		{Name: "due_date", Kind: schema.Time},
		{Name: "created_by_id", Kind: schema.Ref, Required: true},
	},
}

// mutableTaskSchema covers the fields Update may touch.
var mutableTaskSchema = schema.Entity{
	Name:   "task",
	Fields: taskSchema.Fields[:4],
}

// CreateOpts holds parameters for creating a new task.
type CreateOpts struct {
	Title       string
	CreatedBy   uint
	Description string
	Priority    string // low, medium (default), high
	DueDate     *time.Time
}

// UpdateOpts names the task fields that may change after creation. Nil
// pointers leave a field untouched; ClearDueDate removes the due date.
type UpdateOpts struct {
	Title        *string
	Description  *string
	Priority     *string
	DueDate      *time.Time
	ClearDueDate bool
}

// ListFilters holds optional filters for listing tasks.
type ListFilters struct {
	Status    string
	Priority  string
	CreatedBy uint
	DueBefore *time.Time
}

// ParseDueDate accepts an ISO date (2006-01-02) or an RFC 3339 timestamp.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.Invalid("task", "due_date", fmt.Sprintf("%q is not an ISO date", s))
}

// Create creates a new pending task.
func Create(db *gorm.DB, opts CreateOpts) (*models.Task, error) {
	if opts.Priority == "" {
		opts.Priority = PriorityMedium
	}
	if err := taskSchema.Validate(schema.Values{
		"title":         opts.Title,
		"description":   opts.Description,
		"priority":      opts.Priority,
		"due_date":      opts.DueDate,
		"created_by_id": opts.CreatedBy,
	}); err != nil {
		return nil, fmt.Errorf("task: create: %w", err)
	}
	if err := requireUser(db, opts.CreatedBy); err != nil {
		return nil, fmt.Errorf("task: create: %w", err)
	}

	t := models.Task{
		Title:       strings.TrimSpace(opts.Title),
		Description: opts.Description,
		Status:      StatusPending,
		Priority:    opts.Priority,
		DueDate:     opts.DueDate,
		CreatedByID: opts.CreatedBy,
	}
	if err := db.Create(&t).Error; err != nil {
		return nil, fmt.Errorf("task: create: %w", apperr.Persistence("task create", err))
	}
	return &t, nil
}

// Get retrieves a task by ID.
func Get(db *gorm.DB, id uint) (*models.Task, error) {
	var t models.Task
	if err := db.Where("id = ?", id).First(&t).Error; err != nil {
		return nil, fmt.Errorf("task: get %d: %w", id, apperr.Storage("task get", "task", id, err))
	}
	return &t, nil
}

// List returns tasks matching the given filters, ordered by id.
func List(db *gorm.DB, filters ListFilters) ([]models.Task, error) {
	q := db.Model(&models.Task{})

	if filters.Status != "" {
		status, err := ParseStatus(filters.Status)
		if err != nil {
			return nil, fmt.Errorf("task: list: %w", err)
		}
		q = q.Where("status = ?", status)
	}
	if filters.Priority != "" {
		q = q.Where("priority = ?", filters.Priority)
	}
	if filters.CreatedBy != 0 {
		q = q.Where("created_by_id = ?", filters.CreatedBy)
	}
	if filters.DueBefore != nil {
		q = q.Where("due_date IS NOT NULL AND due_date < ?", *filters.DueBefore)
	}

	var tasks []models.Task
	if err := q.Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task: list: %w", apperr.Persistence("task list", err))
	}
	return tasks, nil
}

// Update changes the mutable descriptive fields of a task. Status is
// changed only through UpdateStatus.
func Update(db *gorm.DB, id uint, opts UpdateOpts) (*models.Task, error) {
	values := schema.Values{}
	updates := map[string]interface{}{}
	if opts.Title != nil {
		values["title"] = *opts.Title
		updates["title"] = strings.TrimSpace(*opts.Title)
	}
	if opts.Description != nil {
		values["description"] = *opts.Description
		updates["description"] = *opts.Description
	}
	if opts.Priority != nil {
		values["priority"] = *opts.Priority
		updates["priority"] = *opts.Priority
	}
	if opts.DueDate != nil {
		values["due_date"] = *opts.DueDate
		updates["due_date"] = *opts.DueDate
	} else if opts.ClearDueDate {
		updates["due_date"] = nil
	}
	if err := mutableTaskSchema.ValidatePartial(values); err != nil {
		return nil, fmt.Errorf("task: update %d: %w", id, err)
	}

	var out *models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		t, err := Get(tx, id)
		if err != nil {
			return err
		}
		updates["updated_at"] = models.NextUpdate(t.UpdatedAt, time.Now())
		if err := tx.Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("task: update %d: %w", id, apperr.Persistence("task update", err))
		}
		out, err = Get(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus applies a lifecycle transition to a task at the given
// instant (zero means now). The write is conditional on the status the
// transition was validated against, so two racing callers cannot both win.
func UpdateStatus(db *gorm.DB, id uint, to string, at time.Time) (*models.Task, error) {
	at = nowIfZero(at)

	t, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	from := t.Status
	if err := Apply(t, to, at); err != nil {
		return nil, fmt.Errorf("task: update status %d: %w", id, err)
	}
	if t.Status == from {
		return t, nil
	}

	res := db.Model(&models.Task{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":       t.Status,
			"start_date":   t.StartDate,
			"end_date":     t.EndDate,
			"completed_at": t.CompletedAt,
			"updated_at":   t.UpdatedAt,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("task: update status %d: %w", id, apperr.Persistence("task update status", res.Error))
	}
	if res.RowsAffected == 0 {
		current, err := Get(db, id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("task: update status %d: %w", id, apperr.Transition("task", id, current.Status, t.Status))
	}
	return t, nil
}

// Start moves a task to in_progress.
func Start(db *gorm.DB, id uint) (*models.Task, error) {
	return UpdateStatus(db, id, StatusInProgress, time.Time{})
}

// Complete marks a task completed at the given instant (zero means now).
func Complete(db *gorm.DB, id uint, at time.Time) (*models.Task, error) {
	return UpdateStatus(db, id, StatusCompleted, at)
}

// Cancel marks a task cancelled.
func Cancel(db *gorm.DB, id uint) (*models.Task, error) {
	return UpdateStatus(db, id, StatusCancelled, time.Time{})
}

func requireUser(db *gorm.DB, id uint) error {
	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperr.Persistence("user lookup", err)
	}
	if count == 0 {
		return apperr.NotFound("user", id)
	}
	return nil
}
