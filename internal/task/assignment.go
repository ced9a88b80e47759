package task

import (
	"fmt"
	"time"

	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/models"
	"gorm.io/gorm"
)

// Assign creates an assignment of task to user, recorded as made by
// assigner. Completing an assignment never completes the task; callers
// reconcile the two if they want to.
func Assign(db *gorm.DB, taskID, userID, assignerID uint, notes string) (*models.TaskAssignment, error) {
	var out *models.TaskAssignment
	err := db.Transaction(func(tx *gorm.DB) error {
		t, err := Get(tx, taskID)
		if err != nil {
			return fmt.Errorf("task: assign: %w", err)
		}
		if IsTerminal(t.Status) {
			return fmt.Errorf("task: assign: %w", apperr.Invalid("assignment", "task_id", fmt.Sprintf("task %d is %s", taskID, t.Status)))
		}
		if err := requireUser(tx, userID); err != nil {
			return fmt.Errorf("task: assign: %w", err)
		}
		if err := requireUser(tx, assignerID); err != nil {
			return fmt.Errorf("task: assign: %w", err)
		}

		var active int64
		if err := tx.Model(&models.TaskAssignment{}).
			Where("task_id = ? AND user_id = ? AND status IN ?", taskID, userID, []string{AssignmentAssigned, AssignmentInProgress}).
			Count(&active).Error; err != nil {
			return fmt.Errorf("task: assign: %w", apperr.Persistence("assignment lookup", err))
		}
		if active > 0 {
			return fmt.Errorf("task: assign: %w", apperr.Invalid("assignment", "user_id", fmt.Sprintf("user %d already holds an active assignment on task %d", userID, taskID)))
		}

		a := models.TaskAssignment{
			TaskID:     taskID,
			UserID:     userID,
			AssignedBy: assignerID,
			Status:     AssignmentAssigned,
			AssignedAt: time.Now(),
			Notes:      notes,
		}
		if err := tx.Create(&a).Error; err != nil {
			return fmt.Errorf("task: assign: %w", apperr.Persistence("assignment create", err))
		}
		out = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetAssignment retrieves an assignment by ID.
func GetAssignment(db *gorm.DB, id uint) (*models.TaskAssignment, error) {
	var a models.TaskAssignment
	if err := db.Where("id = ?", id).First(&a).Error; err != nil {
		return nil, fmt.Errorf("task: get assignment %d: %w", id, apperr.Storage("assignment get", "assignment", id, err))
	}
	return &a, nil
}

// Assignments returns every assignment of a task, oldest first.
func Assignments(db *gorm.DB, taskID uint) ([]models.TaskAssignment, error) {
	if _, err := Get(db, taskID); err != nil {
		return nil, err
	}
	var out []models.TaskAssignment
	if err := db.Where("task_id = ?", taskID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("task: assignments of %d: %w", taskID, apperr.Persistence("assignment list", err))
	}
	return out, nil
}

// UserAssignments returns a user's assignments, optionally filtered by status.
func UserAssignments(db *gorm.DB, userID uint, status string) ([]models.TaskAssignment, error) {
	q := db.Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.TaskAssignment
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("task: assignments for user %d: %w", userID, apperr.Persistence("assignment list", err))
	}
	return out, nil
}

// UpdateAssignmentStatus applies a lifecycle transition to an assignment.
func UpdateAssignmentStatus(db *gorm.DB, id uint, to string, at time.Time) (*models.TaskAssignment, error) {
	at = nowIfZero(at)

	a, err := GetAssignment(db, id)
	if err != nil {
		return nil, err
	}
	from := a.Status
	if err := ApplyAssignment(a, to, at); err != nil {
		return nil, fmt.Errorf("task: update assignment %d: %w", id, err)
	}
	if a.Status == from {
		return a, nil
	}

	res := db.Model(&models.TaskAssignment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":       a.Status,
			"completed_at": a.CompletedAt,
			"updated_at":   a.UpdatedAt,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("task: update assignment %d: %w", id, apperr.Persistence("assignment update", res.Error))
	}
	if res.RowsAffected == 0 {
		current, err := GetAssignment(db, id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("task: update assignment %d: %w", id, apperr.Transition("assignment", id, current.Status, a.Status))
	}
	return a, nil
}
