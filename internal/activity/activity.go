// Package activity records field work and the fields each activity covers.
package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/models"
	"github.com/zulandar/shamba/internal/schema"
	"gorm.io/gorm"
)

// Activity statuses.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// ValidTransitions maps each activity status to its valid next statuses.
var ValidTransitions = map[string][]string{
	StatusPlanned:    {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

var statuses = []string{StatusPlanned, StatusInProgress, StatusCompleted, StatusCancelled}

var activitySchema = schema.Entity{
	Name: "activity",
	Fields: []schema.Field{
		{Name: "activity_type", Kind: schema.String, Required: true, MaxLen: 50},
		{Name: "description", Kind: schema.String, Required: true},
		{Name: "start_date", Kind: schema.Time},
		{Name: "end_date", Kind: schema.Time},
		{Name: "farm_id", Kind: schema.Ref},
		{Name: "assigned_to_id", Kind: schema.Ref},
	},
}

// CreateOpts holds parameters for planning an activity.
type CreateOpts struct {
	FarmID       *uint
	ActivityType string
	Description  string
	StartDate    *time.Time
	EndDate      *time.Time
	AssignedToID *uint
	Notes        string
	CreatedByID  *uint
	FieldIDs     []uint
}

// ListFilters holds optional filters for listing activities.
type ListFilters struct {
	FarmID       *uint
	Status       string
	ActivityType string
}

// Create plans an activity and links the given fields to it.
func Create(db *gorm.DB, opts CreateOpts) (*models.Activity, error) {
	if err := activitySchema.Validate(schema.Values{
		"activity_type":  opts.ActivityType,
		"description":    opts.Description,
		"start_date":     opts.StartDate,
		"end_date":       opts.EndDate,
		"farm_id":        opts.FarmID,
		"assigned_to_id": opts.AssignedToID,
	}); err != nil {
		return nil, fmt.Errorf("activity: create: %w", err)
	}
	if opts.StartDate != nil && opts.EndDate != nil && opts.EndDate.Before(*opts.StartDate) {
		return nil, fmt.Errorf("activity: create: %w", apperr.Invalid("activity", "end_date", "must not precede the start date"))
	}

	var out *models.Activity
	err := db.Transaction(func(tx *gorm.DB) error {
		if opts.FarmID != nil {
			if err := exists(tx, &models.Farm{}, "farm", *opts.FarmID); err != nil {
				return fmt.Errorf("activity: create: %w", err)
			}
		}
		if opts.AssignedToID != nil {
			if err := exists(tx, &models.User{}, "user", *opts.AssignedToID); err != nil {
				return fmt.Errorf("activity: create: %w", err)
			}
		}
		a := models.Activity{
			FarmID:       opts.FarmID,
			ActivityType: strings.TrimSpace(opts.ActivityType),
			Description:  opts.Description,
			StartDate:    opts.StartDate,
			EndDate:      opts.EndDate,
			Status:       StatusPlanned,
			AssignedToID: opts.AssignedToID,
			Notes:        opts.Notes,
			CreatedByID:  opts.CreatedByID,
		}
		if err := tx.Create(&a).Error; err != nil {
			return fmt.Errorf("activity: create: %w", apperr.Persistence("activity create", err))
		}
		for _, fid := range opts.FieldIDs {
			if err := link(tx, &a, fid); err != nil {
				return fmt.Errorf("activity: create: %w", err)
			}
		}
		out = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func Get(db *gorm.DB, id uint) (*models.Activity, error) {
	var a models.Activity
	if err := db.Where("id = ?", id).First(&a).Error; err != nil {
		return nil, fmt.Errorf("activity: get %d: %w", id, apperr.Storage("activity get", "activity", id, err))
	}
	return &a, nil
}

func List(db *gorm.DB, filters ListFilters) ([]models.Activity, error) {
	q := db.Model(&models.Activity{})
	if filters.FarmID != nil {
		q = q.Where("farm_id = ?", *filters.FarmID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.ActivityType != "" {
		q = q.Where("activity_type = ?", filters.ActivityType)
	}
	var out []models.Activity
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("activity: list: %w", apperr.Persistence("activity list", err))
	}
	return out, nil
}

// SetStatus moves an activity along its lifecycle at the given instant
// (zero means now). Starting stamps the start date if unset; completing
// stamps the end date.
func SetStatus(db *gorm.DB, id uint, to string, at time.Time) (*models.Activity, error) {
	if at.IsZero() {
		at = time.Now()
	}
	if !contains(statuses, to) {
		return nil, fmt.Errorf("activity: set status %d: %w", id, apperr.Invalid("activity", "status", "must be one of planned, in_progress, completed, cancelled"))
	}
	a, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if !contains(ValidTransitions[a.Status], to) {
		return nil, fmt.Errorf("activity: set status %d: %w", id, apperr.Transition("activity", id, a.Status, to))
	}

	from := a.Status
	switch to {
	case StatusInProgress:
		if a.StartDate == nil {
			a.StartDate = &at
		}
	case StatusCompleted:
		a.EndDate = &at
	}
	a.Status = to
	a.UpdatedAt = models.NextUpdate(a.UpdatedAt, at)

	res := db.Model(&models.Activity{}).Where("id = ? AND status = ?", id, from).Updates(map[string]interface{}{
		"status":     a.Status,
		"start_date": a.StartDate,
		"end_date":   a.EndDate,
		"updated_at": a.UpdatedAt,
	})
	if res.Error != nil {
		return nil, fmt.Errorf("activity: set status %d: %w", id, apperr.Persistence("activity update", res.Error))
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("activity: set status %d: %w", id, apperr.Transition("activity", id, from, to))
	}
	return a, nil
}

// LinkField adds a field to the set an activity covers. When the activity
// belongs to a farm, the field must too.
func LinkField(db *gorm.DB, activityID, fieldID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		a, err := Get(tx, activityID)
		if err != nil {
			return err
		}
		if err := link(tx, a, fieldID); err != nil {
			return fmt.Errorf("activity: link field: %w", err)
		}
		return nil
	})
}

// UnlinkField removes a field from an activity.
func UnlinkField(db *gorm.DB, activityID, fieldID uint) error {
	res := db.Where("activity_id = ? AND field_id = ?", activityID, fieldID).Delete(&models.ActivityField{})
	if res.Error != nil {
		return fmt.Errorf("activity: unlink field: %w", apperr.Persistence("activity field delete", res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("activity: unlink field: %w", apperr.NotFound("activity field", fmt.Sprintf("%d/%d", activityID, fieldID)))
	}
	return nil
}

// Fields returns the fields an activity covers, ordered by id.
func Fields(db *gorm.DB, activityID uint) ([]models.Field, error) {
	var out []models.Field
	if err := db.Joins("JOIN activity_fields ON activity_fields.field_id = fields.id").
		Where("activity_fields.activity_id = ?", activityID).
		Order("fields.id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("activity: fields of %d: %w", activityID, apperr.Persistence("activity field list", err))
	}
	return out, nil
}

func link(tx *gorm.DB, a *models.Activity, fieldID uint) error {
	var f models.Field
	if err := tx.Where("id = ?", fieldID).First(&f).Error; err != nil {
		return apperr.Storage("field get", "field", fieldID, err)
	}
	if a.FarmID != nil && f.FarmID != *a.FarmID {
		return apperr.Invalid("activity", "field_id", fmt.Sprintf("field %d belongs to farm %d, not %d", f.ID, f.FarmID, *a.FarmID))
	}
	var count int64
	if err := tx.Model(&models.ActivityField{}).Where("activity_id = ? AND field_id = ?", a.ID, fieldID).Count(&count).Error; err != nil {
		return apperr.Persistence("activity field lookup", err)
	}
	if count > 0 {
		return apperr.Invalid("activity", "field_id", fmt.Sprintf("field %d is already linked", fieldID))
	}
	if err := tx.Create(&models.ActivityField{ActivityID: a.ID, FieldID: fieldID}).Error; err != nil {
		return apperr.Persistence("activity field create", err)
	}
	return nil
}

func exists(tx *gorm.DB, model interface{}, entity string, id uint) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperr.Persistence(entity+" lookup", err)
	}
	if count == 0 {
		return apperr.NotFound(entity, id)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
