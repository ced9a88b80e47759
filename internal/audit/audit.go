// Package audit writes and reads the append-only audit log.
package audit

import (
	"encoding/json"
	"fmt"

	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionStatus = "status_change"
)

// Entry describes one audited mutation. Old and New are snapshots that
// are stored as JSON; nil is stored as an empty object.
type Entry struct {
	UserID    *uint
	Action    string
	Table     string
	RecordID  *uint
	Old       any
	New       any
	IPAddress string
	UserAgent string
}

// Filters narrows List.
type Filters struct {
	Table    string
	RecordID *uint
	UserID   *uint
	Action   string
}

// Record appends an entry to the audit log.
func Record(db *gorm.DB, e Entry) (*models.AuditLog, error) {
	if e.Action == "" {
		return nil, fmt.Errorf("audit: record: %w", apperr.Invalid("audit log", "action", "is required"))
	}
	if e.Table == "" {
		return nil, fmt.Errorf("audit: record: %w", apperr.Invalid("audit log", "table_name", "is required"))
	}
	oldJSON, err := snapshot(e.Old)
	if err != nil {
		return nil, fmt.Errorf("audit: record: old values: %w", err)
	}
	newJSON, err := snapshot(e.New)
	if err != nil {
		return nil, fmt.Errorf("audit: record: new values: %w", err)
	}

	entry := models.AuditLog{
		UserID:    e.UserID,
		Action:    e.Action,
		Table:     e.Table,
		RecordID:  e.RecordID,
		OldValues: oldJSON,
		NewValues: newJSON,
		IPAddress: e.IPAddress,
		UserAgent: e.UserAgent,
	}
	if err := db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("audit: record: %w", apperr.Persistence("audit create", err))
	}
	return &entry, nil
}

// List returns entries matching the filters in the order they were written.
func List(db *gorm.DB, f Filters) ([]models.AuditLog, error) {
	q := db.Model(&models.AuditLog{})
	if f.Table != "" {
		q = q.Where("table_name = ?", f.Table)
	}
	if f.RecordID != nil {
		q = q.Where("record_id = ?", *f.RecordID)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	var out []models.AuditLog
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("audit: list: %w", apperr.Persistence("audit list", err))
	}
	return out, nil
}

func snapshot(v any) (datatypes.JSON, error) {
	if v == nil {
		return datatypes.JSON("{}"), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, apperr.Invalid("audit log", "values", err.Error())
	}
	return datatypes.JSON(b), nil
}
