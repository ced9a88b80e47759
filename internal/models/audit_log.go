package models

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrAuditLogImmutable is returned when something tries to modify or
// delete an audit entry.
var ErrAuditLogImmutable = errors.New("audit log entries are append-only")

// AuditLog is an append-only record of a mutation.
type AuditLog struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	UserID    *uint  `gorm:"index"`
	Action    string `gorm:"size:50;not null"`
	Table     string `gorm:"column:table_name;size:50;not null;index"`
	RecordID  *uint
	OldValues datatypes.JSON
	NewValues datatypes.JSON
	IPAddress string `gorm:"size:45"`
	UserAgent string `gorm:"type:text"`
	CreatedAt time.Time
}

// TableName keeps the original audit_log table name.
func (AuditLog) TableName() string { return "audit_log" }

// BeforeUpdate rejects every update.
func (AuditLog) BeforeUpdate(*gorm.DB) error { return ErrAuditLogImmutable }

// BeforeDelete rejects every delete.
func (AuditLog) BeforeDelete(*gorm.DB) error { return ErrAuditLogImmutable }
