package models

import "time"

// Task is a unit of farm work tracked through the task lifecycle.
type Task struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	Status      string `gorm:"size:20;not null;default:pending;index"`
	Priority    string `gorm:"size:10;default:medium"`
	DueDate     *time.Time
	StartDate   *time.Time
	EndDate     *time.Time
	CompletedAt *time.Time
	CreatedByID uint `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskAssignment scopes a task to one user. Its status is tracked
// independently of the parent task.
type TaskAssignment struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	TaskID      uint   `gorm:"not null;index"`
	UserID      uint   `gorm:"not null;index"`
	AssignedBy  uint   `gorm:"not null"`
	Status      string `gorm:"size:20;not null;default:assigned"`
	AssignedAt  time.Time
	CompletedAt *time.Time
	Notes       string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskComment is a note left on a task.
type TaskComment struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	TaskID    uint   `gorm:"not null;index"`
	UserID    uint   `gorm:"not null"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskAttachment references a file stored outside the database.
type TaskAttachment struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	TaskID     uint   `gorm:"not null;index"`
	FileName   string `gorm:"size:255;not null"`
	FilePath   string `gorm:"type:text;not null"`
	FileType   string `gorm:"size:100"`
	FileSize   *int64
	UploadedBy uint `gorm:"not null"`
	UploadedAt time.Time
	UpdatedAt  time.Time
}
