package models

import "time"

// User is a person operating the farm system.
type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	FirstName    string `gorm:"size:50;not null"`
	LastName     string `gorm:"size:50;not null"`
	Email        string `gorm:"size:100;not null;uniqueIndex"`
	Phone        string `gorm:"size:20"`
	PasswordHash string `gorm:"size:255;not null"`
	RoleID       *uint  `gorm:"index"`
	IsActive     bool   `gorm:"default:true"`
	LastLogin    *time.Time
	HireDate     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRole is a named role users can hold.
type UserRole struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:50;not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	IsSystem    bool   `gorm:"default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission is a named capability that can be granted to roles.
type Permission struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:100;not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
}

// RolePermission grants a permission to a role. The composite key keeps
// each pair unique.
type RolePermission struct {
	RoleID       uint `gorm:"primaryKey"`
	PermissionID uint `gorm:"primaryKey"`
	CreatedAt    time.Time
}
