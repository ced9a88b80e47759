package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Farm is the top-level owner of fields, inventory and livestock.
type Farm struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"`
	Name            string          `gorm:"size:100;not null"`
	Location        string          `gorm:"size:255;not null"`
	SizeHectares    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Description     string          `gorm:"type:text"`
	EstablishedDate *time.Time
	OwnerID         *uint `gorm:"index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Field is a plot of land on a farm.
type Field struct {
	ID             uint            `gorm:"primaryKey;autoIncrement"`
	FarmID         uint            `gorm:"not null;index"`
	Name           string          `gorm:"size:100;not null"`
	SizeHectares   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SoilType       string          `gorm:"size:50"`
	GPSCoordinates string          `gorm:"size:64"`
	Notes          string          `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Activity is a unit of field work (spraying, ploughing, ...).
type Activity struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	FarmID       *uint  `gorm:"index"`
	ActivityType string `gorm:"size:50;not null"`
	Description  string `gorm:"type:text;not null"`
	StartDate    *time.Time
	EndDate      *time.Time
	Status       string `gorm:"size:20;default:planned;index"`
	AssignedToID *uint
	Notes        string `gorm:"type:text"`
	CreatedByID  *uint
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ActivityField links an activity to one of the fields it covers.
type ActivityField struct {
	ActivityID uint `gorm:"primaryKey"`
	FieldID    uint `gorm:"primaryKey"`
	CreatedAt  time.Time
}
