package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Animal is a single head of livestock. Parentage is expressed through
// ParentMaleID/ParentFemaleID; children are looked up, never embedded.
type Animal struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	FarmID         *uint  `gorm:"index"`
	TagNumber      string `gorm:"size:50;not null;uniqueIndex"`
	Name           string `gorm:"size:100"`
	Species        string `gorm:"size:50;not null"`
	Breed          string `gorm:"size:50"`
	Sex            string `gorm:"size:10"`
	BirthDate      *time.Time
	ParentMaleID   *uint `gorm:"index"`
	ParentFemaleID *uint `gorm:"index"`
	PurchaseDate   *time.Time
	PurchasePrice  decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	Weight         decimal.NullDecimal `gorm:"type:decimal(6,2)"`
	HealthStatus   string              `gorm:"size:50"`
	Status         string              `gorm:"size:20;default:active"`
	Notes          string              `gorm:"type:text"`
	LastFed        *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName keeps the livestock table name singular.
func (Animal) TableName() string { return "livestock" }
