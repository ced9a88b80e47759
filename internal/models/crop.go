package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Crop describes a plantable crop variety.
type Crop struct {
	ID                uint   `gorm:"primaryKey;autoIncrement"`
	Name              string `gorm:"size:100;not null"`
	Variety           string `gorm:"size:100"`
	ScientificName    string `gorm:"size:100"`
	Description       string `gorm:"type:text"`
	GrowthDays        *int
	WaterRequirements string `gorm:"size:50"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Planting is one sowing of a crop on a field.
type Planting struct {
	ID                  uint      `gorm:"primaryKey;autoIncrement"`
	FieldID             uint      `gorm:"not null;index"`
	CropID              uint      `gorm:"not null;index"`
	PlantingDate        time.Time `gorm:"not null"`
	ExpectedHarvestDate *time.Time
	ActualHarvestDate   *time.Time
	QuantityPlanted     *int
	Status              string `gorm:"size:20;default:planted;index"`
	Notes               string `gorm:"type:text"`
	CreatedByID         *uint
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Harvest records yield taken from a planting.
type Harvest struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"`
	PlantingID    uint            `gorm:"not null;index"`
	HarvestDate   time.Time       `gorm:"not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	QualityRating *int
	Notes         string `gorm:"type:text"`
	RecordedByID  *uint
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
