package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is a stocked consumable or piece of equipment.
type InventoryItem struct {
	ID          uint                `gorm:"primaryKey;autoIncrement"`
	FarmID      *uint               `gorm:"index"`
	Name        string              `gorm:"size:100;not null;index"`
	Category    string              `gorm:"size:50;index"`
	Quantity    decimal.Decimal     `gorm:"type:decimal(10,2);not null"`
	Unit        string              `gorm:"size:20"`
	MinQuantity decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	ExpiryDate  *time.Time
	LastUpdated time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName keeps the original inventory table name.
func (InventoryItem) TableName() string { return "inventory" }
