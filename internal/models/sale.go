package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a customer transaction. TotalAmount is the sum of its items'
// TotalPrice and is recomputed whenever an item is written.
type Sale struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"`
	FarmID          *uint           `gorm:"index"`
	CustomerName    string          `gorm:"size:100"`
	CustomerContact string          `gorm:"size:100"`
	SaleDate        time.Time       `gorm:"not null"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	PaymentStatus   string          `gorm:"size:20;default:pending"`
	PaymentMethod   string          `gorm:"size:20"`
	Notes           string          `gorm:"type:text"`
	RecordedByID    *uint
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items []SaleItem `gorm:"foreignKey:SaleID"`
}

// SaleItem is one line of a sale. TotalPrice = Quantity × UnitPrice,
// computed on write. Quantity and UnitPrice carry two places, so the exact
// product fits four.
type SaleItem struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"`
	SaleID      uint            `gorm:"not null;index"`
	ItemType    string          `gorm:"size:20;not null"`
	ItemID      *uint
	Description string          `gorm:"type:text;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(20,4);not null"`
}

// Expense is money paid out by a farm.
type Expense struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"`
	FarmID        *uint           `gorm:"index"`
	Category      string          `gorm:"size:50;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Description   string          `gorm:"type:text"`
	Date          time.Time       `gorm:"not null"`
	ReceiptNumber string          `gorm:"size:50"`
	PaidTo        string          `gorm:"size:100"`
	PaymentMethod string          `gorm:"size:20"`
	RecordedByID  *uint
	CreatedAt     time.Time
}
