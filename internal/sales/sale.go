// Package sales records sales with their line items, and expenses.
//
// Line totals and sale totals are derived and stored at write time:
// callers supply quantity and unit price, never a total.
package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/models"
	"github.com/zulandar/shamba/internal/schema"
	"gorm.io/gorm"
)

// Payment statuses.
const (
	PaymentPending  = "pending"
	PaymentPartial  = "partial"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// Item types.
const (
	ItemCrop      = "crop"
	ItemLivestock = "livestock"
	ItemInventory = "inventory"
	ItemOther     = "other"
)

var paymentStatuses = []string{PaymentPending, PaymentPartial, PaymentPaid, PaymentRefunded}

var saleSchema = schema.Entity{
	Name: "sale",
	Fields: []schema.Field{
		{Name: "sale_date", Kind: schema.Time, Required: true},
		{Name: "customer_name", Kind: schema.String, MaxLen: 100},
		{Name: "customer_contact", Kind: schema.String, MaxLen: 100},
		{Name: "payment_status", Kind: schema.String, OneOf: paymentStatuses},
		{Name: "payment_method", Kind: schema.String, MaxLen: 20},
		{Name: "farm_id", Kind: schema.Ref},
	},
}

var itemSchema = schema.Entity{
	Name: "sale item",
	Fields: []schema.Field{
		{Name: "item_type", Kind: schema.String, Required: true, OneOf: []string{ItemCrop, ItemLivestock, ItemInventory, ItemOther}},
		{Name: "description", Kind: schema.String, Required: true},
		{Name: "quantity", Kind: schema.Decimal, Required: true, Positive: true, Places: 2},
		{Name: "unit_price", Kind: schema.Decimal, Required: true, NonNeg: true, Places: 2},
	},
}

// ItemOpts describes one sale line.
type ItemOpts struct {
	ItemType    string
	ItemID      *uint
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// CreateOpts holds parameters for recording a sale.
type CreateOpts struct {
	FarmID          *uint
	SaleDate        time.Time
	CustomerName    string
	CustomerContact string
	PaymentStatus   string // default pending
	PaymentMethod   string
	Notes           string
	RecordedByID    *uint
	Items           []ItemOpts
}

// Create records a sale and its items in one transaction.
func Create(db *gorm.DB, opts CreateOpts) (*models.Sale, error) {
	if opts.PaymentStatus == "" {
		opts.PaymentStatus = PaymentPending
	}
	if err := saleSchema.Validate(schema.Values{
		"sale_date":        opts.SaleDate,
		"customer_name":    opts.CustomerName,
		"customer_contact": opts.CustomerContact,
		"payment_status":   opts.PaymentStatus,
		"payment_method":   opts.PaymentMethod,
		"farm_id":          opts.FarmID,
	}); err != nil {
		return nil, fmt.Errorf("sales: create: %w", err)
	}
	items := make([]models.SaleItem, 0, len(opts.Items))
	for _, io := range opts.Items {
		it, err := newItem(io)
		if err != nil {
			return nil, fmt.Errorf("sales: create: %w", err)
		}
		items = append(items, it)
	}

	var out *models.Sale
	err := db.Transaction(func(tx *gorm.DB) error {
		if opts.FarmID != nil {
			if err := requireFarm(tx, *opts.FarmID); err != nil {
				return fmt.Errorf("sales: create: %w", err)
			}
		}
		s := models.Sale{
			FarmID:          opts.FarmID,
			CustomerName:    strings.TrimSpace(opts.CustomerName),
			CustomerContact: opts.CustomerContact,
			SaleDate:        opts.SaleDate,
			TotalAmount:     sum(items),
			PaymentStatus:   opts.PaymentStatus,
			PaymentMethod:   opts.PaymentMethod,
			Notes:           opts.Notes,
			RecordedByID:    opts.RecordedByID,
			Items:           items,
		}
		if err := tx.Create(&s).Error; err != nil {
			return fmt.Errorf("sales: create: %w", apperr.Persistence("sale create", err))
		}
		out = &s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get retrieves a sale with its items.
func Get(db *gorm.DB, id uint) (*models.Sale, error) {
	var s models.Sale
	if err := db.Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("id ASC") }).
		Where("id = ?", id).First(&s).Error; err != nil {
		return nil, fmt.Errorf("sales: get %d: %w", id, apperr.Storage("sale get", "sale", id, err))
	}
	return &s, nil
}

// ListFilters holds optional filters for listing sales.
type ListFilters struct {
	FarmID        *uint
	PaymentStatus string
	From, To      *time.Time
}

// List returns sales, newest first, without items.
func List(db *gorm.DB, filters ListFilters) ([]models.Sale, error) {
	q := db.Model(&models.Sale{})
	if filters.FarmID != nil {
		q = q.Where("farm_id = ?", *filters.FarmID)
	}
	if filters.PaymentStatus != "" {
		q = q.Where("payment_status = ?", filters.PaymentStatus)
	}
	if filters.From != nil {
		q = q.Where("sale_date >= ?", *filters.From)
	}
	if filters.To != nil {
		q = q.Where("sale_date < ?", *filters.To)
	}
	var out []models.Sale
	if err := q.Order("sale_date DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("sales: list: %w", apperr.Persistence("sale list", err))
	}
	return out, nil
}

// AddItem appends a line to a sale and recomputes the sale total in the
// same transaction.
func AddItem(db *gorm.DB, saleID uint, opts ItemOpts) (*models.Sale, error) {
	it, err := newItem(opts)
	if err != nil {
		return nil, fmt.Errorf("sales: add item to %d: %w", saleID, err)
	}

	var out *models.Sale
	err = db.Transaction(func(tx *gorm.DB) error {
		s, err := Get(tx, saleID)
		if err != nil {
			return err
		}
		it.SaleID = saleID
		if err := tx.Create(&it).Error; err != nil {
			return fmt.Errorf("sales: add item to %d: %w", saleID, apperr.Persistence("sale item create", err))
		}
		if err := tx.Model(&models.Sale{}).Where("id = ?", saleID).Updates(map[string]interface{}{
			"total_amount": sum(append(s.Items, it)),
			"updated_at":   models.NextUpdate(s.UpdatedAt, time.Now()),
		}).Error; err != nil {
			return fmt.Errorf("sales: add item to %d: %w", saleID, apperr.Persistence("sale total update", err))
		}
		out, err = Get(tx, saleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetPaymentStatus changes the payment status of a sale.
func SetPaymentStatus(db *gorm.DB, saleID uint, status string) (*models.Sale, error) {
	if err := saleSchema.ValidatePartial(schema.Values{"payment_status": status}); err != nil {
		return nil, fmt.Errorf("sales: set payment status %d: %w", saleID, err)
	}
	var out *models.Sale
	err := db.Transaction(func(tx *gorm.DB) error {
		s, err := Get(tx, saleID)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Sale{}).Where("id = ?", saleID).Updates(map[string]interface{}{
			"payment_status": status,
			"updated_at":     models.NextUpdate(s.UpdatedAt, time.Now()),
		}).Error; err != nil {
			return fmt.Errorf("sales: set payment status %d: %w", saleID, apperr.Persistence("sale update", err))
		}
		out, err = Get(tx, saleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func newItem(o ItemOpts) (models.SaleItem, error) {
	if err := itemSchema.Validate(schema.Values{
		"item_type":   o.ItemType,
		"description": o.Description,
		"quantity":    o.Quantity,
		"unit_price":  o.UnitPrice,
	}); err != nil {
		return models.SaleItem{}, err
	}
	return models.SaleItem{
		ItemType:    o.ItemType,
		ItemID:      o.ItemID,
		Description: strings.TrimSpace(o.Description),
		Quantity:    o.Quantity,
		UnitPrice:   o.UnitPrice,
		TotalPrice:  o.Quantity.Mul(o.UnitPrice),
	}, nil
}

func sum(items []models.SaleItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}
	return total
}

func requireFarm(db *gorm.DB, id uint) error {
	var count int64
	if err := db.Model(&models.Farm{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperr.Persistence("farm lookup", err)
	}
	if count == 0 {
		return apperr.NotFound("farm", id)
	}
	return nil
}
