// Package inventory manages stocked items and their quantities.
package inventory

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

// Quantity adjustment actions.
const (
	ActionSet      = "set"
	ActionAdd      = "add"
	ActionSubtract = "subtract"
)

// Actions lists the valid adjustment actions.
var Actions = []string{ActionSet, ActionAdd, ActionSubtract}

// quantityPlaces matches the scale of the decimal(10,2) quantity columns.
const quantityPlaces = 2

var itemSchema = schema.Entity{
	Name: "inventory item",
	Fields: []schema.Field{
		{Name: "name", Kind: schema.String, Required: true, MaxLen: 100},
		{Name: "category", Kind: schema.String, MaxLen: 50},
		{Name: "unit", Kind: schema.String, MaxLen: 20},
		{Name: "min_quantity", Kind: schema.Decimal, NonNeg: true, Places: quantityPlaces},
		{Name: "expiry_date", Kind: schema.Time},
		{Name: "quantity", Kind: schema.Decimal, Required: true, NonNeg: true, Places: quantityPlaces},
		{Name: "farm_id", Kind: schema.Ref},
	},
}

var mutableItemSchema = schema.Entity{
	Name:   "inventory item",
	Fields: itemSchema.Fields[:5],
}

var adjustSchema = schema.Entity{
	Name: "inventory item",
	Fields: []schema.Field{
		{Name: "action", Kind: schema.String, Required: true, OneOf: Actions},
		{Name: "quantity", Kind: schema.Decimal, Required: true, NonNeg: true, Places: quantityPlaces},
	},
}

// CreateOpts holds parameters for stocking a new item.
type CreateOpts struct {
	Name        string
	Category    string
	Quantity    decimal.Decimal
	Unit        string
	MinQuantity decimal.NullDecimal
	ExpiryDate  *time.Time
	FarmID      *uint
}

// UpdateOpts names the descriptive fields that may change. Quantity only
// moves through Adjust.
type UpdateOpts struct {
	Name             *string
	Category         *string
	Unit             *string
	MinQuantity      *decimal.Decimal
	ClearMinQuantity bool
	ExpiryDate       *time.Time
	ClearExpiryDate  bool
}

// ListFilters holds optional case-insensitive substring filters.
type ListFilters struct {
	Name     string
	Category string
	FarmID   *uint
}

// Create stocks a new inventory item.
func Create(db *gorm.DB, opts CreateOpts) (*models.InventoryItem, error) {
	if err := itemSchema.Validate(schema.Values{
		"name":         opts.Name,
		"category":     opts.Category,
		"unit":         opts.Unit,
		"min_quantity": opts.MinQuantity,
		"expiry_date":  opts.ExpiryDate,
		"quantity":     opts.Quantity,
		"farm_id":      opts.FarmID,
	}); err != nil {
		return nil, fmt.Errorf("inventory: create: %w", err)
	}
	if opts.FarmID != nil {
		if err := requireFarm(db, *opts.FarmID); err != nil {
			return nil, fmt.Errorf("inventory: create: %w", err)
		}
	}

	item := models.InventoryItem{
		FarmID:      opts.FarmID,
		Name:        strings.TrimSpace(opts.Name),
		Category:    strings.TrimSpace(opts.Category),
		Quantity:    opts.Quantity,
		Unit:        opts.Unit,
		MinQuantity: opts.MinQuantity,
		ExpiryDate:  opts.ExpiryDate,
		LastUpdated: time.Now(),
	}
	if err := db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("inventory: create: %w", apperr.Persistence("inventory create", err))
	}
	return &item, nil
}

// Get retrieves an item by ID.
func Get(db *gorm.DB, id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := db.Where("id = ?", id).First(&item).Error; err != nil {
		return nil, fmt.Errorf("inventory: get %d: %w", id, apperr.Storage("inventory get", "inventory item", id, err))
	}
	return &item, nil
}

// List returns items matching the filters, ordered by name then id.
func List(db *gorm.DB, filters ListFilters) ([]models.InventoryItem, error) {
	q := db.Model(&models.InventoryItem{})
	if s := strings.TrimSpace(filters.Name); s != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(s))
	}
	if s := strings.TrimSpace(filters.Category); s != "" {
		q = q.Where("LOWER(category) LIKE ?", likePattern(s))
	}
	if filters.FarmID != nil {
		q = q.Where("farm_id = ?", *filters.FarmID)
	}

	var items []models.InventoryItem
	if err := q.Order("name ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("inventory: list: %w", apperr.Persistence("inventory list", err))
	}
	return items, nil
}

// Update changes the descriptive fields of an item.
func Update(db *gorm.DB, id uint, opts UpdateOpts) (*models.InventoryItem, error) {
	values := schema.Values{}
	updates := map[string]interface{}{}
	if opts.Name != nil {
		values["name"] = *opts.Name
		updates["name"] = strings.TrimSpace(*opts.Name)
	}
	if opts.Category != nil {
		values["category"] = *opts.Category
		updates["category"] = strings.TrimSpace(*opts.Category)
	}
	if opts.Unit != nil {
		values["unit"] = *opts.Unit
		updates["unit"] = *opts.Unit
	}
	if opts.MinQuantity != nil {
		values["min_quantity"] = *opts.MinQuantity
		updates["min_quantity"] = *opts.MinQuantity
	} else if opts.ClearMinQuantity {
		updates["min_quantity"] = nil
	}
	if opts.ExpiryDate != nil {
		values["expiry_date"] = *opts.ExpiryDate
		updates["expiry_date"] = *opts.ExpiryDate
	} else if opts.ClearExpiryDate {
		updates["expiry_date"] = nil
	}
	if err := mutableItemSchema.ValidatePartial(values); err != nil {
		return nil, fmt.Errorf("inventory: update %d: %w", id, err)
	}

	var out *models.InventoryItem
	err := db.Transaction(func(tx *gorm.DB) error {
		item, err := Get(tx, id)
		if err != nil {
			return err
		}
		now := time.Now()
		updates["last_updated"] = now
		updates["updated_at"] = models.NextUpdate(item.UpdatedAt, now)
		if err := tx.Model(&models.InventoryItem{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("inventory: update %d: %w", id, apperr.Persistence("inventory update", err))
		}
		out, err = Get(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Adjust changes an item's quantity and returns the resulting quantity.
// The change is one conditional UPDATE evaluated by the database against
// the current row, so concurrent callers never lose each other's writes.
// Subtracting more than is on hand leaves zero. Results are rounded to the
// column scale in SQL, since sqlite evaluates NUMERIC arithmetic in floating
// point.
func Adjust(db *gorm.DB, id uint, action string, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := adjustSchema.Validate(schema.Values{"action": action, "quantity": amount}); err != nil {
		return decimal.Zero, fmt.Errorf("inventory: adjust %d: %w", id, err)
	}

	var expr interface{} = amount
	switch action {
	case ActionAdd:
		expr = gorm.Expr("ROUND(quantity + ?, 2)", amount)
	case ActionSubtract:
		expr = gorm.Expr("CASE WHEN quantity <= ? THEN 0 ELSE ROUND(quantity - ?, 2) END", amount, amount)
	}

	var result decimal.Decimal
	err := db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.InventoryItem{}).Where("id = ?", id).Updates(map[string]interface{}{
			"quantity":     expr,
			"last_updated": now,
			"updated_at":   gorm.Expr("CASE WHEN updated_at > ? THEN updated_at ELSE ? END", now, now),
		})
		if res.Error != nil {
			return fmt.Errorf("inventory: adjust %d: %w", id, apperr.Persistence("inventory adjust", res.Error))
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("inventory: adjust %d: %w", id, apperr.NotFound("inventory item", id))
		}
		item, err := Get(tx, id)
		if err != nil {
			return err
		}
		result = item.Quantity
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return result, nil
}

// LowStock returns items whose quantity has fallen to or below their
// minimum. A nil farmID covers every farm.
func LowStock(db *gorm.DB, farmID *uint) ([]models.InventoryItem, error) {
	q := db.Where("min_quantity IS NOT NULL AND quantity <= min_quantity")
	if farmID != nil {
		q = q.Where("farm_id = ?", *farmID)
	}
	var items []models.InventoryItem
	if err := q.Order("name ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("inventory: low stock: %w", apperr.Persistence("inventory low stock", err))
	}
	return items, nil
}

// Expiring returns items that expire before the given instant.
func Expiring(db *gorm.DB, before time.Time) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := db.Where("expiry_date IS NOT NULL AND expiry_date < ?", before).
		Order("expiry_date ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("inventory: expiring: %w", apperr.Persistence("inventory expiring", err))
	}
	return items, nil
}

func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
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
