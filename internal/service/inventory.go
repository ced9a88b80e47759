package service

import (
	"github.com/shopspring/decimal"
	"github.com/zulandar/shamba/internal/audit"
	"github.com/zulandar/shamba/internal/inventory"
	"github.com/zulandar/shamba/internal/models"
	"gorm.io/gorm"
)

// AddInventoryInput is the input of add-inventory.
type AddInventoryInput struct {
	Name     string
	Category string
	Quantity decimal.Decimal
	Unit     string
}

// CheckInventory returns items whose name and category contain the given
// substrings. An empty result means no matches.
func (s *Service) CheckInventory(name, category string) ([]models.InventoryItem, error) {
	items, err := inventory.List(s.DB, inventory.ListFilters{Name: name, Category: category})
	return items, logged("check inventory", err)
}

// LowStock returns items at or below their minimum quantity.
func (s *Service) LowStock() ([]models.InventoryItem, error) {
	items, err := inventory.LowStock(s.DB, nil)
	return items, logged("low stock", err)
}

// AddInventory stocks a new item and returns its id.
func (s *Service) AddInventory(in AddInventoryInput) (uint, error) {
	var id uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		item, err := inventory.Create(tx, inventory.CreateOpts{
			Name:     in.Name,
			Category: in.Category,
			Quantity: in.Quantity,
			Unit:     in.Unit,
		})
		if err != nil {
			return err
		}
		id = item.ID
		return s.record(tx, audit.ActionCreate, "inventory", item.ID, nil, map[string]any{
			"name":     item.Name,
			"category": item.Category,
			"quantity": item.Quantity.String(),
			"unit":     item.Unit,
		})
	})
	if err != nil {
		return 0, logged("add inventory", err)
	}
	return id, nil
}

// UpdateInventory applies a set, add or subtract to an item's quantity and
// returns the resulting quantity.
func (s *Service) UpdateInventory(id uint, quantity decimal.Decimal, action string) (decimal.Decimal, error) {
	var result decimal.Decimal
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		before, err := inventory.Get(tx, id)
		if err != nil {
			return err
		}
		result, err = inventory.Adjust(tx, id, action, quantity)
		if err != nil {
			return err
		}
		return s.record(tx, audit.ActionUpdate, "inventory", id,
			map[string]any{"quantity": before.Quantity.String()},
			map[string]any{"quantity": result.String(), "action": action, "amount": quantity.String()})
	})
	if err != nil {
		return decimal.Zero, logged("update inventory", err)
	}
	return result, nil
}
