package db

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zulandar/shamba/internal/models"
	"gorm.io/gorm"
)

// SeedResult reports how many rows each seeding step inserted.
type SeedResult struct {
	Animals   int
	Inventory int
	Tasks     int
}

// Seed inserts the starter animals, inventory and tasks into empty tables.
// Tables that already hold rows are left untouched. createdBy attributes
// the seeded tasks.
func Seed(db *gorm.DB, createdBy uint, now time.Time) (SeedResult, error) {
	var res SeedResult
	err := db.Transaction(func(tx *gorm.DB) error {
		n, err := seedTable(tx, &models.Animal{}, seedAnimals())
		if err != nil {
			return fmt.Errorf("db: seed animals: %w", err)
		}
		res.Animals = n

		n, err = seedTable(tx, &models.InventoryItem{}, seedInventory(now))
		if err != nil {
			return fmt.Errorf("db: seed inventory: %w", err)
		}
		res.Inventory = n

		n, err = seedTable(tx, &models.Task{}, seedTasks(createdBy, now))
		if err != nil {
			return fmt.Errorf("db: seed tasks: %w", err)
		}
		res.Tasks = n
		return nil
	})
	return res, err
}

// seedTable inserts rows when model's table is empty.
func seedTable[T any](tx *gorm.DB, model interface{}, rows []T) (int, error) {
	var count int64
	if err := tx.Model(model).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

func seedAnimals() []models.Animal {
	weight := func(s string) decimal.NullDecimal {
		return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
	}
	return []models.Animal{
		{TagNumber: "COW-001", Species: "cow", Name: "Bessie", Sex: "female", Weight: weight("450.5"), HealthStatus: "healthy", Status: "active"},
		{TagNumber: "COW-002", Species: "cow", Name: "Daisy", Sex: "female", Weight: weight("500.2"), HealthStatus: "healthy", Status: "active"},
		{TagNumber: "CHK-001", Species: "chicken", Name: "Cluck", Weight: weight("2.1"), HealthStatus: "healthy", Status: "active"},
		{TagNumber: "PIG-001", Species: "pig", Name: "Porky", Sex: "male", Weight: weight("180.0"), HealthStatus: "healthy", Status: "active"},
	}
}

func seedInventory(now time.Time) []models.InventoryItem {
	item := func(name, category string, qty int64, unit string) models.InventoryItem {
		return models.InventoryItem{
			Name:        name,
			Category:    category,
			Quantity:    decimal.NewFromInt(qty),
			Unit:        unit,
			LastUpdated: now,
		}
	}
	return []models.InventoryItem{
		item("hay", "feed", 500, "kg"),
		item("grain", "feed", 200, "kg"),
		item("chicken feed", "feed", 50, "kg"),
		item("medicine", "supplies", 20, "bottles"),
		item("tools", "equipment", 15, "pieces"),
	}
}

func seedTasks(createdBy uint, now time.Time) []models.Task {
	at := func(t time.Time) *time.Time { return &t }
	task := func(title, priority string, due time.Time) models.Task {
		return models.Task{
			Title:       title,
			Status:      "pending",
			Priority:    priority,
			DueDate:     at(due),
			CreatedByID: createdBy,
		}
	}
	done := task("Harvest eggs", "high", now)
	done.Status = "completed"
	done.StartDate = at(now)
	done.EndDate = at(now)
	done.CompletedAt = at(now)

	return []models.Task{
		task("Feed the cows in the morning", "high", now.AddDate(0, 0, 1)),
		task("Clean the chicken coop", "medium", now.AddDate(0, 0, 7)),
		task("Check water supply in all pens", "high", now),
		task("Order more grain supply", "medium", now.AddDate(0, 0, 7)),
		task("Schedule vet visit for annual checkup", "low", now.AddDate(0, 1, 0)),
		done,
	}
}
