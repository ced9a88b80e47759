package db

import (
	"fmt"

	"github.com/zulandar/shamba/internal/models"
	"gorm.io/gorm"
)

// AllModels returns every GORM model, one table per entity.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.UserRole{},
		&models.Permission{},
		&models.RolePermission{},
		&models.Farm{},
		&models.Field{},
		&models.Activity{},
		&models.ActivityField{},
		&models.Crop{},
		&models.Planting{},
		&models.Harvest{},
		&models.Animal{},
		&models.InventoryItem{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.TaskComment{},
		&models.TaskAttachment{},
		&models.Sale{},
		&models.SaleItem{},
		&models.Expense{},
		&models.AuditLog{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
