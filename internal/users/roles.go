package users

import (
	"fmt"
	"strings"

	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/models"
	"gorm.io/gorm"
)

// CreateRole adds a named role. Names are unique.
func CreateRole(db *gorm.DB, name, description string, system bool) (*models.UserRole, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("users: create role: %w", apperr.Invalid("role", "name", "is required"))
	}
	if len(name) > 50 {
		return nil, fmt.Errorf("users: create role: %w", apperr.Invalid("role", "name", "must be at most 50 characters"))
	}
	var out *models.UserRole
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.UserRole{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("users: create role: %w", apperr.Persistence("role lookup", err))
		}
		if count > 0 {
			return fmt.Errorf("users: create role: %w", apperr.Invalid("role", "name", fmt.Sprintf("%q already exists", name)))
		}
		r := models.UserRole{Name: name, Description: description, IsSystem: system}
		if err := tx.Create(&r).Error; err != nil {
			return fmt.Errorf("users: create role: %w", apperr.Persistence("role create", err))
		}
		out = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func GetRole(db *gorm.DB, id uint) (*models.UserRole, error) {
	var r models.UserRole
	if err := db.Where("id = ?", id).First(&r).Error; err != nil {
		return nil, fmt.Errorf("users: get role %d: %w", id, apperr.Storage("role get", "role", id, err))
	}
	return &r, nil
}

func Roles(db *gorm.DB) ([]models.UserRole, error) {
	var out []models.UserRole
	if err := db.Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("users: roles: %w", apperr.Persistence("role list", err))
	}
	return out, nil
}

// CreatePermission adds a named permission. Names are unique.
func CreatePermission(db *gorm.DB, name, description string) (*models.Permission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("users: create permission: %w", apperr.Invalid("permission", "name", "is required"))
	}
	var out *models.Permission
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Permission{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("users: create permission: %w", apperr.Persistence("permission lookup", err))
		}
		if count > 0 {
			return fmt.Errorf("users: create permission: %w", apperr.Invalid("permission", "name", fmt.Sprintf("%q already exists", name)))
		}
		p := models.Permission{Name: name, Description: description}
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("users: create permission: %w", apperr.Persistence("permission create", err))
		}
		out = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Grant gives a permission to a role. Granting the same pair twice is a
// validation error.
func Grant(db *gorm.DB, roleID, permissionID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetRole(tx, roleID); err != nil {
			return fmt.Errorf("users: grant: %w", err)
		}
		var perm models.Permission
		if err := tx.Where("id = ?", permissionID).First(&perm).Error; err != nil {
			return fmt.Errorf("users: grant: %w", apperr.Storage("permission get", "permission", permissionID, err))
		}
		var count int64
		if err := tx.Model(&models.RolePermission{}).
			Where("role_id = ? AND permission_id = ?", roleID, permissionID).Count(&count).Error; err != nil {
			return fmt.Errorf("users: grant: %w", apperr.Persistence("role permission lookup", err))
		}
		if count > 0 {
			return fmt.Errorf("users: grant: %w", apperr.Invalid("role permission", "", fmt.Sprintf("role %d already holds %s", roleID, perm.Name)))
		}
		if err := tx.Create(&models.RolePermission{RoleID: roleID, PermissionID: permissionID}).Error; err != nil {
			return fmt.Errorf("users: grant: %w", apperr.Persistence("role permission create", err))
		}
		return nil
	})
}

// Revoke removes a permission from a role.
func Revoke(db *gorm.DB, roleID, permissionID uint) error {
	res := db.Where("role_id = ? AND permission_id = ?", roleID, permissionID).Delete(&models.RolePermission{})
	if res.Error != nil {
		return fmt.Errorf("users: revoke: %w", apperr.Persistence("role permission delete", res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("users: revoke: %w", apperr.NotFound("role permission", fmt.Sprintf("%d/%d", roleID, permissionID)))
	}
	return nil
}

// RolePermissions lists the permissions granted to a role, by name.
func RolePermissions(db *gorm.DB, roleID uint) ([]models.Permission, error) {
	var out []models.Permission
	if err := db.Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("users: role permissions %d: %w", roleID, apperr.Persistence("role permission list", err))
	}
	return out, nil
}
