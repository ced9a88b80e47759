// Package farm manages farms and their fields.
package farm

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

var farmSchema = schema.Entity{
	Name: "farm",
	Fields: []schema.Field{
		{Name: "name", Kind: schema.String, Required: true, MaxLen: 100},
		{Name: "location", Kind: schema.String, Required: true, MaxLen: 255},
		{Name: "size_hectares", Kind: schema.Decimal, Required: true, Positive: true},
		{Name: "description", Kind: schema.String},
		{Name: "established_date", Kind: schema.Time},
		{Name: "owner_id", Kind: schema.Ref},
	},
}

type CreateOpts struct {
	Name            string
	Location        string
	SizeHectares    decimal.Decimal
	Description     string
	EstablishedDate *time.Time
	OwnerID         *uint
}

// UpdateOpts lists the mutable farm fields; nil leaves a field unchanged.
type UpdateOpts struct {
	Name            *string
	Location        *string
	SizeHectares    *decimal.Decimal
	Description     *string
	EstablishedDate *time.Time
	OwnerID         *uint
}

// Create registers a new farm.
func Create(db *gorm.DB, opts CreateOpts) (*models.Farm, error) {
	if err := farmSchema.Validate(schema.Values{
		"name":             opts.Name,
		"location":         opts.Location,
		"size_hectares":    opts.SizeHectares,
		"description":      opts.Description,
		"established_date": opts.EstablishedDate,
		"owner_id":         opts.OwnerID,
	}); err != nil {
		return nil, fmt.Errorf("farm: create: %w", err)
	}
	if opts.OwnerID != nil {
		if err := requireUser(db, *opts.OwnerID); err != nil {
			return nil, fmt.Errorf("farm: create: %w", err)
		}
	}

	f := models.Farm{
		Name:            strings.TrimSpace(opts.Name),
		Location:        strings.TrimSpace(opts.Location),
		SizeHectares:    opts.SizeHectares,
		Description:     opts.Description,
		EstablishedDate: opts.EstablishedDate,
		OwnerID:         opts.OwnerID,
	}
	if err := db.Create(&f).Error; err != nil {
		return nil, fmt.Errorf("farm: create: %w", apperr.Persistence("farm create", err))
	}
	return &f, nil
}

func Get(db *gorm.DB, id uint) (*models.Farm, error) {
	var f models.Farm
	if err := db.Where("id = ?", id).First(&f).Error; err != nil {
		return nil, fmt.Errorf("farm: get %d: %w", id, apperr.Storage("farm get", "farm", id, err))
	}
	return &f, nil
}

// List returns every farm, optionally restricted to one owner.
func List(db *gorm.DB, ownerID *uint) ([]models.Farm, error) {
	q := db.Model(&models.Farm{})
	if ownerID != nil {
		q = q.Where("owner_id = ?", *ownerID)
	}
	var farms []models.Farm
	if err := q.Order("id ASC").Find(&farms).Error; err != nil {
		return nil, fmt.Errorf("farm: list: %w", apperr.Persistence("farm list", err))
	}
	return farms, nil
}

func Update(db *gorm.DB, id uint, opts UpdateOpts) (*models.Farm, error) {
	values := schema.Values{}
	updates := map[string]interface{}{}
	if opts.Name != nil {
		values["name"] = *opts.Name
		updates["name"] = strings.TrimSpace(*opts.Name)
	}
	if opts.Location != nil {
		values["location"] = *opts.Location
		updates["location"] = strings.TrimSpace(*opts.Location)
	}
	if opts.SizeHectares != nil {
		values["size_hectares"] = *opts.SizeHectares
		updates["size_hectares"] = *opts.SizeHectares
	}
	if opts.Description != nil {
		values["description"] = *opts.Description
		updates["description"] = *opts.Description
	}
	if opts.EstablishedDate != nil {
		values["established_date"] = *opts.EstablishedDate
		updates["established_date"] = *opts.EstablishedDate
	}
	if opts.OwnerID != nil {
		values["owner_id"] = *opts.OwnerID
		updates["owner_id"] = *opts.OwnerID
	}
	if err := farmSchema.ValidatePartial(values); err != nil {
		return nil, fmt.Errorf("farm: update %d: %w", id, err)
	}

	var out *models.Farm
	err := db.Transaction(func(tx *gorm.DB) error {
		f, err := Get(tx, id)
		if err != nil {
			return err
		}
		if opts.OwnerID != nil {
			if err := requireUser(tx, *opts.OwnerID); err != nil {
				return fmt.Errorf("farm: update %d: %w", id, err)
			}
		}
		updates["updated_at"] = models.NextUpdate(f.UpdatedAt, time.Now())
		if err := tx.Model(&models.Farm{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("farm: update %d: %w", id, apperr.Persistence("farm update", err))
		}
		out, err = Get(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Exists reports a NotFoundError unless the farm exists.
func Exists(db *gorm.DB, id uint) error {
	var count int64
	if err := db.Model(&models.Farm{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperr.Persistence("farm lookup", err)
	}
	if count == 0 {
		return apperr.NotFound("farm", id)
	}
	return nil
}

func requireUser(db *gorm.DB, id uint) error {
	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperr.Persistence("user lookup", err)
	}
	if count == 0 {
		return apperr.NotFound("user", id)
	}
	return nil
}
