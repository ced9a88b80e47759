// Package crop manages crops, plantings of them on fields, and harvests.
package crop

import (
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/models"
	"github.com/zulandar/shamba/internal/schema"
	"gorm.io/gorm"
)

var cropSchema = schema.Entity{
	Name: "crop",
	Fields: []schema.Field{
		{Name: "name", Kind: schema.String, Required: true, MaxLen: 100},
		{Name: "variety", Kind: schema.String, MaxLen: 100},
		{Name: "scientific_name", Kind: schema.String, MaxLen: 100},
		{Name: "description", Kind: schema.String},
		{Name: "growth_days", Kind: schema.Int, NonNeg: true},
		{Name: "water_requirements", Kind: schema.String, MaxLen: 50},
	},
}

// CropOpts describes a crop.
type CropOpts struct {
	Name              string
	Variety           string
	ScientificName    string
	Description       string
	GrowthDays        *int
	WaterRequirements string
}

// CropUpdate lists the mutable crop fields.
type CropUpdate struct {
	Name              *string
	Variety           *string
	ScientificName    *string
	Description       *string
	GrowthDays        *int
	WaterRequirements *string
}

// CreateCrop registers a crop.
func CreateCrop(db *gorm.DB, opts CropOpts) (*models.Crop, error) {
	if err := cropSchema.Validate(schema.Values{
		"name":               opts.Name,
		"variety":            opts.Variety,
		"scientific_name":    opts.ScientificName,
		"description":        opts.Description,
		"growth_days":        opts.GrowthDays,
		"water_requirements": opts.WaterRequirements,
	}); err != nil {
		return nil, fmt.Errorf("crop: create: %w", err)
	}
	c := models.Crop{
		Name:              strings.TrimSpace(opts.Name),
		Variety:           opts.Variety,
		ScientificName:    opts.ScientificName,
		Description:       opts.Description,
		GrowthDays:        opts.GrowthDays,
		WaterRequirements: opts.WaterRequirements,
	}
	if err := db.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("crop: create: %w", apperr.Persistence("crop create", err))
	}
	return &c, nil
}

func GetCrop(db *gorm.DB, id uint) (*models.Crop, error) {
	var c models.Crop
	if err := db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, fmt.Errorf("crop: get %d: %w", id, apperr.Storage("crop get", "crop", id, err))
	}
	return &c, nil
}

// ListCrops returns crops whose name contains the given substring.
func ListCrops(db *gorm.DB, name string) ([]models.Crop, error) {
	q := db.Model(&models.Crop{})
	if s := strings.TrimSpace(name); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	var out []models.Crop
	if err := q.Order("name ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("crop: list: %w", apperr.Persistence("crop list", err))
	}
	return out, nil
}

func UpdateCrop(db *gorm.DB, id uint, opts CropUpdate) (*models.Crop, error) {
	values := schema.Values{}
	updates := map[string]interface{}{}
	set := func(key string, v interface{}) {
		values[key] = v
		updates[key] = v
	}
	if opts.Name != nil {
		values["name"] = *opts.Name
		updates["name"] = strings.TrimSpace(*opts.Name)
	}
	if opts.Variety != nil {
		set("variety", *opts.Variety)
	}
	if opts.ScientificName != nil {
		set("scientific_name", *opts.ScientificName)
	}
	if opts.Description != nil {
		set("description", *opts.Description)
	}
	if opts.GrowthDays != nil {
		set("growth_days", *opts.GrowthDays)
	}
	if opts.WaterRequirements != nil {
		set("water_requirements", *opts.WaterRequirements)
	}
	if err := cropSchema.ValidatePartial(values); err != nil {
		return nil, fmt.Errorf("crop: update %d: %w", id, err)
	}

	var out *models.Crop
	err := db.Transaction(func(tx *gorm.DB) error {
		c, err := GetCrop(tx, id)
		if err != nil {
			return err
		}
		updates["updated_at"] = models.NextUpdate(c.UpdatedAt, time.Now())
		if err := tx.Model(&models.Crop{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("crop: update %d: %w", id, apperr.Persistence("crop update", err))
		}
		out, err = GetCrop(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
