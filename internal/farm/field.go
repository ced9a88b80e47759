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

var fieldSchema = schema.Entity{
	Name: "field",
	Fields: []schema.Field{
		{Name: "name", Kind: schema.String, Required: true, MaxLen: 100},
		{Name: "size_hectares", Kind: schema.Decimal, Required: true, Positive: true},
		{Name: "soil_type", Kind: schema.String, MaxLen: 50},
		{Name: "gps_coordinates", Kind: schema.String, MaxLen: 64},
		{Name: "notes", Kind: schema.String},
		{Name: "farm_id", Kind: schema.Ref, Required: true},
	},
}

var mutableFieldSchema = schema.Entity{
	Name:   "field",
	Fields: fieldSchema.Fields[:5],
}

// FieldOpts holds parameters for adding a field to a farm.
type FieldOpts struct {
	FarmID         uint
	Name           string
	SizeHectares   decimal.Decimal
	SoilType       string
	GPSCoordinates string
	Notes          string
}

// FieldUpdate lists the mutable field attributes. The owning farm is fixed.
type FieldUpdate struct {
	Name           *string
	SizeHectares   *decimal.Decimal
	SoilType       *string
	GPSCoordinates *string
	Notes          *string
}

// AddField creates a field on an existing farm.
func AddField(db *gorm.DB, opts FieldOpts) (*models.Field, error) {
	if err := fieldSchema.Validate(schema.Values{
		"name":            opts.Name,
		"size_hectares":   opts.SizeHectares,
		"soil_type":       opts.SoilType,
		"gps_coordinates": opts.GPSCoordinates,
		"notes":           opts.Notes,
		"farm_id":         opts.FarmID,
	}); err != nil {
		return nil, fmt.Errorf("farm: add field: %w", err)
	}
	if err := Exists(db, opts.FarmID); err != nil {
		return nil, fmt.Errorf("farm: add field: %w", err)
	}

	f := models.Field{
		FarmID:         opts.FarmID,
		Name:           strings.TrimSpace(opts.Name),
		SizeHectares:   opts.SizeHectares,
		SoilType:       opts.SoilType,
		GPSCoordinates: opts.GPSCoordinates,
		Notes:          opts.Notes,
	}
	if err := db.Create(&f).Error; err != nil {
		return nil, fmt.Errorf("farm: add field: %w", apperr.Persistence("field create", err))
	}
	return &f, nil
}

func GetField(db *gorm.DB, id uint) (*models.Field, error) {
	var f models.Field
	if err := db.Where("id = ?", id).First(&f).Error; err != nil {
		return nil, fmt.Errorf("farm: get field %d: %w", id, apperr.Storage("field get", "field", id, err))
	}
	return &f, nil
}

// Fields returns the fields of a farm ordered by id.
func Fields(db *gorm.DB, farmID uint) ([]models.Field, error) {
	if err := Exists(db, farmID); err != nil {
		return nil, fmt.Errorf("farm: fields of %d: %w", farmID, err)
	}
	var out []models.Field
	if err := db.Where("farm_id = ?", farmID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("farm: fields of %d: %w", farmID, apperr.Persistence("field list", err))
	}
	return out, nil
}

func UpdateField(db *gorm.DB, id uint, opts FieldUpdate) (*models.Field, error) {
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
	if opts.SizeHectares != nil {
		set("size_hectares", *opts.SizeHectares)
	}
	if opts.SoilType != nil {
		set("soil_type", *opts.SoilType)
	}
	if opts.GPSCoordinates != nil {
		set("gps_coordinates", *opts.GPSCoordinates)
	}
	if opts.Notes != nil {
		set("notes", *opts.Notes)
	}
	if err := mutableFieldSchema.ValidatePartial(values); err != nil {
		return nil, fmt.Errorf("farm: update field %d: %w", id, err)
	}

	var out *models.Field
	err := db.Transaction(func(tx *gorm.DB) error {
		f, err := GetField(tx, id)
		if err != nil {
			return err
		}
		updates["updated_at"] = models.NextUpdate(f.UpdatedAt, time.Now())
		if err := tx.Model(&models.Field{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("farm: update field %d: %w", id, apperr.Persistence("field update", err))
		}
		out, err = GetField(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
