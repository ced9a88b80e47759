package crop

import (
	"fmt"
	"time"

	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/models"
	"github.com/zulandar/shamba/internal/schema"
	"gorm.io/gorm"
)

// Planting statuses.
const (
	StatusPlanted   = "planted"
	StatusGrowing   = "growing"
	StatusHarvested = "harvested"
	StatusFailed    = "failed"
)

// ValidTransitions maps each planting status to its valid next statuses.
// harvested and failed are terminal.
var ValidTransitions = map[string][]string{
	StatusPlanted: {StatusGrowing, StatusHarvested, StatusFailed},
	StatusGrowing: {StatusHarvested, StatusFailed},
}

// Statuses lists every planting status.
var Statuses = []string{StatusPlanted, StatusGrowing, StatusHarvested, StatusFailed}

var plantingSchema = schema.Entity{
	Name: "planting",
	Fields: []schema.Field{
		{Name: "field_id", Kind: schema.Ref, Required: true},
		{Name: "crop_id", Kind: schema.Ref, Required: true},
		{Name: "planting_date", Kind: schema.Time, Required: true},
		{Name: "expected_harvest_date", Kind: schema.Time},
		{Name: "quantity_planted", Kind: schema.Int, NonNeg: true},
		{Name: "notes", Kind: schema.String},
	},
}

// PlantingOpts holds parameters for sowing a crop on a field.
type PlantingOpts struct {
	FieldID             uint
	CropID              uint
	PlantingDate        time.Time
	ExpectedHarvestDate *time.Time // defaults to PlantingDate + crop growth days
	QuantityPlanted     *int
	Notes               string
	CreatedByID         *uint
}

// Plant records a new planting with status planted.
func Plant(db *gorm.DB, opts PlantingOpts) (*models.Planting, error) {
	if err := plantingSchema.Validate(schema.Values{
		"field_id":              opts.FieldID,
		"crop_id":               opts.CropID,
		"planting_date":         opts.PlantingDate,
		"expected_harvest_date": opts.ExpectedHarvestDate,
		"quantity_planted":      opts.QuantityPlanted,
		"notes":                 opts.Notes,
	}); err != nil {
		return nil, fmt.Errorf("crop: plant: %w", err)
	}

	var out *models.Planting
	err := db.Transaction(func(tx *gorm.DB) error {
		var fields int64
		if err := tx.Model(&models.Field{}).Where("id = ?", opts.FieldID).Count(&fields).Error; err != nil {
			return fmt.Errorf("crop: plant: %w", apperr.Persistence("field lookup", err))
		}
		if fields == 0 {
			return fmt.Errorf("crop: plant: %w", apperr.NotFound("field", opts.FieldID))
		}
		c, err := GetCrop(tx, opts.CropID)
		if err != nil {
			return fmt.Errorf("crop: plant: %w", err)
		}

		expected := opts.ExpectedHarvestDate
		if expected == nil && c.GrowthDays != nil {
			d := opts.PlantingDate.AddDate(0, 0, *c.GrowthDays)
			expected = &d
		}
		if expected != nil && expected.Before(opts.PlantingDate) {
			return fmt.Errorf("crop: plant: %w", apperr.Invalid("planting", "expected_harvest_date", "must not precede the planting date"))
		}

		p := models.Planting{
			FieldID:             opts.FieldID,
			CropID:              opts.CropID,
			PlantingDate:        opts.PlantingDate,
			ExpectedHarvestDate: expected,
			QuantityPlanted:     opts.QuantityPlanted,
			Status:              StatusPlanted,
			Notes:               opts.Notes,
			CreatedByID:         opts.CreatedByID,
		}
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("crop: plant: %w", apperr.Persistence("planting create", err))
		}
		out = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func GetPlanting(db *gorm.DB, id uint) (*models.Planting, error) {
	var p models.Planting
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, fmt.Errorf("crop: get planting %d: %w", id, apperr.Storage("planting get", "planting", id, err))
	}
	return &p, nil
}

// PlantingFilters holds optional filters for listing plantings.
type PlantingFilters struct {
	FieldID uint
	CropID  uint
	Status  string
}

// Plantings returns plantings matching the filters, newest planting date first.
func Plantings(db *gorm.DB, filters PlantingFilters) ([]models.Planting, error) {
	q := db.Model(&models.Planting{})
	if filters.FieldID != 0 {
		q = q.Where("field_id = ?", filters.FieldID)
	}
	if filters.CropID != 0 {
		q = q.Where("crop_id = ?", filters.CropID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	var out []models.Planting
	if err := q.Order("planting_date DESC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("crop: list plantings: %w", apperr.Persistence("planting list", err))
	}
	return out, nil
}

// SetPlantingStatus moves a planting along its lifecycle. Moving to
// harvested stamps the actual harvest date with at (zero means now), which
// must not precede the planting date.
func SetPlantingStatus(db *gorm.DB, id uint, to string, at time.Time) (*models.Planting, error) {
	if at.IsZero() {
		at = time.Now()
	}
	p, err := GetPlanting(db, id)
	if err != nil {
		return nil, err
	}
	if !contains(Statuses, to) {
		return nil, fmt.Errorf("crop: set planting status %d: %w", id, apperr.Invalid("planting", "status", "must be one of planted, growing, harvested, failed"))
	}
	if !contains(ValidTransitions[p.Status], to) {
		return nil, fmt.Errorf("crop: set planting status %d: %w", id, apperr.Transition("planting", id, p.Status, to))
	}

	updates := map[string]interface{}{"status": to}
	if to == StatusHarvested {
		if at.Before(p.PlantingDate) {
			return nil, fmt.Errorf("crop: set planting status %d: %w", id, apperr.Invalid("planting", "actual_harvest_date", "must not precede the planting date"))
		}
		updates["actual_harvest_date"] = at
		p.ActualHarvestDate = &at
	}
	p.UpdatedAt = models.NextUpdate(p.UpdatedAt, time.Now())
	updates["updated_at"] = p.UpdatedAt

	from := p.Status
	res := db.Model(&models.Planting{}).Where("id = ? AND status = ?", id, from).Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("crop: set planting status %d: %w", id, apperr.Persistence("planting update", res.Error))
	}
	if res.RowsAffected == 0 {
		current, err := GetPlanting(db, id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("crop: set planting status %d: %w", id, apperr.Transition("planting", id, current.Status, to))
	}
	p.Status = to
	return p, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
