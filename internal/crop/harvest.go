package crop

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/models"
	"github.com/zulandar/shamba/internal/schema"
	"gorm.io/gorm"
)

var harvestSchema = schema.Entity{
	Name: "harvest",
	Fields: []schema.Field{
		{Name: "planting_id", Kind: schema.Ref, Required: true},
		{Name: "harvest_date", Kind: schema.Time, Required: true},
		{Name: "quantity", Kind: schema.Decimal, Required: true, NonNeg: true},
		{Name: "quality_rating", Kind: schema.Int, Min: schema.Bound(1), Max: schema.Bound(5)},
		{Name: "notes", Kind: schema.String},
	},
}

// HarvestOpts holds parameters for recording yield from a planting.
type HarvestOpts struct {
	PlantingID    uint
	HarvestDate   time.Time
	Quantity      decimal.Decimal
	QualityRating *int
	Notes         string
	RecordedByID  *uint
}

// RecordHarvest records yield taken from a planting that has not failed.
func RecordHarvest(db *gorm.DB, opts HarvestOpts) (*models.Harvest, error) {
	if err := harvestSchema.Validate(schema.Values{
		"planting_id":    opts.PlantingID,
		"harvest_date":   opts.HarvestDate,
		"quantity":       opts.Quantity,
		"quality_rating": opts.QualityRating,
		"notes":          opts.Notes,
	}); err != nil {
		return nil, fmt.Errorf("crop: record harvest: %w", err)
	}

	p, err := GetPlanting(db, opts.PlantingID)
	if err != nil {
		return nil, fmt.Errorf("crop: record harvest: %w", err)
	}
	if p.Status == StatusFailed {
		return nil, fmt.Errorf("crop: record harvest: %w", apperr.Invalid("harvest", "planting_id", fmt.Sprintf("planting %d has failed", p.ID)))
	}
	if opts.HarvestDate.Before(p.PlantingDate) {
		return nil, fmt.Errorf("crop: record harvest: %w", apperr.Invalid("harvest", "harvest_date", "must not precede the planting date"))
	}

	h := models.Harvest{
		PlantingID:    opts.PlantingID,
		HarvestDate:   opts.HarvestDate,
		Quantity:      opts.Quantity,
		QualityRating: opts.QualityRating,
		Notes:         opts.Notes,
		RecordedByID:  opts.RecordedByID,
	}
	if err := db.Create(&h).Error; err != nil {
		return nil, fmt.Errorf("crop: record harvest: %w", apperr.Persistence("harvest create", err))
	}
	return &h, nil
}

// Harvests returns the harvests of a planting in date order.
func Harvests(db *gorm.DB, plantingID uint) ([]models.Harvest, error) {
	var out []models.Harvest
	if err := db.Where("planting_id = ?", plantingID).Order("harvest_date ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("crop: harvests of %d: %w", plantingID, apperr.Persistence("harvest list", err))
	}
	return out, nil
}

// TotalYield sums the harvested quantity of a planting.
func TotalYield(db *gorm.DB, plantingID uint) (decimal.Decimal, error) {
	hs, err := Harvests(db, plantingID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, h := range hs {
		total = total.Add(h.Quantity)
	}
	return total, nil
}
