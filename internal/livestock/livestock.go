// Package livestock manages animals and their parentage.
//
// Parentage is held as parent ids on each animal. Children and ancestors
// are resolved by query, and every parent change is checked so that an
// animal never becomes its own ancestor.
package livestock

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

// Sexes.
const (
	SexMale   = "male"
	SexFemale = "female"
)

// Animal statuses.
const (
	StatusActive   = "active"
	StatusSold     = "sold"
	StatusDeceased = "deceased"
)

var animalSchema = schema.Entity{
	Name: "animal",
	Fields: []schema.Field{
		{Name: "name", Kind: schema.String, MaxLen: 100},
		{Name: "breed", Kind: schema.String, MaxLen: 50},
		{Name: "sex", Kind: schema.String, OneOf: []string{SexMale, SexFemale}},
		{Name: "birth_date", Kind: schema.Time},
		{Name: "purchase_date", Kind: schema.Time},
		{Name: "purchase_price", Kind: schema.Decimal, NonNeg: true},
		{Name: "weight", Kind: schema.Decimal, NonNeg: true},
		{Name: "health_status", Kind: schema.String, MaxLen: 50},
		{Name: "status", Kind: schema.String, OneOf: []string{StatusActive, StatusSold, StatusDeceased}},
		{Name: "notes", Kind: schema.String},
		{Name: "last_fed", Kind: schema.Time},
		{Name: "tag_number", Kind: schema.String, Required: true, MaxLen: 50},
		{Name: "species", Kind: schema.String, Required: true, MaxLen: 50},
		{Name: "farm_id", Kind: schema.Ref},
		{Name: "parent_male_id", Kind: schema.Ref},
		{Name: "parent_female_id", Kind: schema.Ref},
	},
}

// mutableAnimalSchema covers what Update may change besides parentage.
var mutableAnimalSchema = schema.Entity{
	Name:   "animal",
	Fields: animalSchema.Fields[:11],
}

// CreateOpts holds parameters for registering an animal.
type CreateOpts struct {
	TagNumber      string
	Species        string
	Name           string
	Breed          string
	Sex            string
	BirthDate      *time.Time
	FarmID         *uint
	ParentMaleID   *uint
	ParentFemaleID *uint
	PurchaseDate   *time.Time
	PurchasePrice  decimal.NullDecimal
	Weight         decimal.NullDecimal
	HealthStatus   string
	Notes          string
}

// UpdateOpts lists the mutable animal fields. Tag number and species are
// identity and cannot change.
type UpdateOpts struct {
	Name          *string
	Breed         *string
	Sex           *string
	BirthDate     *time.Time
	PurchaseDate  *time.Time
	PurchasePrice *decimal.Decimal
	Weight        *decimal.Decimal
	HealthStatus  *string
	Status        *string
	Notes         *string
	LastFed       *time.Time
}

// ListFilters holds optional exact-match filters for listing animals.
type ListFilters struct {
	Species string
	Status  string
	FarmID  *uint
}

// Create registers an animal with status active.
func Create(db *gorm.DB, opts CreateOpts) (*models.Animal, error) {
	if err := animalSchema.Validate(schema.Values{
		"name":             opts.Name,
		"breed":            opts.Breed,
		"sex":              opts.Sex,
		"birth_date":       opts.BirthDate,
		"purchase_date":    opts.PurchaseDate,
		"purchase_price":   opts.PurchasePrice,
		"weight":           opts.Weight,
		"health_status":    opts.HealthStatus,
		"notes":            opts.Notes,
		"tag_number":       opts.TagNumber,
		"species":          opts.Species,
		"farm_id":          opts.FarmID,
		"parent_male_id":   opts.ParentMaleID,
		"parent_female_id": opts.ParentFemaleID,
	}); err != nil {
		return nil, fmt.Errorf("livestock: create: %w", err)
	}

	var out *models.Animal
	err := db.Transaction(func(tx *gorm.DB) error {
		tag := strings.TrimSpace(opts.TagNumber)
		if err := requireFreeTag(tx, tag); err != nil {
			return fmt.Errorf("livestock: create: %w", err)
		}
		if opts.FarmID != nil {
			if err := requireFarm(tx, *opts.FarmID); err != nil {
				return fmt.Errorf("livestock: create: %w", err)
			}
		}
		if err := checkParent(tx, opts.ParentMaleID, SexMale); err != nil {
			return fmt.Errorf("livestock: create: %w", err)
		}
		if err := checkParent(tx, opts.ParentFemaleID, SexFemale); err != nil {
			return fmt.Errorf("livestock: create: %w", err)
		}

		a := models.Animal{
			FarmID:         opts.FarmID,
			TagNumber:      tag,
			Name:           opts.Name,
			Species:        strings.TrimSpace(opts.Species),
			Breed:          opts.Breed,
			Sex:            opts.Sex,
			BirthDate:      opts.BirthDate,
			ParentMaleID:   opts.ParentMaleID,
			ParentFemaleID: opts.ParentFemaleID,
			PurchaseDate:   opts.PurchaseDate,
			PurchasePrice:  opts.PurchasePrice,
			Weight:         opts.Weight,
			HealthStatus:   opts.HealthStatus,
			Status:         StatusActive,
			Notes:          opts.Notes,
		}
		if err := tx.Create(&a).Error; err != nil {
			return fmt.Errorf("livestock: create: %w", apperr.Persistence("animal create", err))
		}
		out = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get retrieves an animal by ID.
func Get(db *gorm.DB, id uint) (*models.Animal, error) {
	var a models.Animal
	if err := db.Where("id = ?", id).First(&a).Error; err != nil {
		return nil, fmt.Errorf("livestock: get %d: %w", id, apperr.Storage("animal get", "animal", id, err))
	}
	return &a, nil
}

// GetByTag retrieves an animal by its tag number.
func GetByTag(db *gorm.DB, tag string) (*models.Animal, error) {
	var a models.Animal
	if err := db.Where("tag_number = ?", tag).First(&a).Error; err != nil {
		return nil, fmt.Errorf("livestock: get tag %s: %w", tag, apperr.Storage("animal get", "animal", tag, err))
	}
	return &a, nil
}

// List returns animals matching the filters, ordered by id.
func List(db *gorm.DB, filters ListFilters) ([]models.Animal, error) {
	q := db.Model(&models.Animal{})
	if filters.Species != "" {
		q = q.Where("species = ?", filters.Species)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.FarmID != nil {
		q = q.Where("farm_id = ?", *filters.FarmID)
	}
	var animals []models.Animal
	if err := q.Order("id ASC").Find(&animals).Error; err != nil {
		return nil, fmt.Errorf("livestock: list: %w", apperr.Persistence("animal list", err))
	}
	return animals, nil
}

// Update changes the mutable descriptive fields of an animal.
func Update(db *gorm.DB, id uint, opts UpdateOpts) (*models.Animal, error) {
	values := schema.Values{}
	updates := map[string]interface{}{}
	set := func(key string, v interface{}) {
		values[key] = v
		updates[key] = v
	}
	if opts.Name != nil {
		set("name", *opts.Name)
	}
	if opts.Breed != nil {
		set("breed", *opts.Breed)
	}
	if opts.Sex != nil {
		set("sex", *opts.Sex)
	}
	if opts.BirthDate != nil {
		set("birth_date", *opts.BirthDate)
	}
	if opts.PurchaseDate != nil {
		set("purchase_date", *opts.PurchaseDate)
	}
	if opts.PurchasePrice != nil {
		set("purchase_price", *opts.PurchasePrice)
	}
	if opts.Weight != nil {
		set("weight", *opts.Weight)
	}
	if opts.HealthStatus != nil {
		set("health_status", *opts.HealthStatus)
	}
	if opts.Status != nil {
		set("status", *opts.Status)
	}
	if opts.Notes != nil {
		set("notes", *opts.Notes)
	}
	if opts.LastFed != nil {
		set("last_fed", *opts.LastFed)
	}
	if err := mutableAnimalSchema.ValidatePartial(values); err != nil {
		return nil, fmt.Errorf("livestock: update %d: %w", id, err)
	}

	var out *models.Animal
	err := db.Transaction(func(tx *gorm.DB) error {
		a, err := Get(tx, id)
		if err != nil {
			return err
		}
		if opts.Sex != nil && *opts.Sex != a.Sex {
			if err := checkSexChange(tx, a.ID, *opts.Sex); err != nil {
				return fmt.Errorf("livestock: update %d: %w", id, err)
			}
		}
		updates["updated_at"] = models.NextUpdate(a.UpdatedAt, time.Now())
		if err := tx.Model(&models.Animal{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("livestock: update %d: %w", id, apperr.Persistence("animal update", err))
		}
		out, err = Get(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func requireFreeTag(db *gorm.DB, tag string) error {
	var count int64
	if err := db.Model(&models.Animal{}).Where("tag_number = ?", tag).Count(&count).Error; err != nil {
		return apperr.Persistence("animal tag lookup", err)
	}
	if count > 0 {
		return apperr.Invalid("animal", "tag_number", fmt.Sprintf("%q is already in use", tag))
	}
	return nil
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

// checkParent verifies a parent exists and, when its sex is recorded,
// that it matches the parent slot.
func checkParent(db *gorm.DB, id *uint, sex string) error {
	if id == nil {
		return nil
	}
	p, err := Get(db, *id)
	if err != nil {
		return err
	}
	if p.Sex != "" && p.Sex != sex {
		return apperr.Invalid("animal", "parent_"+sex+"_id", fmt.Sprintf("animal %d is %s", p.ID, p.Sex))
	}
	return nil
}

// checkSexChange refuses a sex that contradicts the animal's recorded
// role as a parent.
func checkSexChange(db *gorm.DB, id uint, sex string) error {
	column := "parent_male_id"
	if sex == SexMale {
		column = "parent_female_id"
	}
	var count int64
	if err := db.Model(&models.Animal{}).Where(column+" = ?", id).Count(&count).Error; err != nil {
		return apperr.Persistence("animal parent lookup", err)
	}
	if count > 0 {
		return apperr.Invalid("animal", "sex", fmt.Sprintf("animal %d is recorded as a %s parent", id, opposite(sex)))
	}
	return nil
}

func opposite(sex string) string {
	if sex == SexMale {
		return SexFemale
	}
	return SexMale
}
