package livestock

import (
	"fmt"
	"time"

	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/models"
	"gorm.io/gorm"
)

// SetParents replaces an animal's recorded parents. A nil id clears that
// parent. The change is rejected if it would make the animal its own
// ancestor.
func SetParents(db *gorm.DB, id uint, maleID, femaleID *uint) (*models.Animal, error) {
	var out *models.Animal
	err := db.Transaction(func(tx *gorm.DB) error {
		a, err := Get(tx, id)
		if err != nil {
			return err
		}
		for _, pid := range []*uint{maleID, femaleID} {
			if pid == nil {
				continue
			}
			if *pid == id {
				return fmt.Errorf("livestock: set parents %d: %w", id, apperr.Invalid("animal", "parent", "an animal cannot be its own parent"))
			}
			ancestors, err := ancestorIDs(tx, *pid)
			if err != nil {
				return fmt.Errorf("livestock: set parents %d: %w", id, err)
			}
			if ancestors[id] {
				return fmt.Errorf("livestock: set parents %d: %w", id, apperr.Invalid("animal", "parent", fmt.Sprintf("animal %d descends from animal %d", *pid, id)))
			}
		}
		if err := checkParent(tx, maleID, SexMale); err != nil {
			return fmt.Errorf("livestock: set parents %d: %w", id, err)
		}
		if err := checkParent(tx, femaleID, SexFemale); err != nil {
			return fmt.Errorf("livestock: set parents %d: %w", id, err)
		}

		if err := tx.Model(&models.Animal{}).Where("id = ?", id).Updates(map[string]interface{}{
			"parent_male_id":   maleID,
			"parent_female_id": femaleID,
			"updated_at":       models.NextUpdate(a.UpdatedAt, time.Now()),
		}).Error; err != nil {
			return fmt.Errorf("livestock: set parents %d: %w", id, apperr.Persistence("animal update", err))
		}
		out, err = Get(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Children returns the animals with id as either parent, ordered by id.
func Children(db *gorm.DB, id uint) ([]models.Animal, error) {
	if _, err := Get(db, id); err != nil {
		return nil, err
	}
	var out []models.Animal
	if err := db.Where("parent_male_id = ? OR parent_female_id = ?", id, id).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("livestock: children of %d: %w", id, apperr.Persistence("animal children", err))
	}
	return out, nil
}

// Ancestors returns every recorded ancestor of an animal, nearest
// generation first.
func Ancestors(db *gorm.DB, id uint) ([]models.Animal, error) {
	a, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	var out []models.Animal
	seen := map[uint]bool{id: true}
	frontier := parentIDs(a)
	for len(frontier) > 0 {
		var next []uint
		for _, pid := range frontier {
			if seen[pid] {
				continue
			}
			seen[pid] = true
			p, err := Get(db, pid)
			if err != nil {
				if apperr.IsNotFound(err) {
					continue
				}
				return nil, err
			}
			out = append(out, *p)
			next = append(next, parentIDs(p)...)
		}
		frontier = next
	}
	return out, nil
}

// ancestorIDs returns the id set of id and all its ancestors.
func ancestorIDs(db *gorm.DB, id uint) (map[uint]bool, error) {
	seen := map[uint]bool{}
	frontier := []uint{id}
	for len(frontier) > 0 {
		var rows []models.Animal
		if err := db.Select("id", "parent_male_id", "parent_female_id").
			Where("id IN ?", frontier).Find(&rows).Error; err != nil {
			return nil, apperr.Persistence("animal ancestry", err)
		}
		frontier = nil
		for i := range rows {
			if seen[rows[i].ID] {
				continue
			}
			seen[rows[i].ID] = true
			for _, pid := range parentIDs(&rows[i]) {
				if !seen[pid] {
					frontier = append(frontier, pid)
				}
			}
		}
	}
	return seen, nil
}

func parentIDs(a *models.Animal) []uint {
	var ids []uint
	if a.ParentMaleID != nil {
		ids = append(ids, *a.ParentMaleID)
	}
	if a.ParentFemaleID != nil {
		ids = append(ids, *a.ParentFemaleID)
	}
	return ids
}
