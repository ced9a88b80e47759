package service

import (
	"github.com/zulandar/shamba/internal/livestock"
	"github.com/zulandar/shamba/internal/models"
)

// ListAnimals returns every animal ordered by id.
func (s *Service) ListAnimals() ([]models.Animal, error) {
	animals, err := livestock.List(s.DB, livestock.ListFilters{})
	return animals, logged("list animals", err)
}
