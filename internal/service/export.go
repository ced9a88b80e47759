package service

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/export"
	"github.com/zulandar/shamba/internal/inventory"
	"github.com/zulandar/shamba/internal/livestock"
	"github.com/zulandar/shamba/internal/task"
)

// Exportable data types.
const (
	DataTasks     = "tasks"
	DataInventory = "inventory"
	DataAnimals   = "animals"
)

// Records loads the record set for a data type.
func (s *Service) Records(dataType string) ([]export.Record, error) {
	switch dataType {
	case DataTasks:
		tasks, err := task.List(s.DB, task.ListFilters{})
		if err != nil {
			return nil, logged("export tasks", err)
		}
		return export.TaskRecords(tasks), nil
	case DataInventory:
		items, err := inventory.List(s.DB, inventory.ListFilters{})
		if err != nil {
			return nil, logged("export inventory", err)
		}
		return export.InventoryRecords(items), nil
	case DataAnimals:
		animals, err := livestock.List(s.DB, livestock.ListFilters{})
		if err != nil {
			return nil, logged("export animals", err)
		}
		return export.AnimalRecords(animals), nil
	}
	return nil, apperr.Invalid("export", "data type", fmt.Sprintf("%q is not one of tasks, inventory, animals", dataType))
}

// Export renders a data type in the given format.
func (s *Service) Export(dataType string, format export.Format) ([]byte, error) {
	records, err := s.Records(dataType)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, dataType, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportToFile renders a data type into dir under the default report
// filename and returns the file path.
func (s *Service) ExportToFile(dataType string, format export.Format, dir string) (string, error) {
	content, err := s.Export(dataType, format)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("service: export dir: %w", err)
	}
	path := filepath.Join(dir, export.DefaultFilename(s.now(), format))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("service: write export: %w", err)
	}
	return path, nil
}
