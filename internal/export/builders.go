package export

import "github.com/zulandar/shamba/internal/models"

// TaskHeader is the column order of task exports.
var TaskHeader = []string{
	"id", "title", "description", "status", "priority",
	"due_date", "start_date", "end_date", "completed_at",
	"created_by", "created_at", "updated_at",
}

// TaskRecords turns tasks into records.
func TaskRecords(tasks []models.Task) []Record {
	out := make([]Record, len(tasks))
	for i, t := range tasks {
		out[i] = R(
			"id", t.ID,
			"title", t.Title,
			"description", t.Description,
			"status", t.Status,
			"priority", t.Priority,
			"due_date", t.DueDate,
			"start_date", t.StartDate,
			"end_date", t.EndDate,
			"completed_at", t.CompletedAt,
			"created_by", t.CreatedByID,
			"created_at", t.CreatedAt,
			"updated_at", t.UpdatedAt,
		)
	}
	return out
}

// InventoryRecords turns inventory items into records.
func InventoryRecords(items []models.InventoryItem) []Record {
	out := make([]Record, len(items))
	for i, it := range items {
		out[i] = R(
			"id", it.ID,
			"name", it.Name,
			"category", it.Category,
			"quantity", it.Quantity,
			"unit", it.Unit,
			"min_quantity", it.MinQuantity,
			"expiry_date", it.ExpiryDate,
			"farm_id", it.FarmID,
			"last_updated", it.LastUpdated,
			"created_at", it.CreatedAt,
			"updated_at", it.UpdatedAt,
		)
	}
	return out
}

// AnimalRecords turns animals into records.
func AnimalRecords(animals []models.Animal) []Record {
	out := make([]Record, len(animals))
	for i, a := range animals {
		out[i] = R(
			"id", a.ID,
			"tag_number", a.TagNumber,
			"name", a.Name,
			"species", a.Species,
			"breed", a.Breed,
			"sex", a.Sex,
			"birth_date", a.BirthDate,
			"status", a.Status,
			"health_status", a.HealthStatus,
			"weight", a.Weight,
			"parent_male_id", a.ParentMaleID,
			"parent_female_id", a.ParentFemaleID,
			"farm_id", a.FarmID,
			"created_at", a.CreatedAt,
			"updated_at", a.UpdatedAt,
		)
	}
	return out
}
