package farm

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/models"
	"github.com/zulandar/shamba/internal/testdb"
)

func TestCreate(t *testing.T) {
	gormDB := testdb.Open(t)
	owner := models.User{FirstName: "Amina", LastName: "Otieno", Email: "amina@farm.test", PasswordHash: "x"}
	if err := gormDB.Create(&owner).Error; err != nil {
		t.Fatalf("create owner: %v", err)
	}

	f, err := Create(gormDB, CreateOpts{Name: "Green Acres", Location: "Nakuru", SizeHectares: decimal.NewFromInt(40), OwnerID: &owner.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if f.ID == 0 || f.CreatedAt.IsZero() {
		t.Errorf("Create did not populate id/created_at: %+v", f)
	}

	mine, err := List(gormDB, &owner.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("List(owner) = %d, want 1", len(mine))
	}
}

func TestCreate_Validation(t *testing.T) {
	gormDB := testdb.Open(t)
	ghost := uint(77)
	tests := []struct {
		name    string
		opts    CreateOpts
		wantNot bool
	}{
		{"zero size", CreateOpts{Name: "A", Location: "B", SizeHectares: decimal.Zero}, false},
		{"negative size", CreateOpts{Name: "A", Location: "B", SizeHectares: decimal.NewFromInt(-3)}, false},
		{"no name", CreateOpts{Location: "B", SizeHectares: decimal.NewFromInt(1)}, false},
		{"no location", CreateOpts{Name: "A", SizeHectares: decimal.NewFromInt(1)}, false},
		{"unknown owner", CreateOpts{Name: "A", Location: "B", SizeHectares: decimal.NewFromInt(1), OwnerID: &ghost}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Create(gormDB, tt.opts)
			if tt.wantNot {
				if !apperr.IsNotFound(err) {
					t.Errorf("error = %v, want not found", err)
				}
				return
			}
			if !apperr.IsValidation(err) {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	gormDB := testdb.Open(t)
	f, _ := Create(gormDB, CreateOpts{Name: "A", Location: "B", SizeHectares: decimal.NewFromInt(1)})

	size := decimal.RequireFromString("12.5")
	got, err := Update(gormDB, f.ID, UpdateOpts{SizeHectares: &size})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !got.SizeHectares.Equal(size) {
		t.Errorf("SizeHectares = %s, want 12.5", got.SizeHectares)
	}
	if !got.CreatedAt.Equal(f.CreatedAt) {
		t.Errorf("CreatedAt changed on update")
	}

	zero := decimal.Zero
	if _, err := Update(gormDB, f.ID, UpdateOpts{SizeHectares: &zero}); !apperr.IsValidation(err) {
		t.Errorf("Update(size 0) error = %v, want validation error", err)
	}
	if _, err := Update(gormDB, 99, UpdateOpts{SizeHectares: &size}); !apperr.IsNotFound(err) {
		t.Errorf("Update(missing) error = %v, want not found", err)
	}
}

func TestFields(t *testing.T) {
	gormDB := testdb.Open(t)
	f, _ := Create(gormDB, CreateOpts{Name: "A", Location: "B", SizeHectares: decimal.NewFromInt(10)})

	if _, err := AddField(gormDB, FieldOpts{FarmID: f.ID, Name: "North", SizeHectares: decimal.NewFromInt(4), SoilType: "loam"}); err != nil {
		t.Fatalf("AddField: %v", err)
	}
	south, err := AddField(gormDB, FieldOpts{FarmID: f.ID, Name: "South", SizeHectares: decimal.NewFromInt(6)})
	if err != nil {
		t.Fatalf("AddField: %v", err)
	}
	if _, err := AddField(gormDB, FieldOpts{FarmID: 999, Name: "X", SizeHectares: decimal.NewFromInt(1)}); !apperr.IsNotFound(err) {
		t.Errorf("AddField(unknown farm) error = %v, want not found", err)
	}
	if _, err := AddField(gormDB, FieldOpts{Name: "X", SizeHectares: decimal.NewFromInt(1)}); !apperr.IsValidation(err) {
		t.Errorf("AddField(no farm) error = %v, want validation error", err)
	}

	list, err := Fields(gormDB, f.ID)
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	if len(list) != 2 || list[0].Name != "North" {
		t.Errorf("Fields = %+v", list)
	}

	soil := "clay"
	got, err := UpdateField(gormDB, south.ID, FieldUpdate{SoilType: &soil})
	if err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	if got.SoilType != "clay" || got.FarmID != f.ID {
		t.Errorf("UpdateField = %+v", got)
	}
}
