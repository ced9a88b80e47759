package inventory

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/models"
	"github.com/zulandar/shamba/internal/testdb"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mustCreate(t *testing.T, gormDB *gorm.DB, opts CreateOpts) *models.InventoryItem {
	t.Helper()
	item, err := Create(gormDB, opts)
	if err != nil {
		t.Fatalf("Create(%s): %v", opts.Name, err)
	}
	return item
}

func TestCreate(t *testing.T) {
	gormDB := testdb.Open(t)
	item := mustCreate(t, gormDB, CreateOpts{Name: "hay", Category: "feed", Quantity: dec("500"), Unit: "kg"})
	if item.ID == 0 {
		t.Error("ID not assigned")
	}
	if item.LastUpdated.IsZero() {
		t.Error("LastUpdated not stamped")
	}

	got, err := Get(gormDB, item.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Quantity.Equal(dec("500")) {
		t.Errorf("Quantity = %s, want 500", got.Quantity)
	}
}

func TestCreate_Validation(t *testing.T) {
	gormDB := testdb.Open(t)
	farm := uint(9)
	tests := []struct {
		name string
		opts CreateOpts
		not  bool
	}{
		{"missing name", CreateOpts{Quantity: dec("1")}, false},
		{"negative quantity", CreateOpts{Name: "x", Quantity: dec("-1")}, false},
		{"negative min", CreateOpts{Name: "x", Quantity: dec("1"), MinQuantity: decimal.NewNullDecimal(dec("-2"))}, false},
		{"unknown farm", CreateOpts{Name: "x", Quantity: dec("1"), FarmID: &farm}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Create(gormDB, tt.opts)
			if tt.not && !apperr.IsNotFound(err) {
				t.Errorf("Create error = %v, want not found", err)
			}
			if !tt.not && !apperr.IsValidation(err) {
				t.Errorf("Create error = %v, want validation error", err)
			}
		})
	}
}

func TestList_Filters(t *testing.T) {
	gormDB := testdb.Open(t)
	mustCreate(t, gormDB, CreateOpts{Name: "Hay", Category: "Feed", Quantity: dec("500"), Unit: "kg"})
	mustCreate(t, gormDB, CreateOpts{Name: "Grain", Category: "Feed", Quantity: dec("200"), Unit: "kg"})
	mustCreate(t, gormDB, CreateOpts{Name: "Antibiotics", Category: "Medicine", Quantity: dec("20"), Unit: "bottles"})

	tests := []struct {
		filters ListFilters
		want    []string
	}{
		{ListFilters{}, []string{"Antibiotics", "Grain", "Hay"}},
		{ListFilters{Name: "hay"}, []string{"Hay"}},
		{ListFilters{Name: "A"}, []string{"Antibiotics", "Grain", "Hay"}},
		{ListFilters{Category: "feed"}, []string{"Grain", "Hay"}},
		{ListFilters{Name: "ra", Category: "fe"}, []string{"Grain"}},
		{ListFilters{Name: "straw"}, nil},
	}
	for _, tt := range tests {
		items, err := List(gormDB, tt.filters)
		if err != nil {
			t.Fatalf("List(%+v): %v", tt.filters, err)
		}
		var names []string
		for _, it := range items {
			names = append(names, it.Name)
		}
		if len(names) != len(tt.want) {
			t.Errorf("List(%+v) = %v, want %v", tt.filters, names, tt.want)
			continue
		}
		for i := range names {
			if names[i] != tt.want[i] {
				t.Errorf("List(%+v) = %v, want %v", tt.filters, names, tt.want)
				break
			}
		}
	}
}

func TestAdjust(t *testing.T) {
	tests := []struct {
		action string
		amount string
		want   string
	}{
		{ActionSet, "75", "75"},
		{ActionAdd, "25", "125"},
		{ActionSubtract, "40", "60"},
		{ActionSubtract, "100", "0"},
		{ActionSubtract, "1000000", "0"},
		{ActionSet, "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.action+"_"+tt.amount, func(t *testing.T) {
			gormDB := testdb.Open(t)
			item := mustCreate(t, gormDB, CreateOpts{Name: "grain", Quantity: dec("100"), Unit: "kg"})

			got, err := Adjust(gormDB, item.ID, tt.action, dec(tt.amount))
			if err != nil {
				t.Fatalf("Adjust: %v", err)
			}
			if !got.Equal(dec(tt.want)) {
				t.Errorf("Adjust(%s %s) = %s, want %s", tt.action, tt.amount, got, tt.want)
			}
			stored, _ := Get(gormDB, item.ID)
			if !stored.Quantity.Equal(dec(tt.want)) {
				t.Errorf("stored quantity = %s, want %s", stored.Quantity, tt.want)
			}
			if stored.Quantity.IsNegative() {
				t.Errorf("stored quantity negative: %s", stored.Quantity)
			}
		})
	}
}

func TestAdjust_Fractional(t *testing.T) {
	gormDB := testdb.Open(t)
	item := mustCreate(t, gormDB, CreateOpts{Name: "salt lick", Quantity: dec("0.1"), Unit: "kg"})

	steps := []struct {
		action string
		amount string
		want   string
	}{
		{ActionAdd, "0.2", "0.3"},
		{ActionSubtract, "0.3", "0"},
		{ActionAdd, "0.7", "0.7"},
		{ActionAdd, "0.15", "0.85"},
		{ActionSubtract, "0.05", "0.8"},
		{ActionSet, "2.75", "2.75"},
		{ActionSubtract, "2.74", "0.01"},
		{ActionSubtract, "0.02", "0"},
	}
	for _, st := range steps {
		got, err := Adjust(gormDB, item.ID, st.action, dec(st.amount))
		if err != nil {
			t.Fatalf("Adjust(%s %s): %v", st.action, st.amount, err)
		}
		if !got.Equal(dec(st.want)) {
			t.Fatalf("Adjust(%s %s) = %s, want exactly %s", st.action, st.amount, got, st.want)
		}
	}

	for i := 0; i < 10; i++ {
		if _, err := Adjust(gormDB, item.ID, ActionAdd, dec("0.1")); err != nil {
			t.Fatalf("Adjust: %v", err)
		}
	}
	stored, _ := Get(gormDB, item.ID)
	if !stored.Quantity.Equal(dec("1")) {
		t.Errorf("ten adds of 0.1 = %s, want exactly 1", stored.Quantity)
	}
}

func TestAdjust_RejectsExtraPlaces(t *testing.T) {
	gormDB := testdb.Open(t)
	if _, err := Create(gormDB, CreateOpts{Name: "oil", Quantity: dec("1.005"), Unit: "l"}); !apperr.IsValidation(err) {
		t.Errorf("Create(1.005) error = %v, want validation error", err)
	}
	item := mustCreate(t, gormDB, CreateOpts{Name: "oil", Quantity: dec("1.50"), Unit: "l"})
	for _, action := range Actions {
		if _, err := Adjust(gormDB, item.ID, action, dec("0.001")); !apperr.IsValidation(err) {
			t.Errorf("Adjust(%s 0.001) error = %v, want validation error", action, err)
		}
	}
}

func TestAdjust_UpdatedAtMonotonic(t *testing.T) {
	gormDB := testdb.Open(t)
	item := mustCreate(t, gormDB, CreateOpts{Name: "hay", Quantity: dec("10"), Unit: "kg"})

	ahead := time.Now().Add(time.Hour)
	if err := gormDB.Model(&models.InventoryItem{}).Where("id = ?", item.ID).UpdateColumn("updated_at", ahead).Error; err != nil {
		t.Fatalf("set updated_at: %v", err)
	}
	if _, err := Adjust(gormDB, item.ID, ActionAdd, dec("1")); err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	got, _ := Get(gormDB, item.ID)
	if got.UpdatedAt.Before(ahead) {
		t.Errorf("updated_at moved backwards: %v < %v", got.UpdatedAt, ahead)
	}

	before := got.UpdatedAt
	if err := gormDB.Model(&models.InventoryItem{}).Where("id = ?", item.ID).UpdateColumn("updated_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("set updated_at: %v", err)
	}
	if _, err := Adjust(gormDB, item.ID, ActionAdd, dec("1")); err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	got, _ = Get(gormDB, item.ID)
	if !got.UpdatedAt.After(time.Now().Add(-time.Minute)) || !got.UpdatedAt.Before(before) {
		t.Errorf("updated_at = %v, want stamped now", got.UpdatedAt)
	}
}

func TestAdjust_Rejects(t *testing.T) {
	gormDB := testdb.Open(t)
	item := mustCreate(t, gormDB, CreateOpts{Name: "grain", Quantity: dec("10")})

	if _, err := Adjust(gormDB, item.ID, "multiply", dec("2")); !apperr.IsValidation(err) {
		t.Errorf("Adjust(multiply) error = %v, want validation error", err)
	}
	if _, err := Adjust(gormDB, item.ID, ActionAdd, dec("-5")); !apperr.IsValidation(err) {
		t.Errorf("Adjust(add -5) error = %v, want validation error", err)
	}
	if _, err := Adjust(gormDB, 404, ActionAdd, dec("1")); !apperr.IsNotFound(err) {
		t.Errorf("Adjust(missing) error = %v, want not found", err)
	}
	stored, _ := Get(gormDB, item.ID)
	if !stored.Quantity.Equal(dec("10")) {
		t.Errorf("quantity = %s after rejected adjusts, want 10", stored.Quantity)
	}
}

func TestAdjust_Concurrent(t *testing.T) {
	gormDB := testdb.Open(t)
	item := mustCreate(t, gormDB, CreateOpts{Name: "feed", Quantity: dec("0")})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Adjust(gormDB, item.ID, ActionAdd, dec("1")); err != nil {
				t.Errorf("Adjust: %v", err)
			}
		}()
	}
	wg.Wait()

	stored, _ := Get(gormDB, item.ID)
	if !stored.Quantity.Equal(dec("20")) {
		t.Errorf("quantity = %s, want 20", stored.Quantity)
	}
}

func TestUpdate(t *testing.T) {
	gormDB := testdb.Open(t)
	expiry := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	item := mustCreate(t, gormDB, CreateOpts{Name: "vaccine", Quantity: dec("5"), ExpiryDate: &expiry})

	name, min := "Vaccine A", dec("2")
	got, err := Update(gormDB, item.ID, UpdateOpts{Name: &name, MinQuantity: &min, ClearExpiryDate: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Name != name {
		t.Errorf("Name = %q, want %q", got.Name, name)
	}
	if !got.MinQuantity.Valid || !got.MinQuantity.Decimal.Equal(min) {
		t.Errorf("MinQuantity = %+v, want 2", got.MinQuantity)
	}
	if got.ExpiryDate != nil {
		t.Errorf("ExpiryDate = %v, want cleared", got.ExpiryDate)
	}
	if !got.Quantity.Equal(dec("5")) {
		t.Errorf("Quantity = %s, want untouched 5", got.Quantity)
	}
	if got.UpdatedAt.Before(item.UpdatedAt) {
		t.Errorf("UpdatedAt moved backwards")
	}

	empty := " "
	if _, err := Update(gormDB, item.ID, UpdateOpts{Name: &empty}); !apperr.IsValidation(err) {
		t.Errorf("Update(empty name) error = %v, want validation error", err)
	}
	if _, err := Update(gormDB, 404, UpdateOpts{Name: &name}); !apperr.IsNotFound(err) {
		t.Errorf("Update(missing) error = %v, want not found", err)
	}
}

func TestLowStockAndExpiring(t *testing.T) {
	gormDB := testdb.Open(t)
	soon := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	later := time.Date(2027, 1, 5, 0, 0, 0, 0, time.UTC)
	mustCreate(t, gormDB, CreateOpts{Name: "low", Quantity: dec("1"), MinQuantity: decimal.NewNullDecimal(dec("5")), ExpiryDate: &soon})
	mustCreate(t, gormDB, CreateOpts{Name: "edge", Quantity: dec("5"), MinQuantity: decimal.NewNullDecimal(dec("5"))})
	mustCreate(t, gormDB, CreateOpts{Name: "plenty", Quantity: dec("50"), MinQuantity: decimal.NewNullDecimal(dec("5")), ExpiryDate: &later})
	mustCreate(t, gormDB, CreateOpts{Name: "untracked", Quantity: dec("0")})

	low, err := LowStock(gormDB, nil)
	if err != nil {
		t.Fatalf("LowStock: %v", err)
	}
	if len(low) != 2 || low[0].Name != "edge" || low[1].Name != "low" {
		t.Errorf("LowStock = %+v, want edge and low", low)
	}

	exp, err := Expiring(gormDB, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expiring: %v", err)
	}
	if len(exp) != 1 || exp[0].Name != "low" {
		t.Errorf("Expiring = %+v, want low", exp)
	}
}
