package schema

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zulandar/shamba/internal/apperr"
)

var testEntity = Entity{
	Name: "harvest",
	Fields: []Field{
		{Name: "planting_id", Kind: Ref, Required: true},
		{Name: "harvest_date", Kind: Time, Required: true},
		{Name: "quantity", Kind: Decimal, Required: true, NonNeg: true, Places: 2},
		{Name: "quality_rating", Kind: Int, Min: Bound(1), Max: Bound(5)},
		{Name: "grade", Kind: String, OneOf: []string{"a", "b"}},
		{Name: "notes", Kind: String, MaxLen: 10},
		{Name: "size", Kind: Decimal, Positive: true},
	},
}

func validValues() Values {
	return Values{
		"planting_id":  uint(3),
		"harvest_date": time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		"quantity":     decimal.NewFromInt(10),
	}
}

func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if ve.Field != field {
		t.Errorf("field = %q, want %q (reason %q)", ve.Field, field, ve.Reason)
	}
	if ve.Entity != "harvest" {
		t.Errorf("entity = %q, want harvest", ve.Entity)
	}
}

func TestValidate_OK(t *testing.T) {
	if err := testEntity.Validate(validValues()); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestValidate_Violations(t *testing.T) {
	five := 5
	six := 6
	var nilRating *int
	tests := []struct {
		name  string
		key   string
		value any
		field string
	}{
		{"missing ref", "planting_id", nil, "planting_id"},
		{"zero ref", "planting_id", uint(0), "planting_id"},
		{"zero time", "harvest_date", time.Time{}, "harvest_date"},
		{"negative quantity", "quantity", decimal.NewFromInt(-1), "quantity"},
		{"rating above range", "quality_rating", &six, "quality_rating"},
		{"rating below range", "quality_rating", 0, "quality_rating"},
		{"enum", "grade", "c", "grade"},
		{"too long", "notes", "abcdefghijk", "notes"},
		{"not positive", "size", decimal.Zero, "size"},
		{"type mismatch", "quantity", "ten", "quantity"},
		{"too many places", "quantity", decimal.RequireFromString("1.234"), "quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validValues()
			v[tt.key] = tt.value
			assertFieldError(t, testEntity.Validate(v), tt.field)
		})
	}

	t.Run("optional nil pointer is fine", func(t *testing.T) {
		v := validValues()
		v["quality_rating"] = nilRating
		if err := testEntity.Validate(v); err != nil {
			t.Errorf("Validate() = %v", err)
		}
	})
	t.Run("trailing zeros within places", func(t *testing.T) {
		v := validValues()
		v["quantity"] = decimal.RequireFromString("1.2300")
		if err := testEntity.Validate(v); err != nil {
			t.Errorf("Validate() = %v", err)
		}
	})
	t.Run("boundary rating", func(t *testing.T) {
		v := validValues()
		v["quality_rating"] = &five
		if err := testEntity.Validate(v); err != nil {
			t.Errorf("Validate() = %v", err)
		}
	})
}

func TestValidate_FirstViolationInDeclarationOrder(t *testing.T) {
	err := testEntity.Validate(Values{})
	assertFieldError(t, err, "planting_id")
}

func TestValidate_NullDecimal(t *testing.T) {
	v := validValues()
	v["size"] = decimal.NullDecimal{}
	if err := testEntity.Validate(v); err != nil {
		t.Errorf("invalid NullDecimal should count as unset: %v", err)
	}
	v["size"] = decimal.NullDecimal{Decimal: decimal.NewFromInt(-2), Valid: true}
	assertFieldError(t, testEntity.Validate(v), "size")
}

func TestValidatePartial(t *testing.T) {
	if err := testEntity.ValidatePartial(Values{"notes": "short"}); err != nil {
		t.Errorf("ValidatePartial() = %v", err)
	}
	assertFieldError(t, testEntity.ValidatePartial(Values{"quantity": decimal.NewFromInt(-5)}), "quantity")
	assertFieldError(t, testEntity.ValidatePartial(Values{"planting_id": uint(0)}), "planting_id")

	err := testEntity.ValidatePartial(Values{"id": uint(1)})
	assertFieldError(t, err, "id")
	if !strings.Contains(err.Error(), "not a mutable field") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestKind_String(t *testing.T) {
	if Decimal.String() != "decimal" || Ref.String() != "reference" {
		t.Errorf("unexpected kind names: %s %s", Decimal, Ref)
	}
}
