// Package schema describes entity fields declaratively and validates
// field maps against those descriptions with one generic routine.
package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/zulandar/shamba/internal/apperr"
)

// Kind is the value type a field holds.
type Kind int

const (
	String Kind = iota
	Int
	Decimal
	Time
	Ref // a non-zero id of another entity
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "integer"
	case Decimal:
		return "decimal"
	case Time:
		return "time"
	case Ref:
		return "reference"
	default:
		return "unknown"
	}
}

// Field is the declared shape of one entity attribute.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	MaxLen   int      // String: maximum length in characters, 0 = unbounded
	OneOf    []string // String: allowed values when set
	Positive bool     // Int/Decimal: must be > 0
	NonNeg   bool     // Int/Decimal: must be >= 0
	Places   int      // Decimal: maximum fractional digits, 0 = unbounded
	Min, Max *int     // Int: inclusive bounds
}

// Entity is the schema of one entity type.
type Entity struct {
	Name   string
	Fields []Field
}

// Values maps field names to candidate values. A missing key, a nil value
// and a nil pointer all mean "not set".
type Values map[string]any

// Bound returns a pointer to n for use as Field.Min/Field.Max.
func Bound(n int) *int { return &n }

// Validate checks a complete record: every required field must be set.
// Fields are checked in declaration order and the first violation is
// returned as an *apperr.ValidationError.
func (e Entity) Validate(v Values) error {
	return e.check(v, false)
}

// ValidatePartial checks an update: only fields present in v are checked,
// but a present required field must still be non-empty.
func (e Entity) ValidatePartial(v Values) error {
	for name := range v {
		if _, ok := e.field(name); !ok {
			return apperr.Invalid(e.Name, name, "is not a mutable field")
		}
	}
	return e.check(v, true)
}

// field returns the declaration for name.
func (e Entity) field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (e Entity) check(v Values, partial bool) error {
	for _, f := range e.Fields {
		raw, present := v[f.Name]
		if partial && !present {
			continue
		}
		val, set := deref(raw)
		if !set || isEmpty(f.Kind, val) {
			if f.Required {
				return apperr.Invalid(e.Name, f.Name, "is required")
			}
			continue
		}
		if err := e.checkValue(f, val); err != nil {
			return err
		}
	}
	return nil
}

func (e Entity) checkValue(f Field, val any) error {
	switch f.Kind {
	case String:
		s, ok := val.(string)
		if !ok {
			return e.typeMismatch(f, val)
		}
		if f.MaxLen > 0 && utf8.RuneCountInString(s) > f.MaxLen {
			return apperr.Invalid(e.Name, f.Name, fmt.Sprintf("must be at most %d characters", f.MaxLen))
		}
		if len(f.OneOf) > 0 && !contains(f.OneOf, s) {
			return apperr.Invalid(e.Name, f.Name, fmt.Sprintf("must be one of %s", strings.Join(f.OneOf, ", ")))
		}
	case Int:
		n, ok := toInt(val)
		if !ok {
			return e.typeMismatch(f, val)
		}
		if err := e.checkSign(f, decimal.NewFromInt(n)); err != nil {
			return err
		}
		if f.Min != nil && n < int64(*f.Min) {
			return apperr.Invalid(e.Name, f.Name, fmt.Sprintf("must be >= %d", *f.Min))
		}
		if f.Max != nil && n > int64(*f.Max) {
			return apperr.Invalid(e.Name, f.Name, fmt.Sprintf("must be <= %d", *f.Max))
		}
	case Decimal:
		d, ok := toDecimal(val)
		if !ok {
			return e.typeMismatch(f, val)
		}
		if f.Places > 0 && !d.Equal(d.Round(int32(f.Places))) {
			return apperr.Invalid(e.Name, f.Name, fmt.Sprintf("must have at most %d decimal places", f.Places))
		}
		return e.checkSign(f, d)
	case Time:
		if _, ok := val.(time.Time); !ok {
			return e.typeMismatch(f, val)
		}
	case Ref:
		if _, ok := toInt(val); !ok {
			return e.typeMismatch(f, val)
		}
	}
	return nil
}

func (e Entity) checkSign(f Field, d decimal.Decimal) error {
	if f.Positive && !d.IsPositive() {
		return apperr.Invalid(e.Name, f.Name, "must be > 0")
	}
	if f.NonNeg && d.IsNegative() {
		return apperr.Invalid(e.Name, f.Name, "must be >= 0")
	}
	return nil
}

func (e Entity) typeMismatch(f Field, val any) error {
	return apperr.Invalid(e.Name, f.Name, fmt.Sprintf("expected %s, got %T", f.Kind, val))
}

// deref unwraps pointers and nullable decimals, reporting whether a value is set.
func deref(raw any) (any, bool) {
	if raw == nil {
		return nil, false
	}
	if nd, ok := raw.(decimal.NullDecimal); ok {
		return nd.Decimal, nd.Valid
	}
	rv := reflect.ValueOf(raw)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	return rv.Interface(), true
}

func isEmpty(k Kind, val any) bool {
	switch k {
	case String:
		s, ok := val.(string)
		return ok && strings.TrimSpace(s) == ""
	case Time:
		t, ok := val.(time.Time)
		return ok && t.IsZero()
	case Ref:
		n, ok := toInt(val)
		return ok && n == 0
	}
	return false
}

func toInt(val any) (int64, bool) {
	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), true
	}
	return 0, false
}

func toDecimal(val any) (decimal.Decimal, bool) {
	if d, ok := val.(decimal.Decimal); ok {
		return d, true
	}
	if n, ok := toInt(val); ok {
		return decimal.NewFromInt(n), true
	}
	return decimal.Decimal{}, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
