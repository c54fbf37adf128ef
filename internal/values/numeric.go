package values

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AsFloat reports a numeric value as float64.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// AsInt reports an integral value as int64.
func AsInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	}
	return 0, false
}

// DecimalFromAny attempts to convert a value to decimal.Decimal.
func DecimalFromAny(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case string:
		d, err := decimal.NewFromString(x)
		return d, err == nil
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case float64:
		return decimal.NewFromFloat(x), true
	}
	return decimal.Decimal{}, false
}

// IsDecimal reports whether v is a decimal value.
func IsDecimal(v any) bool {
	_, ok := v.(decimal.Decimal)
	return ok
}

// DecimalOp applies an arithmetic operator to two decimal-coercible
// values.
func DecimalOp(op string, a, b any) (decimal.Decimal, error) {
	da, ok := DecimalFromAny(a)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("cannot convert %T to decimal", a)
	}
	db, ok := DecimalFromAny(b)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("cannot convert %T to decimal", b)
	}
	switch op {
	case "+":
		return da.Add(db), nil
	case "-":
		return da.Sub(db), nil
	case "*":
		return da.Mul(db), nil
	case "/":
		if db.IsZero() {
			return decimal.Decimal{}, fmt.Errorf("decimal division by zero")
		}
		return da.Div(db), nil
	case "%":
		if db.IsZero() {
			return decimal.Decimal{}, fmt.Errorf("decimal division by zero")
		}
		return da.Mod(db), nil
	}
	return decimal.Decimal{}, fmt.Errorf("unknown decimal operator %q", op)
}

// CompareAny orders two non-NULL values without a declared type, coercing
// across the numeric kinds. Used by scalar comparisons where operand
// types may differ in width.
func CompareAny(a, b any) (int, error) {
	if IsDecimal(a) || IsDecimal(b) {
		da, aok := DecimalFromAny(a)
		db, bok := DecimalFromAny(b)
		if aok && bok {
			return da.Cmp(db), nil
		}
		return 0, fmt.Errorf("incomparable %T and %T", a, b)
	}
	if af, ok := AsFloat(a); ok {
		if bf, ok := AsFloat(b); ok {
			return cmpOrdered(af, bf), nil
		}
		return 0, fmt.Errorf("incomparable %T and %T", a, b)
	}
	switch ax := a.(type) {
	case string:
		if bs, ok := b.(string); ok {
			return collateStrings(ax, bs), nil
		}
	case bool:
		if bb, ok := b.(bool); ok {
			return cmpBool(ax, bb), nil
		}
	}
	return 0, fmt.Errorf("incomparable %T and %T", a, b)
}
