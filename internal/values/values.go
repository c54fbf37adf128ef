// Package values provides the runtime value model for the lambdaSQL
// expression core.
//
// What: Values are plain Go values (any) with nil standing in for SQL
// NULL. Arrays and maps are exposed to operators through read-only views
// (ArrayData, MapData) with positional access; writable counterparts
// (GenericArrayData, ArrayBasedMapData) assemble operator outputs.
// How: ArrayData is backed by a []any; MapData pairs a key array with a
// value array of equal length. Comparison and key hashing are type-driven
// switches over the scalar kinds.
// Why: Keeping values untyped at the Go level and nullable via nil keeps
// the evaluator small, while the container views give higher-order
// functions a stable iteration contract (positional pairing, first
// occurrence wins for duplicate map keys).
package values

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SimonWaldherr/lambdaSQL/internal/types"
)

// ArrayData is a read-only positional view of an array value.
// Get returns nil for a NULL element.
type ArrayData interface {
	NumElements() int
	Get(i int) any
	IsNullAt(i int) bool
}

// GenericArrayData is a writable ArrayData backed by a slice.
type GenericArrayData []any

func (a GenericArrayData) NumElements() int  { return len(a) }
func (a GenericArrayData) Get(i int) any     { return a[i] }
func (a GenericArrayData) IsNullAt(i int) bool { return a[i] == nil }

// NewArrayData wraps a slice as an ArrayData view.
func NewArrayData(elems []any) ArrayData { return GenericArrayData(elems) }

// MapData is a read-only view of a map value. Keys and values are paired
// positionally; both arrays have equal length and keys are never NULL.
// Duplicate keys are permitted; consumers that construct new keys apply a
// first-occurrence-wins rule.
type MapData struct {
	keys   ArrayData
	values ArrayData
}

// ArrayBasedMapData builds a MapData from parallel key and value arrays.
// It panics when the lengths differ, which indicates an evaluator bug
// rather than bad user data.
func ArrayBasedMapData(keys, vals ArrayData) MapData {
	if keys.NumElements() != vals.NumElements() {
		panic(fmt.Sprintf("map arrays length mismatch: %d keys, %d values",
			keys.NumElements(), vals.NumElements()))
	}
	return MapData{keys: keys, values: vals}
}

// NewMapFromPairs builds a MapData from alternating key, value arguments.
func NewMapFromPairs(pairs ...any) MapData {
	if len(pairs)%2 != 0 {
		panic("NewMapFromPairs requires an even number of arguments")
	}
	n := len(pairs) / 2
	keys := make(GenericArrayData, 0, n)
	vals := make(GenericArrayData, 0, n)
	for i := 0; i < len(pairs); i += 2 {
		keys = append(keys, pairs[i])
		vals = append(vals, pairs[i+1])
	}
	return ArrayBasedMapData(keys, vals)
}

func (m MapData) KeyArray() ArrayData   { return m.keys }
func (m MapData) ValueArray() ArrayData { return m.values }
func (m MapData) NumEntries() int       { return m.keys.NumElements() }

// Canonical coerces a Go value to the canonical runtime representation of
// type t: INT is int32, BIGINT is int64, DOUBLE is float64, and so on.
// Untyped Go ints from literals and tests are widened or narrowed as
// needed. nil passes through as NULL.
func Canonical(v any, t types.DataType) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch tt := t.(type) {
	case types.Atomic:
		return canonicalAtomic(v, tt)
	case types.ArrayType:
		switch av := v.(type) {
		case ArrayData:
			return av, nil
		case []any:
			out := make(GenericArrayData, len(av))
			for i, e := range av {
				ce, err := Canonical(e, tt.Elem)
				if err != nil {
					return nil, err
				}
				out[i] = ce
			}
			return out, nil
		}
	case types.MapType:
		if mv, ok := v.(MapData); ok {
			return mv, nil
		}
	}
	return nil, fmt.Errorf("cannot represent %T as %s", v, t)
}

func canonicalAtomic(v any, t types.Atomic) (any, error) {
	switch t {
	case types.Bool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case types.Int:
		switch x := v.(type) {
		case int32:
			return x, nil
		case int:
			return int32(x), nil
		case int64:
			return int32(x), nil
		}
	case types.Long:
		switch x := v.(type) {
		case int64:
			return x, nil
		case int:
			return int64(x), nil
		case int32:
			return int64(x), nil
		}
	case types.Double:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case int:
			return float64(x), nil
		case int32:
			return float64(x), nil
		case int64:
			return float64(x), nil
		}
	case types.String:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case types.Binary:
		if b, ok := v.([]byte); ok {
			return b, nil
		}
	case types.Decimal:
		switch x := v.(type) {
		case decimal.Decimal:
			return x, nil
		case string:
			return decimal.NewFromString(x)
		case int:
			return decimal.NewFromInt(int64(x)), nil
		case int32:
			return decimal.NewFromInt(int64(x)), nil
		case int64:
			return decimal.NewFromInt(x), nil
		case float64:
			return decimal.NewFromFloat(x), nil
		}
	case types.Uuid:
		switch x := v.(type) {
		case uuid.UUID:
			return x, nil
		case string:
			return uuid.Parse(x)
		case []byte:
			return uuid.FromBytes(x)
		}
	case types.Date, types.Timestamp:
		if ts, ok := v.(time.Time); ok {
			return ts, nil
		}
	}
	return nil, fmt.Errorf("cannot represent %T as %s", v, t)
}
