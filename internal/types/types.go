// Package types defines the nominal data types used by the lambdaSQL
// expression core.
//
// What: Scalar types plus nested ARRAY and MAP types, each carrying
// nullability flags for its elements or values. Two structural equalities
// are provided: a strict one that compares nullability flags and a loose
// one that ignores them recursively.
// How: DataType is a small sealed interface; scalars are an enum, nested
// types are value structs holding their element types. All comparisons are
// recursive switches over the concrete kinds.
// Why: Higher-order functions must infer lambda parameter types from their
// argument types, which requires a real type algebra rather than the flat
// column-type enum a plain executor can get away with.
package types

import "fmt"

// DataType is the nominal type of an expression or value.
// Implementations are Atomic, ArrayType, and MapType.
type DataType interface {
	fmt.Stringer
	dataType()
}

// Atomic enumerates the scalar data types.
type Atomic int

const (
	Bool Atomic = iota
	Int
	Long
	Double
	String
	Binary
	Decimal
	Uuid
	Date
	Timestamp
)

func (Atomic) dataType() {}

var atomicNames = map[Atomic]string{
	Bool:      "BOOL",
	Int:       "INT",
	Long:      "BIGINT",
	Double:    "DOUBLE",
	String:    "TEXT",
	Binary:    "BLOB",
	Decimal:   "DECIMAL",
	Uuid:      "UUID",
	Date:      "DATE",
	Timestamp: "TIMESTAMP",
}

func (a Atomic) String() string {
	if s, ok := atomicNames[a]; ok {
		return s
	}
	return fmt.Sprintf("ATOMIC(%d)", int(a))
}

// ArrayType is an array of Elem values. ContainsNull reports whether
// elements may be NULL.
type ArrayType struct {
	Elem         DataType
	ContainsNull bool
}

func (ArrayType) dataType() {}

func (t ArrayType) String() string {
	return "ARRAY<" + t.Elem.String() + ">"
}

// MapType is a map from Key to Value. Keys are never NULL;
// ValueContainsNull reports whether values may be NULL.
type MapType struct {
	Key               DataType
	Value             DataType
	ValueContainsNull bool
}

func (MapType) dataType() {}

func (t MapType) String() string {
	return "MAP<" + t.Key.String() + ", " + t.Value.String() + ">"
}

// SameType reports whether a and b are structurally equal ignoring
// nullability flags.
func SameType(a, b DataType) bool {
	return EqualsStructurally(a, b, true)
}

// EqualsStructurally compares two types structurally. When
// ignoreNullability is true the ContainsNull/ValueContainsNull flags are
// ignored at every nesting level.
func EqualsStructurally(a, b DataType, ignoreNullability bool) bool {
	switch at := a.(type) {
	case Atomic:
		bt, ok := b.(Atomic)
		return ok && at == bt
	case ArrayType:
		bt, ok := b.(ArrayType)
		if !ok {
			return false
		}
		if !ignoreNullability && at.ContainsNull != bt.ContainsNull {
			return false
		}
		return EqualsStructurally(at.Elem, bt.Elem, ignoreNullability)
	case MapType:
		bt, ok := b.(MapType)
		if !ok {
			return false
		}
		if !ignoreNullability && at.ValueContainsNull != bt.ValueContainsNull {
			return false
		}
		return EqualsStructurally(at.Key, bt.Key, ignoreNullability) &&
			EqualsStructurally(at.Value, bt.Value, ignoreNullability)
	}
	return false
}

// CommonTypeDifferingOnlyInNullFlags returns the least common supertype of
// two types that differ only in their nullability flags: the same shape
// with each flag OR-ed. Reports false when the types are not SameType.
func CommonTypeDifferingOnlyInNullFlags(a, b DataType) (DataType, bool) {
	if !SameType(a, b) {
		return nil, false
	}
	return mergeNullFlags(a, b), true
}

func mergeNullFlags(a, b DataType) DataType {
	switch at := a.(type) {
	case ArrayType:
		bt := b.(ArrayType)
		return ArrayType{
			Elem:         mergeNullFlags(at.Elem, bt.Elem),
			ContainsNull: at.ContainsNull || bt.ContainsNull,
		}
	case MapType:
		bt := b.(MapType)
		return MapType{
			Key:               mergeNullFlags(at.Key, bt.Key),
			Value:             mergeNullFlags(at.Value, bt.Value),
			ValueContainsNull: at.ValueContainsNull || bt.ValueContainsNull,
		}
	}
	return a
}

// Hashable reports whether values of t can serve as hash-map keys: every
// atomic type except Binary (slices do not hash). Binary keys fall back
// to the ordering-based key path.
func Hashable(t DataType) bool {
	a, ok := t.(Atomic)
	if !ok {
		return false
	}
	return a != Binary
}

// Orderable reports whether values of t have a total order.
func Orderable(t DataType) bool {
	_, ok := t.(Atomic)
	return ok
}
