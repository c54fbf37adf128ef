package types

import "testing"

func TestString_Rendering(t *testing.T) {
	cases := []struct {
		typ  DataType
		want string
	}{
		{Int, "INT"},
		{Long, "BIGINT"},
		{String, "TEXT"},
		{Uuid, "UUID"},
		{ArrayType{Elem: Int, ContainsNull: true}, "ARRAY<INT>"},
		{MapType{Key: Int, Value: String}, "MAP<INT, TEXT>"},
		{ArrayType{Elem: ArrayType{Elem: Double}}, "ARRAY<ARRAY<DOUBLE>>"},
	}
	for _, c := range cases {
		if got := c.typ.String(); got != c.want {
			t.Fatalf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestEqualsStructurally(t *testing.T) {
	a := ArrayType{Elem: Int, ContainsNull: false}
	b := ArrayType{Elem: Int, ContainsNull: true}
	if !SameType(a, b) {
		t.Fatalf("SameType must ignore nullability flags")
	}
	if EqualsStructurally(a, b, false) {
		t.Fatalf("strict equality must compare nullability flags")
	}
	if !EqualsStructurally(a, b, true) {
		t.Fatalf("loose equality must ignore nullability flags")
	}
	if SameType(a, ArrayType{Elem: Long}) {
		t.Fatalf("element types must still be compared")
	}

	m1 := MapType{Key: Int, Value: ArrayType{Elem: String, ContainsNull: true}, ValueContainsNull: false}
	m2 := MapType{Key: Int, Value: ArrayType{Elem: String, ContainsNull: false}, ValueContainsNull: true}
	if !SameType(m1, m2) {
		t.Fatalf("nested flags must be ignored recursively")
	}
	if EqualsStructurally(m1, m2, false) {
		t.Fatalf("nested flags must be compared strictly")
	}
	if SameType(m1, a) {
		t.Fatalf("map and array are never the same type")
	}
	if SameType(Int, Long) {
		t.Fatalf("distinct atomics are never the same type")
	}
}

func TestCommonTypeDifferingOnlyInNullFlags(t *testing.T) {
	a := ArrayType{Elem: Int, ContainsNull: false}
	b := ArrayType{Elem: Int, ContainsNull: true}
	got, ok := CommonTypeDifferingOnlyInNullFlags(a, b)
	if !ok {
		t.Fatalf("expected a common type")
	}
	if at := got.(ArrayType); !at.ContainsNull {
		t.Fatalf("common type must OR the nullability flags")
	}

	if _, ok := CommonTypeDifferingOnlyInNullFlags(a, ArrayType{Elem: Long}); ok {
		t.Fatalf("different element types have no common null-flag type")
	}

	got, ok = CommonTypeDifferingOnlyInNullFlags(Int, Int)
	if !ok || got != Int {
		t.Fatalf("atomic common type = %v, %v", got, ok)
	}
}

func TestHashableOrderable(t *testing.T) {
	for _, tt := range []Atomic{Bool, Int, Long, Double, String, Decimal, Uuid, Date, Timestamp} {
		if !Hashable(tt) {
			t.Fatalf("%s should be hashable", tt)
		}
	}
	if Hashable(Binary) {
		t.Fatalf("binary takes the ordering path")
	}
	if Hashable(ArrayType{Elem: Int}) {
		t.Fatalf("nested types are not hashable")
	}
	if !Orderable(Binary) || !Orderable(Decimal) {
		t.Fatalf("all atomics are orderable")
	}
	if Orderable(MapType{Key: Int, Value: Int}) {
		t.Fatalf("maps are not orderable")
	}
}

func TestExpectations(t *testing.T) {
	if !AnyType.Accepts(Int) || !AnyType.Accepts(ArrayType{Elem: Int}) {
		t.Fatalf("AnyType accepts everything")
	}
	if !AnyArray.Accepts(ArrayType{Elem: Int}) || AnyArray.Accepts(Int) {
		t.Fatalf("AnyArray accepts arrays only")
	}
	if !AnyMap.Accepts(MapType{Key: Int, Value: Int}) || AnyMap.Accepts(Int) {
		t.Fatalf("AnyMap accepts maps only")
	}
	if !Exactly(Bool).Accepts(Bool) || Exactly(Bool).Accepts(Int) {
		t.Fatalf("Exactly matches structurally")
	}
}
