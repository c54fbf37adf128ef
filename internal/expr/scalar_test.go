package expr

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/SimonWaldherr/lambdaSQL/internal/types"
)

func TestBinary_ArithmeticPromotion(t *testing.T) {
	cases := []struct {
		op       string
		l, r     any
		lt, rt   types.DataType
		want     any
		wantType types.DataType
	}{
		{"+", 2, 3, types.Int, types.Int, int32(5), types.Int},
		{"+", 2, 3, types.Long, types.Int, int64(5), types.Long},
		{"*", 2, 2.5, types.Int, types.Double, 5.0, types.Double},
		{"%", 7, 2, types.Int, types.Int, int32(1), types.Int},
		{"/", 1, 2, types.Int, types.Int, 0.5, types.Double},
		{"-", 5, 7, types.Int, types.Int, int32(-2), types.Int},
	}
	for _, c := range cases {
		b := &Binary{Op: c.op, Left: MustLiteral(c.l, c.lt), Right: MustLiteral(c.r, c.rt)}
		if got := b.DataType(); got != c.wantType {
			t.Fatalf("%v %s %v: type = %s, want %s", c.l, c.op, c.r, got, c.wantType)
		}
		v, err := b.Eval(nil)
		if err != nil {
			t.Fatalf("%v %s %v: %v", c.l, c.op, c.r, err)
		}
		if v != c.want {
			t.Fatalf("%v %s %v = %v (%T), want %v (%T)", c.l, c.op, c.r, v, v, c.want, c.want)
		}
	}
}

func TestBinary_DecimalArithmetic(t *testing.T) {
	b := &Binary{
		Op:    "+",
		Left:  MustLiteral("1.25", types.Decimal),
		Right: MustLiteral("0.75", types.Decimal),
	}
	if b.DataType() != types.Decimal {
		t.Fatalf("decimal + decimal must stay DECIMAL")
	}
	v, err := b.Eval(nil)
	if err != nil {
		t.Fatalf("decimal add: %v", err)
	}
	if !v.(decimal.Decimal).Equal(decimal.NewFromInt(2)) {
		t.Fatalf("1.25 + 0.75 = %v", v)
	}
}

func TestBinary_NullPropagation(t *testing.T) {
	null := MustLiteral(nil, types.Int)
	one := MustLiteral(1, types.Int)
	for _, op := range []string{"+", "-", "*", "%", "=", "<", ">="} {
		b := &Binary{Op: op, Left: null, Right: one}
		v, err := b.Eval(nil)
		if err != nil {
			t.Fatalf("%s with NULL: %v", op, err)
		}
		if v != nil {
			t.Fatalf("%s with NULL = %v, want NULL", op, v)
		}
	}
}

func TestBinary_TriStateLogic(t *testing.T) {
	tr := MustLiteral(true, types.Bool)
	fa := MustLiteral(false, types.Bool)
	nu := MustLiteral(nil, types.Bool)
	cases := []struct {
		op   string
		l, r Expression
		want any
	}{
		{"AND", tr, nu, nil},
		{"AND", fa, nu, false},
		{"AND", tr, tr, true},
		{"OR", tr, nu, true},
		{"OR", fa, nu, nil},
		{"OR", fa, fa, false},
	}
	for _, c := range cases {
		v, err := (&Binary{Op: c.op, Left: c.l, Right: c.r}).Eval(nil)
		if err != nil {
			t.Fatalf("%s: %v", c.op, err)
		}
		if v != c.want {
			t.Fatalf("%v %s %v = %v, want %v", c.l, c.op, c.r, v, c.want)
		}
	}

	if v, _ := (&Unary{Op: "NOT", Child: nu}).Eval(nil); v != nil {
		t.Fatalf("NOT NULL = %v, want NULL", v)
	}
	if v, _ := (&Unary{Op: "NOT", Child: fa}).Eval(nil); v != true {
		t.Fatalf("NOT false = %v", v)
	}
}

func TestUnary_Negate(t *testing.T) {
	if v, err := (&Unary{Op: "-", Child: MustLiteral(3, types.Int)}).Eval(nil); err != nil || v != int32(-3) {
		t.Fatalf("-3 = %v, %v", v, err)
	}
	if v, err := (&Unary{Op: "-", Child: MustLiteral(nil, types.Int)}).Eval(nil); err != nil || v != nil {
		t.Fatalf("-NULL = %v, %v", v, err)
	}
}

func TestIsNull(t *testing.T) {
	if v, _ := (&IsNull{Child: MustLiteral(nil, types.Int)}).Eval(nil); v != true {
		t.Fatalf("IS NULL on NULL = %v", v)
	}
	if v, _ := (&IsNull{Child: MustLiteral(1, types.Int), Negate: true}).Eval(nil); v != true {
		t.Fatalf("IS NOT NULL on 1 = %v", v)
	}
}

func TestFuncCall_ConcatCoalesce(t *testing.T) {
	concat := &FuncCall{Name: "concat", Args: []Expression{
		MustLiteral("a", types.String), MustLiteral("b", types.String),
	}}
	if concat.DataType() != types.String {
		t.Fatalf("concat type = %s", concat.DataType())
	}
	if v, err := concat.Eval(nil); err != nil || v != "ab" {
		t.Fatalf("concat = %v, %v", v, err)
	}

	withNull := &FuncCall{Name: "CONCAT", Args: []Expression{
		MustLiteral("a", types.String), MustLiteral(nil, types.String),
	}}
	if v, _ := withNull.Eval(nil); v != nil {
		t.Fatalf("concat with NULL = %v, want NULL", v)
	}

	coalesce := &FuncCall{Name: "COALESCE", Args: []Expression{
		MustLiteral(nil, types.String), MustLiteral("x", types.String),
	}}
	if v, _ := coalesce.Eval(nil); v != "x" {
		t.Fatalf("coalesce = %v", v)
	}
	if coalesce.Nullable() {
		t.Fatalf("coalesce with a non-null argument is not nullable")
	}
}

func TestCast(t *testing.T) {
	c := &Cast{Child: MustLiteral(3, types.Int), To: types.Long}
	if c.DataType() != types.Long {
		t.Fatalf("cast type = %s", c.DataType())
	}
	if v, err := c.Eval(nil); err != nil || v != int64(3) {
		t.Fatalf("cast = %v, %v", v, err)
	}
	d := &Cast{Child: MustLiteral(3, types.Int), To: types.Decimal}
	v, err := d.Eval(nil)
	if err != nil {
		t.Fatalf("cast to decimal: %v", err)
	}
	if !v.(decimal.Decimal).Equal(decimal.NewFromInt(3)) {
		t.Fatalf("cast to decimal = %v", v)
	}
}

func TestColumnRef(t *testing.T) {
	c := &ColumnRef{Name: "id", Typ: types.Int, Nilable: false}
	if v, err := c.Eval(Row{"id": int32(10)}); err != nil || v != int32(10) {
		t.Fatalf("column eval = %v, %v", v, err)
	}
	if _, err := c.Eval(Row{}); err == nil {
		t.Fatalf("expected error for unknown column")
	}
}
