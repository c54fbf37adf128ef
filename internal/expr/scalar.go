package expr

import (
	"fmt"
	"strings"

	"github.com/SimonWaldherr/lambdaSQL/internal/types"
	"github.com/SimonWaldherr/lambdaSQL/internal/values"
)

// Tri-state boolean logic: SQL three-valued semantics with nil as
// unknown.
const (
	tvFalse   = 0
	tvTrue    = 1
	tvUnknown = 2
)

func toTri(v any) int {
	if v == nil {
		return tvUnknown
	}
	if b, ok := v.(bool); ok && b {
		return tvTrue
	}
	return tvFalse
}

func triToValue(t int) any {
	switch t {
	case tvTrue:
		return true
	case tvFalse:
		return false
	}
	return nil
}

func triNot(t int) int {
	switch t {
	case tvTrue:
		return tvFalse
	case tvFalse:
		return tvTrue
	}
	return tvUnknown
}

func triAnd(a, b int) int {
	if a == tvFalse || b == tvFalse {
		return tvFalse
	}
	if a == tvTrue && b == tvTrue {
		return tvTrue
	}
	return tvUnknown
}

func triOr(a, b int) int {
	if a == tvTrue || b == tvTrue {
		return tvTrue
	}
	if a == tvFalse && b == tvFalse {
		return tvFalse
	}
	return tvUnknown
}

// Binary applies a binary operator: arithmetic (+ - * / %), comparisons
// (= <> < <= > >=), and tri-state AND/OR.
type Binary struct {
	Op          string
	Left, Right Expression
}

func isComparisonOp(op string) bool {
	switch op {
	case "=", "<>", "!=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func isLogicalOp(op string) bool { return op == "AND" || op == "OR" }

func (b *Binary) DataType() types.DataType {
	if isComparisonOp(b.Op) || isLogicalOp(b.Op) {
		return types.Bool
	}
	return numericResultType(b.Op, b.Left.DataType(), b.Right.DataType())
}

// numericResultType promotes operand types: DECIMAL wins, then DOUBLE,
// then BIGINT, then INT. Division always produces DOUBLE unless a
// decimal operand is involved.
func numericResultType(op string, l, r types.DataType) types.DataType {
	if l == types.Decimal || r == types.Decimal {
		return types.Decimal
	}
	if op == "/" || l == types.Double || r == types.Double {
		return types.Double
	}
	if l == types.Long || r == types.Long {
		return types.Long
	}
	return types.Int
}

func (b *Binary) Nullable() bool {
	return b.Left.Nullable() || b.Right.Nullable()
}

func (b *Binary) Children() []Expression { return []Expression{b.Left, b.Right} }
func (b *Binary) Resolved() bool         { return childrenResolved(b) }

func (b *Binary) WithChildren(children []Expression) Expression {
	sameLen(b, children, 2)
	return &Binary{Op: b.Op, Left: children[0], Right: children[1]}
}

func (b *Binary) String() string {
	return fmt.Sprintf("(%v %s %v)", b.Left, b.Op, b.Right)
}

func (b *Binary) Eval(row Row) (any, error) {
	if isLogicalOp(b.Op) {
		return b.evalLogical(row)
	}
	lv, err := b.Left.Eval(row)
	if err != nil {
		return nil, err
	}
	rv, err := b.Right.Eval(row)
	if err != nil {
		return nil, err
	}
	if lv == nil || rv == nil {
		return nil, nil
	}
	if isComparisonOp(b.Op) {
		return evalComparison(b.Op, lv, rv, b.Left.DataType())
	}
	return evalArith(b.Op, lv, rv, b.DataType())
}

// AND/OR evaluate both sides even when the left short-circuits the
// tri-state outcome, so body errors are not masked by operand order.
func (b *Binary) evalLogical(row Row) (any, error) {
	lv, err := b.Left.Eval(row)
	if err != nil {
		return nil, err
	}
	rv, err := b.Right.Eval(row)
	if err != nil {
		return nil, err
	}
	if b.Op == "AND" {
		return triToValue(triAnd(toTri(lv), toTri(rv))), nil
	}
	return triToValue(triOr(toTri(lv), toTri(rv))), nil
}

func evalComparison(op string, lv, rv any, t types.DataType) (any, error) {
	c, err := values.CompareAny(lv, rv)
	if err != nil && t != nil {
		c, err = values.Compare(lv, rv, t)
	}
	if err != nil {
		return nil, err
	}
	switch op {
	case "=":
		return c == 0, nil
	case "<>", "!=":
		return c != 0, nil
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	}
	return nil, fmt.Errorf("unknown comparison operator %q", op)
}

func evalArith(op string, lv, rv any, result types.DataType) (any, error) {
	if values.IsDecimal(lv) || values.IsDecimal(rv) {
		return values.DecimalOp(op, lv, rv)
	}
	if result == types.Double {
		lf, lok := values.AsFloat(lv)
		rf, rok := values.AsFloat(rv)
		if !lok || !rok {
			return nil, fmt.Errorf("non-numeric operands %T, %T for %q", lv, rv, op)
		}
		switch op {
		case "+":
			return lf + rf, nil
		case "-":
			return lf - rf, nil
		case "*":
			return lf * rf, nil
		case "/":
			if rf == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return lf / rf, nil
		case "%":
			return nil, fmt.Errorf("modulo requires integral operands")
		}
		return nil, fmt.Errorf("unknown operator %q", op)
	}
	li, lok := values.AsInt(lv)
	ri, rok := values.AsInt(rv)
	if !lok || !rok {
		return nil, fmt.Errorf("non-numeric operands %T, %T for %q", lv, rv, op)
	}
	var out int64
	switch op {
	case "+":
		out = li + ri
	case "-":
		out = li - ri
	case "*":
		out = li * ri
	case "%":
		if ri == 0 {
			return nil, fmt.Errorf("modulo by zero")
		}
		out = li % ri
	default:
		return nil, fmt.Errorf("unknown operator %q", op)
	}
	if result == types.Int {
		return int32(out), nil
	}
	return out, nil
}

// Unary applies NOT or numeric negation.
type Unary struct {
	Op    string
	Child Expression
}

func (u *Unary) DataType() types.DataType {
	if u.Op == "NOT" {
		return types.Bool
	}
	return u.Child.DataType()
}

func (u *Unary) Nullable() bool         { return u.Child.Nullable() }
func (u *Unary) Children() []Expression { return []Expression{u.Child} }
func (u *Unary) Resolved() bool         { return childrenResolved(u) }

func (u *Unary) WithChildren(children []Expression) Expression {
	sameLen(u, children, 1)
	return &Unary{Op: u.Op, Child: children[0]}
}

func (u *Unary) Eval(row Row) (any, error) {
	v, err := u.Child.Eval(row)
	if err != nil {
		return nil, err
	}
	if u.Op == "NOT" {
		return triToValue(triNot(toTri(v))), nil
	}
	if v == nil {
		return nil, nil
	}
	switch u.Op {
	case "-":
		switch x := v.(type) {
		case int32:
			return -x, nil
		case int64:
			return -x, nil
		case float64:
			return -x, nil
		}
		if d, ok := values.DecimalFromAny(v); ok && values.IsDecimal(v) {
			return d.Neg(), nil
		}
		return nil, fmt.Errorf("unary - on %T", v)
	}
	return nil, fmt.Errorf("unknown unary operator %q", u.Op)
}

// IsNull tests for NULL, optionally negated.
type IsNull struct {
	Child  Expression
	Negate bool
}

func (n *IsNull) DataType() types.DataType { return types.Bool }
func (n *IsNull) Nullable() bool           { return false }
func (n *IsNull) Children() []Expression   { return []Expression{n.Child} }
func (n *IsNull) Resolved() bool           { return childrenResolved(n) }

func (n *IsNull) WithChildren(children []Expression) Expression {
	sameLen(n, children, 1)
	return &IsNull{Child: children[0], Negate: n.Negate}
}

func (n *IsNull) Eval(row Row) (any, error) {
	v, err := n.Child.Eval(row)
	if err != nil {
		return nil, err
	}
	is := v == nil
	if n.Negate {
		return !is, nil
	}
	return is, nil
}

// FuncCall evaluates a scalar builtin by name (CONCAT, COALESCE).
type FuncCall struct {
	Name string
	Args []Expression
}

func (f *FuncCall) name() string { return strings.ToUpper(f.Name) }

func (f *FuncCall) DataType() types.DataType {
	switch f.name() {
	case "CONCAT":
		return types.String
	case "COALESCE":
		if len(f.Args) > 0 {
			return f.Args[0].DataType()
		}
	}
	return nil
}

func (f *FuncCall) Nullable() bool {
	switch f.name() {
	case "CONCAT":
		for _, a := range f.Args {
			if a.Nullable() {
				return true
			}
		}
		return false
	case "COALESCE":
		for _, a := range f.Args {
			if !a.Nullable() {
				return false
			}
		}
		return true
	}
	return true
}

func (f *FuncCall) Children() []Expression { return f.Args }

func (f *FuncCall) Resolved() bool {
	return f.DataType() != nil && childrenResolved(f)
}

func (f *FuncCall) WithChildren(children []Expression) Expression {
	sameLen(f, children, len(f.Args))
	return &FuncCall{Name: f.Name, Args: children}
}

func (f *FuncCall) Eval(row Row) (any, error) {
	switch f.name() {
	case "CONCAT":
		var sb strings.Builder
		for _, a := range f.Args {
			v, err := a.Eval(row)
			if err != nil {
				return nil, err
			}
			if v == nil {
				return nil, nil
			}
			s, ok := v.(string)
			if !ok {
				s = fmt.Sprintf("%v", v)
			}
			sb.WriteString(s)
		}
		return sb.String(), nil
	case "COALESCE":
		for _, a := range f.Args {
			v, err := a.Eval(row)
			if err != nil {
				return nil, err
			}
			if v != nil {
				return v, nil
			}
		}
		return nil, nil
	}
	return nil, fmt.Errorf("unknown function %q", f.Name)
}

// Cast converts its child to another atomic type using the canonical
// value coercions.
type Cast struct {
	Child Expression
	To    types.DataType
}

func (c *Cast) DataType() types.DataType { return c.To }
func (c *Cast) Nullable() bool           { return c.Child.Nullable() }
func (c *Cast) Children() []Expression   { return []Expression{c.Child} }
func (c *Cast) Resolved() bool           { return childrenResolved(c) }

func (c *Cast) WithChildren(children []Expression) Expression {
	sameLen(c, children, 1)
	return &Cast{Child: children[0], To: c.To}
}

func (c *Cast) Eval(row Row) (any, error) {
	v, err := c.Child.Eval(row)
	if err != nil {
		return nil, err
	}
	return values.Canonical(v, c.To)
}
