// Package expr implements the lambdaSQL expression core: typed expression
// trees, lambda functions with mutable parameter slots, the six
// higher-order functions (array transform/filter/exists/aggregate, map
// filter, map zip-with), and the binder that stamps lambda parameter
// types at analysis time.
//
// What: Every node implements Expression: a data type, a nullability
// flag, children, evaluation against a Row, and a resolution predicate.
// Higher-order nodes additionally expose a two-phase bind protocol that
// materializes lambda parameters from the node's argument types.
// How: Evaluation is recursive; NULL is Go nil throughout. Lambda
// parameter slots are the only mutable state in a tree: the owning
// higher-order node writes a slot, then evaluates the lambda body, which
// reads it back through the shared variable instance.
// Why: Separating binding (type inference for lambda parameters) from
// evaluation keeps trees immutable after analysis and makes repeated and
// nested evaluation safe, provided independently bound copies are used
// per evaluating goroutine.
package expr

import (
	"fmt"

	"github.com/SimonWaldherr/lambdaSQL/internal/types"
	"github.com/SimonWaldherr/lambdaSQL/internal/values"
)

// Row is the evaluation input, mapped by column name. The
// higher-order functions treat it opaquely and forward it to children.
type Row map[string]any

// Expression is the interface every node implements.
type Expression interface {
	// DataType is the static result type. It may be nil while the node is
	// unresolved.
	DataType() types.DataType
	// Nullable reports whether evaluation may produce NULL.
	Nullable() bool
	Children() []Expression
	// WithChildren returns a copy of the node with the given children. It
	// panics when the child count does not match.
	WithChildren(children []Expression) Expression
	// Eval computes the node's value for one row; nil is NULL.
	Eval(row Row) (any, error)
	// Resolved reports whether the node and all children have known types.
	Resolved() bool
}

// TransformUp rewrites a tree bottom-up: children first, then f applied
// to the node rebuilt with the rewritten children.
func TransformUp(e Expression, f func(Expression) Expression) Expression {
	children := e.Children()
	if len(children) > 0 {
		newChildren := make([]Expression, len(children))
		changed := false
		for i, c := range children {
			newChildren[i] = TransformUp(c, f)
			if newChildren[i] != c {
				changed = true
			}
		}
		if changed {
			e = e.WithChildren(newChildren)
		}
	}
	return f(e)
}

func childrenResolved(e Expression) bool {
	for _, c := range e.Children() {
		if !c.Resolved() {
			return false
		}
	}
	return true
}

func sameLen(e Expression, children []Expression, want int) {
	if len(children) != want {
		panic(fmt.Sprintf("%T: expected %d children, got %d", e, want, len(children)))
	}
}

// Literal is a constant of a known type.
type Literal struct {
	Val any
	Typ types.DataType
}

// NewLiteral builds a literal, coercing v to the canonical runtime
// representation of t.
func NewLiteral(v any, t types.DataType) (*Literal, error) {
	cv, err := values.Canonical(v, t)
	if err != nil {
		return nil, err
	}
	return &Literal{Val: cv, Typ: t}, nil
}

// MustLiteral is NewLiteral for statically known-good values.
func MustLiteral(v any, t types.DataType) *Literal {
	l, err := NewLiteral(v, t)
	if err != nil {
		panic(err)
	}
	return l
}

func (l *Literal) DataType() types.DataType { return l.Typ }
func (l *Literal) Nullable() bool           { return l.Val == nil }
func (l *Literal) Children() []Expression   { return nil }
func (l *Literal) Resolved() bool           { return true }
func (l *Literal) Eval(Row) (any, error)    { return l.Val, nil }

func (l *Literal) WithChildren(children []Expression) Expression {
	sameLen(l, children, 0)
	return l
}

func (l *Literal) String() string { return fmt.Sprintf("%v", l.Val) }

// ColumnRef reads a named column from the row.
type ColumnRef struct {
	Name    string
	Typ     types.DataType
	Nilable bool
}

func (c *ColumnRef) DataType() types.DataType { return c.Typ }
func (c *ColumnRef) Nullable() bool           { return c.Nilable }
func (c *ColumnRef) Children() []Expression   { return nil }
func (c *ColumnRef) Resolved() bool           { return c.Typ != nil }

func (c *ColumnRef) WithChildren(children []Expression) Expression {
	sameLen(c, children, 0)
	return c
}

func (c *ColumnRef) Eval(row Row) (any, error) {
	v, ok := row[c.Name]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", c.Name)
	}
	return v, nil
}

func (c *ColumnRef) String() string { return c.Name }
