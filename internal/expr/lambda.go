package expr

import (
	"fmt"
	"sync/atomic"

	"github.com/SimonWaldherr/lambdaSQL/internal/types"
)

// ExprID uniquely identifies a named expression instance within the
// process. Lambda variable references are matched to their owning slot by
// id, never by name.
type ExprID int64

var exprIDCounter atomic.Int64

// NextExprID returns a fresh process-wide id.
func NextExprID() ExprID { return ExprID(exprIDCounter.Add(1)) }

// NamedLambdaVariable is one lambda parameter: a named, uniquely
// identified slot holding the parameter's current value during
// evaluation. The slot is the only mutable state inside an expression
// tree; it is written by the owning higher-order function between body
// evaluations and read back through Eval.
type NamedLambdaVariable struct {
	Name    string
	Typ     types.DataType
	Nilable bool
	ID      ExprID

	slot atomic.Value // holds slotBox
}

// slotBox wraps values so nil can be stored in an atomic.Value.
type slotBox struct{ v any }

// NewNamedLambdaVariable returns a typed variable with a fresh id and an
// empty slot.
func NewNamedLambdaVariable(name string, t types.DataType, nullable bool) *NamedLambdaVariable {
	return &NamedLambdaVariable{Name: name, Typ: t, Nilable: nullable, ID: NextExprID()}
}

// UnresolvedVariable returns a placeholder parameter whose type is stamped
// later by binding.
func UnresolvedVariable(name string) *NamedLambdaVariable {
	return &NamedLambdaVariable{Name: name, ID: NextExprID()}
}

// NewInstance returns a copy with a fresh id and an empty slot. Required
// whenever a tree is duplicated so no two live copies share a slot.
func (v *NamedLambdaVariable) NewInstance() *NamedLambdaVariable {
	return NewNamedLambdaVariable(v.Name, v.Typ, v.Nilable)
}

// Set writes the slot.
func (v *NamedLambdaVariable) Set(val any) { v.slot.Store(slotBox{v: val}) }

func (v *NamedLambdaVariable) DataType() types.DataType { return v.Typ }
func (v *NamedLambdaVariable) Nullable() bool           { return v.Nilable }
func (v *NamedLambdaVariable) Children() []Expression   { return nil }
func (v *NamedLambdaVariable) Resolved() bool           { return v.Typ != nil }

func (v *NamedLambdaVariable) WithChildren(children []Expression) Expression {
	sameLen(v, children, 0)
	return v
}

// Eval returns the current slot value, irrespective of the row.
func (v *NamedLambdaVariable) Eval(Row) (any, error) {
	b, ok := v.slot.Load().(slotBox)
	if !ok {
		return nil, fmt.Errorf("lambda variable %s#%d read before any write", v.Name, v.ID)
	}
	return b.v, nil
}

func (v *NamedLambdaVariable) String() string {
	return fmt.Sprintf("%s#%d", v.Name, v.ID)
}

// LambdaFunction bundles a body expression with its ordered parameter
// list. Data type and nullability forward from the body. Hidden marks a
// lambda whose parameters are bookkeeping only and must not surface to
// outer resolution (the aggregate identity finish).
type LambdaFunction struct {
	Body   Expression
	Params []*NamedLambdaVariable
	Hidden bool
}

// NewLambda builds a lambda from a body and its parameters, in argument
// order.
func NewLambda(body Expression, params ...*NamedLambdaVariable) *LambdaFunction {
	return &LambdaFunction{Body: body, Params: params}
}

func (l *LambdaFunction) DataType() types.DataType { return l.Body.DataType() }
func (l *LambdaFunction) Nullable() bool           { return l.Body.Nullable() }

func (l *LambdaFunction) Children() []Expression {
	children := make([]Expression, 0, len(l.Params)+1)
	children = append(children, l.Body)
	for _, p := range l.Params {
		children = append(children, p)
	}
	return children
}

func (l *LambdaFunction) WithChildren(children []Expression) Expression {
	sameLen(l, children, len(l.Params)+1)
	params := make([]*NamedLambdaVariable, len(l.Params))
	for i := range l.Params {
		v, ok := children[i+1].(*NamedLambdaVariable)
		if !ok {
			panic(fmt.Sprintf("lambda parameter %d replaced by %T", i, children[i+1]))
		}
		params[i] = v
	}
	return &LambdaFunction{Body: children[0], Params: params, Hidden: l.Hidden}
}

// Resolved means every parameter has a known data type and the body
// resolves against them.
func (l *LambdaFunction) Resolved() bool {
	for _, p := range l.Params {
		if !p.Resolved() {
			return false
		}
	}
	return l.Body.Resolved()
}

// Bound reports whether binding has stamped every parameter.
func (l *LambdaFunction) Bound() bool {
	for _, p := range l.Params {
		if !p.Resolved() {
			return false
		}
	}
	return true
}

// Eval evaluates the body against the current parameter slots.
func (l *LambdaFunction) Eval(row Row) (any, error) { return l.Body.Eval(row) }

func (l *LambdaFunction) String() string {
	return fmt.Sprintf("lambda(%v -> %v)", l.Params, l.Body)
}
