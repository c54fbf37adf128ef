// Package lambdasql provides the higher-order-function core of a
// relational expression evaluator, embeddable in Go query engines.
//
// lambdaSQL implements the callable expressions that accept lambda
// sub-expressions and apply them element-wise over arrays and maps:
//   - TRANSFORM, FILTER, EXISTS and AGGREGATE over arrays
//   - FILTER and ZIP_WITH over maps
//
// # Basic Usage
//
// Build an expression tree, bind it, then evaluate per row:
//
//	arr := lambdasql.MustLit([]any{1, 2, 3}, lambdasql.ArrayOf(lambdasql.Int, false))
//	x := lambdasql.Var("x")
//	doubled := lambdasql.Transform(arr, lambdasql.Lambda(lambdasql.Op("*", x, lambdasql.MustLit(2, lambdasql.Int)), x))
//
//	bound, _ := lambdasql.Bind(doubled)
//	out, _ := lambdasql.Eval(bound, nil) // ArrayData [2 4 6]
//
// Binding stamps the lambda parameter types from the argument types and
// surfaces analysis errors (argument type mismatches, aggregate
// accumulator mismatches, un-orderable zip keys). Evaluation mutates only
// the lambda parameter slots, so a bound tree can be evaluated repeatedly;
// concurrent use requires one independently bound copy per goroutine.
package lambdasql

import (
	"github.com/SimonWaldherr/lambdaSQL/internal/expr"
	"github.com/SimonWaldherr/lambdaSQL/internal/types"
	"github.com/SimonWaldherr/lambdaSQL/internal/values"
)

// ============================================================================
// Core Types - Re-exported from internal packages for public API
// ============================================================================

// Expression is the polymorphic expression node interface.
type Expression = expr.Expression

// Row is the evaluation input, mapped by column name.
type Row = expr.Row

// DataType is the nominal type of an expression or value.
type DataType = types.DataType

// ArrayData and MapData are the read-only container views passed to and
// produced by the higher-order functions.
type (
	ArrayData = values.ArrayData
	MapData   = values.MapData
)

// Lambda building blocks.
type (
	NamedLambdaVariable = expr.NamedLambdaVariable
	LambdaFunction      = expr.LambdaFunction
	LambdaBinder        = expr.LambdaBinder
	ParamSpec           = expr.ParamSpec
)

// Scalar types.
const (
	Bool      = types.Bool
	Int       = types.Int
	Long      = types.Long
	Double    = types.Double
	String    = types.String
	Binary    = types.Binary
	Decimal   = types.Decimal
	Uuid      = types.Uuid
	Date      = types.Date
	Timestamp = types.Timestamp
)

// ArrayOf builds an array type.
func ArrayOf(elem DataType, containsNull bool) types.ArrayType {
	return types.ArrayType{Elem: elem, ContainsNull: containsNull}
}

// MapOf builds a map type.
func MapOf(key, value DataType, valueContainsNull bool) types.MapType {
	return types.MapType{Key: key, Value: value, ValueContainsNull: valueContainsNull}
}

// ============================================================================
// Expression Constructors
// ============================================================================

// Lit builds a literal of type t, coercing v to the canonical runtime
// representation.
func Lit(v any, t DataType) (Expression, error) { return expr.NewLiteral(v, t) }

// MustLit is Lit for statically known-good values.
func MustLit(v any, t DataType) Expression { return expr.MustLiteral(v, t) }

// Col references a named column of the row.
func Col(name string, t DataType, nullable bool) Expression {
	return &expr.ColumnRef{Name: name, Typ: t, Nilable: nullable}
}

// Var declares a lambda parameter placeholder; binding stamps its type.
func Var(name string) *NamedLambdaVariable { return expr.UnresolvedVariable(name) }

// Lambda bundles a body with its ordered parameters.
func Lambda(body Expression, params ...*NamedLambdaVariable) *LambdaFunction {
	return expr.NewLambda(body, params...)
}

// Op applies a binary operator: arithmetic (+ - * / %), comparison
// (= <> < <= > >=), or tri-state AND/OR.
func Op(op string, left, right Expression) Expression {
	return &expr.Binary{Op: op, Left: left, Right: right}
}

// Not negates a boolean expression under tri-state semantics.
func Not(e Expression) Expression { return &expr.Unary{Op: "NOT", Child: e} }

// IsNull tests an expression for NULL.
func IsNull(e Expression) Expression { return &expr.IsNull{Child: e} }

// Concat concatenates string expressions, NULL if any operand is NULL.
func Concat(args ...Expression) Expression {
	return &expr.FuncCall{Name: "CONCAT", Args: args}
}

// Coalesce returns the first non-NULL argument.
func Coalesce(args ...Expression) Expression {
	return &expr.FuncCall{Name: "COALESCE", Args: args}
}

// Cast converts an expression to another atomic type.
func Cast(e Expression, to DataType) Expression {
	return &expr.Cast{Child: e, To: to}
}

// ============================================================================
// Higher-Order Functions
// ============================================================================

// Transform applies fn to every array element; fn takes the element or
// (element, index).
func Transform(arr Expression, fn *LambdaFunction) Expression {
	return expr.NewArrayTransform(arr, fn)
}

// Filter keeps array elements satisfying the boolean fn, in order.
func Filter(arr Expression, fn *LambdaFunction) Expression {
	return expr.NewArrayFilter(arr, fn)
}

// Exists reports whether any array element satisfies the boolean fn.
func Exists(arr Expression, fn *LambdaFunction) Expression {
	return expr.NewArrayExists(arr, fn)
}

// Aggregate folds an array from zero with merge, then applies finish
// (identity when nil).
func Aggregate(arr, zero Expression, merge, finish *LambdaFunction) Expression {
	return expr.NewArrayAggregate(arr, zero, merge, finish)
}

// MapFilter keeps map entries satisfying the boolean fn over (key, value).
func MapFilter(m Expression, fn *LambdaFunction) Expression {
	return expr.NewMapFilter(m, fn)
}

// MapZipWith merges two maps key-wise through fn(key, value1, value2).
func MapZipWith(left, right Expression, fn *LambdaFunction) Expression {
	return expr.NewMapZipWith(left, right, fn)
}

// ============================================================================
// Binding and Evaluation
// ============================================================================

// Bind resolves every higher-order function in the tree with the default
// binder, stamping lambda parameter types from argument types.
func Bind(e Expression) (Expression, error) { return expr.Bind(e) }

// BindWith binds using a caller-supplied binder, for engines that manage
// lambda variables themselves.
func BindWith(e Expression, binder LambdaBinder) (Expression, error) {
	return expr.BindHOFs(e, binder)
}

// Eval evaluates a bound expression for one row; nil is NULL.
func Eval(e Expression, row Row) (any, error) { return e.Eval(row) }

// ============================================================================
// Value Helpers
// ============================================================================

// NewArray wraps a slice as an array value.
func NewArray(elems []any) ArrayData { return values.NewArrayData(elems) }

// NewMap builds a map value from alternating key, value arguments.
func NewMap(pairs ...any) MapData { return values.NewMapFromPairs(pairs...) }
