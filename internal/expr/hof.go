package expr

import (
	"fmt"

	"github.com/SimonWaldherr/lambdaSQL/internal/types"
)

// ParamSpec is the expected (type, nullability) of one lambda parameter,
// computed by a higher-order function from its argument types.
type ParamSpec struct {
	Type     types.DataType
	Nullable bool
}

// LambdaBinder materializes lambda parameters: given a lambda and its
// expected parameter schema, it returns a copy with fresh, fully-typed
// variables and a body whose references point at them. The containing
// analyzer supplies it; DefaultBinder is the built-in policy.
type LambdaBinder func(lf *LambdaFunction, params []ParamSpec) (*LambdaFunction, error)

// HigherOrderFunction is an expression whose operands include lambda
// sub-expressions. Arguments are the data inputs, Functions the lambdas.
type HigherOrderFunction interface {
	Expression
	Arguments() []Expression
	Functions() []Expression
	// ArgumentTypes and FunctionTypes describe the expected abstract type
	// of each position.
	ArgumentTypes() []types.Expectation
	FunctionTypes() []types.Expectation
	// CheckInputDataTypes validates concrete input types once arguments
	// and lambdas are resolved.
	CheckInputDataTypes() TypeCheck
	// Bind replaces each owned lambda with a fully-typed copy produced by
	// f and returns the rebound node.
	Bind(f LambdaBinder) (Expression, error)
}

// ArgumentsResolved reports whether a higher-order function is ready to
// bind: all data arguments resolved, lambdas possibly not.
func ArgumentsResolved(h HigherOrderFunction) bool {
	for _, a := range h.Arguments() {
		if !a.Resolved() {
			return false
		}
	}
	return true
}

func hofResolved(h HigherOrderFunction) bool {
	if !ArgumentsResolved(h) {
		return false
	}
	for _, f := range h.Functions() {
		lf, ok := f.(*LambdaFunction)
		if !ok || !lf.Resolved() {
			return false
		}
	}
	return true
}

// checkArgumentExpectations validates each argument against its abstract
// expected type.
func checkArgumentExpectations(h HigherOrderFunction) TypeCheck {
	args := h.Arguments()
	expects := h.ArgumentTypes()
	for i, a := range args {
		if i >= len(expects) {
			break
		}
		if !expects[i].Accepts(a.DataType()) {
			return TypeCheckFailure(&ArgumentTypeMismatchError{
				Index:    i,
				Expected: expects[i].String(),
				Actual:   a.DataType(),
			})
		}
	}
	return TypeCheckSuccess()
}

// functionForEval prepares a lambda for evaluation: the body is rewritten
// so every variable reference whose id matches a parameter points at the
// parameter instance itself. Copies produced by cloning or serialization
// otherwise hold distinct variable objects and would not observe the
// slot writes the driver performs.
func functionForEval(lf *LambdaFunction) *LambdaFunction {
	byID := make(map[ExprID]*NamedLambdaVariable, len(lf.Params))
	for _, p := range lf.Params {
		byID[p.ID] = p
	}
	body := TransformUp(lf.Body, func(e Expression) Expression {
		if v, ok := e.(*NamedLambdaVariable); ok {
			if p, ok := byID[v.ID]; ok {
				return p
			}
		}
		return e
	})
	return &LambdaFunction{Body: body, Params: lf.Params, Hidden: lf.Hidden}
}

// mustLambda asserts that a function child has been analyzed into a
// LambdaFunction.
func mustLambda(e Expression) (*LambdaFunction, error) {
	lf, ok := e.(*LambdaFunction)
	if !ok {
		return nil, fmt.Errorf("expected lambda function, got %T", e)
	}
	return lf, nil
}

// evalBool evaluates a boolean lambda body for the current slots. A NULL
// result is a non-match and reports false.
func evalBool(lf *LambdaFunction, row Row) (bool, error) {
	v, err := lf.Eval(row)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	return ok && b, nil
}
