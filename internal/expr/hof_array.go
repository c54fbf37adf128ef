package expr

import (
	"fmt"

	"github.com/SimonWaldherr/lambdaSQL/internal/types"
	"github.com/SimonWaldherr/lambdaSQL/internal/values"
)

func evalArrayArgument(arg Expression, row Row) (values.ArrayData, bool, error) {
	v, err := arg.Eval(row)
	if err != nil {
		return nil, false, err
	}
	if v == nil {
		return nil, true, nil
	}
	arr, ok := v.(values.ArrayData)
	if !ok {
		return nil, false, fmt.Errorf("expected array value, got %T", v)
	}
	return arr, false, nil
}

// ArrayTransform applies a lambda to every element of an array and
// collects the results. The lambda takes the element, or the element and
// its position.
type ArrayTransform struct {
	Argument Expression
	Function Expression

	fn *LambdaFunction
}

// NewArrayTransform builds an unbound transform node.
func NewArrayTransform(arg Expression, fn *LambdaFunction) *ArrayTransform {
	return &ArrayTransform{Argument: arg, Function: fn}
}

func (t *ArrayTransform) Arguments() []Expression { return []Expression{t.Argument} }
func (t *ArrayTransform) Functions() []Expression { return []Expression{t.Function} }

func (t *ArrayTransform) ArgumentTypes() []types.Expectation {
	return []types.Expectation{types.AnyArray}
}

func (t *ArrayTransform) FunctionTypes() []types.Expectation {
	return []types.Expectation{types.AnyType}
}

func (t *ArrayTransform) DataType() types.DataType {
	return types.ArrayType{Elem: t.Function.DataType(), ContainsNull: t.Function.Nullable()}
}

func (t *ArrayTransform) Nullable() bool { return t.Argument.Nullable() }

func (t *ArrayTransform) Children() []Expression {
	return []Expression{t.Argument, t.Function}
}

func (t *ArrayTransform) WithChildren(children []Expression) Expression {
	sameLen(t, children, 2)
	return &ArrayTransform{Argument: children[0], Function: children[1]}
}

func (t *ArrayTransform) Resolved() bool { return hofResolved(t) }

func (t *ArrayTransform) CheckInputDataTypes() TypeCheck {
	return checkArgumentExpectations(t)
}

func (t *ArrayTransform) Bind(f LambdaBinder) (Expression, error) {
	at, ok := t.Argument.DataType().(types.ArrayType)
	if !ok {
		return nil, &ArgumentTypeMismatchError{Index: 0, Expected: "ARRAY", Actual: t.Argument.DataType()}
	}
	lf, err := mustLambda(t.Function)
	if err != nil {
		return nil, err
	}
	specs := []ParamSpec{{Type: at.Elem, Nullable: at.ContainsNull}}
	switch len(lf.Params) {
	case 1:
	case 2:
		// Element-plus-index form; the index is never NULL.
		specs = append(specs, ParamSpec{Type: types.Int, Nullable: false})
	default:
		return nil, &ArgumentTypeMismatchError{
			Index:    1,
			Expected: "lambda of 1 or 2 parameters",
			Actual:   lf.DataType(),
		}
	}
	bound, err := f(lf, specs)
	if err != nil {
		return nil, err
	}
	return &ArrayTransform{Argument: t.Argument, Function: bound}, nil
}

func (t *ArrayTransform) Eval(row Row) (any, error) {
	arr, isNull, err := evalArrayArgument(t.Argument, row)
	if err != nil || isNull {
		return nil, err
	}
	if t.fn == nil {
		lf, err := mustLambda(t.Function)
		if err != nil {
			return nil, err
		}
		t.fn = functionForEval(lf)
	}
	elemVar := t.fn.Params[0]
	var idxVar *NamedLambdaVariable
	if len(t.fn.Params) == 2 {
		idxVar = t.fn.Params[1]
	}
	n := arr.NumElements()
	out := make(values.GenericArrayData, n)
	for i := 0; i < n; i++ {
		elemVar.Set(arr.Get(i))
		if idxVar != nil {
			idxVar.Set(int32(i))
		}
		v, err := t.fn.Eval(row)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (t *ArrayTransform) String() string {
	return fmt.Sprintf("transform(%v, %v)", t.Argument, t.Function)
}

// ArrayFilter keeps the elements for which a boolean lambda holds,
// preserving their order. A NULL predicate result drops the element.
type ArrayFilter struct {
	Argument Expression
	Function Expression

	fn *LambdaFunction
}

// NewArrayFilter builds an unbound filter node.
func NewArrayFilter(arg Expression, fn *LambdaFunction) *ArrayFilter {
	return &ArrayFilter{Argument: arg, Function: fn}
}

func (t *ArrayFilter) Arguments() []Expression { return []Expression{t.Argument} }
func (t *ArrayFilter) Functions() []Expression { return []Expression{t.Function} }

func (t *ArrayFilter) ArgumentTypes() []types.Expectation {
	return []types.Expectation{types.AnyArray}
}

func (t *ArrayFilter) FunctionTypes() []types.Expectation {
	return []types.Expectation{types.Exactly(types.Bool)}
}

func (t *ArrayFilter) DataType() types.DataType { return t.Argument.DataType() }
func (t *ArrayFilter) Nullable() bool           { return t.Argument.Nullable() }

func (t *ArrayFilter) Children() []Expression {
	return []Expression{t.Argument, t.Function}
}

func (t *ArrayFilter) WithChildren(children []Expression) Expression {
	sameLen(t, children, 2)
	return &ArrayFilter{Argument: children[0], Function: children[1]}
}

func (t *ArrayFilter) Resolved() bool { return hofResolved(t) }

func (t *ArrayFilter) CheckInputDataTypes() TypeCheck {
	if tc := checkArgumentExpectations(t); !tc.OK() {
		return tc
	}
	if t.Resolved() && t.Function.DataType() != types.Bool {
		return TypeCheckFailure(&ArgumentTypeMismatchError{
			Index:    1,
			Expected: types.Bool.String(),
			Actual:   t.Function.DataType(),
		})
	}
	return TypeCheckSuccess()
}

func (t *ArrayFilter) Bind(f LambdaBinder) (Expression, error) {
	at, ok := t.Argument.DataType().(types.ArrayType)
	if !ok {
		return nil, &ArgumentTypeMismatchError{Index: 0, Expected: "ARRAY", Actual: t.Argument.DataType()}
	}
	lf, err := mustLambda(t.Function)
	if err != nil {
		return nil, err
	}
	bound, err := f(lf, []ParamSpec{{Type: at.Elem, Nullable: at.ContainsNull}})
	if err != nil {
		return nil, err
	}
	return &ArrayFilter{Argument: t.Argument, Function: bound}, nil
}

func (t *ArrayFilter) Eval(row Row) (any, error) {
	arr, isNull, err := evalArrayArgument(t.Argument, row)
	if err != nil || isNull {
		return nil, err
	}
	if t.fn == nil {
		lf, err := mustLambda(t.Function)
		if err != nil {
			return nil, err
		}
		t.fn = functionForEval(lf)
	}
	elemVar := t.fn.Params[0]
	n := arr.NumElements()
	out := make(values.GenericArrayData, 0, n)
	for i := 0; i < n; i++ {
		elemVar.Set(arr.Get(i))
		keep, err := evalBool(t.fn, row)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, arr.Get(i))
		}
	}
	return out, nil
}

func (t *ArrayFilter) String() string {
	return fmt.Sprintf("filter(%v, %v)", t.Argument, t.Function)
}

// ArrayExists reports whether any element satisfies a boolean lambda,
// short-circuiting on the first match. A NULL predicate result counts as
// a non-match.
type ArrayExists struct {
	Argument Expression
	Function Expression

	fn *LambdaFunction
}

// NewArrayExists builds an unbound exists node.
func NewArrayExists(arg Expression, fn *LambdaFunction) *ArrayExists {
	return &ArrayExists{Argument: arg, Function: fn}
}

func (t *ArrayExists) Arguments() []Expression { return []Expression{t.Argument} }
func (t *ArrayExists) Functions() []Expression { return []Expression{t.Function} }

func (t *ArrayExists) ArgumentTypes() []types.Expectation {
	return []types.Expectation{types.AnyArray}
}

func (t *ArrayExists) FunctionTypes() []types.Expectation {
	return []types.Expectation{types.Exactly(types.Bool)}
}

func (t *ArrayExists) DataType() types.DataType { return types.Bool }
func (t *ArrayExists) Nullable() bool           { return t.Argument.Nullable() }

func (t *ArrayExists) Children() []Expression {
	return []Expression{t.Argument, t.Function}
}

func (t *ArrayExists) WithChildren(children []Expression) Expression {
	sameLen(t, children, 2)
	return &ArrayExists{Argument: children[0], Function: children[1]}
}

func (t *ArrayExists) Resolved() bool { return hofResolved(t) }

func (t *ArrayExists) CheckInputDataTypes() TypeCheck {
	if tc := checkArgumentExpectations(t); !tc.OK() {
		return tc
	}
	if t.Resolved() && t.Function.DataType() != types.Bool {
		return TypeCheckFailure(&ArgumentTypeMismatchError{
			Index:    1,
			Expected: types.Bool.String(),
			Actual:   t.Function.DataType(),
		})
	}
	return TypeCheckSuccess()
}

func (t *ArrayExists) Bind(f LambdaBinder) (Expression, error) {
	at, ok := t.Argument.DataType().(types.ArrayType)
	if !ok {
		return nil, &ArgumentTypeMismatchError{Index: 0, Expected: "ARRAY", Actual: t.Argument.DataType()}
	}
	lf, err := mustLambda(t.Function)
	if err != nil {
		return nil, err
	}
	bound, err := f(lf, []ParamSpec{{Type: at.Elem, Nullable: at.ContainsNull}})
	if err != nil {
		return nil, err
	}
	return &ArrayExists{Argument: t.Argument, Function: bound}, nil
}

func (t *ArrayExists) Eval(row Row) (any, error) {
	arr, isNull, err := evalArrayArgument(t.Argument, row)
	if err != nil || isNull {
		return nil, err
	}
	if t.fn == nil {
		lf, err := mustLambda(t.Function)
		if err != nil {
			return nil, err
		}
		t.fn = functionForEval(lf)
	}
	elemVar := t.fn.Params[0]
	n := arr.NumElements()
	for i := 0; i < n; i++ {
		elemVar.Set(arr.Get(i))
		hit, err := evalBool(t.fn, row)
		if err != nil {
			return nil, err
		}
		if hit {
			return true, nil
		}
	}
	return false, nil
}

func (t *ArrayExists) String() string {
	return fmt.Sprintf("exists(%v, %v)", t.Argument, t.Function)
}

// ArrayAggregate folds an array into a single value: the accumulator
// starts at Zero, Merge combines it with each element in order, and
// Finish maps the final accumulator to the result.
type ArrayAggregate struct {
	Argument Expression
	Zero     Expression
	Merge    Expression
	Finish   Expression

	mergeFn  *LambdaFunction
	finishFn *LambdaFunction
}

// NewArrayAggregate builds an unbound aggregate node. A nil finish
// installs the identity lambda over a hidden accumulator parameter.
func NewArrayAggregate(arg, zero Expression, merge *LambdaFunction, finish *LambdaFunction) *ArrayAggregate {
	if finish == nil {
		acc := UnresolvedVariable("acc")
		finish = &LambdaFunction{Body: acc, Params: []*NamedLambdaVariable{acc}, Hidden: true}
	}
	return &ArrayAggregate{Argument: arg, Zero: zero, Merge: merge, Finish: finish}
}

func (t *ArrayAggregate) Arguments() []Expression { return []Expression{t.Argument, t.Zero} }
func (t *ArrayAggregate) Functions() []Expression { return []Expression{t.Merge, t.Finish} }

func (t *ArrayAggregate) ArgumentTypes() []types.Expectation {
	return []types.Expectation{types.AnyArray, types.AnyType}
}

func (t *ArrayAggregate) FunctionTypes() []types.Expectation {
	return []types.Expectation{types.AnyType, types.AnyType}
}

func (t *ArrayAggregate) DataType() types.DataType { return t.Finish.DataType() }

func (t *ArrayAggregate) Nullable() bool {
	return t.Argument.Nullable() || t.Finish.Nullable()
}

func (t *ArrayAggregate) Children() []Expression {
	return []Expression{t.Argument, t.Zero, t.Merge, t.Finish}
}

func (t *ArrayAggregate) WithChildren(children []Expression) Expression {
	sameLen(t, children, 4)
	return &ArrayAggregate{Argument: children[0], Zero: children[1], Merge: children[2], Finish: children[3]}
}

func (t *ArrayAggregate) Resolved() bool { return hofResolved(t) }

func (t *ArrayAggregate) CheckInputDataTypes() TypeCheck {
	if tc := checkArgumentExpectations(t); !tc.OK() {
		return tc
	}
	if !t.Resolved() {
		return TypeCheckSuccess()
	}
	// The merge result feeds back into the accumulator slot, so the two
	// types must agree up to nullability.
	if !types.EqualsStructurally(t.Zero.DataType(), t.Merge.DataType(), true) {
		return TypeCheckFailure(&AggregateAccumulatorTypeMismatchError{
			Zero:  t.Zero.DataType(),
			Merge: t.Merge.DataType(),
		})
	}
	return TypeCheckSuccess()
}

func (t *ArrayAggregate) Bind(f LambdaBinder) (Expression, error) {
	at, ok := t.Argument.DataType().(types.ArrayType)
	if !ok {
		return nil, &ArgumentTypeMismatchError{Index: 0, Expected: "ARRAY", Actual: t.Argument.DataType()}
	}
	mergeLf, err := mustLambda(t.Merge)
	if err != nil {
		return nil, err
	}
	finishLf, err := mustLambda(t.Finish)
	if err != nil {
		return nil, err
	}
	// The accumulator is conservatively nullable: the merge body decides
	// whether NULL ever flows through it.
	acc := ParamSpec{Type: t.Zero.DataType(), Nullable: true}
	boundMerge, err := f(mergeLf, []ParamSpec{acc, {Type: at.Elem, Nullable: at.ContainsNull}})
	if err != nil {
		return nil, err
	}
	boundFinish, err := f(finishLf, []ParamSpec{acc})
	if err != nil {
		return nil, err
	}
	return &ArrayAggregate{Argument: t.Argument, Zero: t.Zero, Merge: boundMerge, Finish: boundFinish}, nil
}

func (t *ArrayAggregate) Eval(row Row) (any, error) {
	arr, isNull, err := evalArrayArgument(t.Argument, row)
	if err != nil || isNull {
		return nil, err
	}
	if t.mergeFn == nil {
		mergeLf, err := mustLambda(t.Merge)
		if err != nil {
			return nil, err
		}
		finishLf, err := mustLambda(t.Finish)
		if err != nil {
			return nil, err
		}
		t.mergeFn = functionForEval(mergeLf)
		t.finishFn = functionForEval(finishLf)
	}
	accVar := t.mergeFn.Params[0]
	elemVar := t.mergeFn.Params[1]
	z, err := t.Zero.Eval(row)
	if err != nil {
		return nil, err
	}
	accVar.Set(z)
	n := arr.NumElements()
	for i := 0; i < n; i++ {
		elemVar.Set(arr.Get(i))
		m, err := t.mergeFn.Eval(row)
		if err != nil {
			return nil, err
		}
		accVar.Set(m)
	}
	acc, err := accVar.Eval(row)
	if err != nil {
		return nil, err
	}
	t.finishFn.Params[0].Set(acc)
	return t.finishFn.Eval(row)
}

func (t *ArrayAggregate) String() string {
	return fmt.Sprintf("aggregate(%v, %v, %v, %v)", t.Argument, t.Zero, t.Merge, t.Finish)
}
