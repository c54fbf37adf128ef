package expr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SimonWaldherr/lambdaSQL/internal/types"
	"github.com/SimonWaldherr/lambdaSQL/internal/values"
)

func TestBind_StampsParameterTypes(t *testing.T) {
	x := UnresolvedVariable("x")
	e := NewArrayTransform(MustLiteral([]any{1, 2}, intArrN), NewLambda(x, x))
	require.False(t, e.Resolved())
	require.True(t, ArgumentsResolved(e))

	bound, err := Bind(e)
	require.NoError(t, err)
	require.True(t, bound.Resolved())

	tr := bound.(*ArrayTransform)
	lf := tr.Function.(*LambdaFunction)
	require.Len(t, lf.Params, 1)
	require.Equal(t, types.Int, lf.Params[0].Typ)
	require.True(t, lf.Params[0].Nilable, "contains-null array implies nullable element parameter")
	require.NotEqual(t, x.ID, lf.Params[0].ID, "binding creates fresh variables")
	require.True(t, lf.Bound())
}

func TestBind_TransformIndexParameterIsNonNullInt(t *testing.T) {
	y := UnresolvedVariable("y")
	i := UnresolvedVariable("i")
	e := NewArrayTransform(MustLiteral([]any{1}, intArrN), NewLambda(i, y, i))
	bound, err := Bind(e)
	require.NoError(t, err)
	lf := bound.(*ArrayTransform).Function.(*LambdaFunction)
	require.Len(t, lf.Params, 2)
	require.Equal(t, types.Int, lf.Params[1].Typ)
	require.False(t, lf.Params[1].Nilable)
}

func TestBind_TransformWrongArity(t *testing.T) {
	a := UnresolvedVariable("a")
	b := UnresolvedVariable("b")
	c := UnresolvedVariable("c")
	e := NewArrayTransform(MustLiteral([]any{1}, intArr), NewLambda(a, a, b, c))
	_, err := Bind(e)
	var mismatch *ArgumentTypeMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestBind_NonArrayArgument(t *testing.T) {
	x := UnresolvedVariable("x")
	e := NewArrayTransform(MustLiteral(1, types.Int), NewLambda(x, x))
	_, err := Bind(e)
	var mismatch *ArgumentTypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, 0, mismatch.Index)
}

func TestBind_MapFilterWrongArity(t *testing.T) {
	k := UnresolvedVariable("k")
	e := NewMapFilter(MustLiteral(nil, strMap), NewLambda(k, k))
	_, err := Bind(e)
	var mismatch *ArgumentTypeMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestBind_FilterNonBooleanBody(t *testing.T) {
	x := UnresolvedVariable("x")
	e := NewArrayFilter(
		MustLiteral([]any{1}, intArr),
		NewLambda(&Binary{Op: "+", Left: x, Right: MustLiteral(1, types.Int)}, x),
	)
	_, err := Bind(e)
	var mismatch *ArgumentTypeMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestBind_MapZipKeyTypeMismatch(t *testing.T) {
	otherMap := types.MapType{Key: types.String, Value: types.String, ValueContainsNull: false}
	k := UnresolvedVariable("k")
	v1 := UnresolvedVariable("v1")
	v2 := UnresolvedVariable("v2")
	e := NewMapZipWith(
		MustLiteral(nil, strMap),
		MustLiteral(nil, otherMap),
		NewLambda(v1, k, v1, v2),
	)
	_, err := Bind(e)
	var mismatch *MapZipKeyTypeMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestBind_AggregateAccumulatorMismatch(t *testing.T) {
	// zero is INT but the merge body produces DOUBLE.
	acc := UnresolvedVariable("acc")
	x := UnresolvedVariable("x")
	e := NewArrayAggregate(
		MustLiteral([]any{1, 2}, intArr),
		MustLiteral(0, types.Int),
		NewLambda(&Binary{Op: "+", Left: acc, Right: MustLiteral(0.5, types.Double)}, acc, x),
		nil,
	)
	_, err := Bind(e)
	var mismatch *AggregateAccumulatorTypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, types.Int, mismatch.Zero)
	require.Equal(t, types.Double, mismatch.Merge)
}

func TestCheck_PreTypedAggregateMismatch(t *testing.T) {
	// aggregate([1,2], 0L, (a:int, x:int) -> a + x): the explicitly typed
	// lambda is already resolved, so binding skips it and the input check
	// reports the accumulator mismatch.
	a := NewNamedLambdaVariable("a", types.Int, true)
	x := NewNamedLambdaVariable("x", types.Int, false)
	fa := NewNamedLambdaVariable("a", types.Long, true)
	e := NewArrayAggregate(
		MustLiteral([]any{1, 2}, intArr),
		MustLiteral(int64(0), types.Long),
		NewLambda(&Binary{Op: "+", Left: a, Right: x}, a, x),
		NewLambda(fa, fa),
	)
	require.True(t, e.Resolved())

	tc := e.CheckInputDataTypes()
	require.False(t, tc.OK())
	var mismatch *AggregateAccumulatorTypeMismatchError
	require.ErrorAs(t, tc.Err(), &mismatch)

	_, err := Bind(e)
	require.ErrorAs(t, err, &mismatch)
}

func TestBind_ShadowedParameterNames(t *testing.T) {
	// transform(aa, x -> transform(x, x -> x * 2)): the inner lambda
	// shadows the outer name; id-based rewriting keeps them apart.
	outer := UnresolvedVariable("x")
	inner := UnresolvedVariable("x")
	e := NewArrayTransform(
		MustLiteral([]any{[]any{1, 2}, []any{3}}, types.ArrayType{Elem: intArr}),
		NewLambda(
			NewArrayTransform(outer, NewLambda(
				&Binary{Op: "*", Left: inner, Right: MustLiteral(2, types.Int)}, inner)),
			outer,
		),
	)
	got := bindAndEval(t, e, nil).(values.ArrayData)
	require.Equal(t, []any{int32(2), int32(4)}, elems(got.Get(0)))
	require.Equal(t, []any{int32(6)}, elems(got.Get(1)))
}

func TestBind_AlreadyBoundIsStable(t *testing.T) {
	x := UnresolvedVariable("x")
	e := NewArrayTransform(
		MustLiteral([]any{1, 2}, intArr),
		NewLambda(&Binary{Op: "+", Left: x, Right: MustLiteral(1, types.Int)}, x),
	)
	bound, err := Bind(e)
	require.NoError(t, err)
	again, err := Bind(bound)
	require.NoError(t, err)
	v, err := again.Eval(nil)
	require.NoError(t, err)
	require.Equal(t, []any{int32(2), int32(3)}, elems(v))
}

func TestDefaultBinder_ArityMismatch(t *testing.T) {
	x := UnresolvedVariable("x")
	lf := NewLambda(x, x)
	_, err := DefaultBinder(lf, []ParamSpec{
		{Type: types.Int}, {Type: types.Int},
	})
	require.Error(t, err)
}

func TestHiddenFinishLambdaSurvivesBinding(t *testing.T) {
	acc := UnresolvedVariable("acc")
	x := UnresolvedVariable("x")
	e := NewArrayAggregate(
		MustLiteral([]any{1, 2, 3}, intArr),
		MustLiteral(0, types.Int),
		NewLambda(&Binary{Op: "+", Left: acc, Right: x}, acc, x),
		nil,
	)
	bound, err := Bind(e)
	require.NoError(t, err)
	agg := bound.(*ArrayAggregate)
	fin := agg.Finish.(*LambdaFunction)
	require.True(t, fin.Hidden)
	require.Same(t, fin.Params[0], fin.Body, "identity finish reads its own parameter")
	require.Equal(t, types.Int, bound.DataType())
}
