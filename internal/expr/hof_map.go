package expr

import (
	"fmt"

	"github.com/SimonWaldherr/lambdaSQL/internal/config"
	"github.com/SimonWaldherr/lambdaSQL/internal/types"
	"github.com/SimonWaldherr/lambdaSQL/internal/values"
)

func evalMapArgument(arg Expression, row Row) (values.MapData, bool, error) {
	v, err := arg.Eval(row)
	if err != nil {
		return values.MapData{}, false, err
	}
	if v == nil {
		return values.MapData{}, true, nil
	}
	m, ok := v.(values.MapData)
	if !ok {
		return values.MapData{}, false, fmt.Errorf("expected map value, got %T", v)
	}
	return m, false, nil
}

// MapFilter keeps the entries of a map for which a boolean lambda over
// (key, value) holds, in map order. Duplicate keys pass through
// unchanged; no new keys are constructed, so first-wins does not apply.
type MapFilter struct {
	Argument Expression
	Function Expression

	fn *LambdaFunction
}

// NewMapFilter builds an unbound map filter node.
func NewMapFilter(arg Expression, fn *LambdaFunction) *MapFilter {
	return &MapFilter{Argument: arg, Function: fn}
}

func (t *MapFilter) Arguments() []Expression { return []Expression{t.Argument} }
func (t *MapFilter) Functions() []Expression { return []Expression{t.Function} }

func (t *MapFilter) ArgumentTypes() []types.Expectation {
	return []types.Expectation{types.AnyMap}
}

func (t *MapFilter) FunctionTypes() []types.Expectation {
	return []types.Expectation{types.Exactly(types.Bool)}
}

func (t *MapFilter) DataType() types.DataType { return t.Argument.DataType() }
func (t *MapFilter) Nullable() bool           { return t.Argument.Nullable() }

func (t *MapFilter) Children() []Expression {
	return []Expression{t.Argument, t.Function}
}

func (t *MapFilter) WithChildren(children []Expression) Expression {
	sameLen(t, children, 2)
	return &MapFilter{Argument: children[0], Function: children[1]}
}

func (t *MapFilter) Resolved() bool { return hofResolved(t) }

func (t *MapFilter) CheckInputDataTypes() TypeCheck {
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

func (t *MapFilter) Bind(f LambdaBinder) (Expression, error) {
	mt, ok := t.Argument.DataType().(types.MapType)
	if !ok {
		return nil, &ArgumentTypeMismatchError{Index: 0, Expected: "MAP", Actual: t.Argument.DataType()}
	}
	lf, err := mustLambda(t.Function)
	if err != nil {
		return nil, err
	}
	if len(lf.Params) != 2 {
		return nil, &ArgumentTypeMismatchError{
			Index:    1,
			Expected: "lambda of 2 parameters",
			Actual:   lf.DataType(),
		}
	}
	bound, err := f(lf, []ParamSpec{
		{Type: mt.Key, Nullable: false},
		{Type: mt.Value, Nullable: mt.ValueContainsNull},
	})
	if err != nil {
		return nil, err
	}
	return &MapFilter{Argument: t.Argument, Function: bound}, nil
}

func (t *MapFilter) Eval(row Row) (any, error) {
	m, isNull, err := evalMapArgument(t.Argument, row)
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
	keyVar := t.fn.Params[0]
	valVar := t.fn.Params[1]
	keys := m.KeyArray()
	vals := m.ValueArray()
	n := m.NumEntries()
	outKeys := make(values.GenericArrayData, 0, n)
	outVals := make(values.GenericArrayData, 0, n)
	for i := 0; i < n; i++ {
		keyVar.Set(keys.Get(i))
		valVar.Set(vals.Get(i))
		keep, err := evalBool(t.fn, row)
		if err != nil {
			return nil, err
		}
		if keep {
			outKeys = append(outKeys, keys.Get(i))
			outVals = append(outVals, vals.Get(i))
		}
	}
	return values.ArrayBasedMapData(outKeys, outVals), nil
}

func (t *MapFilter) String() string {
	return fmt.Sprintf("map_filter(%v, %v)", t.Argument, t.Function)
}

// keyEntry tracks one distinct key of a zip-with union and the position
// of its first occurrence on each side (-1 when absent).
type keyEntry struct {
	key   any
	left  int
	right int
}

const (
	leftSide  = 0
	rightSide = 1
)

// keyIndex collects the key union in insertion order, first occurrence
// per side winning. Two representations satisfy the contract: a hash map
// for hashable key types and a linear ordering-based scan otherwise.
type keyIndex interface {
	insert(key any, side, idx int) error
	entries() []*keyEntry
}

func newKeyIndex(keyType types.DataType, limit int) (keyIndex, error) {
	if types.Hashable(keyType) {
		return &hashKeyIndex{keyType: keyType, byKey: map[any]*keyEntry{}, limit: limit}, nil
	}
	if !types.Orderable(keyType) {
		return nil, &MapZipKeyNotOrderableError{Key: keyType}
	}
	return &bruteKeyIndex{keyType: keyType, limit: limit}, nil
}

func fillSide(e *keyEntry, side, idx int) {
	if side == leftSide {
		if e.left < 0 {
			e.left = idx
		}
	} else if e.right < 0 {
		e.right = idx
	}
}

type hashKeyIndex struct {
	keyType types.DataType
	byKey   map[any]*keyEntry
	order   []*keyEntry
	limit   int
}

func (x *hashKeyIndex) insert(key any, side, idx int) error {
	hk, err := values.HashKey(key, x.keyType)
	if err != nil {
		return err
	}
	if e, ok := x.byKey[hk]; ok {
		fillSide(e, side, idx)
		return nil
	}
	if len(x.order) >= x.limit {
		return &MapZipSizeExceededError{Size: len(x.order) + 1, Limit: x.limit}
	}
	e := &keyEntry{key: key, left: -1, right: -1}
	fillSide(e, side, idx)
	x.byKey[hk] = e
	x.order = append(x.order, e)
	return nil
}

func (x *hashKeyIndex) entries() []*keyEntry { return x.order }

// bruteKeyIndex matches keys by ordering comparison, O(k^2) over distinct
// keys. Needed for key types without a canonical hash representation.
type bruteKeyIndex struct {
	keyType types.DataType
	order   []*keyEntry
	limit   int
}

func (x *bruteKeyIndex) insert(key any, side, idx int) error {
	for _, e := range x.order {
		same, err := values.Equal(e.key, key, x.keyType)
		if err != nil {
			return err
		}
		if same {
			fillSide(e, side, idx)
			return nil
		}
	}
	if len(x.order) >= x.limit {
		return &MapZipSizeExceededError{Size: len(x.order) + 1, Limit: x.limit}
	}
	e := &keyEntry{key: key, left: -1, right: -1}
	fillSide(e, side, idx)
	x.order = append(x.order, e)
	return nil
}

func (x *bruteKeyIndex) entries() []*keyEntry { return x.order }

// MapZipWith merges two maps key-wise: the lambda receives each distinct
// key of the union with the corresponding value from each side, NULL
// where the side lacks the key. Keys appear in insertion order, left map
// scanned before right; duplicate keys contribute their first occurrence
// only.
type MapZipWith struct {
	Left     Expression
	Right    Expression
	Function Expression

	// Limit caps the distinct-key count of the result.
	Limit int

	fn *LambdaFunction
}

// NewMapZipWith builds an unbound zip-with node with the default size
// limit.
func NewMapZipWith(left, right Expression, fn *LambdaFunction) *MapZipWith {
	return &MapZipWith{Left: left, Right: right, Function: fn, Limit: config.DefaultLimits().MaxMapPairs}
}

func (t *MapZipWith) Arguments() []Expression { return []Expression{t.Left, t.Right} }
func (t *MapZipWith) Functions() []Expression { return []Expression{t.Function} }

func (t *MapZipWith) ArgumentTypes() []types.Expectation {
	return []types.Expectation{types.AnyMap, types.AnyMap}
}

func (t *MapZipWith) FunctionTypes() []types.Expectation {
	return []types.Expectation{types.AnyType}
}

// keyType is the common key type of both sides; before binding succeeds
// it falls back to the left key type.
func (t *MapZipWith) keyType() types.DataType {
	lt, lok := t.Left.DataType().(types.MapType)
	rt, rok := t.Right.DataType().(types.MapType)
	if lok && rok {
		if common, ok := types.CommonTypeDifferingOnlyInNullFlags(lt.Key, rt.Key); ok {
			return common
		}
	}
	if lok {
		return lt.Key
	}
	return nil
}

func (t *MapZipWith) DataType() types.DataType {
	return types.MapType{
		Key:               t.keyType(),
		Value:             t.Function.DataType(),
		ValueContainsNull: t.Function.Nullable(),
	}
}

func (t *MapZipWith) Nullable() bool {
	return t.Left.Nullable() || t.Right.Nullable()
}

func (t *MapZipWith) Children() []Expression {
	return []Expression{t.Left, t.Right, t.Function}
}

func (t *MapZipWith) WithChildren(children []Expression) Expression {
	sameLen(t, children, 3)
	return &MapZipWith{Left: children[0], Right: children[1], Function: children[2], Limit: t.Limit}
}

func (t *MapZipWith) Resolved() bool { return hofResolved(t) }

func (t *MapZipWith) CheckInputDataTypes() TypeCheck {
	if tc := checkArgumentExpectations(t); !tc.OK() {
		return tc
	}
	lt := t.Left.DataType().(types.MapType)
	rt := t.Right.DataType().(types.MapType)
	if !types.SameType(lt.Key, rt.Key) {
		return TypeCheckFailure(&MapZipKeyTypeMismatchError{Left: lt.Key, Right: rt.Key})
	}
	key := t.keyType()
	if !types.Hashable(key) && !types.Orderable(key) {
		return TypeCheckFailure(&MapZipKeyNotOrderableError{Key: key})
	}
	return TypeCheckSuccess()
}

func (t *MapZipWith) Bind(f LambdaBinder) (Expression, error) {
	lt, lok := t.Left.DataType().(types.MapType)
	if !lok {
		return nil, &ArgumentTypeMismatchError{Index: 0, Expected: "MAP", Actual: t.Left.DataType()}
	}
	rt, rok := t.Right.DataType().(types.MapType)
	if !rok {
		return nil, &ArgumentTypeMismatchError{Index: 1, Expected: "MAP", Actual: t.Right.DataType()}
	}
	common, ok := types.CommonTypeDifferingOnlyInNullFlags(lt.Key, rt.Key)
	if !ok {
		return nil, &MapZipKeyTypeMismatchError{Left: lt.Key, Right: rt.Key}
	}
	lf, err := mustLambda(t.Function)
	if err != nil {
		return nil, err
	}
	if len(lf.Params) != 3 {
		return nil, &ArgumentTypeMismatchError{
			Index:    2,
			Expected: "lambda of 3 parameters",
			Actual:   lf.DataType(),
		}
	}
	// Either side may lack a key, so both value parameters are nullable
	// regardless of the maps' own flags.
	bound, err := f(lf, []ParamSpec{
		{Type: common, Nullable: false},
		{Type: lt.Value, Nullable: true},
		{Type: rt.Value, Nullable: true},
	})
	if err != nil {
		return nil, err
	}
	return &MapZipWith{Left: t.Left, Right: t.Right, Function: bound, Limit: t.Limit}, nil
}

func (t *MapZipWith) Eval(row Row) (any, error) {
	lm, lNull, err := evalMapArgument(t.Left, row)
	if err != nil || lNull {
		return nil, err
	}
	rm, rNull, err := evalMapArgument(t.Right, row)
	if err != nil || rNull {
		return nil, err
	}
	if t.fn == nil {
		lf, err := mustLambda(t.Function)
		if err != nil {
			return nil, err
		}
		t.fn = functionForEval(lf)
	}
	idx, err := newKeyIndex(t.keyType(), t.Limit)
	if err != nil {
		return nil, err
	}
	lKeys := lm.KeyArray()
	for i := 0; i < lKeys.NumElements(); i++ {
		if err := idx.insert(lKeys.Get(i), leftSide, i); err != nil {
			return nil, err
		}
	}
	rKeys := rm.KeyArray()
	for i := 0; i < rKeys.NumElements(); i++ {
		if err := idx.insert(rKeys.Get(i), rightSide, i); err != nil {
			return nil, err
		}
	}
	keyVar := t.fn.Params[0]
	v1Var := t.fn.Params[1]
	v2Var := t.fn.Params[2]
	lVals := lm.ValueArray()
	rVals := rm.ValueArray()
	union := idx.entries()
	outKeys := make(values.GenericArrayData, 0, len(union))
	outVals := make(values.GenericArrayData, 0, len(union))
	for _, e := range union {
		keyVar.Set(e.key)
		if e.left >= 0 {
			v1Var.Set(lVals.Get(e.left))
		} else {
			v1Var.Set(nil)
		}
		if e.right >= 0 {
			v2Var.Set(rVals.Get(e.right))
		} else {
			v2Var.Set(nil)
		}
		v, err := t.fn.Eval(row)
		if err != nil {
			return nil, err
		}
		outKeys = append(outKeys, e.key)
		outVals = append(outVals, v)
	}
	return values.ArrayBasedMapData(outKeys, outVals), nil
}

func (t *MapZipWith) String() string {
	return fmt.Sprintf("map_zip_with(%v, %v, %v)", t.Left, t.Right, t.Function)
}
