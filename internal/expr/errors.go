package expr

import (
	"fmt"

	"github.com/SimonWaldherr/lambdaSQL/internal/types"
)

// TypeCheck is the two-state result of an analysis-time input check.
type TypeCheck struct {
	err error
}

// TypeCheckSuccess is the passing result.
func TypeCheckSuccess() TypeCheck { return TypeCheck{} }

// TypeCheckFailure wraps a typed analysis error.
func TypeCheckFailure(err error) TypeCheck { return TypeCheck{err: err} }

func (t TypeCheck) OK() bool { return t.err == nil }

// Err returns the analysis error, nil on success.
func (t TypeCheck) Err() error { return t.err }

func (t TypeCheck) Message() string {
	if t.err == nil {
		return ""
	}
	return t.err.Error()
}

// ArgumentTypeMismatchError reports an argument whose type does not match
// the expected abstract type for its position.
type ArgumentTypeMismatchError struct {
	Index    int
	Expected string
	Actual   types.DataType
}

func (e *ArgumentTypeMismatchError) Error() string {
	actual := "unresolved"
	if e.Actual != nil {
		actual = e.Actual.String()
	}
	return fmt.Sprintf("argument %d: expected %s, got %s", e.Index+1, e.Expected, actual)
}

// AggregateAccumulatorTypeMismatchError reports a merge lambda whose
// result type differs structurally (ignoring nullability) from the zero
// value's type.
type AggregateAccumulatorTypeMismatchError struct {
	Zero  types.DataType
	Merge types.DataType
}

func (e *AggregateAccumulatorTypeMismatchError) Error() string {
	return fmt.Sprintf("aggregate accumulator type %s does not match merge result type %s",
		e.Zero, e.Merge)
}

// MapZipKeyTypeMismatchError reports zip-with maps with different key
// types.
type MapZipKeyTypeMismatchError struct {
	Left  types.DataType
	Right types.DataType
}

func (e *MapZipKeyTypeMismatchError) Error() string {
	return fmt.Sprintf("map_zip_with key types differ: %s vs %s", e.Left, e.Right)
}

// MapZipKeyNotOrderableError reports a key type that supports neither
// hashing nor ordering, so no matching strategy exists.
type MapZipKeyNotOrderableError struct {
	Key types.DataType
}

func (e *MapZipKeyNotOrderableError) Error() string {
	return fmt.Sprintf("map_zip_with key type %s is not orderable", e.Key)
}

// MapZipSizeExceededError is the runtime error raised when the distinct
// key count of a zip-with output exceeds the configured limit.
type MapZipSizeExceededError struct {
	Size  int
	Limit int
}

func (e *MapZipSizeExceededError) Error() string {
	return fmt.Sprintf("map_zip_with result would hold %d entries, limit is %d", e.Size, e.Limit)
}
