package values

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/SimonWaldherr/lambdaSQL/internal/types"
)

// Strings are ordered by collation rather than raw bytes. The collator is
// not safe for concurrent use, so access is serialized; string key
// comparison is off the per-element hot path (hashable keys take the hash
// route).
var (
	collMu sync.Mutex
	coll   = collate.New(language.Und)
)

func collateStrings(a, b string) int {
	collMu.Lock()
	defer collMu.Unlock()
	return coll.CompareString(a, b)
}

// Compare orders two non-NULL values of atomic type t, returning -1, 0 or
// 1. It errors when t has no total order or the values do not match t's
// runtime representation.
func Compare(a, b any, t types.DataType) (int, error) {
	at, ok := t.(types.Atomic)
	if !ok {
		return 0, fmt.Errorf("type %s is not orderable", t)
	}
	switch at {
	case types.Bool:
		ab, aok := a.(bool)
		bb, bok := b.(bool)
		if aok && bok {
			return cmpBool(ab, bb), nil
		}
	case types.Int:
		ai, aok := a.(int32)
		bi, bok := b.(int32)
		if aok && bok {
			return cmpOrdered(ai, bi), nil
		}
	case types.Long:
		ai, aok := a.(int64)
		bi, bok := b.(int64)
		if aok && bok {
			return cmpOrdered(ai, bi), nil
		}
	case types.Double:
		af, aok := a.(float64)
		bf, bok := b.(float64)
		if aok && bok {
			return cmpOrdered(af, bf), nil
		}
	case types.String:
		as, aok := a.(string)
		bs, bok := b.(string)
		if aok && bok {
			return collateStrings(as, bs), nil
		}
	case types.Binary:
		ab, aok := a.([]byte)
		bb, bok := b.([]byte)
		if aok && bok {
			return bytes.Compare(ab, bb), nil
		}
	case types.Decimal:
		ad, aok := a.(decimal.Decimal)
		bd, bok := b.(decimal.Decimal)
		if aok && bok {
			return ad.Cmp(bd), nil
		}
	case types.Uuid:
		au, aok := a.(uuid.UUID)
		bu, bok := b.(uuid.UUID)
		if aok && bok {
			return bytes.Compare(au[:], bu[:]), nil
		}
	case types.Date, types.Timestamp:
		ats, aok := a.(time.Time)
		bts, bok := b.(time.Time)
		if aok && bok {
			return cmpTime(ats, bts), nil
		}
	}
	return 0, fmt.Errorf("incomparable %T and %T as %s", a, b, t)
}

// Equal reports whether two non-NULL values of type t compare equal.
func Equal(a, b any, t types.DataType) (bool, error) {
	c, err := Compare(a, b, t)
	if err != nil {
		return false, err
	}
	return c == 0, nil
}

// HashKey returns a comparable Go value usable as a hash-map key for a
// non-NULL value of hashable type t.
func HashKey(v any, t types.DataType) (any, error) {
	at, ok := t.(types.Atomic)
	if !ok || !types.Hashable(at) {
		return nil, fmt.Errorf("type %s is not hashable", t)
	}
	switch at {
	case types.Bool, types.Int, types.Long, types.Double, types.String:
		return v, nil
	case types.Decimal:
		// Equal decimals can carry different internal scale (1.5 vs
		// 1.50), so the key is the normalized rational string.
		if d, ok := v.(decimal.Decimal); ok {
			return d.Rat().RatString(), nil
		}
	case types.Uuid:
		if u, ok := v.(uuid.UUID); ok {
			return u, nil
		}
	case types.Date, types.Timestamp:
		if ts, ok := v.(time.Time); ok {
			return ts.UnixNano(), nil
		}
	}
	return nil, fmt.Errorf("cannot hash %T as %s", v, t)
}

func cmpBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

func cmpOrdered[T int32 | int64 | float64](a, b T) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func cmpTime(a, b time.Time) int {
	if a.Before(b) {
		return -1
	}
	if a.After(b) {
		return 1
	}
	return 0
}
