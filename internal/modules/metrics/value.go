package metrics

import (
	"github.com/aristath/finlookup/internal/domain"
	"github.com/aristath/finlookup/pkg/formulas"
	"github.com/guregu/null/v6"
	"github.com/vmihailenco/msgpack/v5"
)

// Value is an optional derived number. An undefined Value carries the reason
// (ErrInsufficientHistory or ErrUndefinedRatio) and is never zero-filled.
// It encodes as a number or null.
type Value struct {
	null.Float
	Reason error `json:"-" msgpack:"-"`
}

// Defined wraps a computed number.
func Defined(f float64) Value {
	return Value{Float: null.FloatFrom(f)}
}

// Undefined is a missing value with its reason.
func Undefined(reason error) Value {
	return Value{Reason: reason}
}

// Err returns the reason an undefined value is missing, nil when defined.
func (v Value) Err() error {
	if v.Valid {
		return nil
	}
	if v.Reason == nil {
		return domain.ErrInsufficientHistory
	}
	return v.Reason
}

// Map applies fn to a defined value.
func (v Value) Map(fn func(float64) float64) Value {
	if !v.Valid {
		return v
	}
	return Defined(fn(v.ValueOrZero()))
}

// EncodeMsgpack encodes the value as a float or nil.
func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	if !v.Valid {
		return enc.EncodeNil()
	}
	return enc.EncodeFloat64(v.ValueOrZero())
}

// Ratio is num / den, undefined when den is zero.
func Ratio(num, den float64) Value {
	if den == 0 {
		return Undefined(domain.ErrUndefinedRatio)
	}
	return Defined(num / den)
}

// Growth is the percentage change from prev to cur, undefined when prev is zero.
func Growth(cur, prev float64) Value {
	pct := formulas.PercentChange(prev, cur)
	if pct == nil {
		return Undefined(domain.ErrUndefinedRatio)
	}
	return Defined(*pct)
}

func values(vs ...[]Value) []float64 {
	var out []float64
	for _, s := range vs {
		for _, v := range s {
			if v.Valid {
				out = append(out, v.ValueOrZero())
			}
		}
	}
	return out
}
