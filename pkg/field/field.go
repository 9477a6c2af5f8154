// Package field provides a three-state wrapper for document fields whose
// absence, explicit null and explicit value carry different meanings.
//
// A Field[T] is absent by default. JSON decoding produces Null for a literal
// null and Present for any other value; a key that never appears leaves the
// field absent. Encoding relies on the `omitzero` tag option so absent fields
// disappear from the output while nulls are written back as null:
//
//	type Spending struct {
//		MonthlyBudget field.Field[Budget] `json:"monthly_budget,omitzero"`
//	}
package field

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type state uint8

const (
	stateAbsent state = iota
	stateNull
	statePresent
)

// Field holds an optional value that distinguishes "never supplied" from
// "explicitly null".
type Field[T any] struct {
	value T
	state state
}

// Value returns a present field holding v.
func Value[T any](v T) Field[T] {
	return Field[T]{value: v, state: statePresent}
}

// Null returns an explicitly null field.
func Null[T any]() Field[T] {
	return Field[T]{state: stateNull}
}

// Absent returns a field that was never supplied. It equals the zero value.
func Absent[T any]() Field[T] {
	return Field[T]{}
}

// FromPtr maps nil to Null and a non-nil pointer to Value.
func FromPtr[T any](v *T) Field[T] {
	if v == nil {
		return Null[T]()
	}
	return Value(*v)
}

func (f Field[T]) IsAbsent() bool  { return f.state == stateAbsent }
func (f Field[T]) IsNull() bool    { return f.state == stateNull }
func (f Field[T]) IsPresent() bool { return f.state == statePresent }

// IsZero reports whether the field is absent. encoding/json uses it to honour
// the omitzero tag option.
func (f Field[T]) IsZero() bool { return f.state == stateAbsent }

// Get returns the held value and whether one is present.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.state == statePresent
}

// OrElse returns the held value, or def when the field is absent or null.
func (f Field[T]) OrElse(def T) T {
	if f.state == statePresent {
		return f.value
	}
	return def
}

// Ptr returns a pointer to a copy of the held value, or nil.
func (f Field[T]) Ptr() *T {
	if f.state != statePresent {
		return nil
	}
	v := f.value
	return &v
}

// Merge fills an absent field from def. Null and present fields are kept:
// an explicit null is a value in its own right and never replaced.
func (f Field[T]) Merge(def Field[T]) Field[T] {
	if f.state == stateAbsent {
		return def
	}
	return f
}

// Coalesce fills an absent or null field from def. Use it for fields whose
// schema gives null no meaning.
func (f Field[T]) Coalesce(def Field[T]) Field[T] {
	if f.state != statePresent {
		return def
	}
	return f
}

// Map applies fn to a present value and keeps the absent/null state otherwise.
func Map[T any](f Field[T], fn func(T) T) Field[T] {
	if f.state != statePresent {
		return f
	}
	return Value(fn(f.value))
}

func (f Field[T]) String() string {
	switch f.state {
	case stateNull:
		return "null"
	case statePresent:
		return fmt.Sprint(f.value)
	default:
		return "<absent>"
	}
}

// MarshalJSON writes null for null and absent fields; pair it with omitzero
// so absent fields are skipped entirely.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.state != statePresent {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// UnmarshalJSON is only invoked for keys present in the input, so the
// absent state is never produced here.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.value = zero
		f.state = stateNull
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.value = v
	f.state = statePresent
	return nil
}
