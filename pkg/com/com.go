// Package com is the dispatch seam between solidwrap and the vendor COM
// automation surfaces. Sessions talk to a Dispatcher, never to go-ole
// directly, so everything above this package runs unchanged against the
// scripted fake used in tests and on non-Windows platforms.
package com

import (
	"fmt"
)

// Dispatcher creates top-level automation objects from a ProgID string.
type Dispatcher interface {
	// Dispatch instantiates (or attaches to) the automation object registered
	// under progID. The call blocks until the hosting process responds.
	Dispatch(progID string) (Object, error)
}

// Object is a narrow view of an IDispatch automation object.
//
// Integer option codes passed as arguments are vendor-defined and opaque;
// they are marshaled through unchanged.
type Object interface {
	// Get reads a property, optionally parameterized (indexed properties).
	Get(property string, args ...interface{}) (Value, error)

	// Put writes a property.
	Put(property string, value interface{}) error

	// Call invokes a method.
	Call(method string, args ...interface{}) (Value, error)

	// Release drops the reference. The object must not be used afterward.
	Release()
}

// ByRef is a mutable VT_BYREF|VT_I4 slot. The vendor interfaces use these as
// output parameters for error and warning codes.
type ByRef struct {
	Value int32
}

// NewByRef creates a by-reference integer slot seeded with v.
func NewByRef(v int32) *ByRef {
	return &ByRef{Value: v}
}

// Value wraps a result returned from a property read or method call.
type Value struct {
	v interface{}
}

// NewValue wraps a raw result. Mostly useful for fakes.
func NewValue(v interface{}) Value {
	return Value{v: v}
}

// IsNil reports whether the wrapped result is absent.
func (v Value) IsNil() bool {
	return v.v == nil
}

// Raw returns the wrapped result unconverted.
func (v Value) Raw() interface{} {
	return v.v
}

// String returns the result as a string, or "" when absent.
func (v Value) String() string {
	switch s := v.v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", s)
	}
}

// Int returns the result as an int. Integer COM results arrive with varying
// widths depending on the marshaler, so all of them are accepted.
func (v Value) Int() int {
	switch n := v.v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// Bool returns the result as a bool. Automation booleans sometimes arrive as
// integers (VARIANT_TRUE is -1).
func (v Value) Bool() bool {
	switch b := v.v.(type) {
	case bool:
		return b
	case int, int32, int64:
		return v.Int() != 0
	default:
		return false
	}
}

// Object returns the result as a nested automation object, or nil when the
// result is absent or not an object.
func (v Value) Object() Object {
	if obj, ok := v.v.(Object); ok {
		return obj
	}
	return nil
}
