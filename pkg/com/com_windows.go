//go:build windows

package com

import (
	"fmt"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// NewDispatcher returns the go-ole backed dispatcher. COM is initialized for
// the calling thread on first use; all session operations are synchronous and
// single-threaded, matching the apartment model the vendor interfaces expect.
func NewDispatcher() Dispatcher {
	return &oleDispatcher{}
}

type oleDispatcher struct {
	initialized bool
}

func (d *oleDispatcher) Dispatch(progID string) (Object, error) {
	if !d.initialized {
		if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
			// S_FALSE means the apartment was already initialized; anything
			// else is fatal.
			if oleErr, ok := err.(*ole.OleError); !ok || oleErr.Code() != uintptr(1) {
				return nil, fmt.Errorf("initializing COM: %w", err)
			}
		}
		d.initialized = true
	}

	unknown, err := oleutil.CreateObject(progID)
	if err != nil {
		return nil, fmt.Errorf("dispatching %q: %w", progID, err)
	}
	dispatch, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		unknown.Release()
		return nil, fmt.Errorf("querying IDispatch for %q: %w", progID, err)
	}
	return &oleObject{dispatch: dispatch}, nil
}

// oleObject adapts *ole.IDispatch to the Object interface.
type oleObject struct {
	dispatch *ole.IDispatch
}

func (o *oleObject) Get(property string, args ...interface{}) (Value, error) {
	result, err := oleutil.GetProperty(o.dispatch, property, marshalArgs(args)...)
	if err != nil {
		return Value{}, fmt.Errorf("getting %s: %w", property, err)
	}
	return unmarshalVariant(result), nil
}

func (o *oleObject) Put(property string, value interface{}) error {
	if _, err := oleutil.PutProperty(o.dispatch, property, value); err != nil {
		return fmt.Errorf("putting %s: %w", property, err)
	}
	return nil
}

func (o *oleObject) Call(method string, args ...interface{}) (Value, error) {
	result, err := oleutil.CallMethod(o.dispatch, method, marshalArgs(args)...)
	if err != nil {
		return Value{}, fmt.Errorf("calling %s: %w", method, err)
	}
	return unmarshalVariant(result), nil
}

func (o *oleObject) Release() {
	if o.dispatch != nil {
		o.dispatch.Release()
		o.dispatch = nil
	}
}

// marshalArgs converts portable argument types into what oleutil expects.
// *ByRef slots become VT_BYREF|VT_I4 variants pointing at the slot so the
// callee can write error/warning codes back through them.
func marshalArgs(args []interface{}) []interface{} {
	converted := make([]interface{}, 0, len(args))
	for _, arg := range args {
		switch a := arg.(type) {
		case *ByRef:
			v := ole.NewVariant(ole.VT_I4|ole.VT_BYREF,
				int64(uintptr(unsafe.Pointer(&a.Value))))
			converted = append(converted, &v)
		case *oleObject:
			converted = append(converted, a.dispatch)
		case Object:
			// Foreign Object implementations cannot cross into real COM.
			converted = append(converted, nil)
		default:
			converted = append(converted, arg)
		}
	}
	return converted
}

func unmarshalVariant(v *ole.VARIANT) Value {
	if v == nil {
		return Value{}
	}
	if dispatch := v.ToIDispatch(); dispatch != nil {
		return NewValue(Object(&oleObject{dispatch: dispatch}))
	}
	return NewValue(v.Value())
}
