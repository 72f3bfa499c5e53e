package com

import (
	"fmt"
	"sort"
)

// FakeDispatcher serves pre-registered objects by ProgID. It stands in for
// the real COM runtime in tests and on non-Windows platforms.
type FakeDispatcher struct {
	objects map[string]Object

	// DispatchErr, when set, fails every Dispatch call. Used to simulate an
	// uninstalled or unresponsive vendor process.
	DispatchErr error

	// Dispatched records the ProgIDs requested, in order.
	Dispatched []string
}

// NewFakeDispatcher creates an empty fake dispatcher.
func NewFakeDispatcher() *FakeDispatcher {
	return &FakeDispatcher{objects: make(map[string]Object)}
}

// Register associates obj with progID.
func (d *FakeDispatcher) Register(progID string, obj Object) {
	d.objects[progID] = obj
}

// Dispatch implements Dispatcher.
func (d *FakeDispatcher) Dispatch(progID string) (Object, error) {
	d.Dispatched = append(d.Dispatched, progID)
	if d.DispatchErr != nil {
		return nil, d.DispatchErr
	}
	obj, ok := d.objects[progID]
	if !ok {
		return nil, fmt.Errorf("dispatching %q: class not registered", progID)
	}
	return obj, nil
}

// FakeCall records a single member invocation against a FakeObject.
type FakeCall struct {
	Member string
	Args   []interface{}
}

// FakeObject is a scriptable automation object. Properties resolve from
// Getters first, then Props; methods resolve from Methods. Unscripted members
// fail loudly so tests catch drift between the sessions and the fixtures.
type FakeObject struct {
	// Name identifies the object in errors and is otherwise cosmetic.
	Name string

	// Props backs simple property reads and all property writes.
	Props map[string]interface{}

	// Getters backs parameterized or computed property reads.
	Getters map[string]func(args ...interface{}) (interface{}, error)

	// Methods backs method calls.
	Methods map[string]func(args ...interface{}) (interface{}, error)

	// Calls records every Get/Put/Call in order.
	Calls []FakeCall

	// ReleaseCount counts Release invocations.
	ReleaseCount int
}

// NewFakeObject creates an empty scriptable object.
func NewFakeObject(name string) *FakeObject {
	return &FakeObject{
		Name:    name,
		Props:   make(map[string]interface{}),
		Getters: make(map[string]func(args ...interface{}) (interface{}, error)),
		Methods: make(map[string]func(args ...interface{}) (interface{}, error)),
	}
}

// Get implements Object.
func (o *FakeObject) Get(property string, args ...interface{}) (Value, error) {
	o.Calls = append(o.Calls, FakeCall{Member: property, Args: args})
	if fn, ok := o.Getters[property]; ok {
		result, err := fn(args...)
		if err != nil {
			return Value{}, err
		}
		return NewValue(result), nil
	}
	if v, ok := o.Props[property]; ok {
		return NewValue(v), nil
	}
	return Value{}, fmt.Errorf("%s: property %s not scripted (have: %v)",
		o.Name, property, o.scriptedMembers())
}

// Put implements Object.
func (o *FakeObject) Put(property string, value interface{}) error {
	o.Calls = append(o.Calls, FakeCall{Member: property, Args: []interface{}{value}})
	o.Props[property] = value
	return nil
}

// Call implements Object.
func (o *FakeObject) Call(method string, args ...interface{}) (Value, error) {
	o.Calls = append(o.Calls, FakeCall{Member: method, Args: args})
	fn, ok := o.Methods[method]
	if !ok {
		return Value{}, fmt.Errorf("%s: method %s not scripted (have: %v)",
			o.Name, method, o.scriptedMembers())
	}
	result, err := fn(args...)
	if err != nil {
		return Value{}, err
	}
	return NewValue(result), nil
}

// Release implements Object.
func (o *FakeObject) Release() {
	o.ReleaseCount++
}

// Called reports whether member was invoked at least once.
func (o *FakeObject) Called(member string) bool {
	for _, c := range o.Calls {
		if c.Member == member {
			return true
		}
	}
	return false
}

func (o *FakeObject) scriptedMembers() []string {
	members := make([]string, 0, len(o.Props)+len(o.Getters)+len(o.Methods))
	for k := range o.Props {
		members = append(members, k)
	}
	for k := range o.Getters {
		members = append(members, k)
	}
	for k := range o.Methods {
		members = append(members, k)
	}
	sort.Strings(members)
	return members
}
