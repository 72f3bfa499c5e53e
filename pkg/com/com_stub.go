//go:build !windows

package com

import "fmt"

// NewDispatcher returns a dispatcher that always fails. The vendor automation
// surfaces only exist on Windows; on other platforms the fake is the only way
// to exercise the sessions.
func NewDispatcher() Dispatcher {
	return unsupportedDispatcher{}
}

type unsupportedDispatcher struct{}

func (unsupportedDispatcher) Dispatch(progID string) (Object, error) {
	return nil, fmt.Errorf("dispatching %q: COM automation requires Windows", progID)
}
