package hxpager

import "errors"

// Sentinel errors for binding operations.
var (
	ErrBinding    = errors.New("hxpager: binding error")
	ErrStaleProxy = errors.New("hxpager: proxy changed since it was installed")
	ErrConfig     = errors.New("hxpager: invalid configuration")
)

// IsBindingError checks if err ended a binding because its upstream failed.
func IsBindingError(err error) bool {
	return errors.Is(err, ErrBinding)
}

// IsStaleProxy checks if err reports a host whose data source slot was
// overwritten behind a binding's back.
func IsStaleProxy(err error) bool {
	return errors.Is(err, ErrStaleProxy)
}
