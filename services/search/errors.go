package search

import "fmt"

// InputError reports a malformed search parameter. It is returned before any
// store or geocoder access.
type InputError struct {
	Param  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

func inputErr(param, format string, args ...any) error {
	return &InputError{Param: param, Reason: fmt.Sprintf(format, args...)}
}
