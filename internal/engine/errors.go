package engine

// unavailableError signals that no runtime can serve requests, e.g. a build
// without in-process engine support and no runtime configured.
type unavailableError struct{ msg string }

func (e unavailableError) Error() string { return e.msg }

// ErrUnavailable constructs an unavailableError.
func ErrUnavailable(msg string) error { return unavailableError{msg: msg} }

// IsUnavailable reports whether err indicates a missing engine runtime.
func IsUnavailable(err error) bool {
	_, ok := err.(unavailableError)
	return ok
}
