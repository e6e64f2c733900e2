package staging

import "github.com/cockroachdb/errors"

// ErrDevice marks every error that originates in the device, its driver, or one of the
// facades that talk to it. These are not retried at this layer: the application is
// expected to tear down when one reaches it. Test for it with errors.Is, from either the
// standard library or cockroachdb/errors.
var ErrDevice = errors.New("device failure")

// deviceFailure carries the ErrDevice kind through the standard library's errors.Is, which
// does not see cockroachdb marks
type deviceFailure struct {
	cause error
}

func (e *deviceFailure) Error() string {
	return e.cause.Error()
}

func (e *deviceFailure) Unwrap() error {
	return e.cause
}

func (e *deviceFailure) Is(target error) bool {
	return target == ErrDevice
}

func deviceError(err error, format string, args ...any) error {
	return &deviceFailure{
		cause: errors.Mark(errors.Wrapf(err, format, args...), ErrDevice),
	}
}

// Misuse of the API is a caller bug and is never returned as an error
func assertf(condition bool, format string, args ...any) {
	if !condition {
		panic(errors.AssertionFailedf(format, args...))
	}
}
