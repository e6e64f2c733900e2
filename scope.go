package staging

import "github.com/cockroachdb/errors"

// Scope holds a resource acquired from a facade until it is released. Release runs the
// release function at most once, no matter how many times it is called.
type Scope[T any] struct {
	value    T
	release  func(T) error
	released bool
}

// Acquire runs acquire and wraps the result in a Scope that will hand it to release. If
// acquire fails, nothing is held and release is never called.
func Acquire[T any](acquire func() (T, error), release func(T) error) (*Scope[T], error) {
	value, err := acquire()
	if err != nil {
		return nil, err
	}

	return &Scope[T]{
		value:   value,
		release: release,
	}, nil
}

func (s *Scope[T]) Value() T {
	assertf(!s.released, "attempted to use a scoped resource after it was released")
	return s.value
}

func (s *Scope[T]) Released() bool {
	return s.released
}

func (s *Scope[T]) Release() error {
	if s.released {
		return nil
	}
	s.released = true

	return s.release(s.value)
}

// WithScope acquires a resource, passes it to use, and releases it before returning. The
// release happens on every path out of use, including a panic. Errors from use and from
// release are both reported.
func WithScope[T any](acquire func() (T, error), release func(T) error, use func(T) error) (err error) {
	scope, err := Acquire(acquire, release)
	if err != nil {
		return err
	}

	defer func() {
		releaseErr := scope.Release()
		err = errors.CombineErrors(err, releaseErr)
	}()

	return use(scope.Value())
}
