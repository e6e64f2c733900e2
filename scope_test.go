package staging

import (
	stderrors "errors"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestWithScope_ReleasesAfterUse(t *testing.T) {
	var events []string

	err := WithScope(
		func() (int, error) {
			events = append(events, "acquire")
			return 5, nil
		},
		func(value int) error {
			events = append(events, "release")
			require.Equal(t, 5, value)
			return nil
		},
		func(value int) error {
			events = append(events, "use")
			return nil
		},
	)
	require.NoError(t, err)
	require.Equal(t, []string{"acquire", "use", "release"}, events)
}

func TestWithScope_ReleasesWhenUseFails(t *testing.T) {
	useErr := errors.New("use failed")
	released := 0

	err := WithScope(
		func() (int, error) { return 1, nil },
		func(int) error {
			released++
			return nil
		},
		func(int) error { return useErr },
	)
	require.ErrorIs(t, err, useErr)
	require.Equal(t, 1, released)
}

func TestWithScope_ReleasesWhenUsePanics(t *testing.T) {
	released := 0

	require.Panics(t, func() {
		_ = WithScope(
			func() (int, error) { return 1, nil },
			func(int) error {
				released++
				return nil
			},
			func(int) error { panic("boom") },
		)
	})
	require.Equal(t, 1, released)
}

func TestWithScope_AcquireFailureSkipsRelease(t *testing.T) {
	acquireErr := errors.New("acquire failed")
	released := 0
	used := 0

	err := WithScope(
		func() (int, error) { return 0, acquireErr },
		func(int) error {
			released++
			return nil
		},
		func(int) error {
			used++
			return nil
		},
	)
	require.ErrorIs(t, err, acquireErr)
	require.Equal(t, 0, released)
	require.Equal(t, 0, used)
}

func TestWithScope_ReportsReleaseFailure(t *testing.T) {
	releaseErr := errors.New("release failed")

	err := WithScope(
		func() (int, error) { return 1, nil },
		func(int) error { return releaseErr },
		func(int) error { return nil },
	)
	require.ErrorIs(t, err, releaseErr)
}

func TestScope_ReleaseOnce(t *testing.T) {
	released := 0
	scope, err := Acquire(
		func() (string, error) { return "window", nil },
		func(string) error {
			released++
			return nil
		},
	)
	require.NoError(t, err)
	require.Equal(t, "window", scope.Value())
	require.False(t, scope.Released())

	require.NoError(t, scope.Release())
	require.NoError(t, scope.Release())
	require.True(t, scope.Released())
	require.Equal(t, 1, released)

	require.Panics(t, func() {
		scope.Value()
	})
}

func TestAssertf(t *testing.T) {
	require.NotPanics(t, func() {
		assertf(true, "never")
	})

	defer func() {
		r := recover()
		err, ok := r.(error)
		require.True(t, ok)
		require.True(t, errors.IsAssertionFailure(err))
		require.Contains(t, err.Error(), "size 0")
	}()
	assertf(false, "bad size %d", 0)
}

func TestDeviceError(t *testing.T) {
	cause := errors.New("VK_ERROR_DEVICE_LOST")
	err := deviceError(cause, "failed to submit %d commands", 3)

	require.ErrorIs(t, err, ErrDevice)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "failed to submit 3 commands")

	require.True(t, stderrors.Is(err, ErrDevice))
	require.True(t, stderrors.Is(err, cause))
	require.True(t, errors.Is(err, ErrDevice))
	require.True(t, errors.Is(err, cause))
	require.False(t, stderrors.Is(cause, ErrDevice))
}

func TestDeviceError_SurvivesWrapping(t *testing.T) {
	err := errors.Wrap(deviceError(errors.New("VK_ERROR_OUT_OF_DEVICE_MEMORY"), "failed to allocate"), "failed to grow buffer")

	require.True(t, stderrors.Is(err, ErrDevice))
	require.True(t, errors.Is(err, ErrDevice))

	combined := errors.CombineErrors(deviceError(errors.New("VK_ERROR_DEVICE_LOST"), "failed to submit"), errors.New("release failed"))
	require.True(t, stderrors.Is(combined, ErrDevice))
}
