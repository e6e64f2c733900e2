package staging_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/staging"
	"github.com/vkngwrapper/staging/resourcetest"
)

func newTestDevice(t *testing.T) (*staging.Device, *resourcetest.Allocator, *resourcetest.Submitter) {
	t.Helper()

	allocator := resourcetest.NewAllocator()
	submitter := resourcetest.NewSubmitter(allocator)
	device, err := staging.New(nil, allocator, submitter, staging.CreateOptions{})
	require.NoError(t, err)

	return device, allocator, submitter
}

func requireAssertionFailure(t *testing.T, f func()) {
	t.Helper()

	var recovered any
	func() {
		defer func() {
			recovered = recover()
		}()
		f()
	}()

	require.NotNil(t, recovered, "expected an assertion failure")
	err, ok := recovered.(error)
	require.True(t, ok, "expected the panic value to be an error, got %T", recovered)
	require.True(t, errors.IsAssertionFailure(err), "expected an assertion failure, got %v", err)
}

func payload(size int, seed byte) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = seed + byte(i)
	}
	return data
}
