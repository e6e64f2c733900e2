package staging_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/staging"
)

func TestFrameRing(t *testing.T) {
	device, allocator, submitter := newTestDevice(t)
	initial := payload(32, 0)

	ring, err := staging.NewFrameRing(device, staging.DefaultFramesInFlight, initial, core1_0.BufferUsageUniformBuffer, staging.MemoryClassGPUOnly)
	require.NoError(t, err)
	require.Equal(t, 2, ring.Frames())

	// Initial contents reach every frame in a single submission
	require.Equal(t, 1, submitter.SubmitCount)
	for frame := 0; frame < ring.Frames(); frame++ {
		require.True(t, ring.Buffer(frame).IsPersistentMapped())
		require.Equal(t, initial, allocator.Contents(ring.Buffer(frame).Handle()))
	}

	update := payload(32, 50)
	require.NoError(t, ring.Update(0, update))

	recorder := submitter.NewRecorder()
	require.NoError(t, ring.RecordTransfer(0, recorder))
	require.NoError(t, ring.RecordTransfer(1, recorder))
	require.Equal(t, 2, recorder.Copies())
	require.NoError(t, submitter.Execute(recorder))

	require.Equal(t, update, allocator.Contents(ring.Buffer(0).Handle()))
	require.Equal(t, initial, allocator.Contents(ring.Buffer(1).Handle()))

	requireAssertionFailure(t, func() {
		ring.Buffer(2)
	})

	require.NoError(t, ring.Destroy())
	require.Equal(t, 0, allocator.Live())
}

func TestFrameRing_GrowthChangesDescriptorViews(t *testing.T) {
	device, _, _ := newTestDevice(t)

	ring, err := staging.NewFrameRing(device, 3, payload(16, 0), core1_0.BufferUsageUniformBuffer, staging.MemoryClassGPUOnly)
	require.NoError(t, err)

	before := ring.DescriptorViews()
	require.Len(t, before, 3)

	require.NoError(t, ring.Update(1, payload(64, 0)))

	after := ring.DescriptorViews()
	require.Equal(t, before[0], after[0])
	require.Equal(t, before[2], after[2])
	require.NotEqual(t, before[1].Buffer, after[1].Buffer)
	require.Equal(t, 64, after[1].Range)

	require.NoError(t, ring.Destroy())
	require.Equal(t, 0, device.LiveBufferCount())
}

func TestFrameRing_CreationFailureReleasesFrames(t *testing.T) {
	device, allocator, _ := newTestDevice(t)

	creates := 0
	allocator.FailCreate = func(info staging.BufferCreateInfo) error {
		creates++
		if creates > 3 {
			return errors.New("VK_ERROR_OUT_OF_DEVICE_MEMORY")
		}
		return nil
	}

	_, err := staging.NewFrameRing(device, 2, payload(8, 0), core1_0.BufferUsageUniformBuffer, staging.MemoryClassGPUOnly)
	require.ErrorIs(t, err, staging.ErrDevice)
	require.Equal(t, 0, allocator.Live())
	require.Equal(t, 0, device.LiveBufferCount())
}
