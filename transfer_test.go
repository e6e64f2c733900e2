package staging_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/staging"
)

func TestStageTransfer_RecordsSingleRegion(t *testing.T) {
	device, allocator, submitter := newTestDevice(t)

	var src, dst staging.Buffer
	require.NoError(t, src.Create(device, 64, core1_0.BufferUsageTransferSrc, staging.MemoryClassCPUOnly))
	require.NoError(t, dst.Create(device, 32, core1_0.BufferUsageTransferDst, staging.MemoryClassGPUOnly))
	require.NoError(t, src.MapToBuffer(payload(64, 2)))

	recorder := submitter.NewRecorder()
	require.NoError(t, staging.StageTransfer(recorder, &src, &dst, 24))
	require.Equal(t, []staging.BufferCopy{{SrcOffset: 0, DstOffset: 0, Size: 24}}, recorder.Regions())

	// Recorded, not submitted
	require.Equal(t, make([]byte, 32), allocator.Contents(dst.Handle()))

	require.NoError(t, submitter.Execute(recorder))
	contents := allocator.Contents(dst.Handle())
	require.Equal(t, payload(24, 2), contents[:24])
	require.Equal(t, make([]byte, 8), contents[24:])

	require.NoError(t, src.Destroy())
	require.NoError(t, dst.Destroy())
}

func TestStageTransfer_SizeBeyondCapacityRejected(t *testing.T) {
	device, _, submitter := newTestDevice(t)

	var src, dst staging.Buffer
	require.NoError(t, src.Create(device, 64, core1_0.BufferUsageTransferSrc, staging.MemoryClassCPUOnly))
	require.NoError(t, dst.Create(device, 32, core1_0.BufferUsageTransferDst, staging.MemoryClassGPUOnly))

	recorder := submitter.NewRecorder()
	requireAssertionFailure(t, func() {
		_ = staging.StageTransfer(recorder, &src, &dst, 33)
	})
	requireAssertionFailure(t, func() {
		_ = staging.StageTransfer(recorder, &dst, &src, 33)
	})
	requireAssertionFailure(t, func() {
		_ = staging.StageTransfer(recorder, &src, &dst, 0)
	})
	requireAssertionFailure(t, func() {
		_ = staging.StageTransferSingleSubmit(device, &src, &dst, 65)
	})
	require.Equal(t, 0, recorder.Copies())
	require.Equal(t, 0, submitter.BeginCount)

	require.NoError(t, src.Destroy())
	require.NoError(t, dst.Destroy())
}

func TestStageTransferSingleSubmit_BlocksUntilExecuted(t *testing.T) {
	device, allocator, submitter := newTestDevice(t)

	var buffer staging.Buffer
	require.NoError(t, buffer.CreateStaged(device, payload(16, 5), 16, core1_0.BufferUsageIndexBuffer, staging.MemoryClassGPUOnly, false))

	require.NoError(t, staging.StageTransferSingleSubmit(device, buffer.StagingBuffer(), &buffer, 16))
	require.Equal(t, payload(16, 5), allocator.Contents(buffer.Handle()))
	require.Equal(t, 1, submitter.BeginCount)
	require.Equal(t, 1, submitter.SubmitCount)
	require.Equal(t, 1, submitter.ReleaseCount)

	require.NoError(t, buffer.Destroy())
}

func TestStageTransferDynamic_Batches(t *testing.T) {
	device, allocator, submitter := newTestDevice(t)

	var first, second staging.Buffer
	require.NoError(t, first.CreateStagedPersistent(device, payload(16, 1), 16, core1_0.BufferUsageUniformBuffer, staging.MemoryClassGPUOnly, false))
	require.NoError(t, second.CreateStagedPersistent(device, payload(48, 2), 48, core1_0.BufferUsageUniformBuffer, staging.MemoryClassGPUOnly, false))

	err := device.WithCommands(func(recorder staging.CommandRecorder) error {
		if err := first.StageTransferDynamic(recorder); err != nil {
			return err
		}
		return second.StageTransferDynamic(recorder)
	})
	require.NoError(t, err)

	require.Equal(t, 1, submitter.SubmitCount)
	require.Equal(t, payload(16, 1), allocator.Contents(first.Handle()))
	require.Equal(t, payload(48, 2), allocator.Contents(second.Handle()))

	stats := device.Statistics()
	require.Equal(t, 2, stats.Transfers)
	require.Equal(t, 64, stats.BytesTransferred)

	var direct staging.Buffer
	require.NoError(t, direct.Create(device, 8, core1_0.BufferUsageUniformBuffer, staging.MemoryClassGPUOnly))
	requireAssertionFailure(t, func() {
		_ = direct.StageTransferDynamic(submitter.NewRecorder())
	})

	require.NoError(t, first.Destroy())
	require.NoError(t, second.Destroy())
	require.NoError(t, direct.Destroy())
}
