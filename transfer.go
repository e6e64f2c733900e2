package staging

import "golang.org/x/exp/slog"

func assertTransfer(src, dst *Buffer, size int) {
	src.assertLive()
	dst.assertLive()
	assertf(size > 0, "attempted to transfer %d bytes", size)
	assertf(size <= src.size, "attempted to transfer %d bytes out of a buffer of size %d", size, src.size)
	assertf(size <= dst.size, "attempted to transfer %d bytes into a buffer of size %d", size, dst.size)
}

// StageTransfer records a copy of the first size bytes of src into the first size bytes of dst.
// Nothing is submitted: the copy executes whenever the recorder is submitted.
func StageTransfer(recorder CommandRecorder, src, dst *Buffer, size int) error {
	assertf(recorder != nil, "attempted to record a transfer without a command recorder")
	assertTransfer(src, dst, size)

	src.device.logger.Debug("StageTransfer",
		slog.Uint64("Source", uint64(src.handle)),
		slog.Uint64("Destination", uint64(dst.handle)),
		slog.Int("Size", size),
	)

	err := recorder.CmdCopyBuffer(src.handle, dst.handle, []BufferCopy{
		{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      size,
		},
	})
	if err != nil {
		return deviceError(err, "failed to record a copy of %d bytes from buffer %d to buffer %d", size, src.handle, dst.handle)
	}

	src.device.registry.RecordTransfer(size)
	return nil
}

// StageTransferSingleSubmit records a copy of the first size bytes of src into dst, submits it,
// and blocks until the device has executed it.
func StageTransferSingleSubmit(device *Device, src, dst *Buffer, size int) error {
	assertf(device != nil, "attempted to submit a transfer without a device")
	assertTransfer(src, dst, size)

	return device.WithCommands(func(recorder CommandRecorder) error {
		return StageTransfer(recorder, src, dst, size)
	})
}

// StageTransferDynamic records a copy of the whole staging buffer into this buffer. It is meant
// for command buffers the caller records and submits per frame.
func (b *Buffer) StageTransferDynamic(recorder CommandRecorder) error {
	b.assertLive()
	assertf(b.staging != nil, "attempted a staged transfer on a buffer that has no staging buffer")

	return StageTransfer(recorder, b.staging, b, b.size)
}
