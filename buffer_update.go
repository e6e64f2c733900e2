package staging

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"
)

// UpdateData writes data into the front of the buffer's staging buffer and, if submit is true,
// copies it to the buffer before returning.
//
// If data is larger than the buffer, the buffer is recreated with a capacity of len(data),
// keeping its usage, memory class, and mapping strategy. This invalidates the handle and any
// descriptor built from the previous DescriptorView, and any slice previously returned from
// MappedData; listeners registered with OnRecreate are told about it. If recreation fails,
// the buffer is left exactly as it was.
//
// It is a programming error to update a buffer that has no staging buffer.
func (b *Buffer) UpdateData(data []byte, submit bool) error {
	b.assertLive()
	assertf(data != nil, "attempted to update a buffer with nil data")
	assertf(len(data) > 0, "attempted to update a buffer with empty data")
	assertf(b.staging != nil, "attempted to update a buffer that has no staging buffer")

	b.device.logger.Debug("Buffer::UpdateData",
		slog.Int("Size", len(data)),
		slog.Int("Capacity", b.size),
		slog.Bool("Persistent", b.persistentMapped),
		slog.Bool("Submit", submit),
	)

	if len(data) > b.size {
		return b.grow(data, submit)
	}

	err := Map(b.staging, data)
	if err != nil {
		return err
	}

	if !submit {
		return nil
	}

	return StageTransferSingleSubmit(b.device, b.staging, b, len(data))
}

func (b *Buffer) grow(data []byte, submit bool) error {
	previous := b.DescriptorView()

	var replacement Buffer
	err := replacement.createStaged(b.device, data, len(data), b.usage, b.memoryClass, submit, b.persistentMapped)
	if err != nil {
		return errors.Wrapf(err, "failed to grow buffer %d from %d to %d bytes", b.handle, b.size, len(data))
	}

	b.device.logger.Debug("Buffer::UpdateData recreated buffer",
		slog.Uint64("OldHandle", uint64(b.handle)),
		slog.Uint64("NewHandle", uint64(replacement.handle)),
		slog.Int("OldSize", b.size),
		slog.Int("NewSize", replacement.size),
	)

	err = b.release()
	b.adopt(&replacement)
	b.generation++
	b.device.registry.RecordRecreate()

	for _, listener := range b.listeners {
		listener(b, previous)
	}

	return err
}
