package staging

import (
	"unsafe"

	"golang.org/x/exp/slog"
)

// Map copies data into the front of a buffer's host-visible memory.
//
// If the buffer has a persistently-mapped staging buffer, data is written to the staging
// buffer through its stable pointer. If the buffer is itself persistently mapped, data is
// written through its own pointer. Otherwise, the buffer's memory is mapped, written, and
// unmapped before Map returns, whether or not the write succeeds.
//
// data must not be longer than the buffer. No copy command is issued.
func Map(buffer *Buffer, data []byte) error {
	buffer.assertLive()
	assertf(data != nil, "attempted to map nil data")
	assertf(len(data) <= buffer.size, "attempted to write %d bytes into a buffer of size %d", len(data), buffer.size)

	target := buffer
	if buffer.persistentMapped {
		target = buffer.staging
	}

	target.mapMutex.Lock()
	defer target.mapMutex.Unlock()

	if mapped := target.allocation.MappedData(); mapped != nil {
		copy(unsafe.Slice((*byte)(mapped), target.size), data)
		return nil
	}

	allocator := target.device.allocator
	target.device.logger.Debug("Buffer::Map", slog.Uint64("Handle", uint64(target.handle)), slog.Int("Size", len(data)))

	return WithScope(
		func() (unsafe.Pointer, error) {
			mapped, err := allocator.MapMemory(target.allocation)
			if err != nil {
				return nil, deviceError(err, "failed to map buffer %d", target.handle)
			}
			return mapped, nil
		},
		func(unsafe.Pointer) error {
			err := allocator.UnmapMemory(target.allocation)
			if err != nil {
				return deviceError(err, "failed to unmap buffer %d", target.handle)
			}
			return nil
		},
		func(mapped unsafe.Pointer) error {
			copy(unsafe.Slice((*byte)(mapped), target.size), data)
			return nil
		},
	)
}

// MapToBuffer copies data into this buffer's memory, or into its staging buffer if the staging
// buffer is persistently mapped. See Map.
func (b *Buffer) MapToBuffer(data []byte) error {
	return Map(b, data)
}

// MapToStagingBuffer copies data into this buffer's staging buffer. See Map.
func (b *Buffer) MapToStagingBuffer(data []byte) error {
	b.assertLive()
	assertf(b.staging != nil, "attempted to map to the staging buffer of a buffer that has none")

	return Map(b.staging, data)
}

// MappedData returns the persistently-mapped window of this buffer's staging buffer. Writes to
// it reach the device after the next transfer. It is a programming error to call this on a
// buffer that was not created with CreateStagedPersistent.
//
// The slice aliases device memory owned by the current staging buffer. When UpdateData grows
// the buffer, that memory is unmapped and freed, so a slice obtained before the growth must
// not be read or written afterward. Call MappedData again, for instance from an OnRecreate
// listener.
func (b *Buffer) MappedData() []byte {
	b.assertLive()
	assertf(b.persistentMapped, "attempted to retrieve the mapped data of a buffer that is not persistently mapped")

	return unsafe.Slice((*byte)(b.staging.allocation.MappedData()), b.size)
}
