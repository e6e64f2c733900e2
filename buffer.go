package staging

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/staging/internal/utils"
	"golang.org/x/exp/slog"
)

// RecreateFunc is called after UpdateData has grown a buffer. previous is the descriptor view
// the buffer had before it was recreated: anything built from it, such as a descriptor set
// write, is stale.
type RecreateFunc func(buffer *Buffer, previous DescriptorView)

// Buffer is a GPU buffer, optionally paired with a host-visible staging buffer that data is
// written into before being copied to the device.
//
// The zero Buffer is empty. It becomes usable after exactly one call to Create, CreateStaged,
// or CreateStagedPersistent, and must be released with Destroy. A Buffer must not be copied
// once it has been created.
type Buffer struct {
	device *Device
	id     uint64

	handle      Handle
	allocation  Allocation
	size        int
	usage       core1_0.BufferUsageFlags
	memoryClass MemoryClass

	staging          *Buffer
	persistentMapped bool
	isStaging        bool

	created    bool
	destroyed  bool
	generation int

	mapMutex  utils.OptionalMutex
	listeners []RecreateFunc
}

// Create allocates a buffer of exactly size bytes. No data is written, and the buffer has no
// staging buffer.
//
// device - The Device the buffer is allocated from
//
// size - The capacity of the buffer in bytes. It must be greater than 0.
//
// usage - The usages the buffer is created with
//
// memoryClass - How the buffer's memory will be accessed
func (b *Buffer) Create(device *Device, size int, usage core1_0.BufferUsageFlags, memoryClass MemoryClass) error {
	assertf(device != nil, "attempted to create a buffer without a device")
	device.logger.Debug("Buffer::Create",
		slog.Int("Size", size),
		slog.Any("Usage", usage),
		slog.String("MemoryClass", memoryClass.String()),
	)

	return b.create(device, BufferCreateInfo{
		Size:        size,
		Usage:       usage,
		MemoryClass: memoryClass,
	})
}

// CreateStaged allocates a buffer of size bytes along with a staging buffer of the same size,
// and writes data into the staging buffer. The staging buffer is mapped only for as long as
// the write takes.
//
// device - The Device the buffers are allocated from
//
// data - The payload. It must not be nil and must not be longer than size. If it is shorter,
// the rest of the buffer is zeroed.
//
// size - The capacity of the buffer in bytes. It must be greater than 0.
//
// usage - The usages the buffer is created with. core1_0.BufferUsageTransferDst is always
// added.
//
// memoryClass - How the buffer's memory will be accessed. The staging buffer is always
// MemoryClassCPUOnly.
//
// submit - If true, the payload is copied to the buffer before this method returns. Otherwise,
// the caller is responsible for a later StageTransferDynamic or UpdateData.
func (b *Buffer) CreateStaged(device *Device, data []byte, size int, usage core1_0.BufferUsageFlags, memoryClass MemoryClass, submit bool) error {
	assertf(device != nil, "attempted to create a buffer without a device")
	device.logger.Debug("Buffer::CreateStaged",
		slog.Int("Size", size),
		slog.Int("DataSize", len(data)),
		slog.Any("Usage", usage),
		slog.String("MemoryClass", memoryClass.String()),
		slog.Bool("Submit", submit),
	)

	return b.createStaged(device, data, size, usage, memoryClass, submit, false)
}

// CreateStagedPersistent behaves like CreateStaged, but the staging buffer is mapped once and
// stays mapped until the buffer is destroyed. Later writes go straight through the mapped
// pointer, which is available from MappedData.
func (b *Buffer) CreateStagedPersistent(device *Device, data []byte, size int, usage core1_0.BufferUsageFlags, memoryClass MemoryClass, submit bool) error {
	assertf(device != nil, "attempted to create a buffer without a device")
	device.logger.Debug("Buffer::CreateStagedPersistent",
		slog.Int("Size", size),
		slog.Int("DataSize", len(data)),
		slog.Any("Usage", usage),
		slog.String("MemoryClass", memoryClass.String()),
		slog.Bool("Submit", submit),
	)

	return b.createStaged(device, data, size, usage, memoryClass, submit, true)
}

func (b *Buffer) create(device *Device, info BufferCreateInfo) error {
	assertf(!b.created, "attempted to create a buffer that has already been created")
	assertf(!b.destroyed, "attempted to create a buffer that has already been destroyed")
	assertf(info.Size > 0, "attempted to create a buffer with size %d", info.Size)

	handle, allocation, err := device.allocator.CreateBuffer(info)
	if err != nil {
		return deviceError(err, "failed to allocate a buffer of %d bytes", info.Size)
	}
	assertf(handle != 0 && allocation != nil, "allocator returned an empty buffer for a request of %d bytes", info.Size)

	b.device = device
	b.handle = handle
	b.allocation = allocation
	b.size = info.Size
	b.usage = info.Usage
	b.memoryClass = info.MemoryClass
	b.mapMutex.UseMutex = device.useMutex
	b.created = true
	b.id = device.registry.Register(b)

	return nil
}

func (b *Buffer) createStaged(device *Device, data []byte, size int, usage core1_0.BufferUsageFlags, memoryClass MemoryClass, submit bool, persistent bool) error {
	assertf(data != nil, "attempted to create a staged buffer from nil data")
	assertf(size > 0, "attempted to create a staged buffer with size %d", size)
	assertf(len(data) <= size, "attempted to stage %d bytes into a buffer of size %d", len(data), size)

	err := b.create(device, BufferCreateInfo{
		Size:        size,
		Usage:       usage | core1_0.BufferUsageTransferDst,
		MemoryClass: memoryClass,
	})
	if err != nil {
		return err
	}

	stagingInfo := BufferCreateInfo{
		Size:        size,
		Usage:       core1_0.BufferUsageTransferSrc,
		MemoryClass: MemoryClassCPUOnly,
	}
	if persistent {
		stagingInfo.Flags = AllocationCreateMapped
	}

	staging := &Buffer{isStaging: true}
	err = staging.create(device, stagingInfo)
	if err != nil {
		return errors.CombineErrors(err, b.release())
	}

	b.staging = staging
	b.persistentMapped = persistent

	if persistent && staging.allocation.MappedData() == nil {
		err = deviceError(errors.New("allocation has no mapped pointer"), "failed to persistently map a staging buffer of %d bytes", size)
		return errors.CombineErrors(err, b.release())
	}

	if len(data) < size {
		padded := make([]byte, size)
		copy(padded, data)
		data = padded
	}

	err = Map(staging, data)
	if err == nil && submit {
		err = StageTransferSingleSubmit(device, staging, b, size)
	}
	if err != nil {
		return errors.CombineErrors(err, b.release())
	}

	return nil
}

// Destroy releases the staging buffer, if any, and then the buffer itself. It is a programming
// error to destroy a buffer twice or to use it afterward.
func (b *Buffer) Destroy() error {
	assertf(!b.destroyed, "attempted to destroy a buffer twice")
	assertf(b.created, "attempted to destroy a buffer that was never created")
	b.device.logger.Debug("Buffer::Destroy", slog.Uint64("Handle", uint64(b.handle)))

	err := b.release()
	b.destroyed = true
	b.listeners = nil

	return err
}

// release frees the staging buffer and then this buffer, and returns it to the empty state
func (b *Buffer) release() error {
	var err error
	if b.staging != nil {
		err = b.staging.release()
		b.staging = nil
	}

	destroyErr := b.device.allocator.DestroyBuffer(b.handle, b.allocation)
	if destroyErr != nil {
		err = errors.CombineErrors(err, deviceError(destroyErr, "failed to destroy buffer %d", b.handle))
	}
	b.device.registry.Unregister(b.id)

	b.id = 0
	b.handle = 0
	b.allocation = nil
	b.size = 0
	b.persistentMapped = false
	b.created = false

	return err
}

// adopt moves the contents of a freshly created buffer into this one
func (b *Buffer) adopt(other *Buffer) {
	b.id = other.id
	b.handle = other.handle
	b.allocation = other.allocation
	b.size = other.size
	b.usage = other.usage
	b.memoryClass = other.memoryClass
	b.staging = other.staging
	b.persistentMapped = other.persistentMapped
	b.created = true

	b.device.registry.Rebind(b.id, b)

	other.staging = nil
	other.created = false
}

func (b *Buffer) assertLive() {
	assertf(!b.destroyed, "attempted to use a buffer that has been destroyed")
	assertf(b.created, "attempted to use a buffer that has not been created")
}

// OnRecreate registers a function to be called every time UpdateData grows this buffer. For a
// persistently staged buffer, the listener is the place to fetch MappedData again.
func (b *Buffer) OnRecreate(listener RecreateFunc) {
	assertf(listener != nil, "attempted to register a nil recreate listener")
	b.listeners = append(b.listeners, listener)
}

func (b *Buffer) Handle() Handle {
	b.assertLive()
	return b.handle
}

func (b *Buffer) Allocation() Allocation {
	b.assertLive()
	return b.allocation
}

// Size is the capacity of the buffer in bytes
func (b *Buffer) Size() int {
	b.assertLive()
	return b.size
}

func (b *Buffer) Usage() core1_0.BufferUsageFlags {
	b.assertLive()
	return b.usage
}

func (b *Buffer) MemoryClass() MemoryClass {
	b.assertLive()
	return b.memoryClass
}

// StagingBuffer returns the buffer's staging buffer, or nil if it was created with Create
func (b *Buffer) StagingBuffer() *Buffer {
	b.assertLive()
	return b.staging
}

func (b *Buffer) IsPersistentMapped() bool {
	b.assertLive()
	return b.persistentMapped
}

// Generation is the number of times UpdateData has recreated this buffer
func (b *Buffer) Generation() int {
	return b.generation
}

func (b *Buffer) IsCreated() bool {
	return b.created
}

func (b *Buffer) IsDestroyed() bool {
	return b.destroyed
}

func (b *Buffer) printParameters(json *jwriter.ObjectState) {
	json.Name("Handle").Int(int(b.handle))
	json.Name("Size").Int(b.size)
	json.Name("Usage").String(b.usage.String())
	json.Name("MemoryClass").String(b.memoryClass.String())

	if b.isStaging {
		json.Name("Staging").Bool(true)
	}

	if b.persistentMapped {
		json.Name("PersistentMapped").Bool(true)
	}

	if b.generation > 0 {
		json.Name("Generation").Int(b.generation)
	}
}
