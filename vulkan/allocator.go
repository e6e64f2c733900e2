package vulkan

import (
	"io"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
	"github.com/vkngwrapper/extensions/v2/khr_dedicated_allocation"
	"github.com/vkngwrapper/staging"
	"github.com/vkngwrapper/staging/internal/utils"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

// AllocatorOptions contains optional settings when creating an Allocator
type AllocatorOptions struct {
	// Flags carries the same flags as staging.CreateOptions. If DeviceCreateExternallySynchronized
	// is set, the Allocator performs no internal synchronization.
	Flags staging.CreateFlags
	// VulkanCallbacks is an optional set of callbacks passed to every Vulkan object
	// this Allocator creates or destroys
	VulkanCallbacks *driver.AllocationCallbacks
	// MemoryCallbacks is an optional set of callbacks informed whenever device memory is
	// allocated or freed
	MemoryCallbacks *MemoryCallbackOptions
	// HeapSizeLimits is either empty or has one entry per memory heap of the physical device.
	// An entry of 0 or less leaves that heap unlimited. Allocations that would take a heap past
	// its limit fail with VK_ERROR_OUT_OF_DEVICE_MEMORY.
	HeapSizeLimits []int
}

// Allocator implements staging.MemoryAllocator on top of a Vulkan device. Every buffer gets its
// own dedicated device memory.
type Allocator struct {
	logger              *slog.Logger
	device              core1_0.Device
	useMutex            bool
	allocationCallbacks *driver.AllocationCallbacks

	extensionData *extensionData
	deviceMemory  *deviceMemory

	tableMutex  utils.OptionalRWMutex
	nextHandle  staging.Handle
	allocations *swiss.Map[staging.Handle, *Allocation]
}

var _ staging.MemoryAllocator = &Allocator{}

// NewAllocator creates a new Allocator
//
// logger - Receives debug output for every allocator operation. If nil, output is discarded.
//
// physicalDevice - The PhysicalDevice that device was created from
//
// device - The Device that buffers and memory will be created on
//
// options - Optional parameters: it is valid to leave all the fields blank
func NewAllocator(logger *slog.Logger, physicalDevice core1_0.PhysicalDevice, device core1_0.Device, options AllocatorOptions) (*Allocator, error) {
	if physicalDevice == nil {
		return nil, errors.New("attempted to create an allocator without a physical device")
	}
	if device == nil {
		return nil, errors.New("attempted to create an allocator without a device")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard))
	}

	useMutex := options.Flags&staging.DeviceCreateExternallySynchronized == 0

	allocator := &Allocator{
		logger:              logger,
		device:              device,
		useMutex:            useMutex,
		allocationCallbacks: options.VulkanCallbacks,
		extensionData:       newExtensionData(device),

		tableMutex:  utils.OptionalRWMutex{UseMutex: useMutex},
		allocations: swiss.NewMap[staging.Handle, *Allocation](16),
	}

	var err error
	allocator.deviceMemory, err = newDeviceMemory(
		device,
		physicalDevice,
		options.VulkanCallbacks,
		&memoryCallbacks{
			Callbacks: options.MemoryCallbacks,
			Allocator: allocator,
		},
		options.HeapSizeLimits,
	)
	if err != nil {
		return nil, err
	}

	return allocator, nil
}

// CreateBuffer creates a VkBuffer, allocates dedicated memory for it from the cheapest memory
// type matching info, and binds the two together. If info.Flags contains AllocationCreateMapped
// and the chosen memory is host-visible, the memory is mapped for the Allocation's lifetime.
func (a *Allocator) CreateBuffer(info staging.BufferCreateInfo) (staging.Handle, staging.Allocation, error) {
	a.logger.Debug("Allocator::CreateBuffer",
		slog.Int("Size", info.Size),
		slog.String("MemoryClass", info.MemoryClass.String()),
	)

	if info.Size < 1 {
		return 0, nil, errors.Newf("attempted to create a buffer of size %d", info.Size)
	}

	buffer, _, err := a.device.CreateBuffer(a.allocationCallbacks, core1_0.BufferCreateInfo{
		Size:        info.Size,
		Usage:       info.Usage,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to create buffer")
	}

	allocation, err := a.allocateBufferMemory(buffer, info)
	if err != nil {
		buffer.Destroy(a.allocationCallbacks)
		return 0, nil, err
	}

	a.tableMutex.Lock()
	defer a.tableMutex.Unlock()

	a.nextHandle++
	allocation.handle = a.nextHandle
	a.allocations.Put(allocation.handle, allocation)

	return allocation.handle, allocation, nil
}

func (a *Allocator) allocateBufferMemory(buffer core1_0.Buffer, info staging.BufferCreateInfo) (allocation *Allocation, err error) {
	memoryRequirements := buffer.MemoryRequirements()

	memoryTypeIndex, _, err := FindMemoryTypeIndex(a.deviceMemory.memoryProperties, memoryRequirements.MemoryTypeBits, info)
	if err != nil {
		return nil, errors.Wrapf(err, "no memory type is suitable for a %s buffer", info.MemoryClass)
	}

	allocateInfo := core1_0.MemoryAllocateInfo{
		MemoryTypeIndex: memoryTypeIndex,
		AllocationSize:  memoryRequirements.Size,
	}
	if a.extensionData.DedicatedAllocations {
		allocateInfo.Next = khr_dedicated_allocation.MemoryDedicatedAllocateInfo{
			Buffer: buffer,
		}
	}

	memory, _, err := a.deviceMemory.allocate(allocateInfo)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to allocate %d bytes of device memory", memoryRequirements.Size)
	}
	defer func() {
		if err != nil {
			a.deviceMemory.free(memoryTypeIndex, memoryRequirements.Size, memory)
		}
	}()

	_, err = buffer.BindBufferMemory(memory, 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to bind buffer memory")
	}

	allocation = &Allocation{
		buffer:          buffer,
		memory:          memory,
		mapped:          newMappedMemory(a.useMutex, memory),
		memoryTypeIndex: memoryTypeIndex,
		size:            memoryRequirements.Size,
		info:            info,
	}

	if info.Flags&staging.AllocationCreateMapped != 0 && a.deviceMemory.isHostVisible(memoryTypeIndex) {
		_, _, err = allocation.mapped.Map(1)
		if err != nil {
			return nil, errors.Wrap(err, "failed to persistently map buffer memory")
		}
		allocation.persistent = true
	}

	return allocation, nil
}

func (a *Allocator) lookup(handle staging.Handle, allocation staging.Allocation) (*Allocation, error) {
	a.tableMutex.RLock()
	defer a.tableMutex.RUnlock()

	alloc, ok := a.allocations.Get(handle)
	if !ok {
		return nil, errors.Newf("buffer handle %d is not live in this allocator", handle)
	}
	if allocation != nil && staging.Allocation(alloc) != allocation {
		return nil, errors.Newf("allocation does not belong to buffer handle %d", handle)
	}

	return alloc, nil
}

func (a *Allocator) asAllocation(allocation staging.Allocation) (*Allocation, error) {
	alloc, ok := allocation.(*Allocation)
	if !ok || alloc == nil {
		return nil, errors.Newf("allocation of type %T was not created by a vulkan.Allocator", allocation)
	}

	return a.lookup(alloc.handle, alloc)
}

// DestroyBuffer destroys a buffer created by CreateBuffer and frees its memory
func (a *Allocator) DestroyBuffer(handle staging.Handle, allocation staging.Allocation) error {
	a.logger.Debug("Allocator::DestroyBuffer", slog.Int("Handle", int(handle)))

	alloc, err := a.lookup(handle, allocation)
	if err != nil {
		return err
	}

	a.tableMutex.Lock()
	a.allocations.Delete(handle)
	a.tableMutex.Unlock()

	if alloc.persistent {
		err = alloc.mapped.Unmap(1)
		if err != nil {
			return err
		}
		alloc.persistent = false
	}

	if alloc.mapped.References() > 0 {
		a.logger.Warn("Allocator::DestroyBuffer destroying a buffer that is still mapped",
			slog.Int("Handle", int(handle)),
			slog.Int("References", alloc.mapped.References()),
		)
		err = alloc.mapped.Unmap(alloc.mapped.References())
		if err != nil {
			return err
		}
	}

	alloc.buffer.Destroy(a.allocationCallbacks)
	a.deviceMemory.free(alloc.memoryTypeIndex, alloc.size, alloc.memory)

	return nil
}

// MapMemory maps the memory backing allocation and returns a pointer to its start. Every call
// must be paired with a call to UnmapMemory.
func (a *Allocator) MapMemory(allocation staging.Allocation) (unsafe.Pointer, error) {
	alloc, err := a.asAllocation(allocation)
	if err != nil {
		return nil, err
	}

	if !a.deviceMemory.isHostVisible(alloc.memoryTypeIndex) {
		return nil, errors.Wrapf(core1_0.VKErrorMemoryMapFailed.ToError(), "memory type %d is not host visible", alloc.memoryTypeIndex)
	}

	data, _, err := alloc.mapped.Map(1)
	return data, err
}

// UnmapMemory releases a mapping obtained from MapMemory
func (a *Allocator) UnmapMemory(allocation staging.Allocation) error {
	alloc, err := a.asAllocation(allocation)
	if err != nil {
		return err
	}

	return alloc.mapped.Unmap(1)
}

// VulkanBuffer retrieves the VkBuffer behind a handle returned from CreateBuffer
func (a *Allocator) VulkanBuffer(handle staging.Handle) (core1_0.Buffer, bool) {
	a.tableMutex.RLock()
	defer a.tableMutex.RUnlock()

	alloc, ok := a.allocations.Get(handle)
	if !ok {
		return nil, false
	}
	return alloc.buffer, true
}

// HeapStatistics reports how much device memory this Allocator holds in the given heap
func (a *Allocator) HeapStatistics(heapIndex int) HeapStatistics {
	return a.deviceMemory.heapStatistics(heapIndex)
}

// LiveAllocationCount is the number of buffers created by this Allocator and not yet destroyed
func (a *Allocator) LiveAllocationCount() int {
	a.tableMutex.RLock()
	defer a.tableMutex.RUnlock()

	return a.allocations.Count()
}

// BuildStatsString renders per-heap usage as a JSON document. If detailedMap is true, every
// live allocation is listed as well.
func (a *Allocator) BuildStatsString(detailedMap bool) string {
	writer := jwriter.NewWriter()
	obj := writer.Object()

	obj.Name("DeviceMemoryCount").Int(a.deviceMemory.memoryCountInUse())

	heapsArray := obj.Name("Heaps").Array()
	for heapIndex := range a.deviceMemory.memoryProperties.MemoryHeaps {
		stats := a.HeapStatistics(heapIndex)

		heapObj := heapsArray.Object()
		heapObj.Name("BlockCount").Int(stats.BlockCount)
		heapObj.Name("BlockBytes").Int(stats.BlockBytes)
		heapObj.Name("HeapSize").Int(stats.HeapSize)
		heapObj.Name("Limit").Int(stats.Limit)
		heapObj.End()
	}
	heapsArray.End()

	if detailedMap {
		a.tableMutex.RLock()
		allocations := make([]*Allocation, 0, a.allocations.Count())
		a.allocations.Iter(func(handle staging.Handle, alloc *Allocation) bool {
			allocations = append(allocations, alloc)
			return false
		})
		a.tableMutex.RUnlock()

		slices.SortFunc(allocations, func(left, right *Allocation) bool {
			return left.handle < right.handle
		})

		allocationsArray := obj.Name("Allocations").Array()
		for _, alloc := range allocations {
			allocObj := allocationsArray.Object()
			alloc.printParameters(&allocObj)
			allocObj.End()
		}
		allocationsArray.End()
	}

	obj.End()

	return string(writer.Bytes())
}

// Destroy fails if any buffer created by this Allocator is still live
func (a *Allocator) Destroy() error {
	count := a.LiveAllocationCount()
	if count > 0 {
		return errors.Newf("attempted to destroy an allocator with %d live buffers", count)
	}

	return nil
}
