package vulkan

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
)

// HeapStatistics reports the device memory an Allocator currently holds in a single heap
type HeapStatistics struct {
	BlockCount int
	BlockBytes int
	HeapSize   int
	// Limit is the configured HeapSizeLimits entry, or 0 when the heap is unlimited
	Limit int
}

type deviceMemory struct {
	blockCount [common.MaxMemoryHeaps]uint32
	blockBytes [common.MaxMemoryHeaps]uint64

	memoryCount         uint32
	maxMemoryCount      int
	heapLimits          []int
	allocationCallbacks *driver.AllocationCallbacks
	memoryCallbacks     *memoryCallbacks

	device           core1_0.Device
	memoryProperties *core1_0.PhysicalDeviceMemoryProperties
}

func newDeviceMemory(
	device core1_0.Device,
	physicalDevice core1_0.PhysicalDevice,
	allocationCallbacks *driver.AllocationCallbacks,
	memoryCallbacks *memoryCallbacks,
	heapSizeLimits []int,
) (*deviceMemory, error) {
	deviceProperties, err := physicalDevice.Properties()
	if err != nil {
		return nil, err
	}

	memoryProperties := physicalDevice.MemoryProperties()

	if len(heapSizeLimits) > 0 && len(heapSizeLimits) != len(memoryProperties.MemoryHeaps) {
		return nil, errors.New("vulkan.AllocatorOptions.HeapSizeLimits was provided, but the length does not equal the number of PhysicalDevice heap types")
	}

	return &deviceMemory{
		maxMemoryCount:      deviceProperties.Limits.MaxMemoryAllocationCount,
		heapLimits:          heapSizeLimits,
		allocationCallbacks: allocationCallbacks,
		memoryCallbacks:     memoryCallbacks,
		device:              device,
		memoryProperties:    memoryProperties,
	}, nil
}

func (m *deviceMemory) memoryTypeIndexToHeapIndex(memTypeIndex int) int {
	return m.memoryProperties.MemoryTypes[memTypeIndex].HeapIndex
}

func (m *deviceMemory) isHostVisible(memTypeIndex int) bool {
	return m.memoryProperties.MemoryTypes[memTypeIndex].PropertyFlags&core1_0.MemoryPropertyHostVisible != 0
}

func (m *deviceMemory) heapLimit(heapIndex int) int {
	if len(m.heapLimits) == 0 {
		return 0
	}

	limit := m.heapLimits[heapIndex]
	if limit < 0 {
		return 0
	}
	return limit
}

func (m *deviceMemory) addBlockAllocation(heapIndex int, allocationSize int) {
	atomic.AddUint64(&m.blockBytes[heapIndex], uint64(allocationSize))
	atomic.AddUint32(&m.blockCount[heapIndex], 1)
}

func (m *deviceMemory) addBlockAllocationWithBudget(heapIndex, allocationSize, maxAllocatable int) (common.VkResult, error) {
	for {
		currentVal := atomic.LoadUint64(&m.blockBytes[heapIndex])
		targetVal := currentVal + uint64(allocationSize)

		if targetVal > uint64(maxAllocatable) {
			return core1_0.VKErrorOutOfDeviceMemory, core1_0.VKErrorOutOfDeviceMemory.ToError()
		}

		if atomic.CompareAndSwapUint64(&m.blockBytes[heapIndex], currentVal, targetVal) {
			break
		}
	}

	atomic.AddUint32(&m.blockCount[heapIndex], 1)
	return core1_0.VKSuccess, nil
}

func (m *deviceMemory) removeBlockAllocation(heapIndex, allocationSize int) {
	if atomic.LoadUint64(&m.blockBytes[heapIndex]) < uint64(allocationSize) {
		panic(errors.AssertionFailedf("block bytes for heapIndex %d went negative", heapIndex))
	}
	atomic.AddUint64(&m.blockBytes[heapIndex], ^uint64(allocationSize-1))

	if atomic.LoadUint32(&m.blockCount[heapIndex]) == 0 {
		panic(errors.AssertionFailedf("block count for heapIndex %d went negative", heapIndex))
	}
	atomic.AddUint32(&m.blockCount[heapIndex], ^uint32(0))
}

// reserve books a new VkDeviceMemory of the given size against the device allocation count
// and the heap's size limit
func (m *deviceMemory) reserve(memoryTypeIndex, allocationSize int) (res common.VkResult, err error) {
	newMemoryCount := atomic.AddUint32(&m.memoryCount, 1)
	defer func() {
		if err != nil {
			atomic.AddUint32(&m.memoryCount, ^uint32(0))
		}
	}()

	if m.maxMemoryCount > 0 && int(newMemoryCount) > m.maxMemoryCount {
		return core1_0.VKErrorTooManyObjects, core1_0.VKErrorTooManyObjects.ToError()
	}

	heapIndex := m.memoryTypeIndexToHeapIndex(memoryTypeIndex)
	heapLimit := m.heapLimit(heapIndex)
	if heapLimit == 0 {
		m.addBlockAllocation(heapIndex, allocationSize)
		return core1_0.VKSuccess, nil
	}

	maxSize := heapLimit
	heapSize := m.memoryProperties.MemoryHeaps[heapIndex].Size
	if heapSize > 0 && heapSize < maxSize {
		maxSize = heapSize
	}

	return m.addBlockAllocationWithBudget(heapIndex, allocationSize, maxSize)
}

func (m *deviceMemory) unreserve(memoryTypeIndex, allocationSize int) {
	m.removeBlockAllocation(m.memoryTypeIndexToHeapIndex(memoryTypeIndex), allocationSize)
	atomic.AddUint32(&m.memoryCount, ^uint32(0))
}

func (m *deviceMemory) allocate(allocateInfo core1_0.MemoryAllocateInfo) (core1_0.DeviceMemory, common.VkResult, error) {
	res, err := m.reserve(allocateInfo.MemoryTypeIndex, allocateInfo.AllocationSize)
	if err != nil {
		return nil, res, err
	}

	memory, res, err := m.device.AllocateMemory(m.allocationCallbacks, allocateInfo)
	if err != nil {
		m.unreserve(allocateInfo.MemoryTypeIndex, allocateInfo.AllocationSize)
		return nil, res, err
	}

	m.memoryCallbacks.Allocate(allocateInfo.MemoryTypeIndex, memory, allocateInfo.AllocationSize)
	return memory, res, nil
}

func (m *deviceMemory) free(memoryTypeIndex, allocationSize int, memory core1_0.DeviceMemory) {
	m.memoryCallbacks.Free(memoryTypeIndex, memory, allocationSize)
	memory.Free(m.allocationCallbacks)
	m.unreserve(memoryTypeIndex, allocationSize)
}

func (m *deviceMemory) memoryCountInUse() int {
	return int(atomic.LoadUint32(&m.memoryCount))
}

func (m *deviceMemory) heapStatistics(heapIndex int) HeapStatistics {
	return HeapStatistics{
		BlockCount: int(atomic.LoadUint32(&m.blockCount[heapIndex])),
		BlockBytes: int(atomic.LoadUint64(&m.blockBytes[heapIndex])),
		HeapSize:   m.memoryProperties.MemoryHeaps[heapIndex].Size,
		Limit:      m.heapLimit(heapIndex),
	}
}
