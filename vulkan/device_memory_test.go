package vulkan

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
)

func testDeviceMemory(heapLimits []int, maxMemoryCount int) *deviceMemory {
	return &deviceMemory{
		maxMemoryCount:   maxMemoryCount,
		heapLimits:       heapLimits,
		memoryProperties: discreteMemoryProperties,
	}
}

func TestDeviceMemory_ReserveUnlimited(t *testing.T) {
	memory := testDeviceMemory(nil, 0)

	_, err := memory.reserve(1, 4000)
	require.NoError(t, err)
	_, err = memory.reserve(1, 6000)
	require.NoError(t, err)
	_, err = memory.reserve(2, 100)
	require.NoError(t, err)

	require.Equal(t, HeapStatistics{BlockCount: 2, BlockBytes: 10000, HeapSize: 1000000}, memory.heapStatistics(0))
	require.Equal(t, HeapStatistics{BlockCount: 1, BlockBytes: 100, HeapSize: 1000000}, memory.heapStatistics(1))
	require.Equal(t, 3, memory.memoryCountInUse())

	memory.unreserve(1, 4000)
	memory.unreserve(2, 100)
	require.Equal(t, HeapStatistics{BlockCount: 1, BlockBytes: 6000, HeapSize: 1000000}, memory.heapStatistics(0))
	require.Equal(t, HeapStatistics{BlockCount: 0, BlockBytes: 0, HeapSize: 1000000}, memory.heapStatistics(1))
	require.Equal(t, 1, memory.memoryCountInUse())
}

func TestDeviceMemory_HeapLimit(t *testing.T) {
	memory := testDeviceMemory([]int{5000, 0, -1}, 0)

	_, err := memory.reserve(1, 3000)
	require.NoError(t, err)

	res, err := memory.reserve(1, 2001)
	require.Error(t, err)
	require.Equal(t, core1_0.VKErrorOutOfDeviceMemory, res)
	require.Equal(t, 1, memory.memoryCountInUse())

	_, err = memory.reserve(1, 2000)
	require.NoError(t, err)
	require.Equal(t, HeapStatistics{BlockCount: 2, BlockBytes: 5000, HeapSize: 1000000, Limit: 5000}, memory.heapStatistics(0))

	// Heaps with no limit are bounded by nothing
	_, err = memory.reserve(4, 500000)
	require.NoError(t, err)
}

func TestDeviceMemory_LimitAboveHeapSizeClampsToHeap(t *testing.T) {
	memory := testDeviceMemory([]int{0, 0, 900000}, 0)

	res, err := memory.reserve(4, 200001)
	require.Error(t, err)
	require.Equal(t, core1_0.VKErrorOutOfDeviceMemory, res)

	_, err = memory.reserve(4, 200000)
	require.NoError(t, err)
}

func TestDeviceMemory_MaxAllocationCount(t *testing.T) {
	memory := testDeviceMemory(nil, 2)

	_, err := memory.reserve(1, 10)
	require.NoError(t, err)
	_, err = memory.reserve(2, 10)
	require.NoError(t, err)

	res, err := memory.reserve(1, 10)
	require.Error(t, err)
	require.Equal(t, core1_0.VKErrorTooManyObjects, res)
	require.Equal(t, 2, memory.memoryCountInUse())

	memory.unreserve(1, 10)
	_, err = memory.reserve(1, 10)
	require.NoError(t, err)
}

func TestDeviceMemory_ConcurrentBudget(t *testing.T) {
	memory := testDeviceMemory([]int{1000, 0, 0}, 0)

	var waitGroup sync.WaitGroup
	var successMutex sync.Mutex
	successes := 0

	for i := 0; i < 50; i++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()

			_, err := memory.reserve(1, 100)
			if err == nil {
				successMutex.Lock()
				successes++
				successMutex.Unlock()
			}
		}()
	}
	waitGroup.Wait()

	require.Equal(t, 10, successes)
	require.Equal(t, HeapStatistics{BlockCount: 10, BlockBytes: 1000, HeapSize: 1000000, Limit: 1000}, memory.heapStatistics(0))
	require.Equal(t, 10, memory.memoryCountInUse())
}

func TestDeviceMemory_RemovingTooMuchPanics(t *testing.T) {
	memory := testDeviceMemory(nil, 0)

	_, err := memory.reserve(1, 10)
	require.NoError(t, err)

	require.Panics(t, func() {
		memory.unreserve(1, 11)
	})
}

func TestMemoryCallbacks_NilSafe(t *testing.T) {
	var callbacks *memoryCallbacks
	callbacks.Allocate(0, nil, 10)
	callbacks.Free(0, nil, 10)

	allocated := 0
	freed := 0
	callbacks = &memoryCallbacks{
		Callbacks: &MemoryCallbackOptions{
			Allocate: func(allocator *Allocator, memoryType int, memory core1_0.DeviceMemory, size int, userData interface{}) {
				allocated += size
				require.Equal(t, "user", userData)
			},
			Free: func(allocator *Allocator, memoryType int, memory core1_0.DeviceMemory, size int, userData interface{}) {
				freed += size
			},
			UserData: "user",
		},
	}
	callbacks.Allocate(1, nil, 10)
	callbacks.Free(1, nil, 4)
	require.Equal(t, 10, allocated)
	require.Equal(t, 4, freed)
}
