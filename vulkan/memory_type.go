package vulkan

import (
	"math"
	"math/bits"

	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/staging"
)

// memoryPreferences translates a MemoryClass into property flags. Host-visible classes always
// require coherent memory because mapped writes are never flushed explicitly.
func memoryPreferences(info staging.BufferCreateInfo) (requiredFlags, preferredFlags, notPreferredFlags core1_0.MemoryPropertyFlags) {
	requiredFlags = info.RequiredFlags
	preferredFlags = info.PreferredFlags

	switch info.MemoryClass {
	case staging.MemoryClassGPUOnly:
		preferredFlags |= core1_0.MemoryPropertyDeviceLocal
	case staging.MemoryClassCPUOnly:
		requiredFlags |= core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent
		notPreferredFlags |= core1_0.MemoryPropertyDeviceLocal
	case staging.MemoryClassCPUToGPU:
		requiredFlags |= core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent
		preferredFlags |= core1_0.MemoryPropertyDeviceLocal
	case staging.MemoryClassGPUToCPU:
		requiredFlags |= core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent
		preferredFlags |= core1_0.MemoryPropertyHostCached
	}

	// Lazily allocated memory can't back a transfer target
	notPreferredFlags |= core1_0.MemoryPropertyLazilyAllocated
	notPreferredFlags &^= preferredFlags | requiredFlags

	return requiredFlags, preferredFlags, notPreferredFlags
}

// FindMemoryTypeIndex returns the cheapest memory type permitted by memoryTypeBits that carries
// every flag the BufferCreateInfo requires. Cost is the number of preferred flags missing plus
// the number of unwanted flags present.
func FindMemoryTypeIndex(
	memoryProperties *core1_0.PhysicalDeviceMemoryProperties,
	memoryTypeBits uint32,
	info staging.BufferCreateInfo,
) (int, common.VkResult, error) {
	requiredFlags, preferredFlags, notPreferredFlags := memoryPreferences(info)

	bestMemoryTypeIndex := -1
	minCost := math.MaxInt

	for memTypeIndex, memType := range memoryProperties.MemoryTypes {
		memTypeBit := uint32(1) << memTypeIndex

		if memTypeBit&memoryTypeBits == 0 {
			continue
		}

		flags := memType.PropertyFlags
		if requiredFlags&flags != requiredFlags {
			continue
		}

		missingPreferredFlags := preferredFlags & ^flags
		presentNotPreferredFlags := notPreferredFlags & flags
		cost := bits.OnesCount32(uint32(missingPreferredFlags)) + bits.OnesCount32(uint32(presentNotPreferredFlags))

		if cost == 0 {
			return memTypeIndex, core1_0.VKSuccess, nil
		}

		if cost < minCost {
			bestMemoryTypeIndex = memTypeIndex
			minCost = cost
		}
	}

	if bestMemoryTypeIndex < 0 {
		return -1, core1_0.VKErrorFeatureNotPresent, core1_0.VKErrorFeatureNotPresent.ToError()
	}

	return bestMemoryTypeIndex, core1_0.VKSuccess, nil
}
