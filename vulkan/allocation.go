package vulkan

import (
	"unsafe"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/staging"
)

// Allocation is a VkBuffer bound to its own dedicated VkDeviceMemory
type Allocation struct {
	handle          staging.Handle
	buffer          core1_0.Buffer
	memory          core1_0.DeviceMemory
	mapped          *mappedMemory
	memoryTypeIndex int
	size            int
	persistent      bool
	info            staging.BufferCreateInfo
}

var _ staging.Allocation = &Allocation{}

// Size is the size of the backing device memory, which may exceed the requested buffer size
func (a *Allocation) Size() int {
	return a.size
}

// MappedData returns the persistent mapping of this Allocation, or nil if it was not created
// with AllocationCreateMapped in host-visible memory
func (a *Allocation) MappedData() unsafe.Pointer {
	if !a.persistent {
		return nil
	}

	return a.mapped.MappedData()
}

func (a *Allocation) MemoryTypeIndex() int {
	return a.memoryTypeIndex
}

func (a *Allocation) Memory() core1_0.DeviceMemory {
	return a.memory
}

func (a *Allocation) Buffer() core1_0.Buffer {
	return a.buffer
}

func (a *Allocation) printParameters(json *jwriter.ObjectState) {
	json.Name("Handle").Int(int(a.handle))
	json.Name("Size").Int(a.size)
	json.Name("RequestedSize").Int(a.info.Size)
	json.Name("Usage").String(a.info.Usage.String())
	json.Name("MemoryClass").String(a.info.MemoryClass.String())
	json.Name("MemoryTypeIndex").Int(a.memoryTypeIndex)
	json.Name("Persistent").Bool(a.persistent)
}
