package staging

import (
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// Handle identifies a GPU buffer issued by a MemoryAllocator. The zero Handle is never
// issued and stands for "no buffer".
type Handle uint64

// MemoryClass describes how the memory backing a buffer will be accessed, letting the
// MemoryAllocator decide which memory type to use.
type MemoryClass uint32

const (
	// MemoryClassUnknown indicates no intended usage. The allocator only honors the
	// RequiredFlags and PreferredFlags of BufferCreateInfo.
	MemoryClassUnknown MemoryClass = iota
	// MemoryClassGPUOnly is memory that is only read and written by the device. Destination
	// buffers of staged uploads usually live here.
	MemoryClassGPUOnly
	// MemoryClassCPUOnly is host-visible, host-coherent memory. Staging buffers always use
	// this class.
	MemoryClassCPUOnly
	// MemoryClassCPUToGPU is host-visible memory that should also be fast for the device to
	// read, for data the host rewrites every frame.
	MemoryClassCPUToGPU
	// MemoryClassGPUToCPU is host-visible memory that should be cached on the host, for
	// readback.
	MemoryClassGPUToCPU
)

var memoryClassMapping = map[MemoryClass]string{
	MemoryClassUnknown:  "MemoryClassUnknown",
	MemoryClassGPUOnly:  "MemoryClassGPUOnly",
	MemoryClassCPUOnly:  "MemoryClassCPUOnly",
	MemoryClassCPUToGPU: "MemoryClassCPUToGPU",
	MemoryClassGPUToCPU: "MemoryClassGPUToCPU",
}

func (c MemoryClass) String() string {
	str, ok := memoryClassMapping[c]
	if !ok {
		return "unknown"
	}
	return str
}

// AllocationCreateFlags exposes options for allocations made through a MemoryAllocator
type AllocationCreateFlags int32

var allocationCreateFlagsMapping = common.NewFlagStringMapping[AllocationCreateFlags]()

func (f AllocationCreateFlags) Register(str string) {
	allocationCreateFlagsMapping.Register(f, str)
}
func (f AllocationCreateFlags) String() string {
	return allocationCreateFlagsMapping.FlagsToString(f)
}

const (
	// AllocationCreateMapped instructs the allocator to map the allocation once at creation and
	// keep it mapped until the buffer is destroyed. The pointer is available from
	// Allocation.MappedData.
	//
	// The flag is ignored for memory types that are not HostVisible.
	AllocationCreateMapped AllocationCreateFlags = 1 << iota
)

func init() {
	AllocationCreateMapped.Register("AllocationCreateMapped")
}

// BufferCreateInfo describes a buffer request made to a MemoryAllocator
type BufferCreateInfo struct {
	// Size is the byte capacity of the buffer. It is never zero.
	Size int
	// Usage is the set of usages the buffer will be created with
	Usage core1_0.BufferUsageFlags
	// MemoryClass indicates how the memory will be accessed
	MemoryClass MemoryClass
	// Flags holds options for the backing allocation
	Flags AllocationCreateFlags

	// RequiredFlags are memory property flags the chosen memory type must have, on top of
	// whatever MemoryClass requires
	RequiredFlags core1_0.MemoryPropertyFlags
	// PreferredFlags are memory property flags the chosen memory type should have, on top of
	// whatever MemoryClass prefers
	PreferredFlags core1_0.MemoryPropertyFlags
}

// BufferCopy is a single linear copy region between two buffers
type BufferCopy struct {
	SrcOffset int
	DstOffset int
	Size      int
}
