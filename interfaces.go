package staging

import "unsafe"

//go:generate mockgen -source interfaces.go -destination ./mocks/mocks.go -package mocks

// Allocation is the allocator's token for the memory behind one buffer
type Allocation interface {
	// Size is the number of bytes the allocation holds. It may exceed the requested buffer
	// size when the device demands padding.
	Size() int
	// MappedData returns the stable host pointer of a persistently-mapped allocation, or nil
	// if the allocation was not created with AllocationCreateMapped.
	MappedData() unsafe.Pointer
}

// MemoryAllocator creates and destroys buffers together with the device memory behind them.
// Every error it returns is treated as a device error.
type MemoryAllocator interface {
	CreateBuffer(info BufferCreateInfo) (Handle, Allocation, error)
	DestroyBuffer(handle Handle, allocation Allocation) error

	// MapMemory maps an allocation for host access. Every successful call must be paired with
	// a call to UnmapMemory. Persistently-mapped allocations may also be mapped, in which case
	// the persistent pointer is returned.
	MapMemory(allocation Allocation) (unsafe.Pointer, error)
	UnmapMemory(allocation Allocation) error
}

// CommandRecorder is an open command recording context
type CommandRecorder interface {
	CmdCopyBuffer(src, dst Handle, regions []BufferCopy) error
}

// CommandSubmitter hands out command recording contexts and submits them to the device.
//
// A recorder returned from Begin is always passed to Release exactly once, whether or not
// it was submitted.
type CommandSubmitter interface {
	Begin() (CommandRecorder, error)
	// SubmitAndWait submits everything recorded into the recorder and blocks until the
	// device has finished executing it
	SubmitAndWait(recorder CommandRecorder) error
	Release(recorder CommandRecorder) error
}
